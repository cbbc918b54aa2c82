package llms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AnthropicProvider implements LLMProvider for the Anthropic Messages API.
type AnthropicProvider struct {
	client *http.Client
	apiKey string
	host string
	model string
	temperature float64
	maxTokens int
	maxRetries int
}

type anthropicRequest struct {
	Model string `json:"model"`
	Messages []anthropicMessage `json:"messages"`
	MaxTokens int `json:"max_tokens"`
	Temperature float64 `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error *struct {
		Type string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewAnthropicProvider creates a new Anthropic provider with defaults.
func NewAnthropicProvider(apiKey, model string) (*AnthropicProvider, error) {
	cfg := &Config{Type: ProviderAnthropic, Model: model, APIKey: apiKey, Host: "https://api.anthropic.com"}
	return NewAnthropicProviderFromConfig(cfg)
}

// NewAnthropicProviderFromConfig builds an Anthropic provider from configuration.
func NewAnthropicProviderFromConfig(cfg *Config) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required for Anthropic provider")
	}
	cfg.SetDefaults()

	host := cfg.Host
	if host == "" {
		host = "https://api.anthropic.com"
	}
	model := cfg.Model
	if model == "" {
		model = "claude-3-5-sonnet-latest"
	}

	return &AnthropicProvider{
		client: &http.Client{Timeout: cfg.Timeout},
		apiKey: cfg.APIKey,
		host: host,
		model: model,
		temperature: cfg.Temperature,
		maxTokens: cfg.MaxTokens,
		maxRetries: cfg.MaxRetries,
	}, nil
}

func (p *AnthropicProvider) Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}
	req := anthropicRequest{
		Model: p.model,
		Messages: []anthropicMessage{{Role: "user", Content: prompt}},
		MaxTokens: maxTokens,
		Temperature: temperature,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var response anthropicResponse
	if err := p.doWithRetry(ctx, body, &response); err != nil {
		return "", err
	}
	if response.Error != nil {
		return "", fmt.Errorf("anthropic API error: %s (%s)", response.Error.Message, response.Error.Type)
	}

	var text string
	for _, block := range response.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}

func (p *AnthropicProvider) doWithRetry(ctx context.Context, body []byte, out *anthropicResponse) error {
	maxRetries := p.maxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/v1/messages", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("x-api-key", p.apiKey)
		httpReq.Header.Set("anthropic-version", "2023-06-01")

		resp, err := p.client.Do(httpReq)
		if err != nil {
			lastErr = err
		} else {
			respBody, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				lastErr = readErr
			} else if resp.StatusCode == http.StatusOK {
				return json.Unmarshal(respBody, out)
			} else if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				lastErr = fmt.Errorf("anthropic API returned status %d: %s", resp.StatusCode, string(respBody))
			} else {
				return json.Unmarshal(respBody, out)
			}
		}

		if attempt < maxRetries-1 {
			select {
				case <-ctx.Done():
				return ctx.Err()
				case <-time.After(time.Duration(attempt+1) * time.Second):
			}
		}
	}
	return fmt.Errorf("failed to call anthropic after %d attempts: %w", maxRetries, lastErr)
}

func (p *AnthropicProvider) GetModelName() string { return p.model }
func (p *AnthropicProvider) GetMaxTokens() int { return p.maxTokens }
func (p *AnthropicProvider) GetTemperature() float64 { return p.temperature }
func (p *AnthropicProvider) Close() error { return nil }
