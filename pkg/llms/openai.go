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

// OpenAIProvider implements LLMProvider for the OpenAI chat completions API.
type OpenAIProvider struct {
	client *http.Client
	apiKey string
	host string
	model string
	temperature float64
	maxTokens int
	maxRetries int
}

type openAIChatRequest struct {
	Model string `json:"model"`
	Messages []openAIChatMessage `json:"messages"`
	MaxTokens int `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type openAIChatMessage struct {
	Role string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message openAIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type string `json:"type"`
	} `json:"error,omitempty"`
}

// NewOpenAIProvider creates a new OpenAI provider with defaults.
func NewOpenAIProvider(apiKey, model string) (*OpenAIProvider, error) {
	cfg := &Config{Type: ProviderOpenAI, Model: model, APIKey: apiKey, Host: "https://api.openai.com/v1"}
	return NewOpenAIProviderFromConfig(cfg)
}

// NewOpenAIProviderFromConfig builds an OpenAI provider from configuration.
func NewOpenAIProviderFromConfig(cfg *Config) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required for OpenAI provider")
	}
	cfg.SetDefaults()

	host := cfg.Host
	if host == "" {
		host = "https://api.openai.com/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAIProvider{
		client: &http.Client{Timeout: cfg.Timeout},
		apiKey: cfg.APIKey,
		host: host,
		model: model,
		temperature: cfg.Temperature,
		maxTokens: cfg.MaxTokens,
		maxRetries: cfg.MaxRetries,
	}, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}
	req := openAIChatRequest{
		Model: p.model,
		Messages: []openAIChatMessage{{Role: "user", Content: prompt}},
		MaxTokens: maxTokens,
		Temperature: temperature,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var response openAIChatResponse
	if err := p.doWithRetry(ctx, body, &response); err != nil {
		return "", err
	}
	if response.Error != nil {
		return "", fmt.Errorf("openai API error: %s (%s)", response.Error.Message, response.Error.Type)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	return response.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) doWithRetry(ctx context.Context, body []byte, out *openAIChatResponse) error {
	maxRetries := p.maxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

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
				lastErr = fmt.Errorf("openai API returned status %d: %s", resp.StatusCode, string(respBody))
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
	return fmt.Errorf("failed to call openai after %d attempts: %w", maxRetries, lastErr)
}

func (p *OpenAIProvider) GetModelName() string { return p.model }
func (p *OpenAIProvider) GetMaxTokens() int { return p.maxTokens }
func (p *OpenAIProvider) GetTemperature() float64 { return p.temperature }
func (p *OpenAIProvider) Close() error { return nil }
