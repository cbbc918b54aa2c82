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

// GeminiProvider implements LLMProvider for the Gemini generateContent API.
type GeminiProvider struct {
	client *http.Client
	apiKey string
	host string
	model string
	temperature float64
	maxTokens int
	maxRetries int
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role string `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature float64 `json:"temperature,omitempty"`
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Status string `json:"status"`
	} `json:"error,omitempty"`
}

// NewGeminiProvider creates a new Gemini provider with defaults.
func NewGeminiProvider(apiKey, model string) (*GeminiProvider, error) {
	cfg := &Config{Type: ProviderGemini, Model: model, APIKey: apiKey, Host: "https://generativelanguage.googleapis.com/v1beta"}
	return NewGeminiProviderFromConfig(cfg)
}

// NewGeminiProviderFromConfig builds a Gemini provider from configuration.
func NewGeminiProviderFromConfig(cfg *Config) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required for Gemini provider")
	}
	cfg.SetDefaults()

	host := cfg.Host
	if host == "" {
		host = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}

	return &GeminiProvider{
		client: &http.Client{Timeout: cfg.Timeout},
		apiKey: cfg.APIKey,
		host: host,
		model: model,
		temperature: cfg.Temperature,
		maxTokens: cfg.MaxTokens,
		maxRetries: cfg.MaxRetries,
	}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}
	req := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature: temperature,
			MaxOutputTokens: maxTokens,
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var response geminiResponse
	if err := p.doWithRetry(ctx, body, &response); err != nil {
		return "", err
	}
	if response.Error != nil {
		return "", fmt.Errorf("gemini API error: %s (%s)", response.Error.Message, response.Error.Status)
	}
	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var text string
	for _, part := range response.Candidates[0].Content.Parts {
		text += part.Text
	}
	return text, nil
}

func (p *GeminiProvider) doWithRetry(ctx context.Context, body []byte, out *geminiResponse) error {
	maxRetries := p.maxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.host, p.model, p.apiKey)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

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
				lastErr = fmt.Errorf("gemini API returned status %d: %s", resp.StatusCode, string(respBody))
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
	return fmt.Errorf("failed to call gemini after %d attempts: %w", maxRetries, lastErr)
}

func (p *GeminiProvider) GetModelName() string { return p.model }
func (p *GeminiProvider) GetMaxTokens() int { return p.maxTokens }
func (p *GeminiProvider) GetTemperature() float64 { return p.temperature }
func (p *GeminiProvider) Close() error { return nil }
