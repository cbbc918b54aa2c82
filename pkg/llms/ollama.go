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

// OllamaProvider implements LLMProvider against a local Ollama daemon.
type OllamaProvider struct {
	client *http.Client
	host string
	model string
	temperature float64
	maxTokens int
	maxRetries int
}

type ollamaGenerateRequest struct {
	Model string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool `json:"stream"`
	Options ollamaGenOptions `json:"options,omitempty"`
}

type ollamaGenOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict int `json:"num_predict,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done bool `json:"done"`
}

// NewOllamaProvider creates a new Ollama provider with defaults.
func NewOllamaProvider(model string) (*OllamaProvider, error) {
	cfg := &Config{Type: ProviderOllama, Model: model, Host: "http://localhost:11434"}
	return NewOllamaProviderFromConfig(cfg)
}

// NewOllamaProviderFromConfig builds an Ollama provider from configuration.
func NewOllamaProviderFromConfig(cfg *Config) (*OllamaProvider, error) {
	cfg.SetDefaults()

	host := cfg.Host
	if host == "" {
		host = "http://localhost:11434"
	}
	model := cfg.Model
	if model == "" {
		model = "llama3.1"
	}

	return &OllamaProvider{
		client: &http.Client{Timeout: cfg.Timeout},
		host: host,
		model: model,
		temperature: cfg.Temperature,
		maxTokens: cfg.MaxTokens,
		maxRetries: cfg.MaxRetries,
	}, nil
}

func (p *OllamaProvider) Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}
	req := ollamaGenerateRequest{
		Model: p.model,
		Prompt: prompt,
		Stream: false,
		Options: ollamaGenOptions{
			Temperature: temperature,
			NumPredict: maxTokens,
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var response ollamaGenerateResponse
	if err := p.doWithRetry(ctx, body, &response); err != nil {
		return "", err
	}

	return response.Response, nil
}

func (p *OllamaProvider) doWithRetry(ctx context.Context, body []byte, out *ollamaGenerateResponse) error {
	maxRetries := p.maxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/api/generate", bytes.NewReader(body))
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
			} else {
				lastErr = fmt.Errorf("ollama API returned status %d: %s", resp.StatusCode, string(respBody))
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
	return fmt.Errorf("failed to call ollama after %d attempts: %w", maxRetries, lastErr)
}

func (p *OllamaProvider) GetModelName() string { return p.model }
func (p *OllamaProvider) GetMaxTokens() int { return p.maxTokens }
func (p *OllamaProvider) GetTemperature() float64 { return p.temperature }
func (p *OllamaProvider) Close() error { return nil }
