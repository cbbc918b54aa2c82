package embedders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// ollamaEmbedMu serializes Ollama embedding requests. Ollama's llama
// runner crashes with SIGABRT when receiving concurrent embedding
// requests against the same model.
var ollamaEmbedMu sync.Mutex

type OllamaEmbedder struct {
	client *http.Client
	host string
	model string
	dimension int
	maxRetries int
}

type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func NewOllamaEmbedder() *OllamaEmbedder {
	cfg := &ProviderConfig{
		Type: ProviderOllama,
		Model: "nomic-embed-text",
		Host: "http://localhost:11434",
		Dimension: 768,
	}
	cfg.SetDefaults()
	embedder, _ := NewOllamaEmbedderFromConfig(cfg)
	return embedder
}

func NewOllamaEmbedderFromConfig(cfg *ProviderConfig) (*OllamaEmbedder, error) {
	model := cfg.Model
	if model == "" {
		model = OllamaNomicEmbedText
	}
	host := cfg.Host
	if host == "" {
		host = "http://localhost:11434"
	}
	return &OllamaEmbedder{
		client: &http.Client{Timeout: cfg.Timeout},
		host: host,
		model: model,
		dimension: cfg.Dimension,
		maxRetries: cfg.MaxRetries,
	}, nil
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	// Serialize all Ollama embedding requests to prevent crashes.
	ollamaEmbedMu.Lock()
	defer ollamaEmbedMu.Unlock()

	slog.Debug("ollama embedding request", "model", e.model, "text_length", len(text))

	reqBody, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	maxRetries := e.maxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var resp *http.Response
	for attempt := 0; attempt < maxRetries; attempt++ {
		httpReq, rerr := http.NewRequestWithContext(ctx, http.MethodPost, e.host+"/api/embeddings", bytes.NewReader(reqBody))
		if rerr != nil {
			return nil, fmt.Errorf("failed to create request: %w", rerr)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err = e.client.Do(httpReq)
		if err == nil && resp.StatusCode == http.StatusOK {
			break
		}
		if resp != nil {
			resp.Body.Close()
		}

		slog.Debug("ollama embedding retry", "attempt", attempt+1, "error", err)
		if attempt < maxRetries-1 {
			select {
				case <-ctx.Done():
				return nil, ctx.Err()
				case <-time.After(time.Duration(attempt+1) * time.Second):
			}
		}
	}

	if err != nil {
		slog.Error("ollama embedding failed", "error", err, "model", e.model)
		return nil, fmt.Errorf("failed to send request to ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama API returned status %d: %s", resp.StatusCode, string(body))
	}

	var response ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(response.Embedding) == 0 {
		return nil, fmt.Errorf("received empty embedding from ollama")
	}

	return response.Embedding, nil
}

func (e *OllamaEmbedder) GetDimension() int {
	if e.dimension > 0 {
		return e.dimension
	}
	return 768
}

func (e *OllamaEmbedder) GetModelName() string { return e.model }

func (e *OllamaEmbedder) Close() error { return nil }

// Well-known Ollama embedding model identifiers.
var (
	OllamaNomicEmbedText = "nomic-embed-text"
	OllamaNomicEmbedTextV2 = "nomic-embed-text-v2"

	OllamaAllMiniLML6V2 = "all-minilm:l6-v2"
	OllamaAllMpnetBaseV2 = "all-mpnet-base-v2"

	OllamaBGESmallEnV15 = "bge-small-en-v1.5"
	OllamaBGELargeEnV15 = "bge-large-en-v1.5"

	OllamaE5SmallV2 = "e5-small-v2"
	OllamaE5BaseV2 = "e5-base-v2"
	OllamaE5LargeV2 = "e5-large-v2"
)
