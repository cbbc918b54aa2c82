package embedders

import (
	"context"
	"fmt"
	"time"
)

// EmbedderProvider turns text into a fixed-dimension dense vector.
type EmbedderProvider interface {
	// Embed generates an embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// GetDimension returns the dimension of the embedding vectors.
	GetDimension() int

	// GetModelName returns the model name used for embeddings.
	GetModelName() string

	Close() error
}

// ProviderType identifies an embedder backend.
type ProviderType string

const (
	ProviderOllama ProviderType = "ollama"
	ProviderOpenAI ProviderType = "openai"
	ProviderCohere ProviderType = "cohere"
	// ProviderHash is a deterministic, network-free fallback used when no
	// real embedding provider is configured for a slot.
	ProviderHash ProviderType = "hash"
)

// ProviderConfig configures a single embedder instance.
type ProviderConfig struct {
	Type ProviderType `yaml:"type"`
	Model string `yaml:"model"`
	Host string `yaml:"host"`
	APIKey string `yaml:"api_key"`
	Dimension int `yaml:"dimension"`
	Timeout time.Duration `yaml:"timeout"`
	MaxRetries int `yaml:"max_retries"`
	BatchSize int `yaml:"batch_size"`
}

// SetDefaults applies default values for unset fields.
func (c *ProviderConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = ProviderHash
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.BatchSize == 0 {
		c.BatchSize = 96
	}
	if c.Dimension == 0 {
		c.Dimension = 768
	}
}

// Validate checks the configuration for the selected provider type.
func (c *ProviderConfig) Validate() error {
	switch c.Type {
		case ProviderHash:
			return nil
		case ProviderOllama:
			return nil
		case ProviderOpenAI, ProviderCohere:
			if c.APIKey == "" {
				return fmt.Errorf("api_key is required for embedder type %q", c.Type)
			}
			return nil
		case "":
			return fmt.Errorf("embedder type is required")
		default:
			return fmt.Errorf("unknown embedder type: %q", c.Type)
	}
}

// NewProvider constructs an embedder from configuration. A nil config, or
// the hash type, yields the deterministic fallback embedder so that a
// misconfigured or absent embedding dependency degrades instead of failing
// the whole query.
func NewProvider(cfg *ProviderConfig) (EmbedderProvider, error) {
	if cfg == nil {
		return NewHashEmbedder(768), nil
	}

	switch cfg.Type {
		case "", ProviderHash:
			return NewHashEmbedder(cfg.Dimension), nil
		case ProviderOllama:
			return NewOllamaEmbedderFromConfig(cfg)
		case ProviderOpenAI:
			return NewOpenAIEmbedderFromConfig(cfg)
		case ProviderCohere:
			return NewCohereEmbedderFromConfig(cfg)
		default:
			return nil, fmt.Errorf("unknown embedder type: %q", cfg.Type)
	}
}
