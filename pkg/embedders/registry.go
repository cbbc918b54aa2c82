package embedders

import (
	"fmt"

	"github.com/nithin8919/policyengine/pkg/registry"
)

// EmbedderRegistry manages named embedder provider instances. The query
// planner resolves "fast" and "deep" embedding model slots through this
// registry; other names may be registered for ad-hoc use (tests, tools).
type EmbedderRegistry struct {
	*registry.BaseRegistry[EmbedderProvider]
}

// NewEmbedderRegistry creates a new embedder registry.
func NewEmbedderRegistry() *EmbedderRegistry {
	return &EmbedderRegistry{
		BaseRegistry: registry.NewBaseRegistry[EmbedderProvider](),
	}
}

// RegisterEmbedder registers an embedder provider instance.
func (r *EmbedderRegistry) RegisterEmbedder(name string, provider EmbedderProvider) error {
	if name == "" {
		return fmt.Errorf("embedder name cannot be empty")
	}
	if provider == nil {
		return fmt.Errorf("embedder provider cannot be nil")
	}
	return r.Register(name, provider)
}

// CreateEmbedderFromConfig builds, registers, and returns an embedder
// provider from configuration.
func (r *EmbedderRegistry) CreateEmbedderFromConfig(name string, cfg *ProviderConfig) (EmbedderProvider, error) {
	if name == "" {
		return nil, fmt.Errorf("embedder name cannot be empty")
	}
	if cfg == nil {
		return nil, fmt.Errorf("embedder config cannot be nil")
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid embedder config: %w", err)
	}

	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder provider: %w", err)
	}

	if err := r.RegisterEmbedder(name, provider); err != nil {
		return nil, fmt.Errorf("failed to register embedder: %w", err)
	}

	return provider, nil
}

// GetEmbedder retrieves an embedder provider by name.
func (r *EmbedderRegistry) GetEmbedder(name string) (EmbedderProvider, error) {
	provider, exists := r.Get(name)
	if !exists {
		return nil, fmt.Errorf("embedder provider '%s' not found", name)
	}
	return provider, nil
}

// ListEmbedders returns all registered embedder model names.
func (r *EmbedderRegistry) ListEmbedders() []string {
	names := make([]string, 0)
	for _, provider := range r.List() {
		names = append(names, provider.GetModelName())
	}
	return names
}
