package llms

import (
	"context"
	"fmt"

	"github.com/nithin8919/policyengine/pkg/registry"
)

// LLMProvider generates a single completion for a prompt. The answer
// composer calls Generate once per query with the fully assembled,
// citation-annotated context; there is no tool-calling or streaming
// surface because the query pipeline never needs either.
type LLMProvider interface {
	Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)

	GetModelName() string
	GetMaxTokens() int
	GetTemperature() float64

	Close() error
}

// NewProvider constructs an LLM provider from configuration.
func NewProvider(cfg *Config) (LLMProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("LLM config cannot be nil")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
		case ProviderOpenAI:
			return NewOpenAIProviderFromConfig(cfg)
		case ProviderAnthropic:
			return NewAnthropicProviderFromConfig(cfg)
		case ProviderGemini:
			return NewGeminiProviderFromConfig(cfg)
		case ProviderOllama:
			return NewOllamaProviderFromConfig(cfg)
		default:
			return nil, fmt.Errorf("unsupported LLM type: %s (supported: openai, anthropic, gemini, ollama)", cfg.Type)
	}
}

// LLMRegistry manages named LLM provider instances.
type LLMRegistry struct {
	*registry.BaseRegistry[LLMProvider]
}

func NewLLMRegistry() *LLMRegistry {
	return &LLMRegistry{
		BaseRegistry: registry.NewBaseRegistry[LLMProvider](),
	}
}

func (r *LLMRegistry) RegisterLLM(name string, provider LLMProvider) error {
	if name == "" {
		return fmt.Errorf("LLM name cannot be empty")
	}
	if provider == nil {
		return fmt.Errorf("LLM provider cannot be nil")
	}
	return r.Register(name, provider)
}

func (r *LLMRegistry) CreateLLMFromConfig(name string, cfg *Config) (LLMProvider, error) {
	if name == "" {
		return nil, fmt.Errorf("LLM name cannot be empty")
	}

	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	if err := r.RegisterLLM(name, provider); err != nil {
		return nil, fmt.Errorf("failed to register LLM: %w", err)
	}

	return provider, nil
}

func (r *LLMRegistry) GetLLM(name string) (LLMProvider, error) {
	provider, exists := r.Get(name)
	if !exists {
		return nil, fmt.Errorf("LLM provider '%s' not found", name)
	}
	return provider, nil
}

func (r *LLMRegistry) ListLLMs() []string {
	names := make([]string, 0)
	for _, provider := range r.List() {
		names = append(names, provider.GetModelName())
	}
	return names
}
