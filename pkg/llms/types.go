// Package llms provides LLM provider implementations used by the answer
// composer to turn a grounded context plus a query into prose.
package llms

import (
	"fmt"
	"time"
)

// ProviderType identifies an LLM backend.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderAnthropic ProviderType = "anthropic"
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
)

// Config configures a single LLM provider instance.
type Config struct {
	Type ProviderType `yaml:"type"`
	Model string `yaml:"model"`
	APIKey string `yaml:"api_key"`
	Host string `yaml:"host"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens int `yaml:"max_tokens"`
	Timeout time.Duration `yaml:"timeout"`
	MaxRetries int `yaml:"max_retries"`
}

// SetDefaults applies default values for unset fields.
func (c *Config) SetDefaults() {
	if c.Temperature == 0 {
		c.Temperature = 0.2
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 1024
	}
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
}

// Validate checks the configuration for the selected provider type.
func (c *Config) Validate() error {
	switch c.Type {
		case ProviderOllama:
			return nil
		case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
			if c.APIKey == "" {
				return fmt.Errorf("api_key is required for LLM type %q", c.Type)
			}
			return nil
		case "":
			return fmt.Errorf("LLM type is required")
		default:
			return fmt.Errorf("unknown LLM type: %q", c.Type)
	}
}
