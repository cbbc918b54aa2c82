// Package config loads and validates the process-wide configuration for
// the retrieval engine: vector store and provider wiring, per-mode search
// knobs, feature flags, and cache locations.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nithin8919/policyengine/pkg/embedders"
	"github.com/nithin8919/policyengine/pkg/llms"
	"github.com/nithin8919/policyengine/pkg/metrics"
	"github.com/nithin8919/policyengine/pkg/vector"
)

// Config is the root, immutable configuration for a process. It is loaded
// once at start-up and passed by reference into the service container;
// nothing in the query path mutates it.
type Config struct {
	VectorStore *vector.ProviderConfig `yaml:"vector_store"`

	// Embedders maps named embedding slots ("fast", "deep") to provider
	// configuration. The query planner resolves plan.embedding_model
	// against these names.
	Embedders map[string]*embedders.ProviderConfig `yaml:"embedders"`

	// LLMs maps named LLM slots to provider configuration. "answer" is
	// used by the answer composer; "judge" (optional) backs the policy
	// reranker's LLM-judge rescoring pass.
	LLMs map[string]*llms.Config `yaml:"llms"`

	Retrieval RetrievalConfig `yaml:"retrieval"`
	FeatureFlags FeatureFlags `yaml:"feature_flags"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
	Cache CacheConfig `yaml:"cache"`
	EmbeddingDim int `yaml:"embedding_dimension"`
	Logger LoggerConfig `yaml:"logger"`
	Metrics metrics.Config `yaml:"metrics"`
	Tracing metrics.TracerConfig `yaml:"tracing"`
}

// RetrievalConfig holds the closed set of scoring/ranking knobs called
// out in the configuration surface: per-mode top-k and rerank-top, and
// the hybrid-fusion / diversity weights.
type RetrievalConfig struct {
	QATopK int `yaml:"qa_top_k"`
	DeepTopK int `yaml:"deep_top_k"`
	BrainstormTopK int `yaml:"brainstorm_top_k"`

	QARerankTop int `yaml:"qa_rerank_top"`
	DeepRerankTop int `yaml:"deep_rerank_top"`
	BrainstormRerankTop int `yaml:"brainstorm_rerank_top"`

	HybridAlpha float64 `yaml:"hybrid_alpha"`
	MMRLambda float64 `yaml:"mmr_lambda"`
	DiversityWeight float64 `yaml:"diversity_weight"`
	MinPerCategory int `yaml:"min_per_category"`
	SupersessionDownrank float64 `yaml:"supersession_downrank"`
}

// SetDefaults fills in the base top-k / rerank-top values when unset.
func (c *RetrievalConfig) SetDefaults() {
	if c.QATopK == 0 {
		c.QATopK = 20
	}
	if c.DeepTopK == 0 {
		c.DeepTopK = 80
	}
	if c.BrainstormTopK == 0 {
		c.BrainstormTopK = 60
	}
	if c.QARerankTop == 0 {
		c.QARerankTop = 10
	}
	if c.DeepRerankTop == 0 {
		c.DeepRerankTop = 30
	}
	if c.BrainstormRerankTop == 0 {
		c.BrainstormRerankTop = 20
	}
	if c.HybridAlpha == 0 {
		c.HybridAlpha = 0.7
	}
	if c.MMRLambda == 0 {
		c.MMRLambda = 0.5
	}
	if c.DiversityWeight == 0 {
		c.DiversityWeight = 0.4
	}
	if c.MinPerCategory == 0 {
		c.MinPerCategory = 1
	}
	if c.SupersessionDownrank == 0 {
		c.SupersessionDownrank = 0.3
	}
}

// FeatureFlags toggles optional behavior. Encapsulated here as an
// immutable value rather than a module-level dict so that a request
// handler never mutates process-wide behavior mid-flight.
type FeatureFlags struct {
	HybridSearch bool `yaml:"hybrid_search"`
	DynamicTopK bool `yaml:"dynamic_top_k"`
	UseIntentClassifierV2 bool `yaml:"use_intent_classifier_v2"`
	UseQueryRouterV2 bool `yaml:"use_query_router_v2"`
	MultiQueryExpansion bool `yaml:"multi_query_expansion"`
	HyDEExpansion bool `yaml:"hyde_expansion"`
	LLMJudgeRerank bool `yaml:"llm_judge_rerank"`
}

// TimeoutConfig holds the per-mode overall deadlines.
type TimeoutConfig struct {
	QA         time.Duration `yaml:"qa"`
	DeepThink  time.Duration `yaml:"deep_think"`
	Brainstorm time.Duration `yaml:"brainstorm"`
}

// SetDefaults applies the defaults (2s QA, 10s DeepThink, 8s Brainstorm).
func (c *TimeoutConfig) SetDefaults() {
	if c.QA == 0 {
		c.QA = 2 * time.Second
	}
	if c.DeepThink == 0 {
		c.DeepThink = 10 * time.Second
	}
	if c.Brainstorm == 0 {
		c.Brainstorm = 8 * time.Second
	}
}

// CacheConfig locates the filesystem-backed LLM/embedding cache and
// bounds its size.
type CacheConfig struct {
	LLMDir string `yaml:"llm_dir"`
	EmbeddingDir string `yaml:"embedding_dir"`
	EmbeddingBudget int `yaml:"embedding_budget"`
	LLMBudget int `yaml:"llm_budget"`
	MemoryEntries int `yaml:"memory_entries"`
}

// SetDefaults applies cache defaults.
func (c *CacheConfig) SetDefaults() {
	if c.LLMDir == "" {
		c.LLMDir = ".cache/llm"
	}
	if c.EmbeddingDir == "" {
		c.EmbeddingDir = ".cache/embedding"
	}
	if c.EmbeddingBudget == 0 {
		c.EmbeddingBudget = 50_000
	}
	if c.LLMBudget == 0 {
		c.LLMBudget = 10_000
	}
	if c.MemoryEntries == 0 {
		c.MemoryEntries = 2_000
	}
}

// SetDefaults applies defaults across the whole config tree.
func (c *Config) SetDefaults() {
	if c.EmbeddingDim == 0 {
		c.EmbeddingDim = 768
	}
	c.Retrieval.SetDefaults()
	c.Timeouts.SetDefaults()
	c.Cache.SetDefaults()
	c.Logger.SetDefaults()
	c.Metrics.SetDefaults()
	c.Tracing.SetDefaults()

	if c.VectorStore != nil {
		c.VectorStore.SetDefaults()
	}
	for _, e := range c.Embedders {
		e.SetDefaults()
	}
	for _, l := range c.LLMs {
		l.SetDefaults()
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.VectorStore != nil {
		if err := c.VectorStore.Validate(); err != nil {
			return fmt.Errorf("vector_store: %w", err)
		}
	}
	for name, e := range c.Embedders {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("embedders.%s: %w", name, err)
		}
	}
	for name, l := range c.LLMs {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("llms.%s: %w", name, err)
		}
	}
	if err := c.Logger.Validate(); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	return nil
}

// Load reads a YAML configuration file, expands ${VAR}-style environment
// references, applies defaults, and validates the result.
func Load(path string) (*Config, error) {
	_ = LoadEnvFiles()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var generic map[string]interface{}
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	expanded := ExpandEnvVarsInData(generic)

	expandedBytes, err := yaml.Marshal(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to re-marshal expanded config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(expandedBytes, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Default returns a minimal configuration for local development: chromem
// vector store and hash-fallback embedders. It configures no LLM provider,
// and engine.New returns an error for a config without an "answer" LLM.
func Default() *Config {
	cfg := &Config{
		VectorStore: &vector.ProviderConfig{Type: vector.ProviderChromem},
		Embedders: map[string]*embedders.ProviderConfig{
			"fast": {Type: embedders.ProviderHash, Dimension: 768},
			"deep": {Type: embedders.ProviderHash, Dimension: 768},
		},
		LLMs: map[string]*llms.Config{},
	}
	cfg.SetDefaults()
	return cfg
}
