package llms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIProviderGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"welfare schemes are listed in section 3"}}]}`))
	}))
	defer server.Close()

	p, err := NewOpenAIProviderFromConfig(&Config{Type: ProviderOpenAI, APIKey: "sk-test", Host: server.URL})
	require.NoError(t, err)

	text, err := p.Generate(context.Background(), "summarize welfare schemes", 0.2, 256)
	require.NoError(t, err)
	assert.Contains(t, text, "welfare schemes")
}

func TestAnthropicProviderGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"order GO-123 supersedes GO-45"}]}`))
	}))
	defer server.Close()

	p, err := NewAnthropicProviderFromConfig(&Config{Type: ProviderAnthropic, APIKey: "sk-ant-test", Host: server.URL})
	require.NoError(t, err)

	text, err := p.Generate(context.Background(), "explain supersession", 0.2, 256)
	require.NoError(t, err)
	assert.Contains(t, text, "supersedes")
}

func TestGeminiProviderGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"see circular 2024-07"}]}}]}`))
	}))
	defer server.Close()

	p, err := NewGeminiProviderFromConfig(&Config{Type: ProviderGemini, APIKey: "key-test", Host: server.URL})
	require.NoError(t, err)

	text, err := p.Generate(context.Background(), "cite circular", 0.2, 256)
	require.NoError(t, err)
	assert.Contains(t, text, "circular")
}

func TestOllamaProviderGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"the scheme covers rural households","done":true}`))
	}))
	defer server.Close()

	p, err := NewOllamaProviderFromConfig(&Config{Type: ProviderOllama, Host: server.URL})
	require.NoError(t, err)

	text, err := p.Generate(context.Background(), "describe scheme coverage", 0.2, 256)
	require.NoError(t, err)
	assert.Contains(t, text, "scheme")
}

func TestLLMRegistry(t *testing.T) {
	r := NewLLMRegistry()

	_, err := r.CreateLLMFromConfig("answer", &Config{Type: ProviderOllama, Host: "http://localhost:11434"})
	require.NoError(t, err)

	got, err := r.GetLLM("answer")
	require.NoError(t, err)
	assert.Equal(t, "llama3.1", got.GetModelName())

	_, err = r.GetLLM("missing")
	assert.Error(t, err)
}

func TestConfigValidateRequiresAPIKey(t *testing.T) {
	cfg := &Config{Type: ProviderOpenAI}
	assert.Error(t, cfg.Validate())

	cfg.APIKey = "sk-test"
	assert.NoError(t, cfg.Validate())
}
