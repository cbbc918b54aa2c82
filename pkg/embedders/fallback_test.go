package embedders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedderDeterministic(t *testing.T) {
	e := NewHashEmbedder(64)

	v1, err := e.Embed(context.Background(), "ministry of education circular")
	require.NoError(t, err)
	v2, err := e.Embed(context.Background(), "ministry of education circular")
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Len(t, v1, 64)
}

func TestHashEmbedderDistinctInputs(t *testing.T) {
	e := NewHashEmbedder(32)

	v1, err := e.Embed(context.Background(), "scheme eligibility")
	require.NoError(t, err)
	v2, err := e.Embed(context.Background(), "assessment rubric")
	require.NoError(t, err)

	assert.NotEqual(t, v1, v2)
}

func TestNewProviderDefaultsToHash(t *testing.T) {
	p, err := NewProvider(nil)
	require.NoError(t, err)
	assert.Equal(t, "hash-fallback", p.GetModelName())
	assert.Equal(t, 768, p.GetDimension())
}

func TestProviderConfigValidate(t *testing.T) {
	cfg := &ProviderConfig{Type: ProviderOpenAI}
	err := cfg.Validate()
	assert.Error(t, err)

	cfg.APIKey = "sk-test"
	assert.NoError(t, cfg.Validate())
}

func TestEmbedderRegistry(t *testing.T) {
	r := NewEmbedderRegistry()
	cfg := &ProviderConfig{Type: ProviderHash, Dimension: 16}

	_, err := r.CreateEmbedderFromConfig("fast", cfg)
	require.NoError(t, err)

	got, err := r.GetEmbedder("fast")
	require.NoError(t, err)
	assert.Equal(t, 16, got.GetDimension())

	_, err = r.GetEmbedder("missing")
	assert.Error(t, err)
}
