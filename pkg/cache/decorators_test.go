// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLLM struct {
	calls int
	response string
	err error
}

func (c *countingLLM) Generate(context.Context, string, float64, int) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}
func (c *countingLLM) GetModelName() string { return "counting-model" }
func (c *countingLLM) GetMaxTokens() int { return 256 }
func (c *countingLLM) GetTemperature() float64 { return 0 }
func (c *countingLLM) Close() error { return nil }

func TestCachedLLMHitsMemoryOnSecondCall(t *testing.T) {
	inner := &countingLLM{response: "cached answer"}
	cached := NewCachedLLM(inner, nil, 16, "qa")

	first, err := cached.Generate(context.Background(), "what is section 12", 0, 256)
	require.NoError(t, err)
	second, err := cached.Generate(context.Background(), "what is section 12", 0, 256)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls, "second call should be served from the memory cache, not the inner provider")
}

func TestCachedLLMSurvivesAcrossInstancesViaDisk(t *testing.T) {
	disk, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	inner := &countingLLM{response: "disk-backed answer"}
	first := NewCachedLLM(inner, disk, 16, "qa")
	_, err = first.Generate(context.Background(), "prompt", 0, 256)
	require.NoError(t, err)

	second := NewCachedLLM(inner, disk, 16, "qa")
	resp, err := second.Generate(context.Background(), "prompt", 0, 256)
	require.NoError(t, err)
	assert.Equal(t, "disk-backed answer", resp)
	assert.Equal(t, 1, inner.calls, "a fresh instance should hit disk before calling the inner provider")
}

func TestCachedLLMDoesNotCacheErrors(t *testing.T) {
	inner := &countingLLM{err: errors.New("rate limited")}
	cached := NewCachedLLM(inner, nil, 16, "qa")

	_, err := cached.Generate(context.Background(), "prompt", 0, 256)
	require.Error(t, err)
	_, err = cached.Generate(context.Background(), "prompt", 0, 256)
	require.Error(t, err)
	assert.Equal(t, 2, inner.calls, "errors must not be cached")
}

type countingEmbedder struct {
	calls int
	vec []float32
}

func (c *countingEmbedder) Embed(context.Context, string) ([]float32, error) {
	c.calls++
	return c.vec, nil
}
func (c *countingEmbedder) GetDimension() int { return len(c.vec) }
func (c *countingEmbedder) GetModelName() string { return "counting-embedder" }
func (c *countingEmbedder) Close() error { return nil }

func TestCachedEmbedderHitsMemoryOnSecondCall(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	cached := NewCachedEmbedder(inner, nil, 16)

	first, err := cached.Embed(context.Background(), "teacher recruitment norms")
	require.NoError(t, err)
	second, err := cached.Embed(context.Background(), "teacher recruitment norms")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, int64(1), cached.Hits())
}

func TestCachedEmbedderDistinctTextsMissIndependently(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{0.1}}
	cached := NewCachedEmbedder(inner, nil, 16)

	_, err := cached.Embed(context.Background(), "query a")
	require.NoError(t, err)
	_, err = cached.Embed(context.Background(), "query b")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedEmbedderSurvivesAcrossInstancesViaDisk(t *testing.T) {
	disk, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	inner := &countingEmbedder{vec: []float32{0.4, 0.5}}
	first := NewCachedEmbedder(inner, disk, 16)
	_, err = first.Embed(context.Background(), "toilet construction norms")
	require.NoError(t, err)

	second := NewCachedEmbedder(inner, disk, 16)
	vec, err := second.Embed(context.Background(), "toilet construction norms")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.4, 0.5}, vec)
	assert.Equal(t, 1, inner.calls, "a fresh instance should hit disk before calling the inner provider")
}
