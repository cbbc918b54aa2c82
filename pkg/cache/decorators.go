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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/nithin8919/policyengine/pkg/embedders"
	"github.com/nithin8919/policyengine/pkg/llms"
)

// CachedLLM wraps an llms.LLMProvider with a two-tier cache: an
// in-memory LRU for the hottest prompts and a FileStore for
// process-restart durability, keyed on (task_type, model, prompt) the
// way the original ingestion cache keys on (task_type, model,
// content). Wrapping at the llms.LLMProvider boundary means
// pkg/answer's Composer never has to know caching exists.
type CachedLLM struct {
	inner llms.LLMProvider
	disk *FileStore
	memory *lru.Cache[string, string]
	taskType string
	now func() time.Time
	hits int64
}

// NewCachedLLM wraps inner with a memory-entries-capped LRU backed by
// disk for persistence. now defaults to time.Now if nil.
func NewCachedLLM(inner llms.LLMProvider, disk *FileStore, memoryEntries int, taskType string) *CachedLLM {
	if memoryEntries <= 0 {
		memoryEntries = 256
	}
	memory, _ := lru.New[string, string](memoryEntries)
	return &CachedLLM{inner: inner, disk: disk, memory: memory, taskType: taskType, now: time.Now}
}

func (c *CachedLLM) Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	key := memoryKey(c.taskType, c.inner.GetModelName(), prompt)
	if cached, ok := c.memory.Get(key); ok {
		atomic.AddInt64(&c.hits, 1)
		return cached, nil
	}
	if c.disk != nil {
		if cached, ok := c.disk.Get(c.taskType, c.inner.GetModelName(), prompt); ok {
			c.memory.Add(key, cached)
			atomic.AddInt64(&c.hits, 1)
			return cached, nil
		}
	}

	response, err := c.inner.Generate(ctx, prompt, temperature, maxTokens)
	if err != nil {
		return "", err
	}

	c.memory.Add(key, response)
	if c.disk != nil {
		_ = c.disk.Set(c.taskType, c.inner.GetModelName(), prompt, response, c.now())
	}
	return response, nil
}

func (c *CachedLLM) GetModelName() string { return c.inner.GetModelName() }
func (c *CachedLLM) GetMaxTokens() int { return c.inner.GetMaxTokens() }
func (c *CachedLLM) GetTemperature() float64 { return c.inner.GetTemperature() }
func (c *CachedLLM) Close() error { return c.inner.Close() }

// Hits returns the cumulative number of cache hits (memory or disk)
// served since this wrapper was created.
func (c *CachedLLM) Hits() int64 { return atomic.LoadInt64(&c.hits) }

var _ llms.LLMProvider = (*CachedLLM)(nil)

// CachedEmbedder wraps an embedders.EmbedderProvider with a two-tier
// cache: an in-memory LRU of text->vector for the common case, backed
// by a FileStore so embeddings survive a process restart. Grounded on
// the same cache-the-deterministic-output shape as CachedLLM, adapted
// to a single-vector Embed call instead of a batch API.
type CachedEmbedder struct {
	inner embedders.EmbedderProvider
	disk *FileStore
	cache *lru.Cache[string, []float32]
	hits int64
}

func NewCachedEmbedder(inner embedders.EmbedderProvider, disk *FileStore, size int) *CachedEmbedder {
	if size <= 0 {
		size = 1000
	}
	cache, _ := lru.New[string, []float32](size)
	return &CachedEmbedder{inner: inner, disk: disk, cache: cache}
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := memoryKey("embed", c.inner.GetModelName(), text)
	if vec, ok := c.cache.Get(key); ok {
		atomic.AddInt64(&c.hits, 1)
		return vec, nil
	}
	if c.disk != nil {
		if encoded, ok := c.disk.Get("embed", c.inner.GetModelName(), text); ok {
			var vec []float32
			if err := json.Unmarshal([]byte(encoded), &vec); err == nil {
				c.cache.Add(key, vec)
				atomic.AddInt64(&c.hits, 1)
				return vec, nil
			}
		}
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, vec)
	if c.disk != nil {
		if encoded, err := json.Marshal(vec); err == nil {
			_ = c.disk.Set("embed", c.inner.GetModelName(), text, string(encoded), time.Now())
		}
	}
	return vec, nil
}

func (c *CachedEmbedder) GetDimension() int { return c.inner.GetDimension() }
func (c *CachedEmbedder) GetModelName() string { return c.inner.GetModelName() }
func (c *CachedEmbedder) Close() error { return c.inner.Close() }

// Hits returns the cumulative number of cache hits served since this
// wrapper was created.
func (c *CachedEmbedder) Hits() int64 { return atomic.LoadInt64(&c.hits) }

var _ embedders.EmbedderProvider = (*CachedEmbedder)(nil)

func memoryKey(taskType, model, content string) string {
	sum := sha256.Sum256([]byte(taskType + ":" + model + ":" + content))
	return hex.EncodeToString(sum[:])
}
