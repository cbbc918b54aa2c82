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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreMissThenHit(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, ok := store.Get("qa", "gpt", "what is section 12")
	assert.False(t, ok)

	require.NoError(t, store.Set("qa", "gpt", "what is section 12", "Section 12 mandates free education.", time.Now()))

	got, ok := store.Get("qa", "gpt", "what is section 12")
	require.True(t, ok)
	assert.Equal(t, "Section 12 mandates free education.", got)

	stats := store.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestFileStoreKeyIsStableAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	a, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, a.Set("classification", "claude", "content", "cached response", time.Now()))

	b, err := NewFileStore(dir)
	require.NoError(t, err)
	got, ok := b.Get("classification", "claude", "content")
	require.True(t, ok)
	assert.Equal(t, "cached response", got)
}

func TestFileStoreDistinguishesTaskTypeAndModel(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("qa", "gpt", "x", "answer-a", time.Now()))
	require.NoError(t, store.Set("deep_think", "gpt", "x", "answer-b", time.Now()))

	got, ok := store.Get("qa", "gpt", "x")
	require.True(t, ok)
	assert.Equal(t, "answer-a", got)

	got, ok = store.Get("deep_think", "gpt", "x")
	require.True(t, ok)
	assert.Equal(t, "answer-b", got)
}

func TestFileStoreClearResetsStatsAndFiles(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("qa", "gpt", "x", "y", time.Now()))
	_, _ = store.Get("qa", "gpt", "x")

	require.NoError(t, store.Clear())
	stats := store.Stats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(0), stats.Misses)

	_, ok := store.Get("qa", "gpt", "x")
	assert.False(t, ok)
}

func TestFileStoreDiskUsageCountsEntriesAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	a, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, a.Set("qa", "gpt", "one", "answer-one", time.Now()))
	require.NoError(t, a.Set("qa", "gpt", "two", "answer-two", time.Now()))

	b, err := NewFileStore(dir)
	require.NoError(t, err)
	count, bytes, err := b.DiskUsage()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Positive(t, bytes)
}

func TestFileStoreEvictOlderThan(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("qa", "gpt", "old", "stale", time.Now().Add(-48*time.Hour)))
	require.NoError(t, store.Set("qa", "gpt", "new", "fresh", time.Now()))

	removed, err := store.EvictOlderThan(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, ok := store.Get("qa", "gpt", "old")
	assert.False(t, ok)
	_, ok = store.Get("qa", "gpt", "new")
	assert.True(t, ok)
}
