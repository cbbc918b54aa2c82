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

package main

import (
	"fmt"

	"github.com/nithin8919/policyengine/pkg/cache"
)

// CacheCmd inspects or clears the on-disk LLM/embedding cache described
// in It operates directly on the configured cache directories
// without constructing a full Engine, since no provider credentials are
// needed to read or delete cache files.
type CacheCmd struct {
	Stats CacheStatsCmd `cmd:"" help:"Show entry counts and on-disk size of the LLM and embedding caches."`
	Clear CacheClearCmd `cmd:"" help:"Remove all cached entries."`
}

type CacheStatsCmd struct{}

func (c *CacheStatsCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	cfg.Cache.SetDefaults()

	llmStore, err := cache.NewFileStore(cfg.Cache.LLMDir)
	if err != nil {
		return fmt.Errorf("open llm cache: %w", err)
	}
	embedStore, err := cache.NewFileStore(cfg.Cache.EmbeddingDir)
	if err != nil {
		return fmt.Errorf("open embedding cache: %w", err)
	}

	llmCount, llmBytes, err := llmStore.DiskUsage()
	if err != nil {
		return fmt.Errorf("read llm cache: %w", err)
	}
	embedCount, embedBytes, err := embedStore.DiskUsage()
	if err != nil {
		return fmt.Errorf("read embedding cache: %w", err)
	}

	fmt.Printf("llm cache: dir=%s entries=%d bytes=%d\n", cfg.Cache.LLMDir, llmCount, llmBytes)
	fmt.Printf("embedding cache: dir=%s entries=%d bytes=%d\n", cfg.Cache.EmbeddingDir, embedCount, embedBytes)
	return nil
}

type CacheClearCmd struct {
	Target string `help:"Which cache to clear: llm, embedding, or all." default:"all" enum:"llm,embedding,all"`
}

func (c *CacheClearCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	cfg.Cache.SetDefaults()

	if c.Target == "llm" || c.Target == "all" {
		store, err := cache.NewFileStore(cfg.Cache.LLMDir)
		if err != nil {
			return fmt.Errorf("open llm cache: %w", err)
		}
		if err := store.Clear(); err != nil {
			return fmt.Errorf("clear llm cache: %w", err)
		}
		fmt.Printf("cleared llm cache: %s\n", cfg.Cache.LLMDir)
	}
	if c.Target == "embedding" || c.Target == "all" {
		store, err := cache.NewFileStore(cfg.Cache.EmbeddingDir)
		if err != nil {
			return fmt.Errorf("open embedding cache: %w", err)
		}
		if err := store.Clear(); err != nil {
			return fmt.Errorf("clear embedding cache: %w", err)
		}
		fmt.Printf("cleared embedding cache: %s\n", cfg.Cache.EmbeddingDir)
	}
	return nil
}
