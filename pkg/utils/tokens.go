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

package utils

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter counts tokens against a model's actual tokenizer instead of
// guessing from character counts. The answer composer does not use it.
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
	model string
	mu sync.RWMutex
}

var (
	encodingCache = make(map[string]*tiktoken.Tiktoken)
	cacheMu sync.RWMutex
)

// NewTokenCounter builds a counter for model, falling back to cl100k_base
// when the model has no known tiktoken encoding (e.g. a non-OpenAI model
// name passed straight from llms.Config.Model).
func NewTokenCounter(model string) (*TokenCounter, error) {
	cacheMu.RLock()
	cached, exists := encodingCache[model]
	cacheMu.RUnlock()
	if exists {
		return &TokenCounter{encoding: cached, model: model}, nil
	}

	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("failed to get encoding: %w", err)
		}
	}

	cacheMu.Lock()
	encodingCache[model] = encoding
	cacheMu.Unlock()

	return &TokenCounter{encoding: encoding, model: model}, nil
}

// Count returns the token count of text under this counter's encoding.
func (tc *TokenCounter) Count(text string) int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return len(tc.encoding.Encode(text, nil, nil))
}

// GetModel returns the model name this counter is configured for.
func (tc *TokenCounter) GetModel() string {
	return tc.model
}

// FitTextsWithinBudget returns the prefix of texts (in order) whose combined
// token count stays within maxTokens, stopping before the first text that
// would overflow it.
func (tc *TokenCounter) FitTextsWithinBudget(texts []string, maxTokens int) []string {
	fitted := make([]string, 0, len(texts))
	used := 0
	for _, text := range texts {
		n := tc.Count(text)
		if used+n > maxTokens {
			break
		}
		fitted = append(fitted, text)
		used += n
	}
	return fitted
}

// EstimateTokens gives a character-count-based estimate for call sites that
// don't have a model name to build an exact TokenCounter from.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// GetEncodingForModel maps a model name to its tiktoken encoding name,
// covering the OpenAI families plus the non-OpenAI models this module's
// llms providers support, which tiktoken-go has no native mapping for.
func GetEncodingForModel(model string) string {
	encodingMap := map[string]string{
		"gpt-4": "cl100k_base",
		"gpt-4-turbo": "cl100k_base",
		"gpt-4o": "o200k_base",
		"gpt-4o-mini": "o200k_base",
		"gpt-3.5-turbo": "cl100k_base",
		"text-embedding-ada": "cl100k_base",
		"claude": "cl100k_base",
		"claude-3": "cl100k_base",
		"claude-3-opus": "cl100k_base",
		"claude-3-5-sonnet": "cl100k_base",
		"gemini": "cl100k_base",
		"gemini-pro": "cl100k_base",
		"gemini-1.5-pro": "cl100k_base",
		"gemini-2.0-flash-exp": "cl100k_base",
	}

	if encoding, ok := encodingMap[model]; ok {
		return encoding
	}
	for prefix, encoding := range encodingMap {
		if len(model) >= len(prefix) && model[:len(prefix)] == prefix {
			return encoding
		}
	}
	return "cl100k_base"
}
