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

package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/nithin8919/policyengine/pkg/llms"
)

// GenerateHypotheticalDocument implements HyDE query expansion: instead of
// embedding the raw query, an LLM first writes a short hypothetical answer,
// and that answer's embedding is searched against. Built against the simple
// llms.LLMProvider.Generate(ctx, prompt, temperature, maxTokens) signature
// this retrieval core uses rather than a chat-message API. Falls back to
// the original query on any LLM failure so a misbehaving expansion step
// never blocks retrieval.
func GenerateHypotheticalDocument(ctx context.Context, llm llms.LLMProvider, queryText string) string {
	if llm == nil {
		return queryText
	}
	prompt := fmt.Sprintf(
		"Write a concise, hypothetical document that would be highly relevant to answer the following query: %q\n\n"+
		"The document should be brief and directly address the core of the query.",
		queryText,
	)
	doc, err := llm.Generate(ctx, prompt, 0.3, 256)
	if err != nil || strings.TrimSpace(doc) == "" {
		return queryText
	}
	return doc
}

// GenerateQueryVariations implements multi-query expansion: an LLM paraphrases
// the query into n alternative phrasings, each searched independently and
// merged by the caller using a kept-max score on duplicate IDs. Falls back
// to just the original query on LLM failure or an empty/malformed response.
func GenerateQueryVariations(ctx context.Context, llm llms.LLMProvider, queryText string, n int) []string {
	if llm == nil || n <= 0 {
		return []string{queryText}
	}
	prompt := fmt.Sprintf(
		"Generate %d alternative phrasings of the following search query, one per line, "+
		"with no numbering or extra commentary: %q",
		n, queryText,
	)
	response, err := llm.Generate(ctx, prompt, 0.5, 256)
	if err != nil || strings.TrimSpace(response) == "" {
		return []string{queryText}
	}

	variations := []string{queryText}
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		variations = append(variations, line)
		if len(variations) > n {
			break
		}
	}
	return variations
}
