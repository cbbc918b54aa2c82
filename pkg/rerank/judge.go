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

package rerank

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/nithin8919/policyengine/pkg/llms"
	"github.com/nithin8919/policyengine/pkg/retrieval"
)

// LLMJudge asks an LLM to rank a candidate window by relevance and
// rescores by position, the same prompt-build/parse/rescore shape as
// pkg/context/reranking's LLMReranker, adapted to the query pipeline's
// single-shot llms.LLMProvider.Generate(prompt) signature.
type LLMJudge struct {
	llm llms.LLMProvider
}

func NewLLMJudge(llm llms.LLMProvider) *LLMJudge {
	return &LLMJudge{llm: llm}
}

// Rescore reorders window by LLM-judged relevance to queryText, assigning
// new WeightedScores by rank position: 1.0 for first, -0.05 per position,
// floored at 0.1.
func (j *LLMJudge) Rescore(ctx context.Context, queryText string, window []retrieval.Candidate) ([]retrieval.Candidate, error) {
	if len(window) == 0 {
		return window, nil
	}

	prompt := buildJudgePrompt(queryText, window)
	response, err := j.llm.Generate(ctx, prompt, 0.0, 512)
	if err != nil {
		return nil, fmt.Errorf("rerank: llm judge call failed: %w", err)
	}

	ids := parseJudgeResponse(response)
	if len(ids) == 0 {
		return window, nil
	}

	byID := make(map[string]retrieval.Candidate, len(window))
	for _, c := range window {
		byID[c.ID] = c
	}

	seen := make(map[string]bool, len(ids))
	rescored := make([]retrieval.Candidate, 0, len(window))
	for i, id := range ids {
		c, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		score := 1.0 - float64(i)*0.05
		if score < 0.1 {
			score = 0.1
		}
		c.WeightedScore = score
		rescored = append(rescored, c)
	}
	for _, c := range window {
		if !seen[c.ID] {
			rescored = append(rescored, c)
		}
	}

	sort.SliceStable(rescored, func(i, k int) bool {
		return rescored[i].WeightedScore > rescored[k].WeightedScore
	})
	return rescored, nil
}

func buildJudgePrompt(queryText string, window []retrieval.Candidate) string {
	var sb strings.Builder
	sb.WriteString("You are a search result reranking system. Score and order the results below by relevance to the query. Return a JSON array of result IDs, most relevant first.\n\n")
	sb.WriteString("Query: ")
	sb.WriteString(sanitizeInput(queryText))
	sb.WriteString("\n\nResults:\n")
	for i, c := range window {
		content := c.Content
		if len(content) > 500 {
			content = content[:500] + "..."
		}
		fmt.Fprintf(&sb, "Result %d (ID: %s): %s\n", i+1, c.ID, sanitizeInput(content))
	}
	sb.WriteString("\nReturn only a JSON array, e.g. [\"id1\", \"id2\"]. Exclude irrelevant results.\n")
	return sb.String()
}

func parseJudgeResponse(response string) []string {
	response = strings.TrimSpace(response)
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start == -1 || end == -1 || start >= end {
		return nil
	}
	jsonStr := response[start : end+1]

	var ids []string
	if err := json.Unmarshal([]byte(jsonStr), &ids); err == nil {
		return ids
	}
	jsonStr = strings.ReplaceAll(jsonStr, "'", "\"")
	if err := json.Unmarshal([]byte(jsonStr), &ids); err == nil {
		return ids
	}
	return extractIDsManually(response)
}

func extractIDsManually(response string) []string {
	var ids []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.Contains(line, "\""):
			parts := strings.Split(line, "\"")
			for i := 1; i < len(parts); i += 2 {
				if parts[i] != "" {
					ids = append(ids, parts[i])
				}
			}
		case strings.Contains(line, "'"):
			parts := strings.Split(line, "'")
			for i := 1; i < len(parts); i += 2 {
				if parts[i] != "" {
					ids = append(ids, parts[i])
				}
			}
		}
	}
	return ids
}

// sanitizeInput strips prompt-injection-shaped substrings from text headed
// into an LLM prompt.
func sanitizeInput(input string) string {
	s := input
	for _, old := range []string{
		"SYSTEM:", "System:", "system:",
		"ASSISTANT:", "Assistant:", "assistant:",
		"USER:", "User:", "user:",
		"Ignore previous instructions", "ignore previous instructions",
		"Ignore all previous", "ignore all previous",
		"Disregard previous", "disregard previous",
		"---", "===", "***", "```",
	} {
		s = strings.ReplaceAll(s, old, "")
	}
	return strings.TrimSpace(s)
}
