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

package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/nithin8919/policyengine/pkg/llms"
	"github.com/nithin8919/policyengine/pkg/query"
	"github.com/nithin8919/policyengine/pkg/retrieval"
)

const contextContentCap = 800

// Answer is the synthesized response to a query: the generated text, the
// citation numbers it actually references, the trimmed bibliography, and a
// 0-1 confidence estimate — the "answer" block of exposed
// Response struct.
type Answer struct {
	Text string
	Citations []int
	Bibliography []Citation
	Confidence float64
}

// Composer builds the final answer from a reranked candidate pool: a
// context block (GO numbers and vertical prominently labeled per document,
// truncated per-chunk and capped at plan.MaxContextChunks chunks), a
// mode-specific prompt,
// one LLM call, then citation extraction and a confidence estimate.
//
// Grounded on answer_generator.py's generate/_format_context/
// _estimate_confidence, adapted to the query pipeline's simple
// llms.LLMProvider.Generate(prompt) signature and Candidate/Plan types.
type Composer struct {
	llm llms.LLMProvider
}

func NewComposer(llm llms.LLMProvider) *Composer {
	return &Composer{llm: llm}
}

// Compose generates an Answer for plan from candidates, which must already
// be reranked and truncated to plan.MaxContextChunks or fewer by the
// caller's pipeline stage.
func (c *Composer) Compose(ctx context.Context, plan *query.Plan, candidates []retrieval.Candidate) (Answer, error) {
	if len(candidates) == 0 {
		return Answer{Text: "I couldn't find relevant information to answer your query."}, nil
	}

	contextChunks := candidates
	if plan.MaxContextChunks > 0 && len(contextChunks) > plan.MaxContextChunks {
		contextChunks = contextChunks[:plan.MaxContextChunks]
	}

	contextText := formatContext(contextChunks)
	prompt := BuildPrompt(plan.SynthesisStyle, plan.EnhancedQuery, contextText)

	text, err := c.llm.Generate(ctx, prompt, c.llm.GetTemperature(), c.llm.GetMaxTokens())
	if err != nil {
		return Answer{Text: "I encountered an error while generating the answer."}, fmt.Errorf("answer: generation failed: %w", err)
	}

	allCitations := AddCitations(contextChunks)
	citedNumbers := ExtractCitedNumbers(text)

	var bibliography []Citation
	if plan.IncludeCitations {
		bibliography = filterCited(allCitations, citedNumbers)
	}

	return Answer{
		Text: text,
		Citations: citedNumbers,
		Bibliography: bibliography,
		Confidence: estimateConfidence(text, citedNumbers),
	}, nil
}

// formatContext renders each candidate as a numbered document block with
// its GO number, vertical, and year prominently in the header — the
// "CRITICAL FIX" from answer_generator.py's _format_context that makes GO
// numbers visible to the LLM instead of buried in free text.
func formatContext(candidates []retrieval.Candidate) string {
	var sb strings.Builder
	for i, c := range candidates {
		header := documentHeader(c, i+1)
		content := sanitizeInput(c.Content)
		suffix := ""
		if len(content) > contextContentCap {
			content = content[:contextContentCap]
			suffix = "..."
		}
		fmt.Fprintf(&sb, "\n%s\nContent: %s%s\n", header, content, suffix)
	}
	return sb.String()
}

// sanitizeInput strips prompt-injection-shaped substrings from chunk text
// before it is interpolated into the answer-composer prompt. Same
// replacement list as pkg/rerank's copy.
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

func documentHeader(c retrieval.Candidate, number int) string {
	goNumber := stringField(c.Metadata, "go_number", "")
	var label string
	if goNumber != "" {
		label = goNumber
	} else {
		label = stringField(c.Metadata, "source", c.ID)
	}

	header := fmt.Sprintf("Doc %d: %s", number, label)
	if c.Vertical != "" {
		header += fmt.Sprintf(" (%s)", c.Vertical)
	}
	if year := stringField(c.Metadata, "year", ""); year != "" {
		header += fmt.Sprintf(" - Year: %s", year)
	}
	return header
}

func filterCited(all []Citation, citedNumbers []int) []Citation {
	if len(citedNumbers) == 0 {
		return nil
	}
	want := make(map[int]bool, len(citedNumbers))
	for _, n := range citedNumbers {
		want[n] = true
	}
	var out []Citation
	for _, c := range all {
		if want[c.Number] {
			out = append(out, c)
		}
	}
	return out
}

// estimateConfidence mirrors _estimate_confidence's additive heuristic
// exactly: base 0.5, +0.3 for any citation, +0.1 for a substantial answer
// (>200 chars), +0.1 for 3+ citations, capped at 1.0.
func estimateConfidence(answerText string, citedNumbers []int) float64 {
	confidence := 0.5
	if len(citedNumbers) > 0 {
		confidence += 0.3
	}
	if len(answerText) > 200 {
		confidence += 0.1
	}
	if len(citedNumbers) >= 3 {
		confidence += 0.1
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}
