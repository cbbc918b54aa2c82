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

// Package answer composes the final response from a reranked candidate
// pool: building the per-mode prompt, calling the LLM, and attaching
// numbered citations and a bibliography.
package answer

import (
	"fmt"
	"strings"

	"github.com/nithin8919/policyengine/pkg/query"
	"github.com/nithin8919/policyengine/pkg/retrieval"
)

// Citation is one bibliography entry, numbered in the order its source
// chunk appears in the context block.
type Citation struct {
	Number int
	Text string
	Source string
	Vertical query.Vertical
	URL string
	Year string
}

// AddCitations numbers candidates in order and builds their bibliography
// entries, mirroring CitationManager.add_citations for the "numbered"
// format (the only format the query pipeline's prompts use — never
// asks for footnote or author-year style).
func AddCitations(candidates []retrieval.Candidate) []Citation {
	citations := make([]Citation, len(candidates))
	for i, c := range candidates {
		citations[i] = buildCitation(c, i+1)
	}
	return citations
}

func buildCitation(c retrieval.Candidate, number int) Citation {
	source := stringField(c.Metadata, "source", "Unknown Source")
	year := stringField(c.Metadata, "year", "")

	var text string
	switch c.Vertical {
		case query.VerticalLegal:
			text = formatCitation(source, fieldWithLabel("Section", stringField(c.Metadata, "section_number", "")), year)
		case query.VerticalGO:
			goNumber := stringField(c.Metadata, "go_number", "")
			var parts []string
			if goNumber != "" {
				parts = append(parts, "G.O. Ms. No. "+goNumber)
			}
			parts = append(parts, source)
			text = joinCitationParts(parts, year)
		case query.VerticalJudicial:
			caseNumber := stringField(c.Metadata, "case_number", "")
			var parts []string
			if caseNumber != "" {
				parts = append(parts, caseNumber)
			}
			parts = append(parts, source)
			text = joinCitationParts(parts, year)
		default:
			text = formatCitation(source, "", year)
	}

	return Citation{
		Number: number,
		Text: text,
		Source: source,
		Vertical: c.Vertical,
		URL: stringField(c.Metadata, "url", ""),
		Year: year,
	}
}

func formatCitation(source, extra, year string) string {
	parts := []string{source}
	if extra != "" {
		parts = append(parts, extra)
	}
	return joinCitationParts(parts, year)
}

func fieldWithLabel(label, value string) string {
	if value == "" {
		return ""
	}
	return label + " " + value
}

func joinCitationParts(parts []string, year string) string {
	if year != "" {
		parts = append(parts, "("+year+")")
	}
	return strings.Join(parts, ", ")
}

func stringField(metadata map[string]any, key, fallback string) string {
	if metadata == nil {
		return fallback
	}
	if v, ok := metadata[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// InlineMarker returns the "[N]" inline citation marker for a citation
// number, the format synthesis prompts instruct the LLM to use.
func InlineMarker(number int) string {
	return fmt.Sprintf("[%d]", number)
}

// ExtractCitedNumbers scans generated text for "[N]" markers and returns
// the distinct citation numbers actually referenced, in first-appearance
// order, so the bibliography can be trimmed to sources the answer cites.
func ExtractCitedNumbers(text string) []int {
	var out []int
	seen := make(map[int]bool)
	for i := 0; i < len(text); i++ {
		if text[i] != '[' {
			continue
		}
		end := strings.IndexByte(text[i:], ']')
		if end == -1 {
			break
		}
		numStr := text[i+1 : i+end]
		n, ok := parsePositiveInt(numStr)
		if !ok {
			continue
		}
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
		i += end
	}
	return out
}

func parsePositiveInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// BuildBibliography renders the bibliography section in the "## References"
// format, mirroring build_bibliography_section.
func BuildBibliography(citations []Citation) string {
	if len(citations) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("## References\n")
	for _, c := range citations {
		fmt.Fprintf(&sb, "\n%d. %s", c.Number, c.Text)
	}
	return sb.String()
}
