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

package query

import (
	"fmt"
	"regexp"
	"strings"
)

// Entity kind identifiers, also used as the Plan.Entities / filter map keys.
const (
	EntitySection = "section"
	EntityArticle = "article"
	EntityRule = "rule"
	EntityGONumber = "go_number"
	EntityYear = "year"
	EntityCase = "case_number"
	EntityActName = "act_name"
)

type entityPattern struct {
	re *regexp.Regexp
	normalize func(m []string) string
}

// entityPatterns mirrors the closed set of regex families from the
// original entity extractor, in match order.
var entityPatterns = map[string][]entityPattern{
	EntitySection: {
		{regexp.MustCompile(`(?i)\bsection\s+(\d+[A-Za-z]*(?:\(\d+\))?(?:\([a-z]\))?)`), firstGroup},
		{regexp.MustCompile(`(?i)\bsec\.?\s+(\d+[A-Za-z]*)`), firstGroup},
		{regexp.MustCompile(`(?i)\bs\.?\s+(\d+[A-Za-z]*)`), firstGroup},
	},
	EntityArticle: {
		{regexp.MustCompile(`(?i)\barticle\s+(\d+[A-Za-z]*)`), firstGroup},
		{regexp.MustCompile(`(?i)\bart\.?\s+(\d+[A-Za-z]*)`), firstGroup},
	},
	EntityRule: {
		{regexp.MustCompile(`(?i)\brule\s+(\d+[A-Za-z]*(?:\(\d+\))?)`), firstGroup},
		{regexp.MustCompile(`(?i)\br\.?\s+(\d+[A-Za-z]*)`), firstGroup},
	},
	EntityGONumber: {
		{regexp.MustCompile(`(?i)\bg\.?o\.?\s*(?:no\.?\s*)?(\d+)`), firstGroup},
		{regexp.MustCompile(`(?i)\bg\.?o\.?\s*ms\.?\s*no\.?\s*(\d+)`), firstGroup},
		{regexp.MustCompile(`(?i)\bnotification\s*no\.?\s*(\d+)`), firstGroup},
	},
	EntityYear: {
		{regexp.MustCompile(`\b(\d{4})-(\d{2,4})\b`), func(m []string) string { return m[1] + "-" + m[2] }},
		{regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`), firstGroup},
	},
	EntityCase: {
		{regexp.MustCompile(`(?i)\bw\.?p\.?\s*no\.?\s*(\d+)\s*of\s*(\d{4})`), caseNumber},
		{regexp.MustCompile(`(?i)\bw\.?a\.?\s*no\.?\s*(\d+)\s*of\s*(\d{4})`), caseNumber},
		{regexp.MustCompile(`(?i)\bc\.?a\.?\s*no\.?\s*(\d+)\s*of\s*(\d{4})`), caseNumber},
	},
	EntityActName: {
		{regexp.MustCompile(`(?i)\b([A-Z][A-Za-z\s]+Act(?:,?\s*\d{4})?)`), titleCase},
		{regexp.MustCompile(`(?i)\bRTE\s*Act\b`), wholeMatch},
		{regexp.MustCompile(`(?i)\bRight\s*to\s*Education\s*Act\b`), wholeMatch},
	},
}

// entityOrder fixes the iteration order used by Extract and BuildEntityString,
// matching the original extractor's dict-insertion order.
var entityOrder = []string{EntitySection, EntityArticle, EntityRule, EntityGONumber, EntityYear, EntityCase, EntityActName}

func firstGroup(m []string) string { return m[1] }
func wholeMatch(m []string) string { return m[0] }
func caseNumber(m []string) string { return fmt.Sprintf("%s/%s", m[1], m[2]) }
func titleCase(m []string) string { return titleCaseWords(m[1]) }

// titleCaseWords upper-cases the first letter of every space-separated
// word, leaving the rest lower-cased.
func titleCaseWords(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// EntityExtractor pulls structured references (section numbers, GO numbers,
// years, case numbers, act names) out of a query using a closed set of
// regex families. It holds no state and is safe for concurrent use.
type EntityExtractor struct{}

// NewEntityExtractor constructs an EntityExtractor.
func NewEntityExtractor() *EntityExtractor {
	return &EntityExtractor{}
}

// Extract returns, for each entity kind with at least one match, the
// ordered list of occurrences found in the query. Occurrences are kept in
// match order and are not deduplicated here; callers that need a filter
// value set should dedupe via Values.
func (e *EntityExtractor) Extract(q string) map[string][]Entity {
	out := make(map[string][]Entity)
	for _, kind := range entityOrder {
		var found []Entity
		for _, p := range entityPatterns[kind] {
			for _, loc := range p.re.FindAllStringSubmatchIndex(q, -1) {
				groups := submatchStrings(q, loc)
				found = append(found, Entity{
					Kind: kind,
					Raw: groups[0],
					Normalized: p.normalize(groups),
					Start: loc[0],
					End: loc[1],
				})
			}
		}
		if len(found) > 0 {
			out[kind] = found
		}
	}
	return out
}

func submatchStrings(s string, loc []int) []string {
	groups := make([]string, len(loc)/2)
	for i := range groups {
		start, end := loc[2*i], loc[2*i+1]
		if start < 0 || end < 0 {
			continue
		}
		groups[i] = s[start:end]
	}
	return groups
}

// Values returns the normalized values for an entity kind, in match order,
// without deduplicating.
func (e *EntityExtractor) Values(entities map[string][]Entity, kind string) []string {
	list := entities[kind]
	if len(list) == 0 {
		return nil
	}
	out := make([]string, len(list))
	for i, en := range list {
		out[i] = en.Normalized
	}
	return out
}

// UniqueValues returns the normalized values for an entity kind,
// deduplicated, preserving first-seen order. Used when building Plan
// filters, where duplicate occurrences of the same normalized value must
// collapse to one filter entry.
func (e *EntityExtractor) UniqueValues(entities map[string][]Entity, kind string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, v := range e.Values(entities, kind) {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Has reports whether an entity kind was found.
func (e *EntityExtractor) Has(entities map[string][]Entity, kind string) bool {
	return len(entities[kind]) > 0
}

// BuildEntityString renders the entity set as a short appendable string
// like "Section 12 GO 123 Year 2020", used by the planner to boost entity
// terms in the enhanced query.
func (e *EntityExtractor) BuildEntityString(entities map[string][]Entity) string {
	var parts []string
	for _, kind := range []string{EntitySection, EntityArticle, EntityRule, EntityGONumber, EntityYear} {
		values := e.UniqueValues(entities, kind)
		if len(values) == 0 {
			continue
		}
		label := titleCaseWords(strings.ReplaceAll(kind, "_", " "))
		parts = append(parts, fmt.Sprintf("%s %s", label, strings.Join(values, ", ")))
	}
	return strings.Join(parts, " ")
}
