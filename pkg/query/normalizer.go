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
	"regexp"
	"strings"
)

// stopWords are stripped from the start/end of a query by RemoveFiller.
// They carry no retrieval signal on their own but are left in place by
// Normalize because they can still help the embedder with context.
var stopWords = map[string]struct{}{
	"tell": {}, "me": {}, "about": {}, "what": {}, "is": {}, "are": {}, "the": {},
	"a": {}, "an": {}, "please": {}, "can": {}, "you": {}, "could": {}, "would": {},
	"how": {}, "why": {}, "when": {}, "where": {}, "which": {}, "who": {}, "whom": {},
	"whose": {}, "explain": {}, "describe": {},
}

var (
	reCollapseSpace = regexp.MustCompile(`\s+`)
	reSpaceBeforePunct = regexp.MustCompile(`\s+([.,!?;:])`)
	reTrailingPunct = regexp.MustCompile(`[.,!?;:]\s*$`)
	reNonWord = regexp.MustCompile(`[^\w\s-]`)
)

// Normalizer lowercases, collapses whitespace, and trims trailing
// punctuation from a raw query without altering entity substrings beyond
// case folding.
type Normalizer struct{}

// NewNormalizer constructs a Normalizer. It holds no state.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize lowercases the query, collapses runs of whitespace, and strips
// trailing punctuation.
func (n *Normalizer) Normalize(query string) string {
	q := strings.ToLower(query)
	q = reCollapseSpace.ReplaceAllString(q, " ")
	q = strings.TrimSpace(q)
	q = reSpaceBeforePunct.ReplaceAllString(q, "$1")
	q = reTrailingPunct.ReplaceAllString(q, "")
	return q
}

// RemoveFiller strips a fixed set of leading/trailing filler words from an
// already-lowercased query, for keyword-oriented downstream use.
func (n *Normalizer) RemoveFiller(query string) string {
	words := strings.Fields(strings.ToLower(query))

	start := 0
	for start < len(words) {
		if _, ok := stopWords[words[start]]; !ok {
			break
		}
		start++
	}
	end := len(words)
	for end > start {
		if _, ok := stopWords[words[end-1]]; !ok {
			break
		}
		end--
	}
	return strings.Join(words[start:end], " ")
}

// CleanForBM25 normalizes, strips filler words, and removes punctuation,
// producing a keyword bag suitable for BM25 scoring.
func (n *Normalizer) CleanForBM25(query string) string {
	q := n.Normalize(query)
	q = n.RemoveFiller(q)
	q = reNonWord.ReplaceAllString(q, " ")
	q = reCollapseSpace.ReplaceAllString(q, " ")
	return strings.TrimSpace(q)
}
