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
	"math"
	"regexp"
	"strings"
)

// BM25 parameters shared by hybrid-fusion scoring and the separate
// BM25-boosting stage. Values match the original
// bm25_boosting.py constants.
const (
	bm25K1 = 1.2
	bm25B = 0.75
	bm25DefaultAvgDL = 100
	bm25DefaultTotal = 1000
	bm25DefaultDocFreq = 1
)

var tokenPattern = regexp.MustCompile(`\w+`)

// Tokenize lowercases and splits text into word tokens, matching the
// original `re.findall(r"\w+", text.lower())`.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// BM25Score computes the (unnormalized) Okapi BM25 score of a document
// against a set of query terms. Corpus statistics (document frequency,
// average document length, total document count) are rarely available to a
// stateless retriever, so it falls back to fixed defaults (df=1, avg_dl=100,
// total_docs=1000) when the caller has no better estimate.
func BM25Score(queryTerms []string, documentText string) float64 {
	if len(queryTerms) == 0 || documentText == "" {
		return 0
	}
	docTokens := Tokenize(documentText)
	docLength := len(docTokens)
	if docLength == 0 {
		return 0
	}

	counts := make(map[string]int, len(docTokens))
	for _, t := range docTokens {
		counts[t]++
	}

	idf := math.Log((bm25DefaultTotal-bm25DefaultDocFreq+0.5)/(bm25DefaultDocFreq+0.5) + 1.0)

	var score float64
	for _, term := range queryTerms {
		tf := counts[strings.ToLower(term)]
		if tf == 0 {
			continue
		}
		termScore := idf * (float64(tf) * (bm25K1 + 1)) /
		(float64(tf) + bm25K1*(1-bm25B+bm25B*float64(docLength)/bm25DefaultAvgDL))
		score += termScore
	}
	return score
}

// NormalizeBM25 maps a raw BM25 score into roughly [0, 1] for fusion with a
// cosine-similarity dense score, using a fixed saturation point rather than
// a per-query max (the retriever scores one vertical at a time and has no
// stable corpus-wide maximum to normalize against).
func NormalizeBM25(raw float64) float64 {
	const saturation = 10.0
	if raw <= 0 {
		return 0
	}
	n := raw / saturation
	if n > 1 {
		n = 1
	}
	return n
}
