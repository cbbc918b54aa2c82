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

var qaKeywords = []string{
	"what is", "define", "who is", "when was", "where is",
	"how many", "list", "show me", "section", "rule",
	"go number", "notification", "order", "judgment", "case",
}

var deepThinkKeywords = []string{
	"analyze", "explain in detail", "comprehensive", "deep dive",
	"policy analysis", "constitutional", "legal framework",
	"360", "holistic", "integrated", "synthesis", "implications",
	"impact", "assessment", "evaluation", "review",
}

var brainstormKeywords = []string{
	"ideas", "suggestions", "brainstorm", "innovative", "creative",
	"new approaches", "best practices", "global models", "alternatives",
	"options", "possibilities", "improvements", "recommendations",
	"international", "comparison", "benchmarking", "finland", "singapore",
}

var specificEntityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)section\s+\d+`),
	regexp.MustCompile(`(?i)article\s+\d+`),
	regexp.MustCompile(`(?i)rule\s+\d+`),
	regexp.MustCompile(`(?i)go\s*[\d-]+`),
	regexp.MustCompile(`(?i)notification\s*no`),
	regexp.MustCompile(`(?i)case\s*no`),
	regexp.MustCompile(`\d{4}\s*\(\d+\)`),
}

// ClassifierError is returned by IntentClassifier.Classify when its input
// cannot be classified at all (an empty query).
type ClassifierError struct {
	Reason string
}

func (e *ClassifierError) Error() string {
	return fmt.Sprintf("intent classifier: %s", e.Reason)
}

// IntentClassifier assigns a query one of three modes (QA / DeepThink /
// Brainstorm) using fixed keyword sets and shortcut rules. Deterministic,
// no external calls.
type IntentClassifier struct{}

// NewIntentClassifier constructs an IntentClassifier.
func NewIntentClassifier() *IntentClassifier {
	return &IntentClassifier{}
}

// Classify scores the query against the three keyword sets, applies the
// shortcut rules in order, and falls back to highest-score-wins with a
// QA > DeepThink > Brainstorm tie-break.
func (c *IntentClassifier) Classify(query string) (IntentResult, error) {
	if strings.TrimSpace(query) == "" {
		return IntentResult{}, &ClassifierError{Reason: "empty query"}
	}

	lower := strings.ToLower(query)
	qaScore := countMatches(lower, qaKeywords)
	deepScore := countMatches(lower, deepThinkKeywords)
	brainstormScore := countMatches(lower, brainstormKeywords)
	signals := normalizeSignals(lower, qaScore, deepScore, brainstormScore)

	wordCount := len(strings.Fields(lower))

	if wordCount <= 5 && qaScore > 0 {
		return IntentResult{Mode: ModeQA, Confidence: 0.9, Signals: signals}, nil
	}
	if hasSpecificEntity(lower) {
		return IntentResult{Mode: ModeQA, Confidence: 0.85, Signals: signals}, nil
	}
	if wordCount > 15 && deepScore == 0 && brainstormScore == 0 {
		return IntentResult{Mode: ModeDeepThink, Confidence: 0.7, Signals: signals}, nil
	}

	maxScore := qaScore
	if deepScore > maxScore {
		maxScore = deepScore
	}
	if brainstormScore > maxScore {
		maxScore = brainstormScore
	}
	if maxScore == 0 {
		return IntentResult{Mode: ModeQA, Confidence: 0.6, Signals: signals}, nil
	}

	// Tie-break order: QA > DeepThink > Brainstorm.
	switch {
		case qaScore == maxScore:
			return IntentResult{Mode: ModeQA, Confidence: minFloat(0.6+float64(qaScore)*0.1, 0.95), Signals: signals}, nil
		case deepScore == maxScore:
			return IntentResult{Mode: ModeDeepThink, Confidence: minFloat(0.6+float64(deepScore)*0.1, 0.95), Signals: signals}, nil
		default:
			return IntentResult{Mode: ModeBrainstorm, Confidence: minFloat(0.6+float64(brainstormScore)*0.1, 0.95), Signals: signals}, nil
	}
}

// ClassifyExplicit maps a caller-supplied mode string to a Mode with
// confidence 1.0, overriding the scored classification entirely.
func (c *IntentClassifier) ClassifyExplicit(modeStr string) (IntentResult, error) {
	switch strings.ToLower(modeStr) {
		case "qa":
			return IntentResult{Mode: ModeQA, Confidence: 1.0}, nil
		case "deep_think", "deep":
			return IntentResult{Mode: ModeDeepThink, Confidence: 1.0}, nil
		case "brainstorm", "ideate":
			return IntentResult{Mode: ModeBrainstorm, Confidence: 1.0}, nil
		default:
			return IntentResult{}, fmt.Errorf("unknown mode: %q", modeStr)
	}
}

func countMatches(lower string, keywords []string) int {
	score := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			score++
		}
	}
	return score
}

func hasSpecificEntity(lower string) bool {
	for _, re := range specificEntityPatterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

// normalizeSignals min-max normalizes the three raw scores into [0,1] and
// derives comprehensive/specificity composites used by the router and by
// dynamic top-k sizing.
func normalizeSignals(lower string, qa, deep, brainstorm int) IntentSignals {
	max := qa
	if deep > max {
		max = deep
	}
	if brainstorm > max {
		max = brainstorm
	}

	norm := func(v int) float64 {
		if max == 0 {
			return 0
		}
		return float64(v) / float64(max)
	}

	comprehensive := norm(deep)
	specificity := 0.0
	if hasSpecificEntity(lower) {
		specificity = 1.0
	}

	return IntentSignals{
		QAScore: norm(qa),
		DeepThinkScore: norm(deep),
		BrainstormScore: norm(brainstorm),
		ComprehensiveScore: comprehensive,
		SpecificityScore: specificity,
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
