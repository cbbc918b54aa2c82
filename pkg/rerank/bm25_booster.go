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
	"sort"
	"strings"

	"github.com/nithin8919/policyengine/pkg/retrieval"
)

type boostCategory struct {
	keywords []string
	boostFactor float64
}

// boostCategories is the exact BOOST_CATEGORIES table from
// bm25_boosting.py: keyword-heavy, embedding-light document classes that
// hybrid dense search tends to under-rank.
var boostCategories = map[string]boostCategory{
	"infrastructure": {
		keywords: []string{
			"nadu nedu", "infrastructure", "building", "classroom", "toilet",
			"drinking water", "electricity", "boundary wall", "compound wall",
			"furniture", "bench", "desk", "blackboard", "laboratory", "library",
			"playground", "sports facility", "kitchen", "ramp", "accessibility",
			"construction", "renovation", "maintenance", "repair", "tmf",
			"cctv", "security", "fire safety", "emergency exit", "sanitation",
			"hygiene", "medical room", "first aid", "compound", "fencing",
		},
		boostFactor: 1.5,
	},
	"welfare_schemes": {
		keywords: []string{
			"amma vodi", "vidya kanuka", "vidya deevena", "gorumudda",
			"mid day meal", "midday meal", "school kit", "uniform",
			"scholarship", "financial assistance", "transport scheme",
			"hostel", "residential school", "welfare scheme", "benefit",
			"incentive", "allowance", "stipend", "nutrition program",
			"health checkup", "medical assistance", "free textbook",
			"bicycle scheme", "student welfare", "social security",
		},
		boostFactor: 1.4,
	},
	"safety_compliance": {
		keywords: []string{
			"fire safety", "emergency procedure", "evacuation plan", "safety drill",
			"accident prevention", "child protection", "safety audit",
			"compliance check", "safety standard", "security protocol",
			"cctv monitoring", "visitor management", "gate security",
			"boundary security", "staff verification", "background check",
			"child safety policy", "harassment prevention", "grievance",
		},
		boostFactor: 1.3,
	},
	"technical_specifications": {
		keywords: []string{
			"specification", "technical requirement", "standard", "norm",
			"measurement", "dimension", "capacity", "quantity", "quality",
			"procurement", "tender", "supplier", "vendor", "contract",
			"rate analysis", "cost estimation", "budget allocation",
			"financial provision", "expenditure", "utilization certificate",
		},
		boostFactor: 1.2,
	},
}

var boostTriggers = []string{
	"infrastructure", "facility", "building", "construction",
	"scheme", "welfare", "benefit", "assistance",
	"safety", "security", "compliance", "standard",
	"technical", "specification", "procurement",
}

const boostScoreThreshold = 0.5

// BM25Booster boosts the WeightedScore of infrastructure/welfare/safety/
// technical-spec candidates that score above a relevance floor but are
// keyword-heavy in ways dense embeddings under-reward.
type BM25Booster struct{}

func NewBM25Booster() *BM25Booster { return &BM25Booster{} }

// ShouldBoostQuery reports whether queryText contains a trigger keyword
// that makes BM25 boosting worth computing at all.
func ShouldBoostQuery(queryText string) bool {
	q := strings.ToLower(queryText)
	for _, trigger := range boostTriggers {
		if strings.Contains(q, trigger) {
			return true
		}
	}
	return false
}

// Boost applies category boosts to candidates in place and re-sorts by
// WeightedScore descending, matching boost_results' re-sort-after-boost
// behavior. Candidates below boostScoreThreshold are left untouched.
func (b *BM25Booster) Boost(queryText string, candidates []retrieval.Candidate) []retrieval.Candidate {
	if !ShouldBoostQuery(queryText) {
		return candidates
	}

	boostTermsByCategory := extractBoostTerms(queryText)
	if len(boostTermsByCategory) == 0 {
		return candidates
	}

	for i := range candidates {
		if candidates[i].WeightedScore < boostScoreThreshold {
			continue
		}

		totalBoost := 0.0
		for category, terms := range boostTermsByCategory {
			score := retrieval.BM25Score(terms, candidates[i].Content)
			if score > 0 {
				totalBoost += score * boostCategories[category].boostFactor * 0.1
			}
		}
		if totalBoost > 0 {
			candidates[i].WeightedScore = min(candidates[i].WeightedScore+totalBoost, 1.0)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].WeightedScore > candidates[j].WeightedScore
	})
	return candidates
}

// extractBoostTerms mirrors extract_boost_terms: for each category, the
// query's own matched keywords (not the full query) become the term set
// BM25-scored against a candidate's content.
func extractBoostTerms(queryText string) map[string][]string {
	q := strings.ToLower(queryText)
	out := make(map[string][]string)
	for category, cat := range boostCategories {
		var matched []string
		for _, kw := range cat.keywords {
			if strings.Contains(q, kw) {
				matched = append(matched, retrieval.Tokenize(kw)...)
			}
		}
		if len(matched) > 0 {
			out[category] = matched
		}
	}
	return out
}
