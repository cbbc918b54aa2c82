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
	"strings"

	"github.com/nithin8919/policyengine/pkg/query"
	"github.com/nithin8919/policyengine/pkg/retrieval"
)

// categoryIndicators is the exact CATEGORY_INDICATORS keyword table from
// diversity_reranker.py, one entry per query.Category.
var categoryIndicators = map[query.Category][]string{
	query.CategoryAccess: {
		"admission", "enrollment", "dropout", "out-of-school", "inclusion",
		"girl child education", "sc st", "minority", "disabled", "cwsn",
		"school mapping", "catchment", "distance norm", "equity", "access",
	},
	query.CategoryInfrastructure: {
		"nadu nedu", "infrastructure", "building", "classroom", "toilet",
		"drinking water", "electricity", "playground", "library", "laboratory",
		"kitchen", "boundary wall", "ramp", "cctv", "fire safety", "tmf",
		"maintenance", "construction", "facility", "sanitation",
	},
	query.CategoryGovernance: {
		"administration", "governance", "management", "inspection", "monitoring",
		"supervision", "compliance", "regulation", "deo", "meo", "diet",
		"scert", "rjd", "cce coordinator", "headmaster", "principal",
		"district collector", "authority", "responsibility", "oversight",
	},
	query.CategoryWelfare: {
		"amma vodi", "vidya kanuka", "vidya deevena", "gorumudda",
		"mid day meal", "midday meal", "school kit", "uniform", "scholarship",
		"financial assistance", "transport", "hostel", "residential school",
		"welfare scheme", "benefit", "incentive", "nutrition",
	},
	query.CategoryCurriculum: {
		"curriculum", "syllabus", "textbook", "subject", "course", "content",
		"learning material", "digital content", "e-content", "pedagogy",
		"teaching method", "learning outcome", "competency", "fln",
		"foundational literacy", "lesson plan", "activity",
	},
	query.CategoryAssessment: {
		"assessment", "evaluation", "examination", "test", "cce",
		"continuous comprehensive evaluation", "grading", "marking",
		"progress tracking", "learning assessment", "achievement",
		"performance", "result", "pass", "fail", "promotion", "scoring",
	},
	query.CategoryTeacher: {
		"teacher", "teaching", "faculty", "staff", "recruitment", "appointment",
		"transfer", "posting", "training", "capacity building",
		"professional development", "in-service", "pre-service",
		"teacher education", "b.ed", "tet", "dsc", "educator",
	},
}

// CoverageReport mirrors get_category_coverage_report's shape.
type CoverageReport struct {
	Query string
	PredictedCategories []query.Category
	TotalResults int
	CategoryCoverage map[query.Category]CategoryCoverageEntry
	MissingCategories []query.Category
	CoverageScore float64
}

type CategoryCoverageEntry struct {
	ResultCount int
	Covered bool
}

type categorized struct {
	candidate retrieval.Candidate
	categories []query.Category
}

func classify(candidates []retrieval.Candidate, predicted []query.Category) []categorized {
	out := make([]categorized, len(candidates))
	for i, c := range candidates {
		content := strings.ToLower(c.Content)
		var cats []query.Category
		for _, cat := range predicted {
			for _, kw := range categoryIndicators[cat] {
				if strings.Contains(content, kw) {
					cats = append(cats, cat)
					break
				}
			}
		}
		if len(cats) == 0 && len(predicted) > 0 {
			cats = []query.Category{predicted[0]}
		}
		out[i] = categorized{candidate: c, categories: cats}
	}
	return out
}

func groupByCategory(items []categorized) map[query.Category][]categorized {
	groups := make(map[query.Category][]categorized)
	for _, item := range items {
		for _, cat := range item.categories {
			groups[cat] = append(groups[cat], item)
		}
	}
	return groups
}

// DiversityCoverageEnforcer implements the two-pass mandatory-coverage then
// relevance/diversity-fill selection from diversity_reranker.py's
// rerank_with_diversity: first guarantee minPerCategory results for every
// predicted category, then fill remaining slots by a blended
// relevance/diversity score.
type DiversityCoverageEnforcer struct {
	MinPerCategory int
	DiversityWeight float64
}

func NewDiversityCoverageEnforcer(minPerCategory int, diversityWeight float64) *DiversityCoverageEnforcer {
	if minPerCategory <= 0 {
		minPerCategory = 1
	}
	if diversityWeight <= 0 {
		diversityWeight = 0.4
	}
	return &DiversityCoverageEnforcer{MinPerCategory: minPerCategory, DiversityWeight: diversityWeight}
}

func (e *DiversityCoverageEnforcer) Enforce(candidates []retrieval.Candidate, predicted []query.Category, topK int) []retrieval.Candidate {
	if len(candidates) == 0 || topK <= 0 {
		return nil
	}

	items := classify(candidates, predicted)
	groups := groupByCategory(items)

	usedIDs := make(map[string]bool)
	var selected []retrieval.Candidate

	for _, cat := range predicted {
		catItems := append([]categorized(nil), groups[cat]...)
		sortCategorizedByScore(catItems)

		added := 0
		for _, item := range catItems {
			if added >= e.MinPerCategory || len(selected) >= topK {
				break
			}
			if usedIDs[item.candidate.ID] {
				continue
			}
			selected = append(selected, item.candidate)
			usedIDs[item.candidate.ID] = true
			added++
		}
	}

	var remaining []categorized
	for _, item := range items {
		if !usedIDs[item.candidate.ID] {
			remaining = append(remaining, item)
		}
	}

	for len(selected) < topK && len(remaining) > 0 {
		bestIdx := bestRemainingIndex(remaining, selected, e.DiversityWeight)
		best := remaining[bestIdx]
		selected = append(selected, best.candidate)
		usedIDs[best.candidate.ID] = true
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}

func sortCategorizedByScore(items []categorized) {
	for i := 1; i < len(items); i++ {
		j := i
		for j > 0 && items[j-1].candidate.WeightedScore < items[j].candidate.WeightedScore {
			items[j-1], items[j] = items[j], items[j-1]
			j--
		}
	}
}

// bestRemainingIndex picks the remaining candidate maximizing
// (1-w)*relevance + w*diversity_bonus, where diversity_bonus rewards
// categories underrepresented among already-selected results (0.3 for the
// first pick in a category, 0.1 for the second, 0 thereafter) — mirroring
// _calculate_combined_score, keyed on vertical the same way the original
// approximates "category" with result.vertical.
func bestRemainingIndex(remaining []categorized, selected []retrieval.Candidate, weight float64) int {
	selectedVerticalCounts := make(map[query.Vertical]int, len(selected))
	for _, c := range selected {
		selectedVerticalCounts[c.Vertical]++
	}

	bestIdx := 0
	bestScore := combinedScore(remaining[0], selectedVerticalCounts, weight)
	for i := 1; i < len(remaining); i++ {
		s := combinedScore(remaining[i], selectedVerticalCounts, weight)
		if s > bestScore {
			bestScore = s
			bestIdx = i
		}
	}
	return bestIdx
}

func combinedScore(item categorized, selectedVerticalCounts map[query.Vertical]int, weight float64) float64 {
	relevance := item.candidate.WeightedScore

	diversityBonus := 0.0
	count := selectedVerticalCounts[item.candidate.Vertical]
	switch count {
	case 0:
		diversityBonus += 0.3
	case 1:
		diversityBonus += 0.1
	}

	return (1.0-weight)*relevance + weight*diversityBonus
}

// Report builds the coverage report for a candidate set and its predicted
// categories, mirroring get_category_coverage_report.
func Report(queryText string, candidates []retrieval.Candidate, predicted []query.Category) CoverageReport {
	items := classify(candidates, predicted)
	groups := groupByCategory(items)

	report := CoverageReport{
		Query: queryText,
		PredictedCategories: predicted,
		TotalResults: len(candidates),
		CategoryCoverage: make(map[query.Category]CategoryCoverageEntry, len(predicted)),
	}

	var covered int
	for _, cat := range predicted {
		count := len(groups[cat])
		report.CategoryCoverage[cat] = CategoryCoverageEntry{ResultCount: count, Covered: count > 0}
		if count > 0 {
			covered++
		} else {
			report.MissingCategories = append(report.MissingCategories, cat)
		}
	}

	if len(predicted) > 0 {
		report.CoverageScore = float64(covered) / float64(len(predicted))
	}
	return report
}
