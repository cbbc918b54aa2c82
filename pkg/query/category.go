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
	"sort"
)

type categoryKeywords struct {
	primary []string
	secondary []string
}

// categoryKeywordTable is the fixed (primary, secondary) keyword pair per
// policy category, used for additive scoring: +2.0 per primary match,
// +1.0 per secondary match, per occurrence.
var categoryKeywordTable = map[Category]categoryKeywords{
	CategoryAccess: {
		primary: []string{
			"admission", "enrollment", "enrolment", "dropout", "out of school",
			"access", "inclusion", "equity", "girl child", "sc/st", "minority",
			"disabled children", "cwsn", "vulnerable", "disadvantaged",
			"school mapping", "catchment area", "distance norms",
		},
		secondary: []string{
			"barrier", "retention", "attendance", "participation",
			"inclusive education", "special needs", "tribal", "urban slum",
		},
	},
	CategoryInfrastructure: {
		primary: []string{
			"nadu nedu", "infrastructure", "building", "classroom", "toilet",
			"drinking water", "electricity", "playground", "library",
			"laboratory", "kitchen", "boundary wall", "ramp", "cctv",
			"fire safety", "tmf", "maintenance", "construction",
		},
		secondary: []string{
			"facility", "equipment", "furniture", "sanitation", "hygiene",
			"safety", "security", "accessibility", "barrier free",
		},
	},
	CategoryGovernance: {
		primary: []string{
			"administration", "governance", "management", "inspection",
			"monitoring", "supervision", "compliance", "regulation",
			"deo", "meo", "diet", "scert", "rjd", "cce coordinator",
			"headmaster", "principal", "district collector",
		},
		secondary: []string{
			"authority", "responsibility", "accountability", "oversight",
			"quality assurance", "institutional framework",
		},
	},
	CategoryWelfare: {
		primary: []string{
			"amma vodi", "vidya kanuka", "vidya deevena", "gorumudda",
			"mid day meal", "midday meal", "school kit", "uniform",
			"scholarship", "financial assistance", "transport", "hostel",
			"residential school", "welfare scheme", "benefit",
		},
		secondary: []string{
			"incentive", "support", "assistance", "allowance", "stipend",
			"nutrition", "health checkup", "medical care",
		},
	},
	CategoryCurriculum: {
		primary: []string{
			"curriculum", "syllabus", "textbook", "subject", "course",
			"content", "learning material", "digital content", "e-content",
			"pedagogy", "teaching method", "learning outcome",
			"competency", "skill development", "fln", "foundational literacy",
		},
		secondary: []string{
			"academic", "educational content", "lesson plan", "activity",
			"project based learning", "experiential learning",
		},
	},
	CategoryAssessment: {
		primary: []string{
			"assessment", "evaluation", "examination", "test", "cce",
			"continuous comprehensive evaluation", "grading", "marking",
			"progress tracking", "learning assessment", "achievement",
			"performance", "result", "pass", "fail", "promotion",
		},
		secondary: []string{
			"measurement", "scoring", "feedback", "report card",
			"academic performance", "learning level",
		},
	},
	CategoryTeacher: {
		primary: []string{
			"teacher", "teaching", "faculty", "staff", "recruitment",
			"appointment", "transfer", "posting", "training", "capacity building",
			"professional development", "in-service training", "pre-service",
			"teacher education", "b.ed", "tet", "dsc",
		},
		secondary: []string{
			"educator", "instructor", "human resource", "personnel",
			"qualification", "certification", "competency", "skill enhancement",
		},
	},
}

var broadQueryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:current|latest|all|comprehensive|complete|overall)\s+(?:education\s+)?policies?\b`),
	regexp.MustCompile(`(?i)\beducation\s+(?:system|framework|structure|overview)\b`),
	regexp.MustCompile(`(?i)\b(?:list|overview|summary)\s+(?:of\s+)?(?:all\s+)?(?:education\s+)?(?:policies|initiatives|schemes)\b`),
	regexp.MustCompile(`(?i)\beducation\s+(?:in\s+)?(?:andhra\s+pradesh|ap)\b`),
	regexp.MustCompile(`(?i)\bap\s+education\s+(?:department|system|policies)\b`),
	regexp.MustCompile(`(?i)\bstate\s+education\s+policies?\b`),
}

// mandatoryCombinations maps a lexical trigger to the categories it forces
// into the predicted set.
var mandatoryCombinations = map[string][]Category{
	"broad_policy": {
		CategoryAccess, CategoryInfrastructure, CategoryGovernance, CategoryWelfare,
		CategoryCurriculum, CategoryAssessment, CategoryTeacher,
	},
	"implementation": {CategoryGovernance, CategoryInfrastructure, CategoryWelfare, CategoryTeacher},
	"quality": {CategoryCurriculum, CategoryAssessment, CategoryTeacher, CategoryInfrastructure},
	"equity": {CategoryAccess, CategoryWelfare, CategoryInfrastructure, CategoryGovernance},
}

var (
	reImplementation = regexp.MustCompile(`(?i)\b(?:implementation|execution|roll|deploy)\b`)
	reQuality = regexp.MustCompile(`(?i)\b(?:quality|outcome|performance|improvement)\b`)
	reEquity = regexp.MustCompile(`(?i)\b(?:inclusive|equity|equal|disadvantaged|vulnerable)\b`)
)

// CategoryPredictor predicts which of the 7 fixed policy categories a query
// should cover, so the diversity/coverage enforcer can guarantee mandatory
// representation.
type CategoryPredictor struct {
	keywordPatterns map[Category][]*regexp.Regexp
}

// NewCategoryPredictor precompiles per-category keyword patterns.
func NewCategoryPredictor() *CategoryPredictor {
	patterns := make(map[Category][]*regexp.Regexp)
	for cat, kw := range categoryKeywordTable {
		var res []*regexp.Regexp
		for _, k := range append(append([]string{}, kw.primary...), kw.secondary...) {
			res = append(res, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(k)+`\b`))
		}
		patterns[cat] = res
	}
	return &CategoryPredictor{keywordPatterns: patterns}
}

// Predict returns the ordered list of categories the query should cover.
// mode affects how a "broad query" is resolved: DeepThink/Brainstorm get
// all 7 categories, QA gets the first five of the broad-policy combination
// (access, infrastructure, governance, welfare, curriculum).
func (p *CategoryPredictor) Predict(query string, mode Mode) []Category {
	scores := p.scoreCategories(query)
	predicted := make(map[Category]struct{})

	if p.isBroadQuery(query) {
		if mode == ModeDeepThink || mode == ModeBrainstorm {
			return append([]Category{}, AllCategories...)
		}
		for _, c := range mandatoryCombinations["broad_policy"][:5] {
			predicted[c] = struct{}{}
		}
	}

	for cat, score := range scores {
		if score >= 2.0 {
			predicted[cat] = struct{}{}
		}
	}

	for _, c := range p.mandatoryCategories(query) {
		predicted[c] = struct{}{}
	}

	list := make([]Category, 0, len(predicted))
	for c := range predicted {
		list = append(list, c)
	}
	return prioritizeCategories(list, scores)
}

func (p *CategoryPredictor) isBroadQuery(query string) bool {
	for _, re := range broadQueryPatterns {
		if re.MatchString(query) {
			return true
		}
	}
	return false
}

func (p *CategoryPredictor) scoreCategories(query string) map[Category]float64 {
	scores := make(map[Category]float64, len(categoryKeywordTable))
	for cat, kw := range categoryKeywordTable {
		var score float64
		for _, k := range kw.primary {
			score += 2.0 * float64(countOccurrences(query, k))
		}
		for _, k := range kw.secondary {
			score += 1.0 * float64(countOccurrences(query, k))
		}
		scores[cat] = score
	}
	return scores
}

func countOccurrences(query, keyword string) int {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
	return len(re.FindAllStringIndex(query, -1))
}

func (p *CategoryPredictor) mandatoryCategories(query string) []Category {
	var out []Category
	if reImplementation.MatchString(query) {
		out = append(out, mandatoryCombinations["implementation"]...)
	}
	if reQuality.MatchString(query) {
		out = append(out, mandatoryCombinations["quality"]...)
	}
	if reEquity.MatchString(query) {
		out = append(out, mandatoryCombinations["equity"]...)
	}
	return out
}

// prioritizeCategories sorts categories by descending score, tie-broken by
// PriorityOrder.
func prioritizeCategories(categories []Category, scores map[Category]float64) []Category {
	priorityIndex := make(map[Category]int, len(PriorityOrder))
	for i, c := range PriorityOrder {
		priorityIndex[c] = i
	}

	sort.SliceStable(categories, func(i, j int) bool {
		si, sj := scores[categories[i]], scores[categories[j]]
		if si != sj {
			return si > sj
		}
		pi, ok1 := priorityIndex[categories[i]]
		pj, ok2 := priorityIndex[categories[j]]
		if !ok1 {
			pi = 999
		}
		if !ok2 {
			pj = 999
		}
		return pi < pj
	})
	return categories
}
