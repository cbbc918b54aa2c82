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
	"strings"
)

type verticalPattern struct {
	keywords []string
	entities []string
	patterns []*regexp.Regexp
	contextBoost map[Mode]float64
}

// verticalPatterns is the V2 router's table: keyword/pattern/entity
// signals per vertical plus a per-mode context boost multiplier.
var verticalPatterns = map[Vertical]verticalPattern{
	VerticalLegal: {
		keywords: []string{
			"act", "law", "legislation", "section", "article", "provision",
			"clause", "rule", "regulation", "rte", "constitution", "amendment",
			"bill", "ordinance", "statute", "code",
		},
		entities: []string{EntitySection, EntityArticle, EntityActName},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(section|article|rule|provision|clause)\s+\d+`),
			regexp.MustCompile(`(?i)\b(act|law|regulation)\s+\d{4}`),
			regexp.MustCompile(`(?i)\brte\s+(act|law|provision)`),
			regexp.MustCompile(`(?i)\b(constitutional|legal)\s+(provision|requirement|mandate)`),
		},
		contextBoost: map[Mode]float64{ModeQA: 1.2, ModeDeepThink: 1.5, ModeBrainstorm: 0.8},
	},
	VerticalGO: {
		keywords: []string{
			"go", "government order", "notification", "circular",
			"g.o", "order", "directive", "memo", "memorandum",
			"atal tinkering lab", "atl", "samagra shiksha", "diksha",
			"education policy", "curriculum framework", "teacher training",
			"school infrastructure", "mana badi", "technology integration",
		},
		entities: []string{EntityGONumber},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(go|g\.o\.)\s+(no\.?|ms|rt)\s*\d+`),
			regexp.MustCompile(`(?i)\bgovernment\s+order\s+no`),
			regexp.MustCompile(`(?i)\bnotification\s+no`),
			regexp.MustCompile(`(?i)\bcircular\s+no`),
		},
		contextBoost: map[Mode]float64{ModeQA: 1.3, ModeDeepThink: 1.0, ModeBrainstorm: 0.7},
	},
	VerticalJudicial: {
		keywords: []string{
			"judgment", "court", "case", "writ", "petition",
			"supreme court", "high court", "judicial", "bench",
			"magistrate", "sessions court", "civil", "criminal",
		},
		entities: []string{EntityCase},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(judgment|case|writ|petition)\s+no`),
			regexp.MustCompile(`(?i)\b(supreme|high)\s+court`),
			regexp.MustCompile(`(?i)\b(civil|criminal)\s+(court|case)`),
			regexp.MustCompile(`(?i)\bwp\s+no\s+\d+`),
		},
		contextBoost: map[Mode]float64{ModeQA: 1.1, ModeDeepThink: 1.2, ModeBrainstorm: 0.9},
	},
	VerticalData: {
		keywords: []string{
			"statistics", "data", "report", "survey", "udise",
			"enrollment", "dropout", "percentage", "ratio", "census",
			"baseline", "achievement", "performance", "indicators",
		},
		entities: []string{EntityYear},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(statistics|data|report)\s+(on|for|of)`),
			regexp.MustCompile(`(?i)\b(enrollment|dropout|performance)\s+(rate|ratio|data)`),
			regexp.MustCompile(`(?i)\budise\s+(data|report|statistics)`),
			regexp.MustCompile(`(?i)\b\d{4}(-\d{4})?\s+(data|statistics|report)`),
		},
		contextBoost: map[Mode]float64{ModeQA: 1.0, ModeDeepThink: 1.1, ModeBrainstorm: 1.3},
	},
	VerticalSchemes: {
		keywords: []string{
			"scheme", "program", "initiative", "project", "mission",
			"mana badi", "naadu nedu", "infrastructure", "midday meal",
			"scholarship", "incentive", "fund", "grant",
			"atal tinkering lab", "atl", "atal innovation mission",
			"nep 2020", "national education policy", "samagra shiksha",
			"diksha platform", "diksha", "pm poshan", "pm evideya",
			"artificial intelligence", "ai", "technology integration",
			"digital education", "ict", "smart classroom", "innovation lab",
			"curriculum", "syllabus", "coding", "robotics", "stem",
		},
		entities: []string{EntityYear},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(scheme|program|initiative|project)\s+(for|of|under)`),
			regexp.MustCompile(`(?i)\bmana\s+badi`),
			regexp.MustCompile(`(?i)\bnaadu\s+nedu`),
			regexp.MustCompile(`(?i)\bmidday\s+meal`),
			regexp.MustCompile(`(?i)\bscholarship\s+(scheme|program)`),
			regexp.MustCompile(`(?i)\batal\s+(tinkering|innovation)`),
			regexp.MustCompile(`(?i)\bnep\s+2020`),
			regexp.MustCompile(`(?i)\bnational\s+education\s+policy`),
			regexp.MustCompile(`(?i)\bsamagra\s+shiksha`),
			regexp.MustCompile(`(?i)\bdiksha\s+(platform|digital)`),
			regexp.MustCompile(`(?i)\b(ai|artificial\s+intelligence)\s+(integration|education|curriculum)`),
			regexp.MustCompile(`(?i)\b(technology|digital)\s+(integration|education)`),
			regexp.MustCompile(`(?i)\b(curriculum|syllabus)\s+(change|integration|development)`),
			regexp.MustCompile(`(?i)\bict\s+(integration|education|lab)`),
		},
		contextBoost: map[Mode]float64{ModeQA: 0.9, ModeDeepThink: 1.2, ModeBrainstorm: 1.4},
	},
}

// fallbackKeywords is the V1 router's keyword table, used only as a last
// resort if the V2 scorer finds nothing. V2 always runs: the router does
// not read feature_flags.use_query_router_v2.
var fallbackKeywords = map[Vertical][]string{
	VerticalLegal: {
		"act", "section", "article", "rule", "provision", "clause",
		"statute", "legislation", "amendment", "constitution",
		"legal", "law", "rights", "fundamental", "directive",
	},
	VerticalGO: {
		"go", "government order", "notification", "circular",
		"memo", "office memorandum", "department", "directorate",
		"issued", "sanctioned", "approved", "g.o", "g.o.ms",
	},
	VerticalJudicial: {
		"judgment", "case", "court", "petition", "writ",
		"high court", "supreme court", "tribunal", "bench",
		"petitioner", "respondent", "appeal", "ruling",
	},
	VerticalData: {
		"statistics", "data", "report", "survey", "study",
		"udise", "aser", "enrollment", "dropout", "metrics",
		"figures", "numbers", "percentage", "trend", "analysis",
	},
	VerticalSchemes: {
		"scheme", "program", "initiative", "mission",
		"sarva shiksha abhiyan", "ssa", "rmsa", "pmshri",
		"midday meal", "scholarship", "international", "global",
	},
}

// QueryRouter selects and ranks the verticals a query should be searched
// against, using intent-aware V2 scoring with an intelligent fallback
// distribution, and a V1 keyword-only scorer as a last-resort backstop.
type QueryRouter struct{}

// NewQueryRouter constructs a QueryRouter.
func NewQueryRouter() *QueryRouter {
	return &QueryRouter{}
}

// Route returns up to the top 3 verticals for the query, sorted by
// descending relevance score, plus the full score map (used to derive
// Plan.VerticalWeights).
func (r *QueryRouter) Route(query string, entities map[string][]Entity, mode Mode, signals IntentSignals) ([]Vertical, map[Vertical]float64) {
	lower := strings.ToLower(query)
	scores := make(map[Vertical]float64)

	for v := range verticalPatterns {
		s := r.scoreVertical(v, query, lower, entities, mode, signals)
		if s > 0 {
			scores[v] = s
		}
	}

	if len(scores) == 0 || maxScore(scores) < 0.3 {
		scores = r.fallbackStrategy(lower, entities, mode)
	}
	if len(scores) == 0 {
		scores = r.v1Fallback(lower, entities)
	}

	ordered := orderVerticals(scores)
	if len(ordered) > 3 {
		ordered = ordered[:3]
	}
	return ordered, scores
}

func (r *QueryRouter) scoreVertical(v Vertical, query, lower string, entities map[string][]Entity, mode Mode, signals IntentSignals) float64 {
	cfg := verticalPatterns[v]
	var score float64

	for _, kw := range cfg.keywords {
		if strings.Contains(lower, kw) {
			score += 0.2
		}
	}
	for _, p := range cfg.patterns {
		if p.MatchString(query) {
			score += 0.4
		}
	}
	for _, kind := range cfg.entities {
		if len(entities[kind]) > 0 {
			score += 0.3
		}
	}

	if boost, ok := cfg.contextBoost[mode]; ok {
		score *= boost
	}

	score = applyIntentBoost(score, v, signals)

	wordCount := len(strings.Fields(query))
	switch {
		case wordCount > 15 && (v == VerticalLegal || v == VerticalSchemes):
			score *= 1.2
		case wordCount < 5 && (v == VerticalGO || v == VerticalJudicial):
			score *= 1.1
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

func applyIntentBoost(score float64, v Vertical, signals IntentSignals) float64 {
	if signals.ComprehensiveScore > 0.6 {
		if v == VerticalLegal || v == VerticalSchemes {
			score *= 1.3
		} else if v == VerticalData {
			score *= 1.2
		}
	}
	if signals.QAScore > 0.7 {
		if v == VerticalGO || v == VerticalJudicial {
			score *= 1.2
		}
	}
	if signals.BrainstormScore > 0.6 {
		if v == VerticalSchemes || v == VerticalData {
			score *= 1.4
		}
	}
	return score
}

func (r *QueryRouter) fallbackStrategy(lower string, entities map[string][]Entity, mode Mode) map[Vertical]float64 {
	scores := make(map[Vertical]float64)
	switch mode {
		case ModeQA:
			scores[VerticalLegal] = 0.6
			scores[VerticalGO] = 0.5
			scores[VerticalJudicial] = 0.3
		case ModeDeepThink:
			scores[VerticalLegal] = 0.7
			scores[VerticalSchemes] = 0.6
			scores[VerticalData] = 0.5
			scores[VerticalGO] = 0.4
			scores[VerticalJudicial] = 0.3
		case ModeBrainstorm:
			scores[VerticalSchemes] = 0.8
			scores[VerticalData] = 0.7
			scores[VerticalLegal] = 0.4
	}

	if len(entities[EntityYear]) > 0 {
		scores[VerticalData] += 0.3
	}
	if len(entities[EntitySection]) > 0 || len(entities[EntityArticle]) > 0 {
		scores[VerticalLegal] += 0.4
	}
	if len(strings.Fields(lower)) > 10 {
		scores[VerticalLegal] += 0.2
		scores[VerticalSchemes] += 0.2
	}
	return scores
}

// v1Fallback is the original keyword-only scorer, used only when V2's
// scored and mode-fallback strategies both produce nothing.
func (r *QueryRouter) v1Fallback(lower string, entities map[string][]Entity) map[Vertical]float64 {
	scores := make(map[Vertical]float64)
	for v, keywords := range fallbackKeywords {
		var s float64
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				s += 1.0
			}
		}
		switch v {
			case VerticalLegal:
				if len(entities[EntitySection]) > 0 || len(entities[EntityArticle]) > 0 || len(entities[EntityRule]) > 0 {
					s += 2.0
				}
				if len(entities[EntityActName]) > 0 {
					s += 1.5
				}
			case VerticalGO:
				if len(entities[EntityGONumber]) > 0 {
					s += 3.0
				}
			case VerticalJudicial:
				if len(entities[EntityCase]) > 0 {
					s += 3.0
				}
			case VerticalData, VerticalSchemes:
				if len(entities[EntityYear]) > 0 {
					s += 0.5
				}
		}
		if s > 0 {
			scores[v] = minFloat(s/5.0, 1.0)
		}
	}
	if len(scores) == 0 {
		for _, v := range AllVerticals {
			scores[v] = 0.2
		}
	}
	return scores
}

func maxScore(scores map[Vertical]float64) float64 {
	var max float64
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	return max
}

func orderVerticals(scores map[Vertical]float64) []Vertical {
	ordered := make([]Vertical, 0, len(scores))
	for v := range scores {
		ordered = append(ordered, v)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if scores[ordered[i]] != scores[ordered[j]] {
			return scores[ordered[i]] > scores[ordered[j]]
		}
		return ordered[i] < ordered[j]
	})
	return ordered
}
