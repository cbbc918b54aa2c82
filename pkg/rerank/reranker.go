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

// Package rerank implements the mode-specific reranker variants, the
// category-coverage enforcer, and the BM25 boosting pass
// applied to a retrieval.Candidate pool before answer composition.
package rerank

import (
	"context"
	"sort"
	"strings"

	"github.com/nithin8919/policyengine/pkg/query"
	"github.com/nithin8919/policyengine/pkg/retrieval"
)

// Reranker reorders (and may rescore) a candidate pool for a query plan.
// Implementations never change the set of candidates, only their order and
// WeightedScore.
type Reranker interface {
	Rerank(ctx context.Context, plan *query.Plan, candidates []retrieval.Candidate) ([]retrieval.Candidate, error)
}

// LightReranker applies cheap, local boosts: no LLM calls, no cross-document
// comparisons. Grounded on the entity/citation signals already sitting on
// plan.Entities and plan.Filters, scored the way reranker.go's LLM-free
// NoOpReranker leaves a fast path for latency-sensitive callers.
type LightReranker struct{}

func NewLightReranker() *LightReranker { return &LightReranker{} }

func (r *LightReranker) Rerank(_ context.Context, plan *query.Plan, candidates []retrieval.Candidate) ([]retrieval.Candidate, error) {
	applyLightBoosts(plan, candidates)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].WeightedScore > candidates[j].WeightedScore
	})
	return candidates, nil
}

// applyLightBoosts adds, in place, up to +0.3 for exact entity-in-content
// matches (+0.1 each, capped) and +0.1 when the content cites a section or
// GO number string that the query itself mentioned.
func applyLightBoosts(plan *query.Plan, candidates []retrieval.Candidate) {
	entityValues := flattenEntityValues(plan)
	if len(entityValues) == 0 {
		return
	}
	for i := range candidates {
		content := strings.ToLower(candidates[i].Content)
		boost := 0.0
		matches := 0
		for _, v := range entityValues {
			if v == "" {
				continue
			}
			if strings.Contains(content, strings.ToLower(v)) {
				matches++
				if matches > 3 {
					break
				}
			}
		}
		if matches > 0 {
			boost += min(float64(matches)*0.1, 0.3)
		}
		if citesSectionOrGO(content, plan) {
			boost += 0.1
		}
		candidates[i].WeightedScore += boost
	}
}

func flattenEntityValues(plan *query.Plan) []string {
	var out []string
	for _, values := range plan.Entities {
		out = append(out, values...)
	}
	for _, values := range plan.Filters {
		out = append(out, values...)
	}
	return out
}

func citesSectionOrGO(content string, plan *query.Plan) bool {
	for _, v := range plan.Filters["sections"] {
		if strings.Contains(content, strings.ToLower(v)) {
			return true
		}
	}
	for _, v := range plan.Filters["go_number"] {
		if strings.Contains(content, strings.ToLower(v)) {
			return true
		}
	}
	return false
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// PolicyReranker layers the light boosts with a monotonically decreasing
// vertical-priority multiplier (legal > go > judicial > data > schemes) and
// an optional LLM-judge rescoring pass over the top 2*RerankTop candidates,
// using a prompt-build/parse/rescore shape through the query pipeline's
// simple llms.LLMProvider.Generate signature rather than a chat-message one.
type PolicyReranker struct {
	judge *LLMJudge
	useJudge bool
}

func NewPolicyReranker(judge *LLMJudge, useJudge bool) *PolicyReranker {
	return &PolicyReranker{judge: judge, useJudge: useJudge}
}

func (r *PolicyReranker) Rerank(ctx context.Context, plan *query.Plan, candidates []retrieval.Candidate) ([]retrieval.Candidate, error) {
	applyLightBoosts(plan, candidates)
	applyVerticalPriority(candidates)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].WeightedScore > candidates[j].WeightedScore
	})

	if !r.useJudge || r.judge == nil {
		return candidates, nil
	}

	window := 2 * plan.RerankTop
	if window <= 0 || window > len(candidates) {
		window = len(candidates)
	}

	judged, err := r.judge.Rescore(ctx, plan.EnhancedQuery, candidates[:window])
	if err != nil {
		// Judge failures degrade to the rule-based order already computed.
		return candidates, nil
	}

	merged := append(judged, candidates[window:]...)
	return merged, nil
}

// applyVerticalPriority multiplies each candidate's WeightedScore by a
// factor decreasing with retrieval.VerticalPriority (1 = legal, highest),
// so that among near-tied candidates the higher-priority vertical wins
// without ever letting a low-relevance legal hit outrank a strong match
// elsewhere.
func applyVerticalPriority(candidates []retrieval.Candidate) {
	for i := range candidates {
		rank := retrieval.VerticalPriority(candidates[i].Vertical)
		factor := 1.0 - float64(rank-1)*0.03
		if factor < 0.85 {
			factor = 0.85
		}
		candidates[i].WeightedScore *= factor
	}
}

// BrainstormReranker penalizes near-duplicate candidates (cosine similarity
// above 0.85 against a higher-scored candidate already kept) and rewards
// content mentioning global/international comparators, per // Brainstorm-mode rules.
type BrainstormReranker struct{}

func NewBrainstormReranker() *BrainstormReranker { return &BrainstormReranker{} }

var globalKeywords = []string{
	"global", "international", "worldwide", "unesco", "unicef", "world bank",
	"oecd", "other countries", "other states", "best practice", "comparative",
}

func (r *BrainstormReranker) Rerank(_ context.Context, _ *query.Plan, candidates []retrieval.Candidate) ([]retrieval.Candidate, error) {
	for i := range candidates {
		content := strings.ToLower(candidates[i].Content)
		for _, kw := range globalKeywords {
			if strings.Contains(content, kw) {
				candidates[i].WeightedScore += 0.15
				break
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].WeightedScore > candidates[j].WeightedScore
	})

	kept := make([]retrieval.Candidate, 0, len(candidates))
	for _, c := range candidates {
		duplicate := false
		for _, k := range kept {
			if len(c.Vector) > 0 && len(k.Vector) > 0 && retrieval.CosineSimilarity(c.Vector, k.Vector) > 0.85 {
				duplicate = true
				break
			}
		}
		if duplicate {
			c.WeightedScore *= 0.5
		}
		kept = append(kept, c)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].WeightedScore > kept[j].WeightedScore
	})
	return kept, nil
}

// NoOpReranker returns candidates unchanged; the engine uses it when no
// reranker is registered for the plan's reranker kind.
type NoOpReranker struct{}

func (NoOpReranker) Rerank(_ context.Context, _ *query.Plan, candidates []retrieval.Candidate) ([]retrieval.Candidate, error) {
	return candidates, nil
}

var (
	_ Reranker = (*LightReranker)(nil)
	_ Reranker = (*PolicyReranker)(nil)
	_ Reranker = (*BrainstormReranker)(nil)
	_ Reranker = NoOpReranker{}
)
