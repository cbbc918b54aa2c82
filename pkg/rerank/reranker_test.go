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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nithin8919/policyengine/pkg/query"
	"github.com/nithin8919/policyengine/pkg/retrieval"
)

func TestLightRerankerBoostsEntityMatches(t *testing.T) {
	plan := &query.Plan{
		EnhancedQuery: "section 12 toilet",
		Filters: map[string][]string{"sections": {"12"}},
	}
	candidates := []retrieval.Candidate{
		{ID: "a", Content: "unrelated text about buses", WeightedScore: 0.5},
		{ID: "b", Content: "this chunk cites section 12 directly", WeightedScore: 0.5},
	}

	r := NewLightReranker()
	out, err := r.Rerank(context.Background(), plan, candidates)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].ID, "entity+citation match should rank first")
	assert.Greater(t, out[0].WeightedScore, out[1].WeightedScore)
}

func TestPolicyRerankerAppliesVerticalPriority(t *testing.T) {
	plan := &query.Plan{EnhancedQuery: "q"}
	candidates := []retrieval.Candidate{
		{ID: "legal", Vertical: query.VerticalLegal, WeightedScore: 0.7, Content: "x"},
		{ID: "schemes", Vertical: query.VerticalSchemes, WeightedScore: 0.7, Content: "x"},
	}

	r := NewPolicyReranker(nil, false)
	out, err := r.Rerank(context.Background(), plan, candidates)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "legal", out[0].ID, "equal base scores should be broken by vertical priority")
}

func TestPolicyRerankerSkipsJudgeWhenDisabled(t *testing.T) {
	plan := &query.Plan{EnhancedQuery: "q", RerankTop: 1}
	candidates := []retrieval.Candidate{
		{ID: "a", Vertical: query.VerticalLegal, WeightedScore: 0.5, Content: "x"},
	}
	r := NewPolicyReranker(nil, true) // judge nil, must not panic or call it
	out, err := r.Rerank(context.Background(), plan, candidates)
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestBrainstormRerankerRewardsGlobalKeywordsAndPenalizesDuplicates(t *testing.T) {
	candidates := []retrieval.Candidate{
		{ID: "a", Content: "local scheme details", WeightedScore: 0.6, Vector: []float32{1, 0}},
		{ID: "b", Content: "international comparison with global best practice", WeightedScore: 0.59, Vector: []float32{0, 1}},
		{ID: "c", Content: "near duplicate of a", WeightedScore: 0.58, Vector: []float32{1, 0.001}},
	}

	r := NewBrainstormReranker()
	out, err := r.Rerank(context.Background(), &query.Plan{}, candidates)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "b", out[0].ID, "global-keyword reward should win the top slot")
	assert.Equal(t, "c", out[len(out)-1].ID, "near-duplicate of a higher-scored candidate should be penalized to last")
}

func TestNoOpRerankerReturnsUnchanged(t *testing.T) {
	candidates := []retrieval.Candidate{{ID: "a"}, {ID: "b"}}
	out, err := NoOpReranker{}.Rerank(context.Background(), &query.Plan{}, candidates)
	require.NoError(t, err)
	assert.Equal(t, candidates, out)
}
