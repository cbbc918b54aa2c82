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

package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nithin8919/policyengine/pkg/answer"
	"github.com/nithin8919/policyengine/pkg/config"
	"github.com/nithin8919/policyengine/pkg/embedders"
	"github.com/nithin8919/policyengine/pkg/query"
	"github.com/nithin8919/policyengine/pkg/rerank"
	"github.com/nithin8919/policyengine/pkg/retrieval"
	"github.com/nithin8919/policyengine/pkg/supersession"
	"github.com/nithin8919/policyengine/pkg/vector"
)

type fakeProvider struct {
	byCollection map[string][]vector.Result
	scan map[string][]vector.Result
}

func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) Upsert(context.Context, string, string, []float32, map[string]any) error {
	return nil
}
func (f *fakeProvider) Search(ctx context.Context, collection string, v []float32, topK int) ([]vector.Result, error) {
	return f.SearchWithFilter(ctx, collection, v, topK, nil)
}
func (f *fakeProvider) SearchWithFilter(_ context.Context, collection string, _ []float32, topK int, _ map[string]any) ([]vector.Result, error) {
	out := f.byCollection[collection]
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}
func (f *fakeProvider) Delete(context.Context, string, string) error { return nil }
func (f *fakeProvider) DeleteByFilter(context.Context, string, map[string]any) error { return nil }
func (f *fakeProvider) CreateCollection(context.Context, string, int) error { return nil }
func (f *fakeProvider) DeleteCollection(context.Context, string) error { return nil }
func (f *fakeProvider) Close() error { return nil }

func (f *fakeProvider) Scroll(_ context.Context, collection string, _ int, _ string) ([]vector.Result, string, error) {
	return f.scan[collection], "", nil
}

var _ vector.Provider = (*fakeProvider)(nil)
var _ vector.Scanner = (*fakeProvider)(nil)

type fakeLLM struct{ response string }

func (f *fakeLLM) Generate(context.Context, string, float64, int) (string, error) {
	return f.response, nil
}
func (f *fakeLLM) GetModelName() string { return "fake" }
func (f *fakeLLM) GetMaxTokens() int { return 512 }
func (f *fakeLLM) GetTemperature() float64 { return 0.0 }
func (f *fakeLLM) Close() error { return nil }

func testEngine(t *testing.T, provider vector.Provider, llmResponse string) *Engine {
	t.Helper()
	embedderRegistry := embedders.NewEmbedderRegistry()
	_, err := embedderRegistry.CreateEmbedderFromConfig("fast", &embedders.ProviderConfig{Type: embedders.ProviderHash, Dimension: 8})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Retrieval.SetDefaults()
	cfg.FeatureFlags.HybridSearch = false

	return &Engine{
		cfg: cfg,
		planner: query.NewPlanner(query.DefaultPlannerConfig()),
		retriever: retrieval.NewRetriever(provider, embedderRegistry, retrieval.NoOpInternetProvider{}, retrieval.Config{}),
		supersession: supersession.NewManager(provider),
		rerankers: map[query.Reranker]rerank.Reranker{
			query.RerankerLight: rerank.NewLightReranker(),
			query.RerankerPolicy: rerank.NewPolicyReranker(nil, false),
			query.RerankerBrainstorm: rerank.NewBrainstormReranker(),
		},
		diversity: rerank.NewDiversityCoverageEnforcer(1, 0.4),
		bm25Booster: rerank.NewBM25Booster(),
		composer: answer.NewComposer(&fakeLLM{response: llmResponse}),
	}
}

func TestQueryRejectsEmptyInput(t *testing.T) {
	e := testEngine(t, &fakeProvider{}, "answer")
	_, err := e.Query(context.Background(), " ", query.PlannerOptions{})
	require.Error(t, err)
	var qerr *QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, KindBadRequest, qerr.Kind)
}

func TestQueryReturnsSuccessWithResultsAndAnswer(t *testing.T) {
	provider := &fakeProvider{byCollection: map[string][]vector.Result{
		retrieval.CollectionName(query.VerticalLegal): {
			{ID: "l1", Score: 0.9, Content: "Section 12 of the RTE Act mandates free education.", Metadata: map[string]any{"source": "RTE Act", "year": "2009"}},
		},
		retrieval.CollectionName(query.VerticalGO): {
			{ID: "g1", Score: 0.8, Content: "G.O. governing toilet construction norms in schools.", Metadata: map[string]any{"go_number": "26", "year": "2019"}},
		},
	}}
	e := testEngine(t, provider, "Section 12 requires free education [1] and construction follows [2].")

	resp, err := e.Query(context.Background(), "What is Section 12 of RTE Act?", query.PlannerOptions{})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Results)
	assert.Equal(t, query.ModeQA, resp.Query.Mode)
	assert.NotEmpty(t, resp.Answer.Text)
	assert.ElementsMatch(t, []int{1, 2}, resp.Answer.Citations)
	assert.NotEmpty(t, resp.Trace.Plan)
}

func TestQueryHandlesEmptyStoreGracefully(t *testing.T) {
	e := testEngine(t, &fakeProvider{}, "I couldn't find relevant information to answer your query.")
	resp, err := e.Query(context.Background(), "What is Section 12 of RTE Act?", query.PlannerOptions{})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Results)
	assert.Contains(t, resp.Trace.Steps, "no candidates retrieved from any vertical")
}

func TestQueryDropsSupersededGOCandidateUnderQA(t *testing.T) {
	goCollection := retrieval.CollectionName(query.VerticalGO)
	provider := &fakeProvider{
		byCollection: map[string][]vector.Result{
			goCollection: {
				{ID: "old-go", Score: 0.95, Content: "Old GO 10 superseded by GO 26.", Metadata: map[string]any{"go_number": "10"}},
				{ID: "new-go", Score: 0.9, Content: "GO 26 latest norms.", Metadata: map[string]any{"go_number": "26"}},
			},
		},
		scan: map[string][]vector.Result{
			goCollection: {
				{ID: "old-go", Metadata: map[string]any{"doc_id": "old-go", "go_number": "10"}},
				{ID: "new-go", Metadata: map[string]any{
					"doc_id": "new-go", "go_number": "26",
					"relations": []any{map[string]any{"relation_type": "supersedes", "target": "10"}},
				}},
			},
		},
	}
	e := testEngine(t, provider, "answer")
	resp, err := e.Query(context.Background(), "toilet construction GO", query.PlannerOptions{})
	require.NoError(t, err)
	for _, r := range resp.Results {
		assert.NotEqual(t, "old-go", r.ID, "superseded GO doc must not appear under QA mode")
	}
}
