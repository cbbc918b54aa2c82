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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nithin8919/policyengine/pkg/embedders"
	"github.com/nithin8919/policyengine/pkg/query"
	"github.com/nithin8919/policyengine/pkg/vector"
)

// fakeProvider is a minimal in-memory vector.Provider for retriever tests:
// it ignores the query vector and returns a fixed per-collection result
// set, optionally filtered by exact-match on the supplied filter map.
type fakeProvider struct {
	byCollection map[string][]vector.Result
	failFor map[string]bool
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Upsert(context.Context, string, string, []float32, map[string]any) error {
	return nil
}

func (f *fakeProvider) Search(ctx context.Context, collection string, v []float32, topK int) ([]vector.Result, error) {
	return f.SearchWithFilter(ctx, collection, v, topK, nil)
}

func (f *fakeProvider) SearchWithFilter(_ context.Context, collection string, _ []float32, topK int, filter map[string]any) ([]vector.Result, error) {
	if f.failFor[collection] {
		return nil, assert.AnError
	}
	var out []vector.Result
	for _, r := range f.byCollection[collection] {
		if matchesFilter(r.Metadata, filter) {
			out = append(out, r)
		}
	}
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func matchesFilter(metadata map[string]any, filter map[string]any) bool {
	for k, v := range filter {
		mv, ok := metadata[k]
		if !ok {
			return false
		}
		switch want := v.(type) {
			case []string:
				found := false
				for _, w := range want {
					if mv == w {
						found = true
						break
					}
				}
				if !found {
					return false
				}
			default:
				if mv != v {
					return false
				}
		}
	}
	return true
}

func (f *fakeProvider) Delete(context.Context, string, string) error { return nil }
func (f *fakeProvider) DeleteByFilter(context.Context, string, map[string]any) error { return nil }
func (f *fakeProvider) CreateCollection(context.Context, string, int) error { return nil }
func (f *fakeProvider) DeleteCollection(context.Context, string) error { return nil }
func (f *fakeProvider) Close() error { return nil }

var _ vector.Provider = (*fakeProvider)(nil)

func testEmbedders(t *testing.T) *embedders.EmbedderRegistry {
	t.Helper()
	reg := embedders.NewEmbedderRegistry()
	_, err := reg.CreateEmbedderFromConfig("fast", &embedders.ProviderConfig{Type: embedders.ProviderHash, Dimension: 8})
	require.NoError(t, err)
	_, err = reg.CreateEmbedderFromConfig("deep", &embedders.ProviderConfig{Type: embedders.ProviderHash, Dimension: 8})
	require.NoError(t, err)
	return reg
}

func basePlan() *query.Plan {
	return &query.Plan{
		OriginalQuery: "section 12 toilet construction",
		EnhancedQuery: "section 12 toilet construction",
		Mode: query.ModeQA,
		Verticals: []query.Vertical{query.VerticalLegal, query.VerticalGO},
		VerticalWeights: map[query.Vertical]float64{query.VerticalLegal: 0.6, query.VerticalGO: 0.4},
		TopK: 10,
		EmbeddingModel: query.EmbeddingFast,
		Timeout: 2 * time.Second,
	}
}

func TestRetrieveAggregatesAcrossVerticals(t *testing.T) {
	provider := &fakeProvider{byCollection: map[string][]vector.Result{
		CollectionName(query.VerticalLegal): {
			{ID: "l1", Score: 0.9, Content: "section 12 of the act", Metadata: map[string]any{}},
		},
		CollectionName(query.VerticalGO): {
			{ID: "g1", Score: 0.8, Content: "toilet construction GO", Metadata: map[string]any{}},
		},
	}}

	r := NewRetriever(provider, testEmbedders(t), nil, Config{})
	outcome, err := r.Retrieve(context.Background(), basePlan())
	require.NoError(t, err)

	assert.Len(t, outcome.Candidates, 2)
	assert.Equal(t, 1, outcome.VerticalCoverage[query.VerticalLegal])
	assert.Equal(t, 1, outcome.VerticalCoverage[query.VerticalGO])
}

func TestRetrieveFailingVerticalReducesToEmptyWithoutAbortingSiblings(t *testing.T) {
	provider := &fakeProvider{
		byCollection: map[string][]vector.Result{
			CollectionName(query.VerticalGO): {
				{ID: "g1", Score: 0.8, Content: "toilet construction GO", Metadata: map[string]any{}},
			},
		},
		failFor: map[string]bool{CollectionName(query.VerticalLegal): true},
	}

	r := NewRetriever(provider, testEmbedders(t), nil, Config{})
	outcome, err := r.Retrieve(context.Background(), basePlan())
	require.NoError(t, err)

	assert.Equal(t, 0, outcome.VerticalCoverage[query.VerticalLegal])
	assert.Equal(t, 1, outcome.VerticalCoverage[query.VerticalGO])
	require.Len(t, outcome.Candidates, 1)
	assert.Equal(t, "g1", outcome.Candidates[0].ID)
}

func TestRetrieveDedupesAcrossFilterVariantsKeepingMaxScore(t *testing.T) {
	// A "sections" filter on the legal vertical fans out into 3 physical
	// field variants (section/sections/mentioned_sections); a chunk
	// matching more than one variant must appear once, at its best score.
	provider := &fakeProvider{byCollection: map[string][]vector.Result{
		CollectionName(query.VerticalLegal): {
			{ID: "dup", Score: 0.4, Content: "low", Metadata: map[string]any{"section": "12"}},
			{ID: "dup", Score: 0.9, Content: "high", Metadata: map[string]any{"sections": "12"}},
		},
	}}
	plan := basePlan()
	plan.Verticals = []query.Vertical{query.VerticalLegal}
	plan.VerticalWeights = map[query.Vertical]float64{query.VerticalLegal: 1.0}
	plan.Filters = map[string][]string{"sections": {"12"}}

	r := NewRetriever(provider, testEmbedders(t), nil, Config{})
	outcome, err := r.Retrieve(context.Background(), plan)
	require.NoError(t, err)
	require.Len(t, outcome.Candidates, 1)
	assert.Equal(t, "dup", outcome.Candidates[0].ID)
	assert.InDelta(t, 0.9, outcome.Candidates[0].WeightedScore, 0.001)
}

func TestRetrieveBrainstormModeAppliesMMR(t *testing.T) {
	provider := &fakeProvider{byCollection: map[string][]vector.Result{
		CollectionName(query.VerticalSchemes): {
			{ID: "s1", Score: 0.9, Content: "scheme one", Metadata: map[string]any{}, Vector: []float32{1, 0}},
			{ID: "s2", Score: 0.89, Content: "scheme two", Metadata: map[string]any{}, Vector: []float32{1, 0}},
		},
		CollectionName(query.VerticalData): {
			{ID: "s3", Score: 0.5, Content: "scheme three", Metadata: map[string]any{}, Vector: []float32{0, 1}},
		},
	}}
	plan := basePlan()
	plan.Mode = query.ModeBrainstorm
	plan.Verticals = []query.Vertical{query.VerticalSchemes, query.VerticalData}
	plan.VerticalWeights = map[query.Vertical]float64{query.VerticalSchemes: 1.0, query.VerticalData: 1.0}
	plan.TopK = 2

	r := NewRetriever(provider, testEmbedders(t), nil, Config{MMRLambda: 0.5})
	outcome, err := r.Retrieve(context.Background(), plan)
	require.NoError(t, err)
	require.Len(t, outcome.Candidates, 2)
	assert.Equal(t, "s1", outcome.Candidates[0].ID)
	assert.Equal(t, "s3", outcome.Candidates[1].ID)
}

func TestRetrieveUsesInternetWhenEnabled(t *testing.T) {
	provider := &fakeProvider{byCollection: map[string][]vector.Result{}}
	plan := basePlan()
	plan.Verticals = []query.Vertical{}
	plan.UseInternet = true
	plan.VerticalWeights = map[query.Vertical]float64{query.VerticalInternet: 1.0}

	internet := stubInternetProvider{results: []InternetResult{{Title: "t", URL: "https://example.com", Snippet: "s"}}}
	r := NewRetriever(provider, testEmbedders(t), internet, Config{})
	outcome, err := r.Retrieve(context.Background(), plan)
	require.NoError(t, err)
	require.Len(t, outcome.Candidates, 1)
	assert.Equal(t, query.VerticalInternet, outcome.Candidates[0].Vertical)
}

type stubInternetProvider struct{ results []InternetResult }

func (s stubInternetProvider) Search(context.Context, string, int) ([]InternetResult, error) {
	return s.results, nil
}
