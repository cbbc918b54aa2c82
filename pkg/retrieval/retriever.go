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
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/nithin8919/policyengine/pkg/embedders"
	"github.com/nithin8919/policyengine/pkg/query"
	"github.com/nithin8919/policyengine/pkg/vector"
)

// Config holds the scoring knobs the retriever needs from pkg/config's
// RetrievalConfig, without importing pkg/config directly (pkg/config
// depends on pkg/vector and pkg/embedders, not the other way around).
type Config struct {
	HybridAlpha float64
	MMRLambda float64
	HybridSearch bool
}

// Retriever is the parallel multi-vertical retriever. It is
// constructed once per process and is safe for concurrent use across
// queries: all per-query state lives in the arguments and return values of
// Retrieve, never on the Retriever itself.
type Retriever struct {
	store vector.Provider
	embedders *embedders.EmbedderRegistry
	internet InternetProvider
	cfg Config
}

// NewRetriever constructs a Retriever. internet may be nil, in which case
// NoOpInternetProvider is used.
func NewRetriever(store vector.Provider, emb *embedders.EmbedderRegistry, internet InternetProvider, cfg Config) *Retriever {
	if internet == nil {
		internet = NoOpInternetProvider{}
	}
	return &Retriever{store: store, embedders: emb, internet: internet, cfg: cfg}
}

// Outcome is the full result of one Retrieve call: the aggregated candidate
// pool plus a per-vertical result count for the trace/coverage report
// (search.vertical_coverage).
type Outcome struct {
	Candidates []Candidate
	VerticalCoverage map[query.Vertical]int
}

// Retrieve executes end to end: embed once, fan out one
// search task per selected vertical (plus internet when plan.UseInternet),
// fuse hybrid scores, weight, dedupe, and — for Brainstorm — apply MMR.
// A failing vertical never aborts its siblings; it is logged and reduces to
// zero candidates.
func (r *Retriever) Retrieve(ctx context.Context, plan *query.Plan) (Outcome, error) {
	if plan.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, plan.Timeout)
		defer cancel()
	}

	queryVector, err := r.embedQuery(ctx, plan)
	if err != nil {
		return Outcome{}, fmt.Errorf("retrieval: embedding failed: %w", err)
	}

	verticals := plan.Verticals
	outcomes := make([]VerticalOutcome, len(verticals))

	g, gctx := errgroup.WithContext(ctx)
	for i, v := range verticals {
		i, v := i, v
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					slog.Error("panic in vertical search", "vertical", v, "panic", p)
					outcomes[i] = VerticalOutcome{Vertical: v, Err: fmt.Errorf("panic: %v", p)}
				}
			}()
			outcomes[i] = r.searchVertical(gctx, plan, v, queryVector)
			return nil // task errors never abort siblings; they live in VerticalOutcome.Err
		})
	}

	var internetCandidates []Candidate
	if plan.UseInternet {
		g.Go(func() error {
			internetCandidates = r.searchInternet(gctx, plan)
			return nil
		})
	}

	_ = g.Wait() // no task returns a real error; this only guards against a misused g.Go call

	coverage := make(map[query.Vertical]int, len(verticals)+1)
	var pool []Candidate
	for _, o := range outcomes {
		if o.Err != nil {
			slog.Warn("vertical search failed, treating as empty", "vertical", o.Vertical, "error", o.Err)
			coverage[o.Vertical] = 0
			continue
		}
		coverage[o.Vertical] = len(o.Candidates)
		pool = append(pool, o.Candidates...)
	}
	if plan.UseInternet {
		coverage[query.VerticalInternet] = len(internetCandidates)
		pool = append(pool, internetCandidates...)
	}

	aggregated := r.aggregate(pool, plan)
	return Outcome{Candidates: aggregated, VerticalCoverage: coverage}, nil
}

// embedQuery resolves plan.EmbeddingModel ("fast"/"deep") through the
// embedder registry and encodes plan.EnhancedQuery exactly once; the
// resulting vector is shared across every vertical's search (step 1).
func (r *Retriever) embedQuery(ctx context.Context, plan *query.Plan) ([]float32, error) {
	name := string(plan.EmbeddingModel)
	if name == "" {
		name = string(query.EmbeddingFast)
	}
	emb, err := r.embedders.GetEmbedder(name)
	if err != nil {
		return nil, err
	}
	return emb.Embed(ctx, plan.EnhancedQuery)
}

// searchVertical runs for one vertical: build the physical
// filter variants, issue a search per variant (unioned, since Provider only
// ANDs distinct map keys), dedupe by ID keeping the max score, then
// optionally fuse BM25.
func (r *Retriever) searchVertical(ctx context.Context, plan *query.Plan, v query.Vertical, queryVector []float32) VerticalOutcome {
	collection := CollectionName(v)
	if collection == "" {
		return VerticalOutcome{Vertical: v}
	}

	variants := BuildFilterVariants(plan.Filters, v)

	byID := make(map[string]vector.Result)
	for _, filter := range variants {
		results, err := r.store.SearchWithFilter(ctx, collection, queryVector, plan.TopK, filter)
		if err != nil {
			// A single variant failing does not fail the vertical; the
			// union still includes whatever the other variants returned
			// (: store error -> empty list, never raised out).
			slog.Warn("vector store search failed", "vertical", v, "collection", collection, "error", err)
			continue
		}
		for _, res := range results {
			existing, ok := byID[res.ID]
			if !ok || res.Score > existing.Score {
				byID[res.ID] = res
			}
		}
	}

	if len(byID) == 0 {
		return VerticalOutcome{Vertical: v}
	}

	queryTerms := Tokenize(plan.EnhancedQuery)
	candidates := make([]Candidate, 0, len(byID))
	for _, res := range byID {
		fused := float64(res.Score)
		if r.cfg.HybridSearch {
			bm25 := NormalizeBM25(BM25Score(queryTerms, res.Content))
			alpha := r.cfg.HybridAlpha
			if alpha == 0 {
				alpha = 0.7
			}
			fused = alpha*float64(res.Score) + (1-alpha)*bm25
		}
		candidates = append(candidates, Candidate{
			ID: res.ID,
			Content: res.Content,
			Vertical: v,
			Metadata: res.Metadata,
			Vector: res.Vector,
			RawScore: res.Score,
			FusedScore: fused,
		})
	}

	return VerticalOutcome{Vertical: v, Candidates: candidates}
}

// searchInternet consults the optional web-search backend and folds its
// hits into the Candidate shape under the internet pseudo-vertical.
// Candidates are ranked by result order only (no dense score is available),
// decaying so later hits never outrank a vertical's genuine top match.
func (r *Retriever) searchInternet(ctx context.Context, plan *query.Plan) []Candidate {
	results, err := r.internet.Search(ctx, plan.EnhancedQuery, plan.TopK)
	if err != nil {
		slog.Warn("internet search failed, treating as empty", "error", err)
		return nil
	}
	candidates := make([]Candidate, 0, len(results))
	for i, res := range results {
		score := 0.5 - float64(i)*0.02
		if score < 0 {
			score = 0
		}
		candidates = append(candidates, Candidate{
			ID: "internet:" + res.URL,
			Content: res.Snippet,
			Vertical: query.VerticalInternet,
			Metadata: map[string]any{
				"title": res.Title,
				"url": res.URL,
				"source": res.Source,
			},
			RawScore: float32(score),
			FusedScore: score,
		})
	}
	return candidates
}

// aggregate implements : weight, dedupe by chunk ID keeping the
// max-scored occurrence, then either MMR-select (Brainstorm) or sort
// descending and keep all.
func (r *Retriever) aggregate(pool []Candidate, plan *query.Plan) []Candidate {
	if len(pool) == 0 {
		return nil
	}

	for i := range pool {
		weight := plan.VerticalWeights[pool[i].Vertical]
		if weight == 0 {
			weight = 1
		}
		pool[i].WeightedScore = weight * pool[i].FusedScore
	}

	byID := make(map[string]int, len(pool))
	deduped := make([]Candidate, 0, len(pool))
	for _, c := range pool {
		if idx, ok := byID[c.ID]; ok {
			if c.WeightedScore > deduped[idx].WeightedScore {
				deduped[idx] = c
			}
			continue
		}
		byID[c.ID] = len(deduped)
		deduped = append(deduped, c)
	}

	if plan.Mode == query.ModeBrainstorm {
		lambda := r.cfg.MMRLambda
		if lambda == 0 {
			lambda = 0.5
		}
		return MMRSelect(deduped, plan.TopK, lambda)
	}

	sort.Slice(deduped, func(i, j int) bool {
		return deduped[i].WeightedScore > deduped[j].WeightedScore
	})
	return deduped
}
