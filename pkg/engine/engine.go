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

// Package engine wires the query, retrieval, rerank, supersession, and
// answer packages into the single top-level Query operation the CLI and
// any future HTTP layer call.
package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nithin8919/policyengine/pkg/answer"
	"github.com/nithin8919/policyengine/pkg/cache"
	"github.com/nithin8919/policyengine/pkg/config"
	"github.com/nithin8919/policyengine/pkg/embedders"
	"github.com/nithin8919/policyengine/pkg/llms"
	"github.com/nithin8919/policyengine/pkg/metrics"
	"github.com/nithin8919/policyengine/pkg/query"
	"github.com/nithin8919/policyengine/pkg/rerank"
	"github.com/nithin8919/policyengine/pkg/retrieval"
	"github.com/nithin8919/policyengine/pkg/supersession"
	"github.com/nithin8919/policyengine/pkg/vector"
)

// Engine is the process-wide service container: every dependency is
// constructed once in New and never mutated afterward, so Query is safe
// for concurrent use across requests.
type Engine struct {
	cfg *config.Config
	planner *query.Planner
	retriever *retrieval.Retriever
	supersession *supersession.Manager
	rerankers map[query.Reranker]rerank.Reranker
	diversity *rerank.DiversityCoverageEnforcer
	bm25Booster *rerank.BM25Booster
	composer *answer.Composer
	llmCache *cache.CachedLLM
	embedCaches []*cache.CachedEmbedder
	metrics *metrics.Metrics
}

// New builds an Engine from a fully loaded, defaulted configuration. The
// "answer" LLM slot is required; the "judge" slot is optional (only used
// when feature_flags.llm_judge_rerank is set).
func New(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("engine: config is required")
	}
	if cfg.VectorStore == nil {
		return nil, fmt.Errorf("engine: vector_store configuration is required")
	}

	store, err := vector.NewProvider(cfg.VectorStore)
	if err != nil {
		return nil, fmt.Errorf("engine: vector store: %w", err)
	}

	collectedMetrics, err := metrics.New(&cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("engine: metrics: %w", err)
	}

	cfg.Cache.SetDefaults()
	embeddingDisk, err := cache.NewFileStore(cfg.Cache.EmbeddingDir)
	if err != nil {
		return nil, fmt.Errorf("engine: embedding cache: %w", err)
	}
	llmDisk, err := cache.NewFileStore(cfg.Cache.LLMDir)
	if err != nil {
		return nil, fmt.Errorf("engine: llm cache: %w", err)
	}

	embedderRegistry := embedders.NewEmbedderRegistry()
	var embedCaches []*cache.CachedEmbedder
	registerCachedEmbedder := func(name string, ec *embedders.ProviderConfig) error {
		provider, err := embedderRegistry.CreateEmbedderFromConfig(name, ec)
		if err != nil {
			return err
		}
		if err := embedderRegistry.Remove(name); err != nil {
			return err
		}
		cached := cache.NewCachedEmbedder(provider, embeddingDisk, cfg.Cache.EmbeddingBudget)
		embedCaches = append(embedCaches, cached)
		return embedderRegistry.RegisterEmbedder(name, cached)
	}
	for name, ec := range cfg.Embedders {
		if err := registerCachedEmbedder(name, ec); err != nil {
			return nil, fmt.Errorf("engine: embedder %q: %w", name, err)
		}
	}
	if _, err := embedderRegistry.GetEmbedder(string(query.EmbeddingFast)); err != nil {
		if err := registerCachedEmbedder(string(query.EmbeddingFast), &embedders.ProviderConfig{Type: embedders.ProviderHash}); err != nil {
			return nil, fmt.Errorf("engine: default fast embedder: %w", err)
		}
	}

	llmRegistry := llms.NewLLMRegistry()
	for name, lc := range cfg.LLMs {
		if _, err := llmRegistry.CreateLLMFromConfig(name, lc); err != nil {
			return nil, fmt.Errorf("engine: llm %q: %w", name, err)
		}
	}
	answerLLMRaw, err := llmRegistry.GetLLM("answer")
	if err != nil {
		return nil, fmt.Errorf("engine: llms.answer is required: %w", err)
	}
	answerCache := cache.NewCachedLLM(answerLLMRaw, llmDisk, cfg.Cache.MemoryEntries, "answer")
	var answerLLM llms.LLMProvider = answerCache

	var judgeLLM llms.LLMProvider
	if raw, err := llmRegistry.GetLLM("judge"); err == nil {
		judgeLLM = cache.NewCachedLLM(raw, llmDisk, cfg.Cache.MemoryEntries, "judge")
	}

	retriever := retrieval.NewRetriever(store, embedderRegistry, retrieval.NoOpInternetProvider{}, retrieval.Config{
		HybridAlpha: cfg.Retrieval.HybridAlpha,
		MMRLambda: cfg.Retrieval.MMRLambda,
		HybridSearch: cfg.FeatureFlags.HybridSearch,
	})

	var judge *rerank.LLMJudge
	if judgeLLM != nil {
		judge = rerank.NewLLMJudge(judgeLLM)
	}

	rerankers := map[query.Reranker]rerank.Reranker{
		query.RerankerLight: rerank.NewLightReranker(),
		query.RerankerPolicy: rerank.NewPolicyReranker(judge, cfg.FeatureFlags.LLMJudgeRerank && judge != nil),
		query.RerankerBrainstorm: rerank.NewBrainstormReranker(),
	}

	return &Engine{
		cfg: cfg,
		planner: query.NewPlanner(plannerConfigFrom(cfg)),
		retriever: retriever,
		supersession: supersession.NewManager(store),
		rerankers: rerankers,
		diversity: rerank.NewDiversityCoverageEnforcer(cfg.Retrieval.MinPerCategory, cfg.Retrieval.DiversityWeight),
		bm25Booster: rerank.NewBM25Booster(),
		composer: answer.NewComposer(answerLLM),
		llmCache: answerCache,
		embedCaches: embedCaches,
		metrics: collectedMetrics,
	}, nil
}

// plannerConfigFrom translates the YAML-facing config.RetrievalConfig/
// TimeoutConfig into query.PlannerConfig's per-mode maps.
func plannerConfigFrom(cfg *config.Config) query.PlannerConfig {
	base := query.DefaultPlannerConfig()
	r := cfg.Retrieval
	base.BaseTopK = map[query.Mode]int{
		query.ModeQA: r.QATopK, query.ModeDeepThink: r.DeepTopK, query.ModeBrainstorm: r.BrainstormTopK,
	}
	base.BaseRerankTop = map[query.Mode]int{
		query.ModeQA: r.QARerankTop, query.ModeDeepThink: r.DeepRerankTop, query.ModeBrainstorm: r.BrainstormRerankTop,
	}
	t := cfg.Timeouts
	base.Timeout = map[query.Mode]time.Duration{
		query.ModeQA: t.QA, query.ModeDeepThink: t.DeepThink, query.ModeBrainstorm: t.Brainstorm,
	}
	return base
}

// Query runs one request through plan -> retrieve -> supersession filter
// -> rerank -> bm25 boost -> diversity enforcement -> answer composition,
// producing the Response. Only invalid input and internal invariant
// violations are returned as an error; every other failure mode is
// absorbed and recorded in trace.steps so the response still succeeds.
func (e *Engine) Query(ctx context.Context, rawQuery string, opts query.PlannerOptions) (*Response, error) {
	start := time.Now()
	cacheHitsBefore := e.cacheHitsTotal()
	var steps []string

	trimmed := strings.TrimSpace(rawQuery)
	if trimmed == "" {
		e.metrics.RecordQueryError(string(KindBadRequest))
		return nil, badRequest("query must not be empty")
	}

	plan, err := e.planner.Plan(rawQuery, opts)
	if err != nil {
		e.metrics.RecordQueryError(string(KindBadRequest))
		return nil, badRequest(fmt.Sprintf("unable to plan query: %v", err))
	}
	defer func() { e.metrics.RecordQuery(string(plan.Mode), time.Since(start)) }()

	if plan.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, plan.Timeout)
		defer cancel()
	}

	outcome, err := e.retriever.Retrieve(ctx, plan)
	if err != nil {
		e.metrics.RecordQueryError(string(KindInternal))
		return nil, internalError("retrieval failed", err)
	}
	for vertical, count := range outcome.VerticalCoverage {
		e.metrics.RecordVerticalSearch(string(vertical), count)
	}

	candidates := e.applySupersession(ctx, plan, outcome.Candidates, &steps)

	reranker, ok := e.rerankers[plan.Reranker]
	if !ok {
		reranker = rerank.NoOpReranker{}
	}
	rerankStart := time.Now()
	reranked, err := reranker.Rerank(ctx, plan, candidates)
	e.metrics.RecordRerank(string(plan.Reranker), time.Since(rerankStart))
	if err != nil {
		steps = append(steps, fmt.Sprintf("rerank degraded to original order: %v", err))
		reranked = candidates
	}

	if rerank.ShouldBoostQuery(plan.NormalizedQuery) {
		reranked = e.bm25Booster.Boost(plan.NormalizedQuery, reranked)
		steps = append(steps, "bm25 boosting applied")
	}

	var coverageReport *rerank.CoverageReport
	if len(plan.PredictedCategories) > 0 {
		reranked = e.diversity.Enforce(reranked, plan.PredictedCategories, plan.RerankTop)
		report := rerank.Report(plan.NormalizedQuery, reranked, plan.PredictedCategories)
		coverageReport = &report
		e.metrics.RecordCoverageRatio(report.CoverageScore)
	} else if plan.RerankTop > 0 && len(reranked) > plan.RerankTop {
		reranked = reranked[:plan.RerankTop]
	}

	ans, err := e.composer.Compose(ctx, plan, reranked)
	if err != nil {
		steps = append(steps, fmt.Sprintf("answer generation degraded: %v", err))
	}

	if len(reranked) == 0 {
		steps = append(steps, "no candidates retrieved from any vertical")
	}
	if ctx.Err() != nil {
		steps = append(steps, "query deadline reached; returning partial results")
	}

	return &Response{
		Success: true,
		Query: QueryInfo{
			Original: plan.OriginalQuery,
			Mode: plan.Mode,
			ModeConfidence: plan.ModeConfidence,
		},
		Search: searchInfo(plan, outcome),
		Results: toResults(reranked),
		Answer: toAnswerInfo(ans),
		Trace: Trace{
			RequestID: uuid.NewString(),
			Plan: plan,
			Steps: steps,
			PredictedCategories: categoryStrings(plan.PredictedCategories),
			CoverageReport: coverageReport,
			CacheHits: int(e.cacheHitsTotal() - cacheHitsBefore),
			TimingMs: time.Since(start).Milliseconds(),
		},
	}, nil
}

// cacheHitsTotal sums cumulative hits across the answer LLM cache and
// every embedder cache; Query reports the delta across one call as
// trace.cache_hits.
func (e *Engine) cacheHitsTotal() int64 {
	var total int64
	if e.llmCache != nil {
		total += e.llmCache.Hits()
	}
	for _, c := range e.embedCaches {
		total += c.Hits()
	}
	return total
}

// applySupersession marks GO-vertical candidates the supersession manager
// knows about, dropping them by default (QA, Brainstorm) and keeping them
// with a downranked score under DeepThink so historical analysis remains
// possible.
func (e *Engine) applySupersession(ctx context.Context, plan *query.Plan, candidates []retrieval.Candidate, steps *[]string) []retrieval.Candidate {
	downrank := e.cfg.Retrieval.SupersessionDownrank
	if downrank <= 0 {
		downrank = 0.3
	}

	kept := make([]retrieval.Candidate, 0, len(candidates))
	dropped := 0
	for _, c := range candidates {
		if c.Vertical == query.VerticalGO && e.supersession.IsSuperseded(ctx, c.ID) {
			c.Superseded = true
			c.SupersededBy = e.supersession.SupersedingDocID(ctx, c.ID)
			if plan.Mode != query.ModeDeepThink {
				dropped++
				continue
			}
			c.WeightedScore *= downrank
		}
		kept = append(kept, c)
	}
	if dropped > 0 {
		*steps = append(*steps, fmt.Sprintf("dropped %d superseded document(s)", dropped))
		e.metrics.RecordSupersessionDropped(dropped)
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].WeightedScore > kept[j].WeightedScore })
	return kept
}

func searchInfo(plan *query.Plan, outcome retrieval.Outcome) SearchInfo {
	searched := make([]string, 0, len(plan.Verticals)+1)
	for _, v := range plan.Verticals {
		searched = append(searched, string(v))
	}
	if plan.UseInternet {
		searched = append(searched, string(query.VerticalInternet))
	}
	coverage := make(map[string]int, len(outcome.VerticalCoverage))
	for v, n := range outcome.VerticalCoverage {
		coverage[string(v)] = n
	}
	return SearchInfo{
		VerticalsSearched: searched,
		VerticalCoverage: coverage,
		TotalResults: len(outcome.Candidates),
	}
}

func toResults(candidates []retrieval.Candidate) []Result {
	results := make([]Result, len(candidates))
	for i, c := range candidates {
		results[i] = Result{
			Rank: i + 1,
			ID: c.ID,
			Text: c.Content,
			Vertical: c.Vertical,
			Score: c.WeightedScore,
			Metadata: c.Metadata,
		}
	}
	return results
}

func toAnswerInfo(ans answer.Answer) AnswerInfo {
	bib := make([]BibliographyEntry, len(ans.Bibliography))
	for i, c := range ans.Bibliography {
		bib[i] = BibliographyEntry{Number: c.Number, Text: c.Text}
	}
	return AnswerInfo{
		Text: ans.Text,
		Citations: ans.Citations,
		Bibliography: bib,
		Confidence: ans.Confidence,
	}
}

func categoryStrings(categories []query.Category) []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = string(c)
	}
	return out
}
