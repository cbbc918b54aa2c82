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
	"math"
	"regexp"
	"strings"
	"time"
)

// synonymTable is the closed domain-synonym dictionary used to append
// unseen synonyms of query terms the query already mentions.
var synonymTable = map[string][]string{
	"teacher": {"teacher", "faculty", "educator", "instructor"},
	"student": {"student", "pupil", "learner"},
	"school": {"school", "institution", "educational institution"},
	"transfer": {"transfer", "posting", "shifting", "relocation"},
	"salary": {"salary", "pay", "remuneration", "wages"},
	"qualification": {"qualification", "eligibility", "credentials"},
	"budget": {"budget", "finance", "allocation", "expenditure"},
	"policy": {"policy", "guideline", "directive", "framework"},
	"scheme": {"scheme", "program", "initiative", "project"},
	"department": {"department", "directorate", "ministry"},
	"provision": {"provision", "clause", "section", "article"},
	"mandate": {"mandate", "requirement", "obligation"},
	"amendment": {"amendment", "modification", "revision"},
	"statistics": {"statistics", "data", "metrics", "figures"},
	"enrollment": {"enrollment", "admission", "intake"},
	"dropout": {"dropout", "attrition", "leaving"},
}

var recencyTriggers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\blatest\b`),
	regexp.MustCompile(`(?i)\brecent\b`),
	regexp.MustCompile(`(?i)\bcurrent\b`),
	regexp.MustCompile(`(?i)\bnews\b`),
	regexp.MustCompile(`(?i)\b20(2[4-9]|[3-9]\d)\b`),
}

// PlannerConfig holds the base top-k/rerank-top/timeout/embedding-model
// defaults the planner scales per query. Callers populate this from
// pkg/config's RetrievalConfig and TimeoutConfig.
type PlannerConfig struct {
	BaseTopK map[Mode]int
	BaseRerankTop map[Mode]int
	MaxContextChunks int
	EmbeddingModel map[Mode]EmbeddingModel
	Reranker map[Mode]Reranker
	SynthesisStyle map[Mode]SynthesisStyle
	Timeout map[Mode]time.Duration
}

// DefaultPlannerConfig returns the /defaults.
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		BaseTopK: map[Mode]int{ModeQA: 20, ModeDeepThink: 80, ModeBrainstorm: 60},
		BaseRerankTop: map[Mode]int{ModeQA: 10, ModeDeepThink: 30, ModeBrainstorm: 20},
		MaxContextChunks: 12,
		EmbeddingModel: map[Mode]EmbeddingModel{
			ModeQA: EmbeddingFast, ModeDeepThink: EmbeddingDeep, ModeBrainstorm: EmbeddingDeep,
		},
		Reranker: map[Mode]Reranker{
			ModeQA: RerankerLight, ModeDeepThink: RerankerPolicy, ModeBrainstorm: RerankerBrainstorm,
		},
		SynthesisStyle: map[Mode]SynthesisStyle{
			ModeQA: SynthesisConcise, ModeDeepThink: SynthesisDeepPolicy, ModeBrainstorm: SynthesisExploratory,
		},
		Timeout: map[Mode]time.Duration{
			ModeQA: 2 * time.Second, ModeDeepThink: 10 * time.Second, ModeBrainstorm: 8 * time.Second,
		},
	}
}

// PlannerOptions carries the per-request overrides a caller may supply
// (explicit mode, forced internet use).
type PlannerOptions struct {
	ExplicitMode *string
	UseInternet *bool
}

// Planner composes the normalizer, entity extractor, intent classifier,
// category predictor, and router into a single immutable Plan per query.
type Planner struct {
	cfg PlannerConfig
	normalizer *Normalizer
	entities *EntityExtractor
	intent *IntentClassifier
	categories *CategoryPredictor
	router *QueryRouter
}

// NewPlanner constructs a Planner from the given base configuration.
func NewPlanner(cfg PlannerConfig) *Planner {
	return &Planner{
		cfg: cfg,
		normalizer: NewNormalizer(),
		entities: NewEntityExtractor(),
		intent: NewIntentClassifier(),
		categories: NewCategoryPredictor(),
		router: NewQueryRouter(),
	}
}

// Plan builds the full execution plan for a raw query.
func (p *Planner) Plan(rawQuery string, opts PlannerOptions) (*Plan, error) {
	normalized := p.normalizer.Normalize(rawQuery)

	entities := p.entities.Extract(normalized)

	var intentResult IntentResult
	var err error
	if opts.ExplicitMode != nil {
		intentResult, err = p.intent.ClassifyExplicit(*opts.ExplicitMode)
	} else {
		intentResult, err = p.intent.Classify(normalized)
	}
	if err != nil {
		return nil, err
	}

	verticals, scores := p.router.Route(normalized, entities, intentResult.Mode, intentResult.Signals)
	weights := normalizeWeights(scores, verticals)

	predictedCategories := p.categories.Predict(normalized, intentResult.Mode)

	enhanced := p.enhanceQuery(rawQuery, normalized, entities, intentResult.Mode)
	filters := p.buildFilters(entities)

	baseTopK := p.cfg.BaseTopK[intentResult.Mode]
	topK := baseTopK
	if intentResult.Signals.ComprehensiveScore > 0.5 {
		topK = int(math.Floor(float64(topK) * 1.5))
	}
	if len(verticals) > 3 {
		topK = int(math.Floor(float64(topK) * 1.2))
	}

	useInternet := p.resolveUseInternet(opts, normalized, intentResult)

	entityValues := make(map[string][]string, len(entities))
	for kind := range entities {
		entityValues[kind] = p.entities.UniqueValues(entities, kind)
	}

	plan := &Plan{
		OriginalQuery: rawQuery,
		NormalizedQuery: normalized,
		EnhancedQuery: enhanced,
		Mode: intentResult.Mode,
		ModeConfidence: intentResult.Confidence,
		Verticals: verticals,
		VerticalWeights: weights,
		Entities: entityValues,
		Filters: filters,
		TopK: topK,
		RerankTop: p.cfg.BaseRerankTop[intentResult.Mode],
		MaxContextChunks: p.cfg.MaxContextChunks,
		EmbeddingModel: p.cfg.EmbeddingModel[intentResult.Mode],
		Reranker: p.cfg.Reranker[intentResult.Mode],
		SynthesisStyle: p.cfg.SynthesisStyle[intentResult.Mode],
		IncludeCitations: true,
		Timeout: p.cfg.Timeout[intentResult.Mode],
		PredictedCategories: predictedCategories,
		UseInternet: useInternet,
		IntentSignals: intentResult.Signals,
	}
	return plan, nil
}

func normalizeWeights(scores map[Vertical]float64, selected []Vertical) map[Vertical]float64 {
	var total float64
	for _, v := range selected {
		total += scores[v]
	}
	weights := make(map[Vertical]float64, len(selected))
	if total <= 0 {
		even := 1.0 / float64(len(selected))
		for _, v := range selected {
			weights[v] = even
		}
		return weights
	}
	for _, v := range selected {
		weights[v] = scores[v] / total
	}
	return weights
}

// enhanceQuery appends the entity string, unseen domain synonyms, and a
// mode-specific suffix to the normalized query.
func (p *Planner) enhanceQuery(raw, normalized string, entities map[string][]Entity, mode Mode) string {
	parts := []string{raw}

	if es := p.entities.BuildEntityString(entities); es != "" {
		parts = append(parts, es)
	}

	if syn := relevantSynonyms(normalized); len(syn) > 0 {
		parts = append(parts, strings.Join(syn, " "))
	}

	switch mode {
		case ModeBrainstorm:
			parts = append(parts, "global best practices international models")
		case ModeDeepThink:
			parts = append(parts, "legal framework constitutional judicial administrative")
	}

	return strings.Join(parts, " ")
}

func relevantSynonyms(normalized string) []string {
	var out []string
	for term, syns := range synonymTable {
		if !strings.Contains(normalized, term) {
			continue
		}
		for _, s := range syns {
			if !strings.Contains(normalized, strings.ToLower(s)) {
				out = append(out, s)
			}
		}
	}
	return out
}

// buildFilters builds the *logical* filter map (year, go_number,
// sections) from extracted entities. Physical field mapping per vertical
// happens in the retriever.
func (p *Planner) buildFilters(entities map[string][]Entity) map[string][]string {
	filters := make(map[string][]string)
	if years := p.entities.UniqueValues(entities, EntityYear); len(years) > 0 {
		filters["year"] = years
	}
	if gos := p.entities.UniqueValues(entities, EntityGONumber); len(gos) > 0 {
		filters["go_number"] = gos
	}
	if sections := p.entities.UniqueValues(entities, EntitySection); len(sections) > 0 {
		filters["sections"] = sections
	}
	return filters
}

func (p *Planner) resolveUseInternet(opts PlannerOptions, normalized string, intent IntentResult) bool {
	if opts.UseInternet != nil {
		return *opts.UseInternet
	}

	hasRecencyTrigger := false
	for _, re := range recencyTriggers {
		if re.MatchString(normalized) {
			hasRecencyTrigger = true
			break
		}
	}
	if !hasRecencyTrigger {
		return false
	}

	qaWithSpecificEntity := intent.Mode == ModeQA && intent.Signals.SpecificityScore > 0
	return !qaWithSpecificEntity
}
