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

// Package query turns a raw natural-language query into a deterministic
// execution plan: normalization, entity extraction, intent classification,
// category prediction, vertical routing, and plan assembly.
package query

import "time"

// Mode is the query intent classification that drives downstream retrieval
// and synthesis behavior.
type Mode string

const (
	ModeQA Mode = "qa"
	ModeDeepThink Mode = "deep_think"
	ModeBrainstorm Mode = "brainstorm"
)

// Vertical identifies one of the five policy-knowledge collections.
type Vertical string

const (
	VerticalLegal Vertical = "legal"
	VerticalGO Vertical = "go"
	VerticalJudicial Vertical = "judicial"
	VerticalData Vertical = "data"
	VerticalSchemes Vertical = "schemes"
	VerticalInternet Vertical = "internet"
)

// AllVerticals lists the five searchable knowledge verticals, excluding the
// internet pseudo-vertical which is only ever added explicitly.
var AllVerticals = []Vertical{VerticalLegal, VerticalGO, VerticalJudicial, VerticalData, VerticalSchemes}

// Category is one of the seven fixed policy domains used for mandatory
// coverage enforcement.
type Category string

const (
	CategoryAccess Category = "access"
	CategoryInfrastructure Category = "infrastructure"
	CategoryGovernance Category = "governance"
	CategoryWelfare Category = "welfare"
	CategoryCurriculum Category = "curriculum"
	CategoryAssessment Category = "assessment"
	CategoryTeacher Category = "teacher"
)

// PriorityOrder is the tie-break order used whenever categories of equal
// score must be ordered deterministically. It is taken from the original
// category predictor's priority_order, which takes precedence over the
// prose listing in the distilled spec.
var PriorityOrder = []Category{
	CategoryAccess,
	CategoryInfrastructure,
	CategoryGovernance,
	CategoryWelfare,
	CategoryTeacher,
	CategoryCurriculum,
	CategoryAssessment,
}

// AllCategories is the closed set of seven policy categories.
var AllCategories = []Category{
	CategoryAccess, CategoryInfrastructure, CategoryGovernance, CategoryWelfare,
	CategoryCurriculum, CategoryAssessment, CategoryTeacher,
}

// EmbeddingModel selects which named embedder slot a plan uses.
type EmbeddingModel string

const (
	EmbeddingFast EmbeddingModel = "fast"
	EmbeddingDeep EmbeddingModel = "deep"
)

// Reranker selects which rerank strategy a plan uses.
type Reranker string

const (
	RerankerLight Reranker = "light"
	RerankerPolicy Reranker = "policy"
	RerankerBrainstorm Reranker = "brainstorm"
)

// SynthesisStyle selects the answer-composer prompt template.
type SynthesisStyle string

const (
	SynthesisConcise SynthesisStyle = "concise"
	SynthesisDeepPolicy SynthesisStyle = "deep_policy"
	SynthesisExploratory SynthesisStyle = "exploratory"
)

// Entity is a single structured reference extracted from a query, e.g. a
// section number or a GO number, with its raw span and normalized form.
type Entity struct {
	Kind string
	Raw string
	Normalized string
	Start int
	End int
}

// IntentSignals are the min-max normalized per-mode scores produced by the
// intent classifier, consumed by the router and by dynamic top-k sizing.
type IntentSignals struct {
	QAScore float64
	DeepThinkScore float64
	BrainstormScore float64
	ComprehensiveScore float64
	SpecificityScore float64
}

// IntentResult is the output of the intent classifier: the chosen mode, its
// confidence, and the signals used to reach it.
type IntentResult struct {
	Mode Mode
	Confidence float64
	Signals IntentSignals
}

// Plan is the immutable execution plan produced by the planner and
// consumed by the retriever, reranker, and answer composer. It is created
// once per query and never mutated after Plan() returns.
type Plan struct {
	OriginalQuery string
	NormalizedQuery string
	EnhancedQuery string

	Mode Mode
	ModeConfidence float64

	Verticals []Vertical
	VerticalWeights map[Vertical]float64

	Entities map[string][]string
	Filters map[string][]string

	TopK int
	RerankTop int
	MaxContextChunks int

	EmbeddingModel EmbeddingModel
	Reranker Reranker
	SynthesisStyle SynthesisStyle

	IncludeCitations bool
	Timeout time.Duration

	PredictedCategories []Category
	UseInternet bool

	IntentSignals IntentSignals
}
