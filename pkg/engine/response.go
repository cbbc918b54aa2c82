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
	"fmt"

	"github.com/nithin8919/policyengine/pkg/query"
)

// ErrorKind classifies a QueryError the way error taxonomy
// does: only the two kinds a caller must react to differently ever reach
// the HTTP layer as a failed response. Every other row of that taxonomy
// (dependency-unavailable, transient, quota, data-integrity, supersession
// cycles) is absorbed inside the engine and surfaces only as a
// trace.steps note on an otherwise-successful Response.
type ErrorKind string

const (
	KindBadRequest ErrorKind = "bad_request"
	KindInternal ErrorKind = "internal"
)

// QueryError is returned by Engine.Query for the two fail-fast cases:
// invalid input and an internal invariant violation (HTTP layer maps
// these to 400 and 500 respectively).
type QueryError struct {
	Kind ErrorKind
	Message string
	Err error
}

func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *QueryError) Unwrap() error { return e.Err }

func badRequest(message string) *QueryError {
	return &QueryError{Kind: KindBadRequest, Message: message}
}

func internalError(message string, err error) *QueryError {
	return &QueryError{Kind: KindInternal, Message: message, Err: err}
}

// QueryInfo is the "query" block of the response shape.
type QueryInfo struct {
	Original string `json:"original"`
	Mode query.Mode `json:"mode"`
	ModeConfidence float64 `json:"mode_confidence"`
}

// SearchInfo is the "search" block of the response shape.
type SearchInfo struct {
	VerticalsSearched []string `json:"verticals_searched"`
	VerticalCoverage map[string]int `json:"vertical_coverage"`
	TotalResults int `json:"total_results"`
}

// Result is one entry of the "results" array in the response shape.
type Result struct {
	Rank int `json:"rank"`
	ID string `json:"id"`
	Text string `json:"text"`
	Vertical query.Vertical `json:"vertical"`
	Score float64 `json:"score"`
	Metadata map[string]any `json:"metadata"`
	Highlights []string `json:"highlights,omitempty"`
}

// BibliographyEntry numbers a formatted citation for the "answer" block.
type BibliographyEntry struct {
	Number int `json:"number"`
	Text string `json:"text"`
}

// AnswerInfo is the "answer" block of the response shape.
type AnswerInfo struct {
	Text string `json:"text"`
	Citations []int `json:"citations"`
	Bibliography []BibliographyEntry `json:"bibliography"`
	Confidence float64 `json:"confidence"`
}

// Trace is the "trace" block of the response shape: enough to debug
// or audit one query's path through the pipeline without re-running it.
type Trace struct {
	RequestID string `json:"request_id"`
	Plan *query.Plan `json:"plan"`
	Steps []string `json:"steps"`
	PredictedCategories []string `json:"predicted_categories"`
	CoverageReport any `json:"coverage_report,omitempty"`
	CacheHits int `json:"cache_hits"`
	TimingMs int64 `json:"timing_ms"`
}

// Response is the single struct the core returns to its HTTP layer,
// matching exactly.
type Response struct {
	Success bool `json:"success"`
	Query QueryInfo `json:"query"`
	Search SearchInfo `json:"search"`
	Results []Result `json:"results"`
	Answer AnswerInfo `json:"answer"`
	Trace Trace `json:"trace"`
	Error string `json:"error,omitempty"`
}
