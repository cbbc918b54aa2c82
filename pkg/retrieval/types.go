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

import "github.com/nithin8919/policyengine/pkg/query"

// Candidate is a single retrieved chunk, tagged with its vertical and
// carrying both the raw store score and the weighted/fused score used for
// aggregation and downstream ranking.
type Candidate struct {
	ID string
	Content string
	Vertical query.Vertical
	Metadata map[string]any
	Vector []float32

	RawScore float32 // score as returned by the vector store
	FusedScore float64 // after optional hybrid BM25 fusion
	WeightedScore float64 // after vertical-weight multiplication

	Superseded bool // set by pkg/supersession before final truncation
	SupersededBy string
}

// VerticalOutcome is one vertical's contribution to a retrieval pass: its
// candidates, or the reason it came back empty.
type VerticalOutcome struct {
	Vertical query.Vertical
	Candidates []Candidate
	Err error
}
