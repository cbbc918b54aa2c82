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

// Package retrieval implements the parallel multi-vertical retriever: it
// turns a query.Plan into per-vertical vector store searches, fuses hybrid
// BM25 scores, and aggregates the pooled candidates (dedup + MMR).
package retrieval

import "github.com/nithin8919/policyengine/pkg/query"

// collectionNames maps each vertical to its vector store collection name.
var collectionNames = map[query.Vertical]string{
	query.VerticalLegal: "ap_legal_documents",
	query.VerticalGO: "ap_government_orders",
	query.VerticalJudicial: "ap_judicial_documents",
	query.VerticalData: "ap_data_reports",
	query.VerticalSchemes: "ap_schemes",
}

// CollectionName returns the vector store collection backing a vertical, or
// "" if the vertical has no collection (e.g. the internet pseudo-vertical).
func CollectionName(v query.Vertical) string {
	return collectionNames[v]
}

// verticalPriority orders verticals from most to least authoritative,
// matching the original vertical_map.py priority assignment. Used by the
// policy reranker's vertical-priority multiplier.
var verticalPriority = map[query.Vertical]int{
	query.VerticalLegal: 1,
	query.VerticalGO: 2,
	query.VerticalJudicial: 3,
	query.VerticalData: 4,
	query.VerticalSchemes: 5,
}

// VerticalPriority returns a vertical's authority rank (1 = highest). An
// unknown vertical sorts last.
func VerticalPriority(v query.Vertical) int {
	if p, ok := verticalPriority[v]; ok {
		return p
	}
	return len(verticalPriority) + 1
}
