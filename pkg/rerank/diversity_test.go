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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nithin8919/policyengine/pkg/query"
	"github.com/nithin8919/policyengine/pkg/retrieval"
)

func TestDiversityEnforcerGuaranteesMandatoryCoverage(t *testing.T) {
	predicted := []query.Category{query.CategoryInfrastructure, query.CategoryWelfare}
	candidates := []retrieval.Candidate{
		{ID: "infra1", WeightedScore: 0.9, Content: "classroom toilet construction"},
		{ID: "infra2", WeightedScore: 0.85, Content: "library building maintenance"},
		{ID: "welfare1", WeightedScore: 0.3, Content: "amma vodi scholarship benefit"},
	}

	e := NewDiversityCoverageEnforcer(1, 0.4)
	out := e.Enforce(candidates, predicted, 2)
	require.Len(t, out, 2)

	ids := map[string]bool{}
	for _, c := range out {
		ids[c.ID] = true
	}
	assert.True(t, ids["infra1"], "top infrastructure result must be included")
	assert.True(t, ids["welfare1"], "welfare must get its mandatory slot even though it scores lowest")
}

func TestDiversityEnforcerFillsRemainingByCombinedScore(t *testing.T) {
	predicted := []query.Category{query.CategoryInfrastructure}
	candidates := []retrieval.Candidate{
		{ID: "a", WeightedScore: 0.9, Vertical: query.VerticalGO, Content: "classroom toilet"},
		{ID: "b", WeightedScore: 0.8, Vertical: query.VerticalLegal, Content: "classroom library"},
		{ID: "c", WeightedScore: 0.1, Vertical: query.VerticalSchemes, Content: "unrelated"},
	}

	e := NewDiversityCoverageEnforcer(1, 0.4)
	out := e.Enforce(candidates, predicted, 3)
	require.Len(t, out, 3)
	assert.Equal(t, "a", out[0].ID)
}

func TestReportComputesCoverageScoreAndMissingCategories(t *testing.T) {
	predicted := []query.Category{query.CategoryInfrastructure, query.CategoryTeacher}
	candidates := []retrieval.Candidate{
		{ID: "infra1", WeightedScore: 0.9, Content: "classroom toilet construction"},
	}

	report := Report("infra query", candidates, predicted)
	assert.Equal(t, 1, report.TotalResults)
	assert.InDelta(t, 0.5, report.CoverageScore, 0.0001)
	assert.Equal(t, []query.Category{query.CategoryTeacher}, report.MissingCategories)
	assert.True(t, report.CategoryCoverage[query.CategoryInfrastructure].Covered)
	assert.False(t, report.CategoryCoverage[query.CategoryTeacher].Covered)
}

func TestDiversityEnforcerEmptyInputs(t *testing.T) {
	e := NewDiversityCoverageEnforcer(1, 0.4)
	assert.Nil(t, e.Enforce(nil, nil, 5))
	assert.Nil(t, e.Enforce([]retrieval.Candidate{{ID: "a"}}, nil, 0))
}
