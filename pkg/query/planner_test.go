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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlannerBasicQA(t *testing.T) {
	p := NewPlanner(DefaultPlannerConfig())

	plan, err := p.Plan("What is Section 12 of the RTE Act?", PlannerOptions{})
	require.NoError(t, err)

	assert.Equal(t, ModeQA, plan.Mode)
	assert.NotEmpty(t, plan.Verticals)
	assert.Equal(t, VerticalLegal, plan.Verticals[0])
	assert.Equal(t, []string{"12"}, plan.Filters["sections"])
	assert.Contains(t, plan.EnhancedQuery, "Section 12")
	assert.True(t, plan.IncludeCitations)
	assert.InDelta(t, 1.0, sumWeights(plan.VerticalWeights), 0.001)
}

func TestPlannerDynamicTopK(t *testing.T) {
	p := NewPlanner(DefaultPlannerConfig())

	plan, err := p.Plan(
		"please give a comprehensive holistic 360 policy analysis of infrastructure, welfare, teacher, and curriculum reforms across every district",
		PlannerOptions{},
	)
	require.NoError(t, err)
	assert.Equal(t, ModeDeepThink, plan.Mode)
	assert.Greater(t, plan.TopK, DefaultPlannerConfig().BaseTopK[ModeDeepThink])
}

func TestPlannerExplicitModeOverride(t *testing.T) {
	p := NewPlanner(DefaultPlannerConfig())
	mode := "brainstorm"

	plan, err := p.Plan("school safety ideas", PlannerOptions{ExplicitMode: &mode})
	require.NoError(t, err)
	assert.Equal(t, ModeBrainstorm, plan.Mode)
	assert.Equal(t, 1.0, plan.ModeConfidence)
}

func TestPlannerUseInternetRecencyTrigger(t *testing.T) {
	p := NewPlanner(DefaultPlannerConfig())

	plan, err := p.Plan("what are the latest education schemes", PlannerOptions{})
	require.NoError(t, err)
	assert.True(t, plan.UseInternet)
}

func TestPlannerUseInternetExplicitOverride(t *testing.T) {
	p := NewPlanner(DefaultPlannerConfig())
	useInternet := true

	plan, err := p.Plan("Section 12 of the RTE Act", PlannerOptions{UseInternet: &useInternet})
	require.NoError(t, err)
	assert.True(t, plan.UseInternet)
}

func sumWeights(weights map[Vertical]float64) float64 {
	var total float64
	for _, w := range weights {
		total += w
	}
	return total
}
