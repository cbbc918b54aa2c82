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

func TestQueryRouterLegalQuery(t *testing.T) {
	r := NewQueryRouter()
	e := NewEntityExtractor()
	normalized := "what does section 12 of the rte act say"
	entities := e.Extract(normalized)

	verticals, scores := r.Route(normalized, entities, ModeQA, IntentSignals{})

	require.NotEmpty(t, verticals)
	assert.Equal(t, VerticalLegal, verticals[0])
	assert.Greater(t, scores[VerticalLegal], 0.0)
}

func TestQueryRouterGOQuery(t *testing.T) {
	r := NewQueryRouter()
	e := NewEntityExtractor()
	normalized := "government order no 190 notification circular"
	entities := e.Extract(normalized)

	verticals, _ := r.Route(normalized, entities, ModeQA, IntentSignals{})
	require.NotEmpty(t, verticals)
	assert.Equal(t, VerticalGO, verticals[0])
}

func TestQueryRouterFallsBackByMode(t *testing.T) {
	r := NewQueryRouter()
	verticals, scores := r.Route("xyz abc", map[string][]Entity{}, ModeBrainstorm, IntentSignals{})
	require.NotEmpty(t, verticals)
	assert.Contains(t, scores, VerticalSchemes)
}

func TestQueryRouterTop3(t *testing.T) {
	r := NewQueryRouter()
	verticals, _ := r.Route(
		"act section rule judgment case court scheme program statistics udise data",
		map[string][]Entity{}, ModeDeepThink, IntentSignals{},
	)
	assert.LessOrEqual(t, len(verticals), 3)
}
