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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarityIdenticalVectors(t *testing.T) {
	v := []float32{1, 2, 3}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 0.0001)
}

func TestCosineSimilarityOrthogonal(t *testing.T) {
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 0.0001)
}

func TestCosineSimilarityMismatchedOrEmpty(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity(nil, []float32{1}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 2}, []float32{1}))
}

func TestMMRSelectPrefersDiversityOverDuplicateHighScore(t *testing.T) {
	candidates := []Candidate{
		{ID: "a", WeightedScore: 1.0, Vector: []float32{1, 0}},
		{ID: "b", WeightedScore: 0.99, Vector: []float32{1, 0}}, // near-duplicate of a
		{ID: "c", WeightedScore: 0.5, Vector: []float32{0, 1}}, // diverse
	}

	selected := MMRSelect(candidates, 2, 0.5)
	require.Len(t, selected, 2)
	assert.Equal(t, "a", selected[0].ID)
	assert.Equal(t, "c", selected[1].ID, "diverse candidate should beat the near-duplicate at lambda=0.5")
}

func TestMMRSelectCapsAtPoolSize(t *testing.T) {
	candidates := []Candidate{{ID: "a", WeightedScore: 1.0, Vector: []float32{1}}}
	selected := MMRSelect(candidates, 5, 0.5)
	assert.Len(t, selected, 1)
}

func TestMMRSelectEmptyInputs(t *testing.T) {
	assert.Nil(t, MMRSelect(nil, 5, 0.5))
	assert.Nil(t, MMRSelect([]Candidate{{ID: "a"}}, 0, 0.5))
}
