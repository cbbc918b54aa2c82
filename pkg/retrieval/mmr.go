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

import "math"

// CosineSimilarity returns the cosine similarity of two vectors, or 0 if
// either is empty/zero-length or their lengths mismatch.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// MMRSelect implements Maximal Marginal Relevance selection over a pooled
// candidate set: iteratively pick the candidate
// maximizing λ·relevance − (1−λ)·max-similarity-to-already-selected, until
// topK items are chosen or the pool is exhausted.
func MMRSelect(candidates []Candidate, topK int, lambda float64) []Candidate {
	if topK <= 0 || len(candidates) == 0 {
		return nil
	}
	if topK >= len(candidates) {
		topK = len(candidates)
	}

	pool := make([]Candidate, len(candidates))
	copy(pool, candidates)
	selected := make([]Candidate, 0, topK)
	chosen := make([]bool, len(pool))

	for len(selected) < topK {
		bestIdx := -1
		bestScore := math.Inf(-1)

		for i, c := range pool {
			if chosen[i] {
				continue
			}
			maxSim := 0.0
			for _, s := range selected {
				if sim := CosineSimilarity(c.Vector, s.Vector); sim > maxSim {
					maxSim = sim
				}
			}
			mmrScore := lambda*c.WeightedScore - (1-lambda)*maxSim
			if mmrScore > bestScore {
				bestScore = mmrScore
				bestIdx = i
			}
		}

		if bestIdx == -1 {
			break
		}
		chosen[bestIdx] = true
		selected = append(selected, pool[bestIdx])
	}

	return selected
}
