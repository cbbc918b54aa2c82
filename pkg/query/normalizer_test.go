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
)

func TestNormalizerNormalize(t *testing.T) {
	n := NewNormalizer()

	cases := []struct {
		in string
		want string
	}{
		{" What IS Section 12A(1)? ", "what is section 12a(1)"},
		{"Tell me about GO 190.", "tell me about go 190"},
		{"Multiple spaces here", "multiple spaces here"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, n.Normalize(c.in))
	}
}

func TestNormalizerRemoveFiller(t *testing.T) {
	n := NewNormalizer()
	got := n.RemoveFiller("what is section 12a")
	assert.Equal(t, "section 12a", got)
}

func TestNormalizerCleanForBM25(t *testing.T) {
	n := NewNormalizer()
	got := n.CleanForBM25("What is the Right to Education Act, 2009?")
	assert.NotContains(t, got, "?")
	assert.Contains(t, got, "right")
}
