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

func TestIntentClassifierEmptyQuery(t *testing.T) {
	c := NewIntentClassifier()
	_, err := c.Classify(" ")
	require.Error(t, err)

	var classifierErr *ClassifierError
	require.ErrorAs(t, err, &classifierErr)
}

func TestIntentClassifierShortQAQuery(t *testing.T) {
	c := NewIntentClassifier()
	result, err := c.Classify("what is section 12")
	require.NoError(t, err)
	assert.Equal(t, ModeQA, result.Mode)
	assert.Equal(t, 0.9, result.Confidence)
}

func TestIntentClassifierSpecificEntity(t *testing.T) {
	c := NewIntentClassifier()
	result, err := c.Classify("explain the reasoning behind go 190 thoroughly for our internal review")
	require.NoError(t, err)
	assert.Equal(t, ModeQA, result.Mode)
	assert.Equal(t, 0.85, result.Confidence)
}

func TestIntentClassifierLongQueryDefaultsDeepThink(t *testing.T) {
	c := NewIntentClassifier()
	q := "we would like a thorough write up covering every aspect of the district level teacher posting process end to end"
	result, err := c.Classify(q)
	require.NoError(t, err)
	assert.Equal(t, ModeDeepThink, result.Mode)
	assert.Equal(t, 0.7, result.Confidence)
}

func TestIntentClassifierBrainstormKeywords(t *testing.T) {
	c := NewIntentClassifier()
	result, err := c.Classify("brainstorm innovative ideas from Finland and Singapore for school improvements")
	require.NoError(t, err)
	assert.Equal(t, ModeBrainstorm, result.Mode)
}

func TestIntentClassifierExplicitOverride(t *testing.T) {
	c := NewIntentClassifier()
	result, err := c.ClassifyExplicit("deep_think")
	require.NoError(t, err)
	assert.Equal(t, ModeDeepThink, result.Mode)
	assert.Equal(t, 1.0, result.Confidence)

	_, err = c.ClassifyExplicit("unknown")
	assert.Error(t, err)
}
