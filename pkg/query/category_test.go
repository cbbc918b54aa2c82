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

func TestCategoryPredictorBroadQueryDeepThink(t *testing.T) {
	p := NewCategoryPredictor()
	cats := p.Predict("what are the current education policies in Andhra Pradesh", ModeDeepThink)
	assert.ElementsMatch(t, AllCategories, cats)
}

func TestCategoryPredictorBroadQueryQA(t *testing.T) {
	p := NewCategoryPredictor()
	cats := p.Predict("what are the current education policies in Andhra Pradesh", ModeQA)
	assert.Len(t, cats, 5)
	assert.Equal(t, CategoryAccess, cats[0])
}

func TestCategoryPredictorSpecificKeyword(t *testing.T) {
	p := NewCategoryPredictor()
	cats := p.Predict("Nadu-Nedu infrastructure development guidelines", ModeQA)
	assert.Contains(t, cats, CategoryInfrastructure)
}

func TestCategoryPredictorMandatoryImplementation(t *testing.T) {
	p := NewCategoryPredictor()
	cats := p.Predict("teacher training program implementation roadmap", ModeQA)
	assert.Contains(t, cats, CategoryGovernance)
	assert.Contains(t, cats, CategoryInfrastructure)
	assert.Contains(t, cats, CategoryWelfare)
	assert.Contains(t, cats, CategoryTeacher)
}

func TestCategoryPredictorEquity(t *testing.T) {
	p := NewCategoryPredictor()
	cats := p.Predict("inclusive education for disabled children", ModeQA)
	assert.Contains(t, cats, CategoryAccess)
	assert.Contains(t, cats, CategoryWelfare)
}
