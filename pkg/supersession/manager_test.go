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

package supersession

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nithin8919/policyengine/pkg/vector"
)

// fakeScanningProvider implements both vector.Provider (minimally) and
// vector.Scanner, serving a fixed, single-page point set.
type fakeScanningProvider struct {
	vector.NilProvider
	points []vector.Result
}

func (f *fakeScanningProvider) Name() string { return "fake-scanner" }

func (f *fakeScanningProvider) Scroll(_ context.Context, _ string, _ int, offset string) ([]vector.Result, string, error) {
	if offset != "" {
		return nil, "", nil
	}
	return f.points, "", nil
}

var _ vector.Provider = (*fakeScanningProvider)(nil)
var _ vector.Scanner = (*fakeScanningProvider)(nil)

func TestManagerResolvesSupersessionClaim(t *testing.T) {
	store := &fakeScanningProvider{points: []vector.Result{
		{Metadata: map[string]any{"doc_id": "go-100", "go_number": "100"}},
		{
			Metadata: map[string]any{
				"doc_id": "go-200",
				"go_number": "200",
				"relations": []any{
					map[string]any{"relation_type": "supersedes", "target": "G.O.Ms.No.100"},
				},
			},
		},
	}}

	m := NewManager(store)
	ctx := context.Background()

	assert.True(t, m.IsSuperseded(ctx, "go-100"))
	assert.Equal(t, "go-200", m.SupersedingDocID(ctx, "go-100"))
	assert.False(t, m.IsSuperseded(ctx, "go-200"))
}

func TestManagerIgnoresSelfLoopAndUnresolvedTarget(t *testing.T) {
	store := &fakeScanningProvider{points: []vector.Result{
		{
			Metadata: map[string]any{
				"doc_id": "go-1",
				"go_number": "1",
				"relations": []any{
					map[string]any{"relation_type": "supersedes", "target": "G.O.Ms.No.1"}, // self-loop
					map[string]any{"relation_type": "supersedes", "target": "G.O.Ms.No.999"}, // unresolved
				},
			},
		},
	}}

	m := NewManager(store)
	ctx := context.Background()
	assert.False(t, m.IsSuperseded(ctx, "go-1"))
}

func TestManagerDegradesGracefullyWithoutScanner(t *testing.T) {
	m := NewManager(vector.NilProvider{})
	ctx := context.Background()
	assert.False(t, m.IsSuperseded(ctx, "anything"))
	assert.Equal(t, "", m.SupersedingDocID(ctx, "anything"))
}

func TestManagerLoadsOnlyOnce(t *testing.T) {
	store := &fakeScanningProvider{points: []vector.Result{
		{Metadata: map[string]any{"doc_id": "go-1", "go_number": "1"}},
	}}
	m := NewManager(store)
	ctx := context.Background()
	m.Load(ctx)
	m.Load(ctx) // second call must not panic or rescan
	assert.False(t, m.IsSuperseded(ctx, "go-1"))
}
