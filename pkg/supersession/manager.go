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

// Package supersession tracks which government-order documents have been
// superseded by a later one, so retrieval can drop or downrank them.
package supersession

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"sync"

	"github.com/nithin8919/policyengine/pkg/query"
	"github.com/nithin8919/policyengine/pkg/retrieval"
	"github.com/nithin8919/policyengine/pkg/vector"
)

var goCollection = retrieval.CollectionName(query.VerticalGO)

var digitsPattern = regexp.MustCompile(`\d+`)

// claim is a raw (new_doc_id, superseded_go_number) pair read from a
// chunk's "relations" payload field before the go_number -> doc_id map is
// fully built, matching the original _build_supersession_map's two-pass
// structure (accumulate claims while scanning, resolve once scanning ends).
type claim struct {
	newDocID string
	oldGONum string
}

// Manager is a process-wide, read-mostly index of superseded documents. It
// scans the "go" collection once, on first use, and answers IsSuperseded /
// SupersedingDocID from in-memory maps thereafter. Safe for concurrent use.
type Manager struct {
	store vector.Provider

	once sync.Once
	mu sync.RWMutex
	bySuperseded map[string]string // superseded doc_id -> superseding doc_id
}

// NewManager constructs a Manager. The scan does not happen until the
// first IsSuperseded/SupersedingDocID call (or an explicit Load).
func NewManager(store vector.Provider) *Manager {
	return &Manager{store: store}
}

// Load triggers the one-time scan-and-resolve pass if it hasn't run yet.
// Safe to call redundantly or concurrently; only the first call does work.
func (m *Manager) Load(ctx context.Context) {
	m.once.Do(func() { m.build(ctx) })
}

// IsSuperseded reports whether docID has been superseded by a later
// document. Triggers the lazy scan on first call.
func (m *Manager) IsSuperseded(ctx context.Context, docID string) bool {
	m.Load(ctx)
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.bySuperseded[docID]
	return ok
}

// SupersedingDocID returns the doc_id that superseded docID, or "" if it
// has not been superseded (or the scan found nothing). Triggers the lazy
// scan on first call.
func (m *Manager) SupersedingDocID(ctx context.Context, docID string) string {
	m.Load(ctx)
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bySuperseded[docID]
}

// build scans the "go" collection via vector.Scanner (degrading to a no-op
// index when the configured store doesn't support scanning — e.g. Chromem,
// Pinecone — rather than failing retrieval), builds the go_number -> doc_id
// map and the list of supersession claims in one pass, then resolves
// claims against the map, skipping self-loops and unresolved targets.
func (m *Manager) build(ctx context.Context) {
	scanner, ok := m.store.(vector.Scanner)
	if !ok {
		slog.Warn("vector store does not support scanning; supersession tracking disabled", "store", m.store.Name())
		m.mu.Lock()
		m.bySuperseded = map[string]string{}
		m.mu.Unlock()
		return
	}

	goNumberToID := make(map[string]string)
	var claims []claim

	offset := ""
	for {
		results, next, err := scanner.Scroll(ctx, goCollection, 1000, offset)
		if err != nil {
			slog.Error("supersession scan failed", "error", err)
			break
		}

		for _, r := range results {
			docID, _ := r.Metadata["doc_id"].(string)
			goNumber, _ := r.Metadata["go_number"].(string)
			if goNumber == "" {
				if n, ok := r.Metadata["go_number"].(int64); ok {
					goNumber = strconv.FormatInt(n, 10)
				}
			}
			if docID == "" {
				continue
			}
			if goNumber != "" {
				goNumberToID[goNumber] = docID
			}

			relations, _ := r.Metadata["relations"].([]any)
			for _, rel := range relations {
				relMap, ok := rel.(map[string]any)
				if !ok {
					continue
				}
				if relType, _ := relMap["relation_type"].(string); relType != "supersedes" {
					continue
				}
				target, _ := relMap["target"].(string)
				match := digitsPattern.FindString(target)
				if match == "" {
					continue
				}
				claims = append(claims, claim{newDocID: docID, oldGONum: match})
			}
		}

		if next == "" {
			break
		}
		offset = next
	}

	resolved := make(map[string]string, len(claims))
	for _, c := range claims {
		oldID, ok := goNumberToID[c.oldGONum]
		if !ok || oldID == c.newDocID {
			continue
		}
		resolved[oldID] = c.newDocID
	}

	slog.Info("supersession map built", "superseded_count", len(resolved))

	m.mu.Lock()
	m.bySuperseded = resolved
	m.mu.Unlock()
}
