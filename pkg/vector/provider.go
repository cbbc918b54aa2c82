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

// Package vector defines the VectorStore abstraction the retrieval core consumes
// (read-only: search by vector with an optional filter) and the concrete providers
// that implement it.
package vector

import "context"

// Result is a single hit returned by a Provider search. Content carries the raw
// chunk body when the provider's payload has a "content" field; Metadata carries
// the full payload as retrieved from the store, untouched.
type Result struct {
	ID string
	Score float32
	Content string
	Vector []float32
	Metadata map[string]any
}

// Provider is the store-agnostic contract every backend implements. A filter
// value may be a scalar (exact match) or a []string (OR-match against that
// field). Providers that cannot express disjunction natively filter client-side.
//
// Store errors never propagate out of a vertical's search path uninterpreted:
// callers treat an error or an empty collection as zero results (spec ).
type Provider interface {
	Name() string
	Upsert(ctx context.Context, collection string, id string, vector []float32, metadata map[string]any) error
	Search(ctx context.Context, collection string, vector []float32, topK int) ([]Result, error)
	SearchWithFilter(ctx context.Context, collection string, vector []float32, topK int, filter map[string]any) ([]Result, error)
	Delete(ctx context.Context, collection string, id string) error
	DeleteByFilter(ctx context.Context, collection string, filter map[string]any) error
	CreateCollection(ctx context.Context, collection string, vectorDimension int) error
	DeleteCollection(ctx context.Context, collection string) error
	Close() error
}

// Scanner is an optional capability for providers that can enumerate a
// collection's points without a query vector. It backs components that need
// a full-collection pass (e.g. supersession relation discovery) rather than
// a top-k search. offset is opaque and provider-defined; pass "" to start a
// scan and feed the returned nextOffset back in to continue. An empty
// nextOffset means the scan is complete.
type Scanner interface {
	Scroll(ctx context.Context, collection string, limit int, offset string) (results []Result, nextOffset string, err error)
}

// NilProvider is returned when no provider configuration is supplied. Every
// operation is a no-op / empty result rather than an error, so an engine built
// without a configured store still answers queries (with empty retrieval).
type NilProvider struct{}

func (NilProvider) Name() string { return "nil" }

func (NilProvider) Upsert(context.Context, string, string, []float32, map[string]any) error {
	return nil
}

func (NilProvider) Search(context.Context, string, []float32, int) ([]Result, error) {
	return nil, nil
}

func (NilProvider) SearchWithFilter(context.Context, string, []float32, int, map[string]any) ([]Result, error) {
	return nil, nil
}

func (NilProvider) Delete(context.Context, string, string) error { return nil }

func (NilProvider) DeleteByFilter(context.Context, string, map[string]any) error { return nil }

func (NilProvider) CreateCollection(context.Context, string, int) error { return nil }

func (NilProvider) DeleteCollection(context.Context, string) error { return nil }

func (NilProvider) Close() error { return nil }

var _ Provider = NilProvider{}
