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

import "context"

// InternetResult is a single web search hit, shaped like the original
// internet layer's GoogleSearchClient.search() output (title/url/snippet/
// source), folded into a Candidate under query.VerticalInternet.
type InternetResult struct {
	Title string
	URL string
	Snippet string
	Source string
}

// InternetProvider is the optional web-search backend consulted when
// plan.UseInternet is set. The retriever degrades to zero internet results
// when none is configured, matching the "never crash" resilience theme that
// governs every external dependency in this core.
type InternetProvider interface {
	Search(ctx context.Context, query string, limit int) ([]InternetResult, error)
}

// NoOpInternetProvider returns no results for every query. It is the
// default when no internet backend is configured: plan.UseInternet still
// routes the request, it simply contributes nothing to aggregation.
type NoOpInternetProvider struct{}

func (NoOpInternetProvider) Search(context.Context, string, int) ([]InternetResult, error) {
	return nil, nil
}

var _ InternetProvider = NoOpInternetProvider{}
