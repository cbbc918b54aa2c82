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

// Package metrics provides Prometheus metrics collection for the query
// pipeline: plan/retrieve/rerank/answer stage durations, per-vertical
// coverage, cache effectiveness, and error counts by kind. Every
// recording method is a nil-safe no-op when metrics are disabled, so
// callers never branch on whether collection is on.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config configures Prometheus metrics collection.
type Config struct {
	Enabled bool `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Namespace string `yaml:"namespace"`
}

func (c *Config) SetDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "/metrics"
	}
	if c.Namespace == "" {
		c.Namespace = "policyengine"
	}
}

// Metrics holds every collector the query pipeline reports to. A nil
// *Metrics is valid: every Record/Observe method guards against it, so
// New returning nil when collection is disabled lets every call site
// stay unconditional.
type Metrics struct {
	registry *prometheus.Registry

	queriesTotal *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	queryErrors *prometheus.CounterVec

	verticalSearches *prometheus.CounterVec
	verticalResults *prometheus.HistogramVec

	rerankDuration *prometheus.HistogramVec

	supersessionDropped prometheus.Counter

	cacheHits *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	llmCalls *prometheus.CounterVec
	llmCallDuration *prometheus.HistogramVec

	coverageRatio prometheus.Histogram
}

// New creates a Metrics instance, or returns (nil, nil) when cfg is nil
// or disabled.
func New(cfg *Config) (*Metrics, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}
	cfg.SetDefaults()

	m := &Metrics{registry: prometheus.NewRegistry()}

	m.queriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace, Subsystem: "query", Name: "total",
		Help: "Total number of queries processed, by mode.",
	}, []string{"mode"})

	m.queryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.Namespace, Subsystem: "query", Name: "duration_seconds",
		Help: "End-to-end query duration in seconds, by mode.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
	}, []string{"mode"})

	m.queryErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace, Subsystem: "query", Name: "errors_total",
		Help: "Total number of queries that returned an error, by kind.",
	}, []string{"kind"})

	m.verticalSearches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace, Subsystem: "retrieval", Name: "vertical_searches_total",
		Help: "Total number of per-vertical searches issued.",
	}, []string{"vertical"})

	m.verticalResults = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.Namespace, Subsystem: "retrieval", Name: "vertical_results",
		Help: "Number of candidates returned per vertical search.",
		Buckets: prometheus.LinearBuckets(0, 5, 10),
	}, []string{"vertical"})

	m.rerankDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.Namespace, Subsystem: "rerank", Name: "duration_seconds",
		Help: "Reranking stage duration in seconds, by reranker.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"reranker"})

	m.supersessionDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: cfg.Namespace, Subsystem: "supersession", Name: "dropped_total",
		Help: "Total number of superseded government-order candidates dropped.",
	})

	m.cacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace, Subsystem: "cache", Name: "hits_total",
		Help: "Total cache hits, by tier (memory, disk).",
	}, []string{"tier", "kind"})

	m.cacheMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace, Subsystem: "cache", Name: "misses_total",
		Help: "Total cache misses, by kind (llm, embed).",
	}, []string{"kind"})

	m.llmCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace, Subsystem: "llm", Name: "calls_total",
		Help: "Total LLM generation calls, by task type.",
	}, []string{"task_type"})

	m.llmCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.Namespace, Subsystem: "llm", Name: "call_duration_seconds",
		Help: "LLM generation call duration in seconds, by task type.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"task_type"})

	m.coverageRatio = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: cfg.Namespace, Subsystem: "rerank", Name: "category_coverage_ratio",
		Help: "Fraction of predicted categories covered by at least one result.",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})

	m.registry.MustRegister(
		m.queriesTotal, m.queryDuration, m.queryErrors,
		m.verticalSearches, m.verticalResults,
		m.rerankDuration, m.supersessionDropped,
		m.cacheHits, m.cacheMisses,
		m.llmCalls, m.llmCallDuration,
		m.coverageRatio,
	)

	return m, nil
}

func (m *Metrics) RecordQuery(mode string, duration time.Duration) {
	if m == nil {
		return
	}
	m.queriesTotal.WithLabelValues(mode).Inc()
	m.queryDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

func (m *Metrics) RecordQueryError(kind string) {
	if m == nil {
		return
	}
	m.queryErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordVerticalSearch(vertical string, resultCount int) {
	if m == nil {
		return
	}
	m.verticalSearches.WithLabelValues(vertical).Inc()
	m.verticalResults.WithLabelValues(vertical).Observe(float64(resultCount))
}

func (m *Metrics) RecordRerank(reranker string, duration time.Duration) {
	if m == nil {
		return
	}
	m.rerankDuration.WithLabelValues(reranker).Observe(duration.Seconds())
}

func (m *Metrics) RecordSupersessionDropped(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.supersessionDropped.Add(float64(count))
}

func (m *Metrics) RecordCacheHit(tier, kind string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(tier, kind).Inc()
}

func (m *Metrics) RecordCacheMiss(kind string) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordLLMCall(taskType string, duration time.Duration) {
	if m == nil {
		return
	}
	m.llmCalls.WithLabelValues(taskType).Inc()
	m.llmCallDuration.WithLabelValues(taskType).Observe(duration.Seconds())
}

func (m *Metrics) RecordCoverageRatio(ratio float64) {
	if m == nil {
		return
	}
	m.coverageRatio.Observe(ratio)
}

// Handler returns an HTTP handler serving the Prometheus exposition
// format. A nil Metrics serves 503, so cmd/policyengine can mount the
// route unconditionally.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
