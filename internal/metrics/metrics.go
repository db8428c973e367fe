// Package metrics exposes Prometheus collectors for the inline pipeline and
// keeps a small atomic snapshot for the JSON status endpoints.
//
// All recording methods are safe on a nil *Metrics so components can run
// without instrumentation in tests.
package metrics

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ghinline"

// Metrics holds every collector the bot records into.
type Metrics struct {
	registry *prometheus.Registry

	inlineQueries  *prometheus.CounterVec
	inlineLatency  prometheus.Histogram
	githubRequests *prometheus.CounterVec
	githubLatency  *prometheus.HistogramVec
	cacheLookups   *prometheus.CounterVec
	commands       *prometheus.CounterVec
	rateRemaining  prometheus.Gauge
	rateLimit      prometheus.Gauge

	answers      atomic.Int64
	failures     atomic.Int64
	requests     atomic.Int64
	totalLatency atomic.Int64 // nanoseconds
}

// New creates a Metrics with its own registry, including the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		inlineQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inline_queries_total",
			Help:      "Inline queries answered, by intent kind and outcome.",
		}, []string{"kind", "outcome"}),
		inlineLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inline_query_duration_seconds",
			Help:      "Time from receiving an inline query to having its answer.",
			Buckets:   prometheus.DefBuckets,
		}),
		githubRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "github_requests_total",
			Help:      "GitHub API requests, by endpoint and HTTP status (0 for transport errors).",
		}, []string{"endpoint", "status"}),
		githubLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "github_request_duration_seconds",
			Help:      "GitHub API request latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Lookup cache reads, by operation and result.",
		}, []string{"op", "result"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bot_commands_total",
			Help:      "Bot commands handled, by command.",
		}, []string{"command"}),
		rateRemaining: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "github_rate_remaining",
			Help:      "Remaining GitHub API requests in the current window, as last reported.",
		}),
		rateLimit: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "github_rate_limit",
			Help:      "GitHub API request limit for the current window, as last reported.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.inlineQueries,
		m.inlineLatency,
		m.githubRequests,
		m.githubLatency,
		m.cacheLookups,
		m.commands,
		m.rateRemaining,
		m.rateLimit,
	)
	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordInline records one answered inline query.
func (m *Metrics) RecordInline(kind, outcome string, latency time.Duration) {
	if m == nil {
		return
	}
	m.inlineQueries.WithLabelValues(kind, outcome).Inc()
	m.inlineLatency.Observe(latency.Seconds())
	m.answers.Add(1)
	m.totalLatency.Add(int64(latency))
	if outcome == "error" {
		m.failures.Add(1)
	}
}

// RecordGitHubRequest records one round trip to the GitHub API.
func (m *Metrics) RecordGitHubRequest(endpoint string, status int, latency time.Duration) {
	if m == nil {
		return
	}
	m.githubRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.githubLatency.WithLabelValues(endpoint).Observe(latency.Seconds())
	m.requests.Add(1)
}

// RecordCacheLookup records a cache hit or miss for op.
func (m *Metrics) RecordCacheLookup(op string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(op, result).Inc()
}

// RecordCommand records a handled bot command.
func (m *Metrics) RecordCommand(command string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(command).Inc()
}

// SetRateBudget publishes the last known GitHub rate budget.
func (m *Metrics) SetRateBudget(remaining, limit int) {
	if m == nil {
		return
	}
	m.rateRemaining.Set(float64(remaining))
	if limit > 0 {
		m.rateLimit.Set(float64(limit))
	}
}

// Snapshot returns a point-in-time view of the counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	answers := m.answers.Load()
	snap := Snapshot{
		Answers:        answers,
		Failures:       m.failures.Load(),
		GitHubRequests: m.requests.Load(),
	}
	if answers > 0 {
		snap.AvgLatency = time.Duration(m.totalLatency.Load() / answers)
	}
	return snap
}

// Snapshot is a serializable metrics view.
type Snapshot struct {
	Answers        int64         `json:"inline_answers"`
	Failures       int64         `json:"inline_failures"`
	GitHubRequests int64         `json:"github_requests"`
	AvgLatency     time.Duration `json:"avg_latency_ns"`
}
