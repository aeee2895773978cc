// Package metrics exposes Prometheus collectors for the recommendation
// pipeline and the HTTP API.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ResolvedTracks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodify_resolver_tracks_total",
			Help: "Tracks collected by the recommendation resolver, by stage",
		},
		[]string{"stage"}, // "ai", "supplement", "direct", "last_resort"
	)

	ResolveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moodify_resolve_duration_seconds",
			Help:    "Duration of a full recommendation resolution",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		},
	)

	ResolveShortfall = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moodify_resolver_shortfall_total",
			Help: "Resolutions that returned fewer tracks than requested",
		},
	)

	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodify_catalog_requests_total",
			Help: "Catalog HTTP requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"}, // outcome: "ok", "error", "breaker_open"
	)

	OracleRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodify_oracle_requests_total",
			Help: "Language model calls by purpose and outcome",
		},
		[]string{"purpose", "outcome"}, // purpose: "mood", "candidates", "reply"
	)

	MoodsClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodify_moods_classified_total",
			Help: "Classified moods by label",
		},
		[]string{"mood"},
	)

	RecorderJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodify_recorder_jobs_total",
			Help: "Persistence jobs by kind and outcome",
		},
		[]string{"kind", "outcome"}, // outcome: "ok", "error", "dropped"
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodify_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodify_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "moodify_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// ErrBreakerOpen lets callers mark a catalog failure as breaker-rejected.
var ErrBreakerOpen = errors.New("circuit breaker open")

func RecordStage(stage string, n int) {
	if n > 0 {
		ResolvedTracks.WithLabelValues(stage).Add(float64(n))
	}
}

func RecordResolve(duration time.Duration, got, want int) {
	ResolveDuration.Observe(duration.Seconds())
	if got < want {
		ResolveShortfall.Inc()
	}
}

func RecordCatalog(endpoint string, err error) {
	CatalogRequests.WithLabelValues(endpoint, outcome(err)).Inc()
}

func RecordOracle(purpose string, err error) {
	OracleRequests.WithLabelValues(purpose, outcome(err)).Inc()
}

func RecordRecorderJob(kind string, err error) {
	RecorderJobs.WithLabelValues(kind, outcome(err)).Inc()
}

func RecordRecorderDrop(kind string) {
	RecorderJobs.WithLabelValues(kind, "dropped").Inc()
}

func RecordHTTP(method, route string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrBreakerOpen):
		return "breaker_open"
	default:
		return "error"
	}
}
