package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	upstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awic_upstream_requests_total",
			Help: "AWIC service calls by procedure and outcome.",
		},
		[]string{"proc", "outcome"},
	)

	upstreamLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "awic_upstream_latency_seconds",
			Help:    "Latency of AWIC service calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
		},
		[]string{"proc"},
	)

	recordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awic_records_total",
			Help: "Records decoded from AWIC responses.",
		},
		[]string{"kind"},
	)

	cacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_results_total",
			Help: "Response cache lookups by outcome.",
		},
		[]string{"outcome"},
	)

	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awic_runs_total",
			Help: "Download runs by return mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)
)

// Collectors returns every collector of this package for registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		httpRequestsTotal,
		httpRequestDurationSeconds,
		upstreamRequestsTotal,
		upstreamLatencySeconds,
		recordsTotal,
		cacheResults,
		runsTotal,
	}
}

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveUpstreamLatency(proc string, durationSeconds float64) {
	upstreamLatencySeconds.WithLabelValues(proc).Observe(durationSeconds)
}

func IncUpstream(proc, outcome string) {
	upstreamRequestsTotal.WithLabelValues(proc, outcome).Inc()
}

func AddRecords(kind string, n int) {
	if n <= 0 {
		return
	}
	recordsTotal.WithLabelValues(kind).Add(float64(n))
}

func IncRun(mode, outcome string) {
	runsTotal.WithLabelValues(mode, outcome).Inc()
}

func IncCache(outcome string) {
	cacheResults.WithLabelValues(outcome).Inc()
}
