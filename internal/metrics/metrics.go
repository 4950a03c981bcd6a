// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeLaunchError = "launch_error"
	OutcomeExitError   = "exit_error"
	OutcomeFormatError = "format_error"
	OutcomeUnavailable = "unavailable"
	OutcomeCanceled    = "canceled"
	OutcomeFailed      = "failed"
)

var (
	EngineInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_engine_invocations_total",
			Help: "Recommendation engine runs by outcome",
		},
		[]string{"outcome"},
	)

	EngineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommender_engine_duration_seconds",
			Help:    "Wall time of recommendation engine processes",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	EngineBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommender_engine_breaker_open",
			Help: "1 while the engine circuit breaker is open",
		},
	)

	RetrainRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_retrain_runs_total",
			Help: "Retraining process runs by outcome",
		},
		[]string{"outcome"},
	)

	RetrainCoalesced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommender_retrain_coalesced_total",
			Help: "Retraining triggers folded into an already pending run",
		},
	)

	ArtistCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_artist_cache_lookups_total",
			Help: "Artist detail cache lookups by result",
		},
		[]string{"result"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route pattern and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
