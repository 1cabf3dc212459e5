// Package metrics holds the Prometheus collectors for the recommendation
// pipeline. Collectors register on the default registry at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerationAttempts counts calls per api version; outcome is success, error or empty.
	GenerationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodify_generation_attempts_total",
			Help: "Generation endpoint attempts by api version and outcome",
		},
		[]string{"version", "outcome"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodify_generation_duration_seconds",
			Help:    "Latency of a single generation attempt",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"version"},
	)

	// BreakerState is 0 closed, 1 half-open, 2 open.
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "moodify_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// ExistenceChecks counts live checks; result is found, missing, oversized or error.
	ExistenceChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodify_existence_checks_total",
			Help: "Live existence checks against the video search page",
		},
		[]string{"result"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodify_existence_cache_lookups_total",
			Help: "Existence cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moodify_existence_cache_evictions_total",
			Help: "Entries evicted from the existence cache",
		},
	)

	FallbackSongs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moodify_fallback_songs_total",
			Help: "Static fallback songs used to pad results",
		},
	)

	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodify_recommendations_total",
			Help: "Recommendation requests by outcome",
		},
		[]string{"outcome"},
	)
)
