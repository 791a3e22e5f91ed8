package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GenerationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taleweaver_generation_attempts_total",
			Help: "Generation backend calls by result.",
		},
		[]string{"backend", "result"},
	)

	GenerationFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taleweaver_generation_fallbacks_total",
			Help: "Generations that exhausted their retries and returned fallback text.",
		},
		[]string{"backend"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taleweaver_generation_duration_seconds",
			Help:    "Time spent producing one generation, retries included.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"backend"},
	)

	TurnsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taleweaver_turns_total",
			Help: "Completed choice-to-continuation cycles.",
		},
	)

	StoriesSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taleweaver_stories_saved_total",
			Help: "Story saves by store and result.",
		},
		[]string{"store", "result"},
	)
)
