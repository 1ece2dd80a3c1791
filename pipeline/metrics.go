package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "healthrouter",
			Name:      "requests_total",
			Help:      "Total answered questions by tool and outcome",
		},
		[]string{"tool", "outcome"}, // outcome: "ok", "recovered", "error"
	)

	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "healthrouter",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"stage"},
	)

	routeTiebreaks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "healthrouter",
			Name:      "route_tiebreaks_total",
			Help:      "Questions routed by the fixed priority order instead of the classifier",
		},
	)
)
