package mealplan

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "mealplan"

var (
	plansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "plans_total",
			Help:      "Meal plan requests by outcome",
		},
		[]string{"status"},
	)

	generationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "generation_seconds",
			Help:      "Time spent generating a complete meal plan",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	persistenceFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "persistence_fallbacks_total",
			Help:      "Plans whose primary write failed",
		},
	)
)
