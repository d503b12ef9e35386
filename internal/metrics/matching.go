package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Matching engine and session Prometheus metrics.
var (
	MatchingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "matching_duration_seconds",
			Help:      "Time to score a document against a search term",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	MatchingCandidateWords = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "matching_candidate_words",
			Help:      "Distinct candidate words per scored document",
			Buckets:   prometheus.ExponentialBuckets(8, 4, 8),
		},
	)

	MatchingResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matching_results_total",
			Help:      "Words returned by the matching engine",
		},
		[]string{"operation"},
	)

	MatchingDegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matching_degraded_total",
			Help:      "Requests answered with empty results because embeddings were unavailable",
		},
		[]string{"operation", "reason"},
	)

	InferencePoolRunning = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inference_pool_running",
			Help:      "Inference pool workers currently running",
		},
		func() float64 { return float64(currentPoolRunning()) },
	)

	SessionOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_operations_total",
			Help:      "Session save, load and delete operations",
		},
		[]string{"operation", "status"},
	)

	DefinitionLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "definition_lookups_total",
			Help:      "Dictionary lookups by result",
		},
		[]string{"result"},
	)
)

var (
	poolMu      sync.RWMutex
	poolRunning = func() int { return 0 }
)

// SetPoolRunningFunc wires the inference pool gauge to a live source.
func SetPoolRunningFunc(f func() int) {
	poolMu.Lock()
	defer poolMu.Unlock()
	poolRunning = f
}

func currentPoolRunning() int {
	poolMu.RLock()
	defer poolMu.RUnlock()
	return poolRunning()
}

var matchMetricsOnce sync.Once

// RegisterMatchingMetrics registers matching, session and dictionary metrics. Safe to call more than once.
func RegisterMatchingMetrics() {
	matchMetricsOnce.Do(func() {
		prometheus.MustRegister(
			MatchingDuration,
			MatchingCandidateWords,
			MatchingResultsTotal,
			MatchingDegradedTotal,
			InferencePoolRunning,
			SessionOperationsTotal,
			DefinitionLookupsTotal,
		)
	})
}
