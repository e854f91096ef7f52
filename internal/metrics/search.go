package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and backfill metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "search_requests_total",
			Help:      "Searches by mode, result type and status",
		},
		[]string{"mode", "result_type", "status"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_duration_seconds",
			Help:      "Search latency, embedding included",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"mode"},
	)

	BackfillDocumentsSaved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "backfill_documents_saved_total",
			Help:      "Movies whose plot embedding was written by the backfill",
		},
	)

	BackfillFailedBatches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "backfill_failed_batches_total",
			Help:      "Backfill batches that failed to embed or persist",
		},
	)
)

var searchGroup = newGroup(
	SearchRequestsTotal,
	SearchDuration,
	BackfillDocumentsSaved,
	BackfillFailedBatches,
)

// RegisterSearchMetrics registers the search and backfill collectors. Safe to call repeatedly.
func RegisterSearchMetrics() { searchGroup.register() }
