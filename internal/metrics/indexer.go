package metrics

import "github.com/prometheus/client_golang/prometheus"

// Indexer Prometheus metrics.
var (
	IndexerQueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "advsearch",
			Name:      "indexer_queue_depth",
			Help:      "Operations waiting in the async indexing queue",
		},
		[]string{"backend"},
	)

	IndexerRecoveryDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "advsearch",
			Name:      "indexer_recovery_depth",
			Help:      "Failed operations waiting for retry",
		},
		[]string{"backend"},
	)

	IndexerDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "advsearch",
			Name:      "indexer_dropped_total",
			Help:      "Operations dropped because a queue was full",
		},
		[]string{"backend", "queue"}, // "work" / "recovery"
	)

	IndexerWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "advsearch",
			Name:      "indexer_writes_total",
			Help:      "Index writes by outcome",
		},
		[]string{"backend", "op", "status"},
	)

	IndexerBackendUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "advsearch",
			Name:      "indexer_backend_up",
			Help:      "Last availability probe result (1 up, 0 down)",
		},
		[]string{"backend"},
	)
)

func init() {
	prometheus.MustRegister(IndexerQueueDepth)
	prometheus.MustRegister(IndexerRecoveryDepth)
	prometheus.MustRegister(IndexerDroppedTotal)
	prometheus.MustRegister(IndexerWritesTotal)
	prometheus.MustRegister(IndexerBackendUp)
}
