package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	BackendQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "advsearch",
			Name:      "backend_query_duration_seconds",
			Help:      "Backend query duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"backend"},
	)

	BackendQueryErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "advsearch",
			Name:      "backend_query_errors_total",
			Help:      "Total failed backend queries",
		},
		[]string{"backend"},
	)

	SearchPageSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "advsearch",
			Name:      "search_page_size",
			Help:      "Number of merged results returned per search",
			Buckets:   []float64{0, 1, 5, 10, 15, 25, 50, 100, 200},
		},
	)

	QueryCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "advsearch",
			Name:      "query_cache_total",
			Help:      "Query cache hits and misses",
		},
		[]string{"backend", "result"}, // "hit" / "miss"
	)
)

func init() {
	prometheus.MustRegister(BackendQueryDuration)
	prometheus.MustRegister(BackendQueryErrorsTotal)
	prometheus.MustRegister(SearchPageSize)
	prometheus.MustRegister(QueryCacheTotal)
}
