package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and trending Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paperscout",
			Name:      "search_requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"mode"}, // "semantic" / "browse" (empty query)
	)

	SearchFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "paperscout",
			Name:      "search_fallback_total",
			Help:      "Searches that invoked the lexical fallback stage",
		},
	)

	TrendingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paperscout",
			Name:      "trending_requests_total",
			Help:      "Total number of trending aggregations",
		},
		[]string{"content_type"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchFallbackTotal)
	prometheus.MustRegister(TrendingRequestsTotal)
	searchMetricsRegistered = true
}
