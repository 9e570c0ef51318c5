package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query pipeline Prometheus metrics.
var (
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docquery",
			Name:      "queries_total",
			Help:      "Total number of queries by classification and outcome",
		},
		[]string{"classification", "outcome"},
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docquery",
			Name:      "query_duration_seconds",
			Help:      "End-to-end query duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"classification"},
	)

	RejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docquery",
			Name:      "rejections_total",
			Help:      "Queries rejected before execution",
		},
		[]string{"reason"}, // "validation" / "security" / "rate_limit"
	)

	VectorSearchCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docquery",
			Name:      "vector_search_candidates",
			Help:      "Matches above the similarity floor per semantic search",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)

	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docquery",
			Name:      "llm_requests_total",
			Help:      "Total LLM adapter requests",
		},
		[]string{"operation", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docquery",
			Name:      "llm_request_duration_seconds",
			Help:      "LLM adapter request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	ReindexProcessed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docquery",
			Name:      "reindex_processed_documents",
			Help:      "Documents processed by the current reindex run",
		},
	)
)

var queryMetricsRegistered bool

// RegisterQueryMetrics registers query pipeline metrics. Must be called once from main.
func RegisterQueryMetrics() {
	if queryMetricsRegistered {
		return
	}
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(RejectionsTotal)
	prometheus.MustRegister(VectorSearchCandidates)
	prometheus.MustRegister(LLMRequestsTotal)
	prometheus.MustRegister(LLMRequestDuration)
	prometheus.MustRegister(ReindexProcessed)
	queryMetricsRegistered = true
}
