package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recommendation engine Prometheus metrics.
var (
	RecommendQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lapmatch",
			Name:      "recommend_queries_total",
			Help:      "Total number of recommendation queries",
		},
		[]string{"status"}, // "success" / "empty" / "invalid"
	)

	RecommendRelaxationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lapmatch",
			Name:      "recommend_relaxations_total",
			Help:      "Queries that needed the relaxed filter pass",
		},
	)

	RecommendCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "lapmatch",
			Name:      "recommend_candidates",
			Help:      "Candidate set size after filtering",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100, 250, 500, 1000},
		},
	)

	RecommendCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lapmatch",
			Name:      "recommend_cache_total",
			Help:      "Result cache lookups",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	RecommendDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "lapmatch",
			Name:      "recommend_duration_seconds",
			Help:      "Recommendation pipeline duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
	)
)

var recommendMetricsRegistered bool

// RegisterRecommendMetrics registers recommendation metrics. Must be called once from main.
func RegisterRecommendMetrics() {
	if recommendMetricsRegistered {
		return
	}
	prometheus.MustRegister(RecommendQueriesTotal)
	prometheus.MustRegister(RecommendRelaxationsTotal)
	prometheus.MustRegister(RecommendCandidates)
	prometheus.MustRegister(RecommendDuration)
	prometheus.MustRegister(RecommendCacheTotal)
	recommendMetricsRegistered = true
}
