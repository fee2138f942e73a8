package metrics

import "github.com/prometheus/client_golang/prometheus"

// DBCommandDuration tracks Redis round-trips by command.
var DBCommandDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "lapmatch",
		Name:      "db_command_duration_seconds",
		Help:      "Redis command latency in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
	},
	[]string{"op", "status"}, // status: "ok" / "error"
)

var dbMetricsRegistered bool

// RegisterDBMetrics registers database metrics. Must be called once from main.
func RegisterDBMetrics() {
	if dbMetricsRegistered {
		return
	}
	prometheus.MustRegister(DBCommandDuration)
	dbMetricsRegistered = true
}
