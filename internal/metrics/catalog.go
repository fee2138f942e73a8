package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Catalog snapshot Prometheus metrics.
var (
	CatalogItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lapmatch",
			Name:      "catalog_items",
			Help:      "Items in the published catalog snapshot",
		},
	)

	CatalogMalformedItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lapmatch",
			Name:      "catalog_malformed_items",
			Help:      "Items that failed coercion in the published snapshot",
		},
	)

	CatalogClusterSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "lapmatch",
			Name:      "catalog_cluster_size",
			Help:      "Members per similarity cluster",
		},
		[]string{"cluster"},
	)

	CatalogReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lapmatch",
			Name:      "catalog_reloads_total",
			Help:      "Catalog load attempts",
		},
		[]string{"result"}, // "ok" / "error"
	)
)

var catalogMetricsRegistered bool

// RegisterCatalogMetrics registers catalog metrics. Must be called once from main.
func RegisterCatalogMetrics() {
	if catalogMetricsRegistered {
		return
	}
	prometheus.MustRegister(CatalogItems)
	prometheus.MustRegister(CatalogMalformedItems)
	prometheus.MustRegister(CatalogClusterSize)
	prometheus.MustRegister(CatalogReloadsTotal)
	catalogMetricsRegistered = true
}

// ObserveSnapshot publishes the gauges for a freshly swapped snapshot.
func ObserveSnapshot(items, malformed int, clusterSizes []int) {
	CatalogItems.Set(float64(items))
	CatalogMalformedItems.Set(float64(malformed))
	CatalogClusterSize.Reset()
	for c, n := range clusterSizes {
		CatalogClusterSize.WithLabelValues(strconv.Itoa(c)).Set(float64(n))
	}
}
