package analyzer

import "github.com/prometheus/client_golang/prometheus"

// Prometheus detection metrics.
var (
	anomaliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyzer_anomalies_total",
			Help: "Total number of anomalous samples detected.",
		},
		[]string{"metric", "direction"},
	)
	regressionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyzer_regressions_total",
			Help: "Total number of regression alerts raised.",
		},
		[]string{"metric", "severity"},
	)
	seriesTracked = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "analyzer_series_tracked",
			Help: "Number of metric series currently held in memory.",
		},
	)
	sweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analyzer_sweep_duration_seconds",
			Help:    "Detection sweep duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(anomaliesTotal)
	prometheus.MustRegister(regressionsTotal)
	prometheus.MustRegister(seriesTracked)
	prometheus.MustRegister(sweepDuration)
}
