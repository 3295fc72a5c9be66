package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "treediff"

// metrics holds the Prometheus metrics for the diff server.
type metrics struct {
	diffDuration  *prometheus.HistogramVec
	diffsTotal    *prometheus.CounterVec
	patchCount    prometheus.Histogram
	documentNodes prometheus.Histogram
	matchRatio    prometheus.Histogram
	subscribers   prometheus.Gauge
	framesSent    prometheus.Counter
	frameBytes    prometheus.Counter
}

// newMetrics registers the server metrics with the given registry.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		diffDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "diff_duration_seconds",
			Help:      "Time to diff two documents end to end",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),

		diffsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "diffs_total",
			Help:      "Total diff requests by outcome",
		}, []string{"source", "status"}),

		patchCount: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "patches_per_diff",
			Help:      "Number of patches produced per diff",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		}),

		documentNodes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "document_nodes",
			Help:      "Node count of diffed documents",
			Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000},
		}),

		matchRatio: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "match_ratio",
			Help:      "Fraction of old-document nodes matched in the new one",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),

		subscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_subscribers",
			Help:      "Number of connected WebSocket subscribers",
		}),

		framesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "frames_sent_total",
			Help:      "Total patch frames sent to subscribers",
		}),

		frameBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "frame_bytes_total",
			Help:      "Total bytes of patch frames sent to subscribers",
		}),
	}
}
