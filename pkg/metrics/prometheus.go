package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	ScansProcessed  prometheus.Counter
	ScansAccepted   prometheus.Counter
	ScansRejected   *prometheus.CounterVec
	RelaySends      *prometheus.CounterVec
	RelayReconnects prometheus.Counter
	ScanLatency     prometheus.Histogram
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ScansProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_processed_total",
			Help:      "The total number of barcode scans processed",
		}),
		ScansAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_accepted_total",
			Help:      "The total number of scans accepted as passengers",
		}),
		ScansRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_rejected_total",
			Help:      "The total number of rejected scans",
		}, []string{"reason"}),
		RelaySends: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_sends_total",
			Help:      "The total number of relay send attempts",
		}, []string{"result"}),
		RelayReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_reconnects_total",
			Help:      "The total number of relay reconnect attempts",
		}),
		ScanLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_processing_time_seconds",
			Help:      "Time taken to process a scan",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
