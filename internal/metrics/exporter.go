package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	exporterFlushTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "exporter",
		Name:      "flush_total",
		Help:      "Count of transaction-log export flushes.",
	}, []string{"status"})
	exporterFlushRows = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "exporter",
		Name:      "flush_rows",
		Help:      "Number of rows written per export flush.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1..2048
	})
	exporterFlushDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "exporter",
		Name:      "flush_duration_seconds",
		Help:      "Duration of a transaction-log export flush.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})
)

// Exporter tracks metrics for transaction-log exports.
type Exporter struct{}

// NewExporter creates an Exporter metrics collector.
func NewExporter() *Exporter {
	return &Exporter{}
}

// ObserveFlush records one flushed batch of log rows.
func (m Exporter) ObserveFlush(err error, rows int, started time.Time) {
	status := statusOf(err)
	exporterFlushTotal.WithLabelValues(status).Inc()
	exporterFlushDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
	exporterFlushRows.Observe(float64(rows))
}
