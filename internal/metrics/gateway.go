package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gatewayOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "operations_total",
		Help:      "Count of persistence gateway operations.",
	}, []string{"operation", "status"})
	gatewayOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "operation_duration_seconds",
		Help:      "Duration of persistence gateway operations including retries.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "status"})
	gatewayRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "retries_total",
		Help:      "Count of retried save attempts.",
	}, []string{"operation"})
	gatewayRecoveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "load_recoveries_total",
		Help:      "Count of loads that fell back to an empty chain, by reason.",
	}, []string{"reason"})
)

// Gateway tracks metrics for the persistence gateway.
type Gateway struct{}

// NewGateway creates a Gateway metrics collector.
func NewGateway() *Gateway {
	return &Gateway{}
}

// Observe records duration and status of a gateway operation.
func (m Gateway) Observe(operation string, err error, started time.Time) {
	status := statusOf(err)
	gatewayOperationsTotal.WithLabelValues(operation, status).Inc()
	gatewayOperationDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}

// ObserveRetry counts one retried attempt of operation.
func (m Gateway) ObserveRetry(operation string) {
	gatewayRetriesTotal.WithLabelValues(operation).Inc()
}

// ObserveRecovery counts a load that degraded to "no chain".
func (m Gateway) ObserveRecovery(reason string) {
	gatewayRecoveriesTotal.WithLabelValues(reason).Inc()
}
