package metrics

import (
	"time"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "operations_total",
		Help:      "Count of chain and transaction-log store operations.",
	}, []string{"operation", "backend", "status"})
	storeOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "operation_duration_seconds",
		Help:      "Duration of chain and transaction-log store operations.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30},
	}, []string{"operation", "backend", "status"})
)

// Store tracks metrics for a persistence backend.
type Store struct {
	backend model.Backend
}

// NewStore constructs a metrics collector for backend.
func NewStore(backend model.Backend) *Store {
	if backend == "" {
		backend = "unknown"
	}
	return &Store{backend: backend}
}

// Observe records a single store call outcome and duration.
func (m Store) Observe(operation string, err error, started time.Time) {
	status := statusOf(err)
	storeOperationsTotal.WithLabelValues(operation, string(m.backend), status).Inc()
	storeOperationDuration.WithLabelValues(operation, string(m.backend), status).Observe(time.Since(started).Seconds())
}
