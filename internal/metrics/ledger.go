// Package metrics exposes application metrics collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "carbonledger"

var (
	ledgerCommitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "commits_total",
		Help:      "Count of block commits.",
	}, []string{"status"})
	ledgerCommitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "commit_duration_seconds",
		Help:      "Duration of a commit including the durable save.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30},
	}, []string{"status"})
	ledgerChainLength = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "chain_length",
		Help:      "Number of blocks in the in-memory chain.",
	})
)

// Ledger tracks metrics for block commits.
type Ledger struct{}

// NewLedger creates a Ledger metrics collector.
func NewLedger() *Ledger {
	return &Ledger{}
}

// ObserveCommit records the outcome of a commit and the resulting chain length.
func (m Ledger) ObserveCommit(err error, chainLength int, started time.Time) {
	status := statusOf(err)
	ledgerCommitsTotal.WithLabelValues(status).Inc()
	ledgerCommitDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
	ledgerChainLength.Set(float64(chainLength))
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
