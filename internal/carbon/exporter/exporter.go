// Package exporter rewrites the secondary transaction log from the chain, e.g. after a
// crash between saving the chain and appending its transactions.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/model"
	"github.com/goodnatureofminers/carbonledger-backend/pkg/batcher"
	"go.uber.org/zap"
)

type Config struct {
	BatchSize     int
	FlushInterval time.Duration
	// RequestsPerSecond caps flushes; non-positive means unlimited.
	RequestsPerSecond int
}

type Exporter struct {
	appender Appender
	metrics  Metrics
	logger   *zap.Logger
	cfg      Config
}

// Result counts rows handed to the batcher and rows confirmed by the backend.
type Result struct {
	Queued   int
	Exported int
}

func New(appender Appender, metrics Metrics, cfg Config, logger *zap.Logger) (*Exporter, error) {
	if appender == nil {
		return nil, errors.New("exporter appender is required")
	}
	if metrics == nil {
		return nil, errors.New("exporter metrics is required")
	}
	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("batch size must be positive, got %d", cfg.BatchSize)
	}
	if cfg.FlushInterval <= 0 {
		return nil, fmt.Errorf("flush interval must be positive, got %s", cfg.FlushInterval)
	}
	return &Exporter{appender: appender, metrics: metrics, logger: logger, cfg: cfg}, nil
}

// Export appends one log row per transaction of every block whose index is at least
// fromIndex, in block order. It returns after all queued rows were flushed or failed;
// the error is the first failed flush.
func (e *Exporter) Export(ctx context.Context, chain []model.Block, fromIndex int) (Result, error) {
	blocks := make([]model.Block, 0, len(chain))
	for _, b := range chain {
		if b.Index >= fromIndex && len(b.Transactions) > 0 {
			blocks = append(blocks, b)
		}
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Index < blocks[j].Index
	})

	b := batcher.New(e.logger, e.flush, e.cfg.BatchSize, e.cfg.FlushInterval, e.cfg.RequestsPerSecond)
	b.Start(ctx)

	var (
		result Result
		addErr error
	)
queue:
	for _, block := range blocks {
		for _, rec := range model.NewTransactionRecords(block.Transactions, block.Index) {
			if addErr = b.Add(ctx, rec); addErr != nil {
				break queue
			}
			result.Queued++
		}
	}

	flushErr := b.Stop()
	result.Exported = b.Flushed()
	e.logger.Info("transaction log export finished",
		zap.Int("from_index", fromIndex),
		zap.Int("blocks", len(blocks)),
		zap.Int("queued", result.Queued),
		zap.Int("exported", result.Exported),
	)

	if flushErr != nil {
		return result, fmt.Errorf("flush transaction log: %w", flushErr)
	}
	if addErr != nil {
		return result, fmt.Errorf("queue transaction log row: %w", addErr)
	}
	return result, nil
}

func (e *Exporter) flush(ctx context.Context, rows []model.TransactionRecord) error {
	started := time.Now()
	// The batcher reuses its buffer after the callback returns.
	records := append([]model.TransactionRecord(nil), rows...)
	err := e.appender.AppendRecords(ctx, records)
	e.metrics.ObserveFlush(err, len(records), started)
	return err
}
