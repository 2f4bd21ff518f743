// Package gateway loads and saves the chain against the remote persistence backend and
// owns the decision to bootstrap a fresh chain.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/canonical"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/model"
	"github.com/goodnatureofminers/carbonledger-backend/internal/clock"
	"go.uber.org/zap"
)

// Recovery names the branch taken when a load degrades to "no chain".
type Recovery string

const (
	RecoveryNone        Recovery = ""
	RecoveryTransport   Recovery = "transport_error"
	RecoveryNoChain     Recovery = "no_chain"
	RecoveryUnparseable Recovery = "unparseable"
	RecoveryEmptyChain  Recovery = "empty_chain"
)

// ErrGenesisNotPersisted is returned by Open when a freshly bootstrapped chain could
// not be saved. The ledger is initialized regardless.
var ErrGenesisNotPersisted = errors.New("genesis block not persisted")

const (
	operationLoad             = "load"
	operationSaveChain        = "save_chain"
	operationSaveTransactions = "save_transactions"
)

// Config bounds remote calls.
type Config struct {
	CallTimeout  time.Duration
	SaveAttempts int
	RetryBackoff time.Duration
}

// Gateway persists the chain document and the secondary transaction log.
type Gateway struct {
	store        Store
	metrics      Metrics
	logger       *zap.Logger
	callTimeout  time.Duration
	saveAttempts int
	retryBackoff time.Duration
	sleep        func(context.Context, time.Duration) error
	now          func() time.Time
}

func New(store Store, metrics Metrics, cfg Config, logger *zap.Logger) (*Gateway, error) {
	if store == nil {
		return nil, errors.New("gateway store is required")
	}
	if metrics == nil {
		return nil, errors.New("gateway metrics is required")
	}
	if cfg.CallTimeout <= 0 {
		return nil, fmt.Errorf("call timeout must be positive, got %s", cfg.CallTimeout)
	}
	if cfg.SaveAttempts < 1 {
		cfg.SaveAttempts = 1
	}
	return &Gateway{
		store:        store,
		metrics:      metrics,
		logger:       logger,
		callTimeout:  cfg.CallTimeout,
		saveAttempts: cfg.SaveAttempts,
		retryBackoff: cfg.RetryBackoff,
		sleep:        clock.Sleep,
		now:          time.Now,
	}, nil
}

// Open loads the remote chain, bootstraps a genesis chain when none is usable and hands
// the result to ledger. A non-nil error wrapping ErrGenesisNotPersisted still leaves the
// ledger ready.
func (g *Gateway) Open(ctx context.Context, ledger Initializer) error {
	chain, _ := g.Load(ctx)
	chain, saveErr := g.BootstrapIfEmpty(ctx, chain)
	if err := ledger.Initialize(chain); err != nil {
		return fmt.Errorf("initialize ledger: %w", err)
	}
	if saveErr != nil {
		return fmt.Errorf("%w: %w", ErrGenesisNotPersisted, saveErr)
	}
	return nil
}

// Load fetches and parses the stored chain. It never fails: transport errors, missing
// rows and unparseable documents all yield a nil chain and the recovery branch taken.
// Linkage is not verified here.
func (g *Gateway) Load(ctx context.Context) ([]model.Block, Recovery) {
	started := time.Now()

	var rows []model.ChainRow
	err := g.call(ctx, func(ctx context.Context) error {
		var err error
		rows, err = g.store.ChainRows(ctx)
		return err
	})
	g.metrics.Observe(operationLoad, err, started)
	if err != nil {
		return g.recover(RecoveryTransport, err)
	}
	if len(rows) == 0 || rows[0].Document == "" {
		return g.recover(RecoveryNoChain, nil)
	}

	chain, err := canonical.ParseDocument(rows[0].Document)
	if err != nil {
		// The unparseable document is discarded and overwritten by the bootstrap save.
		return g.recover(RecoveryUnparseable, err)
	}
	if len(chain) == 0 {
		return g.recover(RecoveryEmptyChain, nil)
	}

	g.logger.Info("chain loaded", zap.Int("blocks", len(chain)))
	return chain, RecoveryNone
}

// BootstrapIfEmpty returns chain unchanged when it has blocks. Otherwise it creates the
// genesis block and saves it immediately.
func (g *Gateway) BootstrapIfEmpty(ctx context.Context, chain []model.Block) ([]model.Block, error) {
	if len(chain) > 0 {
		return chain, nil
	}

	chain = []model.Block{model.NewGenesisBlock(g.now())}
	g.logger.Info("bootstrapping chain with genesis block")
	if err := g.SaveChain(ctx, chain); err != nil {
		return chain, fmt.Errorf("save genesis chain: %w", err)
	}
	return chain, nil
}

// SaveChain replaces the stored chain document wholesale.
func (g *Gateway) SaveChain(ctx context.Context, chain []model.Block) error {
	document := string(canonical.MarshalChain(chain))
	return g.retry(ctx, operationSaveChain, func(ctx context.Context) error {
		if err := g.call(ctx, g.store.DeleteChain); err != nil {
			return fmt.Errorf("delete chain: %w", err)
		}
		if err := g.call(ctx, func(ctx context.Context) error {
			return g.store.InsertChain(ctx, document)
		}); err != nil {
			return fmt.Errorf("insert chain: %w", err)
		}
		return nil
	})
}

// SaveTransactions appends one log row per transaction, tagged with blockIndex.
// Nothing is written for an empty list.
func (g *Gateway) SaveTransactions(ctx context.Context, txs []model.Transaction, blockIndex int) error {
	if len(txs) == 0 {
		return nil
	}
	return g.AppendRecords(ctx, model.NewTransactionRecords(txs, blockIndex))
}

// AppendRecords appends prepared log rows. A retried append may duplicate rows whose
// first attempt reached the backend.
func (g *Gateway) AppendRecords(ctx context.Context, records []model.TransactionRecord) error {
	if len(records) == 0 {
		return nil
	}
	return g.retry(ctx, operationSaveTransactions, func(ctx context.Context) error {
		return g.call(ctx, func(ctx context.Context) error {
			return g.store.AppendTransactionRecords(ctx, records)
		})
	})
}

func (g *Gateway) recover(reason Recovery, err error) ([]model.Block, Recovery) {
	g.metrics.ObserveRecovery(string(reason))
	fields := []zap.Field{zap.String("reason", string(reason))}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	g.logger.Warn("no usable chain in backend", fields...)
	return nil, reason
}

// call runs fn under the per-call timeout. Expiry of that timeout while the parent
// context is still live is reported as a transport error.
func (g *Gateway) call(ctx context.Context, fn func(context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	err := fn(callCtx)
	if err == nil || errors.Is(err, model.ErrTransport) {
		return err
	}
	if ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: timed out after %s: %w", model.ErrTransport, g.callTimeout, err)
	}
	return err
}

func (g *Gateway) retry(ctx context.Context, operation string, fn func(context.Context) error) (err error) {
	started := time.Now()
	defer func() {
		g.metrics.Observe(operation, err, started)
	}()

	backoff := clock.NewBackoff(g.retryBackoff, 0)
	for attempt := 1; ; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= g.saveAttempts || !errors.Is(err, model.ErrTransport) || ctx.Err() != nil {
			return err
		}

		delay := backoff.Next()
		g.metrics.ObserveRetry(operation)
		g.logger.Warn("save failed, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		if sleepErr := g.sleep(ctx, delay); sleepErr != nil {
			return errors.Join(err, sleepErr)
		}
	}
}
