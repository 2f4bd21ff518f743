// Package service holds the use cases shared by the web and interactive front ends.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/emission"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/gateway"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/ledger"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/model"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/reader"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/verify"
	"go.uber.org/zap"
)

// ErrInvalidAmount rejects amounts that are not finite non-negative numbers.
var ErrInvalidAmount = errors.New("amount must be a non-negative number")

type SubmitRequest struct {
	Machine    model.Machine
	Fertilizer string
	Amount     float64
}

// Listing is every committed transaction plus their summed emission.
type Listing struct {
	Transactions  []model.TransactionView
	TotalEmission float64
}

type Service struct {
	ledger        Ledger
	logger        *zap.Logger
	now           func() time.Time
	verifyWorkers int
}

func New(l Ledger, logger *zap.Logger) (*Service, error) {
	if l == nil {
		return nil, errors.New("service ledger is required")
	}
	return &Service{
		ledger:        l,
		logger:        logger,
		now:           time.Now,
		verifyWorkers: runtime.GOMAXPROCS(0),
	}, nil
}

// Boot builds a ledger persisted through gw, loads or bootstraps its chain and returns
// a service over it. A genesis block that could not be saved is logged and the
// service starts anyway.
func Boot(ctx context.Context, gw *gateway.Gateway, ledgerMetrics ledger.Metrics, logger *zap.Logger) (*Service, error) {
	state, err := ledger.New(gw, ledgerMetrics, logger.Named("ledger"))
	if err != nil {
		return nil, fmt.Errorf("create ledger: %w", err)
	}
	if err := gw.Open(ctx, state); err != nil {
		if !errors.Is(err, gateway.ErrGenesisNotPersisted) {
			return nil, fmt.Errorf("open ledger: %w", err)
		}
		logger.Error("genesis block not persisted, continuing with in-memory chain", zap.Error(err))
	}
	return New(state, logger)
}

// ParseAmount reads a user-typed amount.
func ParseAmount(raw string) (float64, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if err := validateAmount(amount); err != nil {
		return 0, err
	}
	return amount, nil
}

func validateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	return nil
}

// Submit records one transaction dated today in its own block. When the block was
// committed but not saved the block is returned together with an error wrapping
// ledger.ErrNotPersisted.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (model.Block, error) {
	if err := validateAmount(req.Amount); err != nil {
		return model.Block{}, err
	}

	machine := model.Machine(strings.TrimSpace(string(req.Machine)))
	tx := model.Transaction{
		Date:       model.FormatDate(s.now()),
		Machine:    machine,
		Fertilizer: strings.TrimSpace(req.Fertilizer),
		Amount:     req.Amount,
		Emission:   emission.Calculate(machine, req.Amount),
	}
	if !emission.Known(machine) {
		s.logger.Info("unknown machine, using default coefficient",
			zap.String("machine", string(machine)),
			zap.Float64("coefficient", emission.DefaultCoefficient),
		)
	}

	block, err := s.ledger.Record(ctx, tx)
	if err != nil {
		return block, err
	}
	s.logger.Info("transaction recorded",
		zap.Int("block_index", block.Index),
		zap.String("machine", string(machine)),
		zap.Float64("emission", tx.Emission),
	)
	return block, nil
}

// List returns committed transactions ordered by block index.
func (s *Service) List() Listing {
	views := reader.AllTransactions(s.ledger.Chain())
	return Listing{Transactions: views, TotalEmission: reader.TotalEmission(views)}
}

// Chain returns a copy of the full chain.
func (s *Service) Chain() []model.Block {
	return s.ledger.Chain()
}

// Verify checks the in-memory chain's links.
func (s *Service) Verify(ctx context.Context) (verify.Report, error) {
	return verify.Chain(ctx, s.ledger.Chain(), s.verifyWorkers)
}
