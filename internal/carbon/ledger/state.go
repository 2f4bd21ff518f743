// Package ledger holds the in-memory chain and the buffer of transactions waiting to be
// committed into the next block.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/blockhash"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/model"
	"go.uber.org/zap"
)

var (
	// ErrNotPersisted wraps persistence failures of a commit. The block it accompanies
	// is part of the in-memory chain; the next successful save rewrites it durably.
	ErrNotPersisted       = errors.New("block committed but not persisted")
	ErrAlreadyInitialized = errors.New("ledger already initialized")
	ErrEmptyChain         = errors.New("chain has no blocks")
)

// State is the ledger engine. It starts uninitialized and becomes ready once Initialize
// installs a chain holding at least the genesis block.
//
// A single mutex covers the whole commit sequence, from reading the last block to the
// end of the durable save, so at most one commit is ever in flight.
type State struct {
	mu        sync.Mutex
	chain     []model.Block
	pending   []model.Transaction
	persister Persister
	metrics   Metrics
	logger    *zap.Logger
	now       func() time.Time
}

func New(persister Persister, metrics Metrics, logger *zap.Logger) (*State, error) {
	if persister == nil {
		return nil, errors.New("ledger persister is required")
	}
	if metrics == nil {
		return nil, errors.New("ledger metrics is required")
	}
	return &State{
		persister: persister,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Initialize installs the loaded or bootstrapped chain. It succeeds exactly once.
func (s *State) Initialize(chain []model.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.chain) > 0 {
		return ErrAlreadyInitialized
	}
	if len(chain) == 0 {
		return ErrEmptyChain
	}
	s.chain = model.CloneChain(chain)
	s.logger.Info("ledger ready", zap.Int("chain_length", len(s.chain)))
	return nil
}

// Ready reports whether the ledger holds a chain.
func (s *State) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chain) > 0
}

// AppendTransaction buffers tx for the next commit and returns the index the next
// block will occupy.
func (s *State) AppendTransaction(tx model.Transaction) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(tx)
}

// Commit packages every pending transaction into a new block linked to the current
// last block, appends it and saves the chain followed by the block's transactions.
// An empty previousHash links to the hash of the last block.
//
// When saving fails the block stays appended and is returned together with an error
// wrapping ErrNotPersisted.
func (s *State) Commit(ctx context.Context, proof int, previousHash string) (model.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(ctx, proof, previousHash)
}

// Record appends tx and commits it into its own block as one atomic step, using the
// position returned by the append as the block's proof.
func (s *State) Record(ctx context.Context, tx model.Transaction) (model.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	proof := s.appendLocked(tx)
	return s.commitLocked(ctx, proof, "")
}

// LastBlock returns the final block of the chain. ok is false only before Initialize.
func (s *State) LastBlock() (block model.Block, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.chain) == 0 {
		return model.Block{}, false
	}
	return s.chain[len(s.chain)-1].Clone(), true
}

// Chain returns a copy of the chain.
func (s *State) Chain() []model.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneChain(s.chain)
}

// Pending returns a copy of the uncommitted transactions.
func (s *State) Pending() []model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Transaction(nil), s.pending...)
}

func (s *State) appendLocked(tx model.Transaction) int {
	s.pending = append(s.pending, tx)
	return len(s.chain) + 1
}

func (s *State) commitLocked(ctx context.Context, proof int, previousHash string) (model.Block, error) {
	if len(s.chain) == 0 {
		panic("ledger: commit before initialization")
	}

	started := time.Now()
	if previousHash == "" {
		previousHash = blockhash.Hash(s.chain[len(s.chain)-1])
	}

	block := model.Block{
		Index:        len(s.chain) + 1,
		Timestamp:    model.EpochSeconds(s.now()),
		Transactions: append(make([]model.Transaction, 0, len(s.pending)), s.pending...),
		Proof:        proof,
		PreviousHash: previousHash,
	}
	s.chain = append(s.chain, block)
	s.pending = nil

	err := s.persist(ctx, block)
	s.metrics.ObserveCommit(err, len(s.chain), started)
	if err != nil {
		s.logger.Error("block not persisted",
			zap.Int("index", block.Index),
			zap.Int("transactions", len(block.Transactions)),
			zap.Error(err),
		)
		return block.Clone(), fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}

	s.logger.Debug("block committed",
		zap.Int("index", block.Index),
		zap.Int("transactions", len(block.Transactions)),
		zap.String("previous_hash", block.PreviousHash),
	)
	return block.Clone(), nil
}

func (s *State) persist(ctx context.Context, block model.Block) error {
	if err := s.persister.SaveChain(ctx, s.chain[:len(s.chain):len(s.chain)]); err != nil {
		return fmt.Errorf("save chain: %w", err)
	}
	if err := s.persister.SaveTransactions(ctx, block.Transactions, block.Index); err != nil {
		return fmt.Errorf("save transactions of block %d: %w", block.Index, err)
	}
	return nil
}
