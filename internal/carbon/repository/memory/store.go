// Package memory is a process-local chain store and transaction log. It backs local
// runs without a remote backend and the tests of the packages above the gateway.
package memory

import (
	"context"
	"sync"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/model"
)

type Store struct {
	mu      sync.Mutex
	rows    []model.ChainRow
	records []model.TransactionRecord
	failure error
}

func New() *Store {
	return &Store{}
}

// Seed replaces the chain rows, e.g. with a corrupt document.
func (s *Store) Seed(rows ...model.ChainRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append([]model.ChainRow(nil), rows...)
}

// SetFailure makes every following call return err until cleared with nil.
func (s *Store) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}

func (s *Store) DeleteChain(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	s.rows = nil
	return nil
}

func (s *Store) ChainRows(ctx context.Context) ([]model.ChainRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	return append([]model.ChainRow(nil), s.rows...), nil
}

func (s *Store) InsertChain(ctx context.Context, document string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	s.rows = append(s.rows, model.ChainRow{Document: document})
	return nil
}

func (s *Store) AppendTransactionRecords(ctx context.Context, records []model.TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	s.records = append(s.records, records...)
	return nil
}

// MaxLoggedBlockIndex returns the highest logged block index, or 0 for an empty log.
func (s *Store) MaxLoggedBlockIndex(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	maxIndex := 0
	for _, r := range s.records {
		maxIndex = max(maxIndex, r.BlockIndex)
	}
	return maxIndex, nil
}

// Records returns a copy of the transaction log.
func (s *Store) Records() []model.TransactionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.TransactionRecord(nil), s.records...)
}

// Document returns the first stored chain document, if any.
func (s *Store) Document() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.rows) == 0 {
		return "", false
	}
	return s.rows[0].Document, true
}

func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.failure
}
