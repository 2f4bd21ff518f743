package ledger

import (
	"context"
	"time"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Persister interface {
		SaveChain(ctx context.Context, chain []model.Block) error
		SaveTransactions(ctx context.Context, txs []model.Transaction, blockIndex int) error
	}
	Metrics interface {
		ObserveCommit(err error, chainLength int, started time.Time)
	}
)
