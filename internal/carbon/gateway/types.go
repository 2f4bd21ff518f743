package gateway

import (
	"context"
	"time"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Store is the remote backend: a chain store holding at most one logical row and an
	// append-only transaction log.
	Store interface {
		DeleteChain(ctx context.Context) error
		ChainRows(ctx context.Context) ([]model.ChainRow, error)
		InsertChain(ctx context.Context, document string) error
		AppendTransactionRecords(ctx context.Context, records []model.TransactionRecord) error
	}
	Metrics interface {
		Observe(operation string, err error, started time.Time)
		ObserveRetry(operation string)
		ObserveRecovery(reason string)
	}
	Initializer interface {
		Initialize(chain []model.Block) error
	}
)
