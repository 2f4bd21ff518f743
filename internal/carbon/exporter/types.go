package exporter

import (
	"context"
	"time"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Appender interface {
		AppendRecords(ctx context.Context, records []model.TransactionRecord) error
	}
	Metrics interface {
		ObserveFlush(err error, rows int, started time.Time)
	}
)
