package clickhouse

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Conn is the subset of clickhouse.Conn used by the repository.
	Conn interface {
		Exec(ctx context.Context, query string, args ...any) error
		Select(ctx context.Context, dest any, query string, args ...any) error
		PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error)
		Close() error
	}
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)
