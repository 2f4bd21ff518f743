// Package storage selects and builds the persistence backend from command-line options.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/gateway"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/model"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/repository/clickhouse"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/repository/memory"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/repository/sheetdb"
	"github.com/goodnatureofminers/carbonledger-backend/internal/metrics"
)

// Config is the go-flags option group shared by every entry point.
type Config struct {
	Backend                string        `long:"backend" env:"BACKEND" default:"sheetdb" choice:"sheetdb" choice:"clickhouse" choice:"memory" description:"persistence backend"`
	SheetDBChainURL        string        `long:"sheetdb-chain-url" env:"SHEETDB_CHAIN_URL" description:"SheetDB API url of the chain sheet"`
	SheetDBTransactionsURL string        `long:"sheetdb-transactions-url" env:"SHEETDB_TRANSACTIONS_URL" description:"SheetDB API url of the transaction log sheet"`
	SheetDBRPS             int           `long:"sheetdb-rps" env:"SHEETDB_RPS" default:"5" description:"max SheetDB requests per second, 0 for unlimited"`
	HTTPTimeout            time.Duration `long:"http-timeout" env:"HTTP_TIMEOUT" default:"20s" description:"SheetDB http client timeout"`
	ClickhouseDSN          string        `long:"clickhouse-dsn" env:"CLICKHOUSE_DSN" description:"clickhouse dsn"`
	CallTimeout            time.Duration `long:"call-timeout" env:"CALL_TIMEOUT" default:"15s" description:"timeout of a single backend call"`
	SaveAttempts           int           `long:"save-attempts" env:"SAVE_ATTEMPTS" default:"3" description:"attempts per save before giving up"`
	RetryBackoff           time.Duration `long:"retry-backoff" env:"RETRY_BACKOFF" default:"500ms" description:"delay before the first save retry, doubled per attempt"`
}

// Store is implemented by every backend.
type Store interface {
	gateway.Store
	MaxLoggedBlockIndex(ctx context.Context) (int, error)
}

// Open builds the backend named by cfg.Backend.
func Open(cfg Config) (Store, error) {
	backend := model.Backend(cfg.Backend)
	storeMetrics := metrics.NewStore(backend)

	switch backend {
	case model.SheetDB:
		client, err := sheetdb.New(sheetdb.Config{
			ChainURL:          cfg.SheetDBChainURL,
			TransactionsURL:   cfg.SheetDBTransactionsURL,
			RequestsPerSecond: cfg.SheetDBRPS,
			Timeout:           cfg.HTTPTimeout,
		}, storeMetrics)
		if err != nil {
			return nil, fmt.Errorf("sheetdb store: %w", err)
		}
		return client, nil
	case model.Clickhouse:
		repo, err := clickhouse.NewRepository(cfg.ClickhouseDSN, storeMetrics)
		if err != nil {
			return nil, fmt.Errorf("clickhouse store: %w", err)
		}
		return repo, nil
	case model.Memory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// Close releases the store when its backend holds resources.
func Close(store Store) error {
	if c, ok := store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Gateway returns the gateway limits configured by cfg.
func (cfg Config) Gateway() gateway.Config {
	return gateway.Config{
		CallTimeout:  cfg.CallTimeout,
		SaveAttempts: cfg.SaveAttempts,
		RetryBackoff: cfg.RetryBackoff,
	}
}

// Validate reports options that cannot work together.
func (cfg Config) Validate() error {
	var errs []error
	if cfg.CallTimeout <= 0 {
		errs = append(errs, errors.New("call timeout must be positive"))
	}
	if cfg.SaveAttempts < 1 {
		errs = append(errs, errors.New("save attempts must be at least 1"))
	}
	if cfg.RetryBackoff < 0 {
		errs = append(errs, errors.New("retry backoff must not be negative"))
	}
	switch model.Backend(cfg.Backend) {
	case model.SheetDB:
		if cfg.SheetDBChainURL == "" || cfg.SheetDBTransactionsURL == "" {
			errs = append(errs, errors.New("sheetdb backend needs both chain and transactions urls"))
		}
	case model.Clickhouse:
		if cfg.ClickhouseDSN == "" {
			errs = append(errs, errors.New("clickhouse backend needs a dsn"))
		}
	}
	return errors.Join(errs...)
}
