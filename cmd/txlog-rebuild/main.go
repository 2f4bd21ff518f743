// Command txlog-rebuild re-appends transaction log rows from the stored chain.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/exporter"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/gateway"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/storage"
	"github.com/goodnatureofminers/carbonledger-backend/internal/metrics"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type config struct {
	FromIndex     int            `long:"from-index" env:"TXLOG_REBUILD_FROM_INDEX" description:"first block index to export, 0 resumes after the highest logged block" default:"0"`
	BatchSize     int            `long:"batch-size" env:"TXLOG_REBUILD_BATCH_SIZE" description:"rows per append request" default:"100"`
	FlushInterval time.Duration  `long:"flush-interval" env:"TXLOG_REBUILD_FLUSH_INTERVAL" description:"max time a partial batch waits" default:"1s"`
	RPS           int            `long:"rps" env:"TXLOG_REBUILD_RPS" description:"max append requests per second, 0 for unlimited" default:"2"`
	MetricsAddr   string         `long:"metrics-addr" env:"TXLOG_REBUILD_METRICS_ADDR" description:"address for metrics server" default:":2112"`
	Storage       storage.Config `group:"storage" namespace:"storage" env-namespace:"CARBONLEDGER_STORAGE"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}
	if err := cfg.Storage.Validate(); err != nil {
		logger.Fatal("invalid storage options", zap.Error(err))
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("transaction log rebuild failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	store, err := storage.Open(cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := storage.Close(store); err != nil {
			logger.Error("failed to close store", zap.Error(err))
		}
	}()

	gw, err := gateway.New(store, metrics.NewGateway(), cfg.Storage.Gateway(), logger.Named("gateway"))
	if err != nil {
		return err
	}

	chain, recovery := gw.Load(ctx)
	if recovery != gateway.RecoveryNone {
		return fmt.Errorf("no stored chain to export: %s", recovery)
	}

	fromIndex := cfg.FromIndex
	if fromIndex <= 0 {
		logged, err := store.MaxLoggedBlockIndex(ctx)
		if err != nil {
			return fmt.Errorf("read highest logged block: %w", err)
		}
		fromIndex = logged + 1
		logger.Info("resuming after highest logged block", zap.Int("block_index", logged))
	}

	exp, err := exporter.New(gw, metrics.NewExporter(), exporter.Config{
		BatchSize:         cfg.BatchSize,
		FlushInterval:     cfg.FlushInterval,
		RequestsPerSecond: cfg.RPS,
	}, logger.Named("exporter"))
	if err != nil {
		return err
	}

	result, err := exp.Export(ctx, chain, fromIndex)
	logger.Info("transaction log export finished",
		zap.Int("from_index", fromIndex),
		zap.Int("chain_length", len(chain)),
		zap.Int("queued", result.Queued),
		zap.Int("exported", result.Exported),
	)
	return err
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}
