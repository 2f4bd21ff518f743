// Command chain-verify loads the stored chain without bootstrapping it and checks its links.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/gateway"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/storage"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/verify"
	"github.com/goodnatureofminers/carbonledger-backend/internal/metrics"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

type config struct {
	Workers int            `long:"workers" env:"CHAIN_VERIFY_WORKERS" description:"goroutines hashing blocks, 0 for one per cpu" default:"0"`
	Storage storage.Config `group:"storage" namespace:"storage" env-namespace:"CARBONLEDGER_STORAGE"`
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
		var violation *verify.Violation
		if errors.As(err, &violation) {
			logger.Error("chain is not consistent",
				zap.Int("position", violation.Position),
				zap.Int("block_index", violation.Index),
				zap.String("reason", string(violation.Reason)),
				zap.String("want", violation.Want),
				zap.String("got", violation.Got),
			)
			_ = logger.Sync()
			os.Exit(1)
		}
		logger.Fatal("chain verification failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
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
		logger.Warn("no stored chain to verify", zap.String("reason", string(recovery)))
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	report, err := verify.Chain(ctx, chain, workers)
	if err != nil {
		return err
	}
	logger.Info("chain verified",
		zap.Int("blocks", report.Blocks),
		zap.Int("transactions", report.Transactions),
		zap.Float64("total_emission", report.TotalEmission),
		zap.String("tip_hash", report.TipHash),
	)
	return nil
}
