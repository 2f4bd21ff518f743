package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/gateway"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/service"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/storage"
	"github.com/goodnatureofminers/carbonledger-backend/internal/metrics"
	"github.com/goodnatureofminers/carbonledger-backend/internal/transport"
	"github.com/gorilla/handlers"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type config struct {
	Addr        string         `long:"addr" env:"CARBONLEDGER_WEB_ADDR" description:"http listen addr" default:":8000"`
	BootTimeout time.Duration  `long:"boot-timeout" env:"CARBONLEDGER_WEB_BOOT_TIMEOUT" description:"max time spent loading the chain at startup" default:"1m"`
	Storage     storage.Config `group:"storage" namespace:"storage" env-namespace:"CARBONLEDGER_STORAGE"`
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
		logger.Fatal("carbonledger web failed", zap.Error(err))
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

	bootCtx, cancel := context.WithTimeout(ctx, cfg.BootTimeout)
	svc, err := service.Boot(bootCtx, gw, metrics.NewLedger(), logger.Named("service"))
	cancel()
	if err != nil {
		return err
	}

	handler, err := transport.NewHandler(svc, logger.Named("http"))
	if err != nil {
		return err
	}
	router := handler.Router()
	router.Handle("/metrics", promhttp.Handler())

	logged := handlers.LoggingHandler(os.Stdout, router)
	recovered := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(logged)

	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           cors.Default().Handler(recovered),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// Commits wait for the remote save, which may retry.
		WriteTimeout:   time.Minute,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: http.DefaultMaxHeaderBytes,
	}
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down the http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shutdown http server", zap.Error(err))
		}
	}()

	logger.Info("Starting HTTP server",
		zap.String("addr", cfg.Addr),
		zap.String("backend", cfg.Storage.Backend),
		zap.Int("chain_length", len(svc.Chain())),
	)
	if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
