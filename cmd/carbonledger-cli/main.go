package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/gateway"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/service"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/storage"
	"github.com/goodnatureofminers/carbonledger-backend/internal/console"
	"github.com/goodnatureofminers/carbonledger-backend/internal/metrics"
	"github.com/jessevdk/go-flags"
	"github.com/pterm/pterm"
	"go.uber.org/zap"
)

type config struct {
	Plain       bool           `long:"plain" env:"CARBONLEDGER_CLI_PLAIN" description:"read answers line by line from stdin instead of interactive widgets"`
	Verbose     bool           `long:"verbose" env:"CARBONLEDGER_CLI_VERBOSE" description:"log at debug level"`
	BootTimeout time.Duration  `long:"boot-timeout" env:"CARBONLEDGER_CLI_BOOT_TIMEOUT" description:"max time spent loading the chain at startup" default:"1m"`
	Storage     storage.Config `group:"storage" namespace:"storage" env-namespace:"CARBONLEDGER_STORAGE"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		pterm.Error.Printfln("failed to parse flags: %v", err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := cfg.Storage.Validate(); err != nil {
		logger.Fatal("invalid storage options", zap.Error(err))
	}
	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("carbonledger cli failed", zap.Error(err))
	}
}

// newLogger keeps the prompt readable: only warnings reach the terminal unless verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if !verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return zcfg.Build()
}

// startSpinner shows text while booting. The returned func settles the spinner with a
// success or failure message; without a spinner it prints the message instead.
func startSpinner(text string, logger *zap.Logger) func(ok bool, message string) {
	spinner, err := pterm.DefaultSpinner.Start(text)
	if err != nil || spinner == nil {
		logger.Debug("spinner not started", zap.Error(err))
		return func(ok bool, message string) {
			if ok {
				pterm.Success.Println(message)
				return
			}
			pterm.Error.Println(message)
		}
	}
	return func(ok bool, message string) {
		if ok {
			spinner.Success(message)
			return
		}
		spinner.Fail(message)
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

	done := startSpinner("載入區塊鏈...", logger)
	bootCtx, cancel := context.WithTimeout(ctx, cfg.BootTimeout)
	svc, err := service.Boot(bootCtx, gw, metrics.NewLedger(), logger.Named("service"))
	cancel()
	if err != nil {
		done(false, "無法載入區塊鏈")
		return err
	}
	done(true, "區塊鏈已載入")

	var prompter console.Prompter = console.Interactive{}
	if cfg.Plain {
		prompter = console.NewLines(os.Stdin, os.Stdout)
	}
	session, err := console.NewSession(svc, prompter, os.Stdout, logger.Named("console"))
	if err != nil {
		return err
	}
	return session.Run(ctx)
}
