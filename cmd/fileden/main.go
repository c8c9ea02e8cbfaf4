package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hdelgado/fileden/internal/api"
	"github.com/hdelgado/fileden/internal/config"
	"github.com/hdelgado/fileden/internal/env"
	"github.com/hdelgado/fileden/internal/log"
	"github.com/hdelgado/fileden/internal/obs"
	"github.com/hdelgado/fileden/internal/setup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.New(nil)

	conf, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger.DebugContext(ctx, "setting up identity verifier")
	verifier, err := setup.Verifier(conf, logger)
	if err != nil {
		logger.Error("failed to setup identity verifier", slog.Any("error", err))
		os.Exit(1)
	}

	obs.Init()

	environment := env.New(logger, verifier, conf)

	if err := api.Start(environment); err != nil {
		environment.Logger.Error("API Failed", slog.Any("error", err))
		os.Exit(1)
	}
}
