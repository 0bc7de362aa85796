package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ballotpool/internal/app/bootstrap"
	"ballotpool/internal/platform/logging"
)

//go:generate swag init -g main.go -d ./,../../contexts/voting-market/campaign-registry/adapters/http,../../contexts/voting-market/campaign-registry/transport/http -o ../../internal/platform/httpserver/docs --outputTypes go

// @title ballotpool API
// @version 1.0
// @description Pay-to-vote campaign registry.
// @BasePath /

// API process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring (ports + adapters + use cases).
// 3) Serve HTTP until SIGINT/SIGTERM.
func main() {
	logger := logging.New(os.Stdout, os.Getenv("LOG_LEVEL"))
	if err := logging.Install(logger); err != nil {
		logger.Error("maxprocs setup failed",
			"event", "maxprocs_setup_failed",
			"module", "cmd/api",
			"layer", "platform",
			"error", err.Error(),
		)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("ballotpool api starting", "event", "api_starting", "module", "cmd/api", "layer", "platform")
	app, err := bootstrap.BuildAPI(ctx)
	if err != nil {
		logger.Error("bootstrap api failed", "event", "api_bootstrap_failed", "module", "cmd/api", "layer", "platform", "error", err.Error())
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("api shutdown close failed", "event", "api_close_failed", "module", "cmd/api", "layer", "platform", "error", err.Error())
		}
	}()

	if err := app.Run(ctx); err != nil {
		logger.Error("ballotpool api stopped with error", "event", "api_stopped", "module", "cmd/api", "layer", "platform", "error", err.Error())
		stop()
		os.Exit(1)
	}
}
