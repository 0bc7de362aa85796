package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ballotpool/internal/app/bootstrap"
	"ballotpool/internal/platform/logging"
)

// Worker process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring.
// 3) Run the settlement scheduler, outbox relay and event auditor.
func main() {
	logger := logging.New(os.Stdout, os.Getenv("LOG_LEVEL"))
	if err := logging.Install(logger); err != nil {
		logger.Error("maxprocs setup failed",
			"event", "maxprocs_setup_failed",
			"module", "cmd/worker",
			"layer", "platform",
			"error", err.Error(),
		)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("ballotpool worker starting", "event", "worker_starting", "module", "cmd/worker", "layer", "platform")
	app, err := bootstrap.BuildWorker(ctx)
	if err != nil {
		logger.Error("bootstrap worker failed", "event", "worker_bootstrap_failed", "module", "cmd/worker", "layer", "platform", "error", err.Error())
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("worker shutdown close failed", "event", "worker_close_failed", "module", "cmd/worker", "layer", "platform", "error", err.Error())
		}
	}()

	if err := app.Run(ctx); err != nil {
		logger.Error("ballotpool worker stopped with error", "event", "worker_stopped", "module", "cmd/worker", "layer", "platform", "error", err.Error())
		stop()
		os.Exit(1)
	}
}
