package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	campaignregistry "ballotpool/contexts/voting-market/campaign-registry"
	"ballotpool/contexts/voting-market/campaign-registry/adapters/memory"
	metricsadapter "ballotpool/contexts/voting-market/campaign-registry/adapters/metrics"
	postgresadapter "ballotpool/contexts/voting-market/campaign-registry/adapters/postgres"
	"ballotpool/internal/platform/config"
	"ballotpool/internal/platform/db"
	"ballotpool/internal/platform/httpserver"
	"ballotpool/internal/platform/messaging"
	"ballotpool/internal/platform/telemetry"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const bootstrapModule = "internal/app/bootstrap"

type APIApp struct {
	server    *httpserver.Server
	resources *resources
	logger    *slog.Logger
}

type WorkerApp struct {
	module       campaignregistry.Module
	bus          *messaging.Bus
	resources    *resources
	scheduler    bool
	pollInterval time.Duration
	logger       *slog.Logger
}

// resources are owned by the process and shared by both entrypoints.
type resources struct {
	database        *db.Database
	metrics         *prometheus.Registry
	shutdownTracing func(context.Context) error
	deps            campaignregistry.Dependencies
}

func BuildAPI(ctx context.Context) (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return BuildAPIWithConfig(ctx, cfg)
}

func BuildAPIWithConfig(ctx context.Context, cfg config.Config) (*APIApp, error) {
	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	rt, err := buildResources(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	module := campaignregistry.NewModule(rt.deps)
	server := httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort), httpserver.Options{
		Gatherer: rt.metrics,
		Health:   rt.health,
	})
	return &APIApp{
		server:    server,
		resources: rt,
		logger:    logger,
	}, nil
}

func BuildWorker(ctx context.Context) (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return BuildWorkerWithConfig(ctx, cfg)
}

func BuildWorkerWithConfig(ctx context.Context, cfg config.Config) (*WorkerApp, error) {
	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn("worker running on in-memory storage sees only its own state",
			"event", "bootstrap_worker_memory_storage",
			"module", bootstrapModule,
			"layer", "platform",
		)
	}
	rt, err := buildResources(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(cfg.KafkaBrokers, logger)
	deps := rt.deps
	deps.Publisher = bus
	deps.Subscriber = bus
	return &WorkerApp{
		module:       campaignregistry.NewModule(deps),
		bus:          bus,
		resources:    rt,
		scheduler:    cfg.EnableSettlementScheduler,
		pollInterval: cfg.WorkerPollInterval,
		logger:       logger,
	}, nil
}

func buildResources(ctx context.Context, cfg config.Config, logger *slog.Logger) (*resources, error) {
	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{
		ServiceName: cfg.ServiceName,
		Exporter:    cfg.TracingExporter,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	rt := &resources{
		metrics:         registry,
		shutdownTracing: shutdownTracing,
		deps: campaignregistry.Dependencies{
			Metrics:       metricsadapter.NewPrometheus(registry),
			Admin:         cfg.RegistryAdminID,
			VotePrice:     cfg.VotePriceMinor,
			CommissionBps: cfg.CommissionBps,
			BatchSize:     cfg.OutboxBatchSize,
			Logger:        logger,
		},
	}

	switch cfg.StorageDriver {
	case config.StorageMemory:
		store := memory.NewStore(nil)
		rt.deps.Repository = store
		rt.deps.Outbox = store
		rt.deps.Clock = store
		rt.deps.IDGen = store
	case config.StoragePostgres, config.StorageSQLite:
		dsn := cfg.PostgresDSN
		if cfg.StorageDriver == config.StorageSQLite {
			dsn = cfg.SQLitePath
		}
		database, err := db.Connect(cfg.StorageDriver, dsn)
		if err != nil {
			_ = shutdownTracing(ctx)
			return nil, err
		}
		rt.database = database

		repo := postgresadapter.NewRepository(database.DB, logger)
		if cfg.DBAutoMigrate {
			if err := repo.Migrate(ctx); err != nil {
				_ = rt.Close(ctx)
				return nil, err
			}
		}
		rt.deps.Repository = repo
		rt.deps.Outbox = repo
		rt.deps.Clock = postgresadapter.SystemClock{}
		rt.deps.IDGen = postgresadapter.UUIDGenerator{}
	default:
		_ = shutdownTracing(ctx)
		return nil, errors.New("unsupported storage driver " + cfg.StorageDriver)
	}

	logger.Info("runtime configured",
		"event", "bootstrap_runtime_configured",
		"module", bootstrapModule,
		"layer", "platform",
		"storage_driver", cfg.StorageDriver,
		"tracing_exporter", cfg.TracingExporter,
	)
	return rt, nil
}

func (r *resources) health(ctx context.Context) error {
	if r.database == nil {
		return nil
	}
	return r.database.Ping(ctx)
}

func (r *resources) Close(ctx context.Context) error {
	var errs []error
	if r.database != nil {
		errs = append(errs, r.database.Close())
	}
	if r.shutdownTracing != nil {
		errs = append(errs, r.shutdownTracing(ctx))
	}
	return errors.Join(errs...)
}

func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", bootstrapModule,
		"layer", "platform",
	)
	return a.server.Start(ctx)
}

func (a *APIApp) Close() error {
	return a.resources.Close(context.Background())
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.module.Auditor.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", bootstrapModule,
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
		"settlement_scheduler", w.scheduler,
		"brokers", strings.Join(w.bus.Brokers(), ","),
	)

	for {
		w.runCycle(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// runCycle settles expired campaigns before relaying, so the finish events of
// this cycle go out in the same tick. Failures are logged and retried next tick.
func (w *WorkerApp) runCycle(ctx context.Context) {
	if w.scheduler {
		if _, err := w.module.Scheduler.RunOnce(ctx); err != nil && ctx.Err() == nil {
			w.logCycleError("settlement", err)
		}
	}
	if err := w.module.OutboxRelay.RunOnce(ctx); err != nil && ctx.Err() == nil {
		w.logCycleError("outbox_relay", err)
	}
}

func (w *WorkerApp) logCycleError(step string, err error) {
	w.logger.Error("worker cycle step failed",
		"event", "bootstrap_worker_cycle_failed",
		"module", bootstrapModule,
		"layer", "platform",
		"step", step,
		"error", err.Error(),
	)
}

func (w *WorkerApp) Close() error {
	return errors.Join(w.bus.Close(), w.resources.Close(context.Background()))
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
