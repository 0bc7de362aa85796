package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"

	TracingNone   = "none"
	TracingStdout = "stdout"
	TracingOTLP   = "otlp"

	// MaxVotePriceMinor caps the vote price at one million coins so campaign
	// balances stay far below the int64 range.
	MaxVotePriceMinor int64 = 1_000_000_000_000_000
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName   string `env:"SERVICE_NAME" envDefault:"ballotpool"`
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8080"`
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"memory"`
	PostgresDSN   string `env:"POSTGRES_DSN"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"ballotpool.db"`
	DBAutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`

	RegistryAdminID string `env:"REGISTRY_ADMIN_ID"`
	VotePriceMinor  int64  `env:"VOTE_PRICE_MINOR" envDefault:"10000000"`
	CommissionBps   int64  `env:"COMMISSION_BPS" envDefault:"1000"`

	KafkaBrokers              []string      `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	OutboxBatchSize           int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
	WorkerPollInterval        time.Duration `env:"WORKER_POLL_INTERVAL" envDefault:"2s"`
	EnableSettlementScheduler bool          `env:"ENABLE_SETTLEMENT_SCHEDULER" envDefault:"true"`

	TracingExporter string `env:"TRACING_EXPORTER" envDefault:"none"`
	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.TracingExporter = strings.ToLower(strings.TrimSpace(cfg.TracingExporter))
	cfg.RegistryAdminID = strings.TrimSpace(cfg.RegistryAdminID)

	brokers := make([]string, 0, len(cfg.KafkaBrokers))
	for _, value := range cfg.KafkaBrokers {
		if value = strings.TrimSpace(value); value != "" {
			brokers = append(brokers, value)
		}
	}
	cfg.KafkaBrokers = brokers

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StorageDriver {
	case StorageMemory, StorageSQLite:
	case StoragePostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return fmt.Errorf("POSTGRES_DSN is required for storage driver %q", c.StorageDriver)
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}
	switch c.TracingExporter {
	case TracingNone, TracingStdout:
	case TracingOTLP:
		if strings.TrimSpace(c.OTLPEndpoint) == "" {
			return fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT is required for tracing exporter %q", c.TracingExporter)
		}
	default:
		return fmt.Errorf("unsupported TRACING_EXPORTER %q", c.TracingExporter)
	}
	if c.RegistryAdminID == "" {
		return fmt.Errorf("REGISTRY_ADMIN_ID is required")
	}
	if c.VotePriceMinor <= 0 || c.VotePriceMinor > MaxVotePriceMinor {
		return fmt.Errorf("VOTE_PRICE_MINOR must be within [1, %d], got %d", MaxVotePriceMinor, c.VotePriceMinor)
	}
	if c.CommissionBps < 1 || c.CommissionBps > 10000 {
		return fmt.Errorf("COMMISSION_BPS must be within [1, 10000], got %d", c.CommissionBps)
	}
	if c.WorkerPollInterval <= 0 {
		return fmt.Errorf("WORKER_POLL_INTERVAL must be positive")
	}
	return nil
}
