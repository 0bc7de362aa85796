package config

import (
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("REGISTRY_ADMIN_ID", "admin-1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServiceName != "ballotpool" || cfg.HTTPPort != "8080" || cfg.StorageDriver != StorageMemory {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.VotePriceMinor != 10_000_000 || cfg.CommissionBps != 1000 {
		t.Fatalf("unexpected pricing defaults %+v", cfg)
	}
	if cfg.WorkerPollInterval != 2*time.Second || !cfg.EnableSettlementScheduler {
		t.Fatalf("unexpected worker defaults %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 1 || cfg.KafkaBrokers[0] != "localhost:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("REGISTRY_ADMIN_ID", " admin-2 ")
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("KAFKA_BROKERS", "a:9092, ,b:9092")
	t.Setenv("COMMISSION_BPS", "500")
	t.Setenv("ENABLE_SETTLEMENT_SCHEDULER", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RegistryAdminID != "admin-2" || cfg.StorageDriver != StorageSQLite || cfg.CommissionBps != 500 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "b:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if cfg.EnableSettlementScheduler {
		t.Fatalf("expected scheduler disabled")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"missing admin":        {},
		"postgres without dsn": {"REGISTRY_ADMIN_ID": "a", "STORAGE_DRIVER": "postgres"},
		"unknown driver":       {"REGISTRY_ADMIN_ID": "a", "STORAGE_DRIVER": "badger"},
		"commission too high":  {"REGISTRY_ADMIN_ID": "a", "COMMISSION_BPS": "10001"},
		"otlp without url":     {"REGISTRY_ADMIN_ID": "a", "TRACING_EXPORTER": "otlp"},
		"malformed price":      {"REGISTRY_ADMIN_ID": "a", "VOTE_PRICE_MINOR": "cheap"},
		"price above cap":      {"REGISTRY_ADMIN_ID": "a", "VOTE_PRICE_MINOR": "1000000000000001"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("REGISTRY_ADMIN_ID", "")
			for key, value := range vars {
				t.Setenv(key, value)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
