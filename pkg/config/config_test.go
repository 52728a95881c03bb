package config

import (
	"testing"
	"time"
)

func TestNewTestConfig(t *testing.T) {
	cfg := NewTestConfig().Build()

	if cfg.RunStore.Backend != "memory" {
		t.Errorf("expected backend %q, got %q", "memory", cfg.RunStore.Backend)
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("expected log level %q, got %q", DefaultLogLevel, cfg.Logging.Level)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("test config should be valid: %v", err)
	}
}

func TestConfigBuilder(t *testing.T) {
	cfg := NewTestConfig().
		WithLogging("debug", "json").
		WithSQLite("/tmp/runs.db", "sqlite3").
		WithRetention(7, 100, "@hourly").
		WithWatch(time.Second, ".yaml").
		Build()

	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.RunStore.Backend != "sqlite" || cfg.RunStore.SQLite.Driver != "sqlite3" {
		t.Errorf("runstore = %+v", cfg.RunStore)
	}
	if cfg.RunStore.Retention.MaxRecords != 100 {
		t.Errorf("expected max records 100, got %d", cfg.RunStore.Retention.MaxRecords)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("expected debounce 1s, got %v", cfg.Watch.Debounce)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("built config should be valid: %v", err)
	}
}
