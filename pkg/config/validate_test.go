package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(NewDefault()); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := NewDefault()
	cfg.Logging.Level = "loud"
	cfg.RunStore.Backend = "postgres"
	cfg.Watch.Extensions = []string{"yaml"}

	err := Validate(cfg)

	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(validationErr.Errors) != 3 {
		t.Errorf("expected 3 errors, got %d: %v", len(validationErr.Errors), err)
	}
	if !strings.Contains(err.Error(), "with 3 errors") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{
			name:      "invalid log format",
			modify:    func(c *Config) { c.Logging.Format = "xml" },
			wantField: "logging.format",
		},
		{
			name:      "metrics path without slash",
			modify:    func(c *Config) { c.Metrics.Path = "metrics" },
			wantField: "metrics.path",
		},
		{
			name:      "unsorted buckets",
			modify:    func(c *Config) { c.Metrics.RuleDurationBuckets = []float64{1, 0.5} },
			wantField: "metrics.rule_duration_buckets",
		},
		{
			name:      "unknown sqlite driver",
			modify:    func(c *Config) { c.RunStore.SQLite.Driver = "pgx" },
			wantField: "runstore.sqlite.driver",
		},
		{
			name:      "idle above open connections",
			modify:    func(c *Config) { c.RunStore.SQLite.MaxIdleConns = 10 },
			wantField: "runstore.sqlite.max_idle_conns",
		},
		{
			name:      "negative max records",
			modify:    func(c *Config) { c.RunStore.Retention.MaxRecords = -1 },
			wantField: "runstore.retention.max_records",
		},
		{
			name:      "bad cron schedule",
			modify:    func(c *Config) { c.RunStore.Retention.PruneSchedule = "61 * * * *" },
			wantField: "runstore.retention.prune_schedule",
		},
		{
			name:      "negative debounce",
			modify:    func(c *Config) { c.Watch.Debounce = -1 },
			wantField: "watch.debounce",
		},
		{
			name: "unknown sampler",
			modify: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.Sampler = "sometimes"
			},
			wantField: "tracing.sampler",
		},
		{
			name: "sample ratio above one",
			modify: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.Sampler = "ratio"
				c.Tracing.SampleRatio = 1.5
			},
			wantField: "tracing.sample_ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			tt.modify(cfg)

			var validationErr ValidationError
			if !errors.As(Validate(cfg), &validationErr) {
				t.Fatal("expected ValidationError")
			}
			if len(validationErr.Errors) != 1 || validationErr.Errors[0].Field != tt.wantField {
				t.Errorf("errors = %v, want one error on %s", validationErr.Errors, tt.wantField)
			}
		})
	}
}

func TestValidate_MemoryBackendSkipsSQLiteChecks(t *testing.T) {
	cfg := NewDefault()
	cfg.RunStore.Backend = "memory"
	cfg.RunStore.SQLite.Driver = "anything"

	if err := Validate(cfg); err != nil {
		t.Errorf("memory backend should ignore sqlite settings: %v", err)
	}
}

func TestValidate_DisabledTracingSkipsChecks(t *testing.T) {
	cfg := NewDefault()
	cfg.Tracing.Sampler = "sometimes"

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v, want nil while tracing is disabled", err)
	}
}
