package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with defaults and an in-memory
// run store, so tests never touch the file system.
func NewTestConfig() *ConfigBuilder {
	var cfg Config
	cfg.RunStore.Backend = "memory"
	ApplyDefaults(&cfg)
	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithLogging sets the log level and format.
func (b *ConfigBuilder) WithLogging(level, format string) *ConfigBuilder {
	b.cfg.Logging.Level = level
	b.cfg.Logging.Format = format
	return b
}

// WithSQLite selects the sqlite backend.
func (b *ConfigBuilder) WithSQLite(path, driver string) *ConfigBuilder {
	b.cfg.RunStore.Backend = "sqlite"
	b.cfg.RunStore.SQLite.Path = path
	b.cfg.RunStore.SQLite.Driver = driver
	return b
}

// WithRetention sets the retention policy.
func (b *ConfigBuilder) WithRetention(days int, maxRecords int64, schedule string) *ConfigBuilder {
	b.cfg.RunStore.Retention = RetentionConfig{Days: days, MaxRecords: maxRecords, PruneSchedule: schedule}
	return b
}

// WithWatch sets the watch debounce and extensions.
func (b *ConfigBuilder) WithWatch(debounce time.Duration, extensions ...string) *ConfigBuilder {
	b.cfg.Watch.Debounce = debounce
	b.cfg.Watch.Extensions = extensions
	return b
}
