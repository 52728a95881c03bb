package config

import "time"

// Config is the root configuration structure for EcoImpact. It holds the
// settings of the tool itself; what a model computes is described by the
// input file passed on the command line.
type Config struct {
	// Logging contains log level and format.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics collection and export settings.
	Metrics MetricsConfig `yaml:"metrics"`

	// RunStore contains configuration for the run history including backend
	// selection and retention.
	RunStore RunStoreConfig `yaml:"runstore"`

	// Processing contains settings applied while parsing and running models.
	Processing ProcessingConfig `yaml:"processing"`

	// Watch contains settings for re-running a model when its files change.
	Watch WatchConfig `yaml:"watch"`

	// Tracing contains OpenTelemetry trace export settings.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "console"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "ecoimpact"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "engine"
	Subsystem string `yaml:"subsystem"`

	// ListenAddress serves the metrics endpoint while watching. Empty
	// disables the endpoint.
	// Default: ""
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// TextfilePath receives the metrics in Prometheus text format after
	// every run, for node_exporter's textfile collector. Empty disables it.
	// Default: ""
	TextfilePath string `yaml:"textfile_path"`

	// RuleDurationBuckets defines histogram buckets for rule durations (seconds).
	// Default: [0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120]
	RuleDurationBuckets []float64 `yaml:"rule_duration_buckets"`
}

// RunStoreConfig contains configuration for the run history.
type RunStoreConfig struct {
	// Backend specifies where run records are kept.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Retention contains retention policy configuration.
	Retention RetentionConfig `yaml:"retention"`

	// DefaultLimit is the number of records listed when no limit is given.
	// Default: 50
	DefaultLimit int `yaml:"default_limit"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: ".ecoimpact/runs.db"
	Path string `yaml:"path"`

	// Driver selects the database/sql driver.
	// Options: "sqlite3" (cgo, mattn/go-sqlite3), "sqlite" (pure Go, modernc.org/sqlite)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 4
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 2
	MaxIdleConns int `yaml:"max_idle_conns"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains retention policy configuration.
type RetentionConfig struct {
	// Days is the number of days to keep run records.
	// A negative value keeps records forever.
	// Default: 30
	Days int `yaml:"days"`

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a cron expression for pruning while watching.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`
}

// ProcessingConfig contains settings applied while parsing and running models.
type ProcessingConfig struct {
	// FormulaCostLimit bounds the evaluation cost of one formula call.
	// Default: 1000000
	FormulaCostLimit uint64 `yaml:"formula_cost_limit"`

	// MaxInputFileSize is the largest accepted input file in bytes.
	// Default: 10485760 (10MB)
	MaxInputFileSize int64 `yaml:"max_input_file_size"`

	// FailFast stops a partitioned run at the first failing partition.
	// By default every partition is attempted.
	// Default: false
	FailFast bool `yaml:"fail_fast"`
}

// WatchConfig contains settings for watch mode.
type WatchConfig struct {
	// Debounce is the quiet period after the last change before a re-run.
	// Default: 500ms
	Debounce time.Duration `yaml:"debounce"`

	// Extensions lists the file extensions that trigger a re-run.
	// Default: [".yaml", ".yml", ".json"]
	Extensions []string `yaml:"extensions"`
}

// TracingConfig contains OpenTelemetry tracing configuration. Spans cover
// the batch, every partition and every executed rule.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler selects the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces kept by the ratio sampler.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds a single export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "ecoimpact"
	ServiceName string `yaml:"service_name"`
}
