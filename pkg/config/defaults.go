package config

import (
	"slices"
	"time"
)

// Default values for configuration fields.
const (
	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	// Metrics defaults
	DefaultMetricsNamespace = "ecoimpact"
	DefaultMetricsSubsystem = "engine"
	DefaultMetricsPath      = "/metrics"

	// Run store defaults
	DefaultRunStoreBackend        = "sqlite"
	DefaultRunStoreSQLitePath     = ".ecoimpact/runs.db"
	DefaultRunStoreSQLiteDriver   = "sqlite"
	DefaultRunStoreMaxOpenConns   = 4
	DefaultRunStoreMaxIdleConns   = 2
	DefaultRunStoreBusyTimeout    = 5 * time.Second
	DefaultRunStoreDefaultLimit   = 50
	DefaultRetentionDays          = 30
	DefaultRetentionMaxRecords    = int64(0)
	DefaultRetentionPruneSchedule = "0 3 * * *"

	// Processing defaults
	DefaultFormulaCostLimit = uint64(1000000)
	DefaultMaxInputFileSize = int64(10 * 1024 * 1024) // 10MB

	// Watch defaults
	DefaultWatchDebounce = 500 * time.Millisecond

	// Tracing defaults
	DefaultTracingSampler     = "always"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingTimeout     = 10 * time.Second
	DefaultTracingServiceName = "ecoimpact"
)

// DefaultRuleDurationBuckets are the rule duration histogram buckets in seconds.
var DefaultRuleDurationBuckets = []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120}

// DefaultWatchExtensions are the file extensions that trigger a re-run.
var DefaultWatchExtensions = []string{".yaml", ".yml", ".json"}

// NewDefault returns a configuration with every default applied.
func NewDefault() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}

	// Metrics defaults
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if len(cfg.Metrics.RuleDurationBuckets) == 0 {
		cfg.Metrics.RuleDurationBuckets = slices.Clone(DefaultRuleDurationBuckets)
	}

	// Run store defaults
	if cfg.RunStore.Backend == "" {
		cfg.RunStore.Backend = DefaultRunStoreBackend
	}
	if cfg.RunStore.SQLite.Path == "" {
		cfg.RunStore.SQLite.Path = DefaultRunStoreSQLitePath
	}
	if cfg.RunStore.SQLite.Driver == "" {
		cfg.RunStore.SQLite.Driver = DefaultRunStoreSQLiteDriver
	}
	if cfg.RunStore.SQLite.MaxOpenConns == 0 {
		cfg.RunStore.SQLite.MaxOpenConns = DefaultRunStoreMaxOpenConns
	}
	if cfg.RunStore.SQLite.MaxIdleConns == 0 {
		cfg.RunStore.SQLite.MaxIdleConns = DefaultRunStoreMaxIdleConns
	}
	if cfg.RunStore.SQLite.BusyTimeout == 0 {
		cfg.RunStore.SQLite.BusyTimeout = DefaultRunStoreBusyTimeout
	}
	if cfg.RunStore.DefaultLimit == 0 {
		cfg.RunStore.DefaultLimit = DefaultRunStoreDefaultLimit
	}
	if cfg.RunStore.Retention.Days == 0 {
		cfg.RunStore.Retention.Days = DefaultRetentionDays
	}
	if cfg.RunStore.Retention.PruneSchedule == "" {
		cfg.RunStore.Retention.PruneSchedule = DefaultRetentionPruneSchedule
	}

	// Processing defaults
	if cfg.Processing.FormulaCostLimit == 0 {
		cfg.Processing.FormulaCostLimit = DefaultFormulaCostLimit
	}
	if cfg.Processing.MaxInputFileSize == 0 {
		cfg.Processing.MaxInputFileSize = DefaultMaxInputFileSize
	}

	// Watch defaults
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
	if len(cfg.Watch.Extensions) == 0 {
		cfg.Watch.Extensions = slices.Clone(DefaultWatchExtensions)
	}

	// Tracing defaults
	if cfg.Tracing.Sampler == "" {
		cfg.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Tracing.Endpoint == "" {
		cfg.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Tracing.Timeout == 0 {
		cfg.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}
}
