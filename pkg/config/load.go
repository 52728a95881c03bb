package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix starts the name of every configuration environment variable.
const EnvPrefix = "ECOIMPACT_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention ECOIMPACT_SECTION_FIELD (e.g., ECOIMPACT_LOGGING_LEVEL).
// Environment variables always take precedence over file-based configuration.
//
// An empty path, or a path that does not exist, yields the defaults.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = NewDefault()
	} else {
		loaded, err := LoadConfig(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			cfg = NewDefault()
		case err != nil:
			return nil, err
		default:
			cfg = loaded
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format ECOIMPACT_SECTION_FIELD. Values that
// do not parse are ignored.
func applyEnvOverrides(cfg *Config) {
	// Logging overrides
	envString("LOGGING_LEVEL", &cfg.Logging.Level)
	envString("LOGGING_FORMAT", &cfg.Logging.Format)
	envBool("LOGGING_ADD_SOURCE", &cfg.Logging.AddSource)

	// Metrics overrides
	envBool("METRICS_ENABLED", &cfg.Metrics.Enabled)
	envString("METRICS_NAMESPACE", &cfg.Metrics.Namespace)
	envString("METRICS_LISTEN_ADDRESS", &cfg.Metrics.ListenAddress)
	envString("METRICS_PATH", &cfg.Metrics.Path)
	envString("METRICS_TEXTFILE_PATH", &cfg.Metrics.TextfilePath)

	// Run store overrides
	envString("RUNSTORE_BACKEND", &cfg.RunStore.Backend)
	envString("RUNSTORE_SQLITE_PATH", &cfg.RunStore.SQLite.Path)
	envString("RUNSTORE_SQLITE_DRIVER", &cfg.RunStore.SQLite.Driver)
	envDuration("RUNSTORE_SQLITE_BUSY_TIMEOUT", &cfg.RunStore.SQLite.BusyTimeout)
	envInt("RUNSTORE_RETENTION_DAYS", &cfg.RunStore.Retention.Days)
	if val := os.Getenv(EnvPrefix + "RUNSTORE_RETENTION_MAX_RECORDS"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.RunStore.Retention.MaxRecords = i
		}
	}
	envString("RUNSTORE_RETENTION_PRUNE_SCHEDULE", &cfg.RunStore.Retention.PruneSchedule)

	// Processing overrides
	if val := os.Getenv(EnvPrefix + "PROCESSING_FORMULA_COST_LIMIT"); val != "" {
		if u, err := strconv.ParseUint(val, 10, 64); err == nil {
			cfg.Processing.FormulaCostLimit = u
		}
	}
	envBool("PROCESSING_FAIL_FAST", &cfg.Processing.FailFast)

	// Watch overrides
	envDuration("WATCH_DEBOUNCE", &cfg.Watch.Debounce)
	if val := os.Getenv(EnvPrefix + "WATCH_EXTENSIONS"); val != "" {
		var exts []string
		for _, ext := range strings.Split(val, ",") {
			if ext = strings.TrimSpace(ext); ext != "" {
				exts = append(exts, ext)
			}
		}
		cfg.Watch.Extensions = exts
	}

	// Tracing overrides
	envBool("TRACING_ENABLED", &cfg.Tracing.Enabled)
	envString("TRACING_SAMPLER", &cfg.Tracing.Sampler)
	if val := os.Getenv(EnvPrefix + "TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Tracing.SampleRatio = f
		}
	}
	envString("TRACING_ENDPOINT", &cfg.Tracing.Endpoint)
	envBool("TRACING_INSECURE", &cfg.Tracing.Insecure)
	envString("TRACING_SERVICE_NAME", &cfg.Tracing.ServiceName)
}

func envString(name string, dst *string) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		*dst = val
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envInt(name string, dst *int) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
