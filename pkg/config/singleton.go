package config

import (
	"sync"
	"sync/atomic"
)

// The process-wide configuration used by cmd/ecoimpact. Library packages
// receive the sections they need as arguments and never read it.
var (
	current  atomic.Pointer[Config]
	loadOnce sync.Once
	loadErr  error
)

// Initialize loads the ecoimpact configuration file at path, applies the
// ECOIMPACT_ environment overrides and validates the result. A missing file
// leaves the defaults in place. Only the first call loads anything; later
// calls return the first call's error.
func Initialize(path string) error {
	loadOnce.Do(func() {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			loadErr = err
			return
		}
		current.Store(cfg)
	})
	return loadErr
}

// GetConfig returns the configuration stored by Initialize or SetConfig, or
// nil when neither has succeeded.
func GetConfig() *Config {
	return current.Load()
}

// SetConfig replaces the process-wide configuration. Used by tests.
func SetConfig(cfg *Config) {
	current.Store(cfg)
}
