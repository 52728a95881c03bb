// Package config provides configuration management for EcoImpact.
//
// This package handles loading, validating, and managing the tool
// configuration from YAML files with environment variable overrides. The
// model itself (datasets and rules) is described by the input file and is
// parsed by package input.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("ecoimpact.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("ecoimpact.yaml")
//
// The second form falls back to the defaults when the file does not exist.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention ECOIMPACT_SECTION_FIELD.
// For example:
//
//   - ECOIMPACT_LOGGING_LEVEL overrides logging.level
//   - ECOIMPACT_RUNSTORE_BACKEND overrides runstore.backend
//   - ECOIMPACT_WATCH_EXTENSIONS overrides watch.extensions (comma separated)
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
//	if err := config.Initialize("ecoimpact.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.GetConfig()
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Example Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
//	metrics:
//	  enabled: true
//	  textfile_path: "/var/lib/node_exporter/ecoimpact.prom"
//
//	runstore:
//	  backend: "sqlite"
//	  sqlite:
//	    path: ".ecoimpact/runs.db"
//	    driver: "sqlite"
//	  retention:
//	    days: 30
//	    prune_schedule: "0 3 * * *"
//
//	processing:
//	  formula_cost_limit: 1000000
//
//	watch:
//	  debounce: "500ms"
//
//	tracing:
//	  enabled: true
//	  endpoint: "otel-collector:4317"
//	  insecure: true
//	  sampler: "ratio"
//	  sample_ratio: 0.1
package config
