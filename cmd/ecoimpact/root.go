package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/cli"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/config"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "ecoimpact",
	Short: "EcoImpact - rule-based ecological impact assessment",
	Long: `EcoImpact derives ecological indicator variables from gridded
hydrodynamic model output.

An input file lists the input datasets, the output dataset and the rules
to apply. Rules are ordered by the variables they need, so they may be
listed in any order. Supported rules include multiplication, step
functions, response curves, classification, combination of results,
layer filters, depth averaging, time aggregation and formulas.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "ecoimpact.yaml", "config file path (defaults are used when it does not exist)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override log format (json, text, console)")
}

// loadConfig initializes the global configuration and applies the flag
// overrides.
func loadConfig() (*config.Config, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError(cfgFile, err.Error())
	}
	cfg := config.GetConfig()

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if err := config.Validate(cfg); err != nil {
		return nil, cli.NewConfigError("flags", err.Error())
	}
	return cfg, nil
}

// newLogger creates the command logger. Logs go to stderr so that command
// output on stdout stays machine readable.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	logger, err := logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
		Writer:    os.Stderr,
	})
	if err != nil {
		return nil, cli.NewConfigError("logging", err.Error())
	}
	return logger, nil
}
