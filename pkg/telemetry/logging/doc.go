// Package logging provides structured logging for EcoImpact runs.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON, text, and console formats
//   - Context-aware logging with run IDs, input files and partitions
//   - A runtime-adjustable level shared by derived loggers
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "console",
//	})
//
//	logger.Info("Model run finished",
//	    "model", "lake",
//	    "duration", elapsed,
//	)
//
//	ctx = logging.WithRunID(ctx, id)
//	ctx = logging.WithPartition(ctx, "2019")
//	runLogger := logging.NewContextLogger(logger, ctx)
//	runLogger.Info("Starting rule 1/4: depth") // includes run_id and partition
//
// Both *Logger and *ContextLogger can be handed to rule validation and the
// rule processor, which only need Debug, Info, Warn and Error.
package logging
