package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/application"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/cli"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/config"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/runstore/retention"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/runstore/storage"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/server"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/telemetry/health"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/telemetry/logging"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/telemetry/metrics"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/telemetry/tracing"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/watch"
)

var runFlags struct {
	watch       bool
	metricsFile string
	format      string
	progress    bool
	failFast    bool
}

var runCmd = &cobra.Command{
	Use:   "run <input.yaml>",
	Short: "Run the model described by an input file",
	Long: `Run the model described by an input file.

When the filename of the first input dataset is a glob pattern, the model
runs once per matching file and every output file gets the matched part of
the name as suffix. A failing partition does not stop the others unless
--fail-fast is given.

Every run is recorded in the run store (see 'ecoimpact runs').

Examples:
  # Run once
  ecoimpact run input.yaml

  # Re-run whenever the input file or its datasets change
  ecoimpact run input.yaml --watch

  # Export metrics for the node_exporter textfile collector
  ecoimpact run input.yaml --metrics-file /var/lib/node_exporter/ecoimpact.prom`,
	Args: cobra.ExactArgs(1),
	RunE: runModel,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVarP(&runFlags.watch, "watch", "w", false, "re-run when the input file or its datasets change")
	runCmd.Flags().StringVar(&runFlags.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after every run")
	runCmd.Flags().StringVar(&runFlags.format, "format", "text", "summary format: text, json, csv")
	runCmd.Flags().BoolVar(&runFlags.progress, "progress", false, "show a progress bar for partitioned runs")
	runCmd.Flags().BoolVar(&runFlags.failFast, "fail-fast", false, "stop at the first failing partition")
}

func runModel(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	format, err := cli.ParseFormat(runFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runFlags.metricsFile != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.TextfilePath = runFlags.metricsFile
	}
	if runFlags.failFast {
		cfg.Processing.FailFast = true
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	store, err := storage.Open(&cfg.RunStore, logger.Slog())
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to open run store: %w", err))
	}
	defer store.Close()

	collector := metrics.NewCollector(&cfg.Metrics, nil)
	app := application.New(cfg, logger, store, collector)

	tracer, err := tracing.New(&cfg.Tracing, Version)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to set up tracing: %w", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Tracing.Timeout)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to flush spans", "error", err)
		}
	}()
	app.SetTracer(tracer)

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	out := cmd.OutOrStdout()
	if !runFlags.watch {
		return runOnce(ctx, app, inputPath, out, format)
	}

	pruner := retention.NewPruner(store, cfg.RunStore.Retention, logger.Slog())
	if err := pruner.Start(ctx); err != nil {
		logger.Warn("failed to start retention scheduler", "error", err)
	} else {
		defer pruner.Stop()
		if next := pruner.NextPruning(); next != nil {
			logger.Debug("run store retention scheduler started", "next_pruning", humanize.Time(*next))
		}
	}

	checker := health.New(5 * time.Second)
	checker.RegisterCheck("runstore", health.StoreCheck(store))
	if srv := newMetricsServer(cfg, collector, checker, logger); srv != nil {
		go func() {
			if err := srv.Start(ctx); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	return watchModel(ctx, cfg, app, checker, logger, inputPath, out, format)
}

// runOnce runs the model and prints its summary.
func runOnce(ctx context.Context, app *application.Application, inputPath string, out io.Writer, format cli.OutputFormat) error {
	if runFlags.progress {
		progress := cli.NewProgressReporter(nil)
		app.SetProgress(func(done, total int) {
			if done == 1 {
				progress.Start(int64(total))
			}
			progress.Update(int64(done))
			if done == total {
				progress.Finish()
			}
		})
	}

	summary, err := app.Run(ctx, inputPath)
	if summary != nil {
		if ferr := cli.NewFormatter(format).FormatTo(out, cli.SummaryView{Summary: summary}); ferr != nil {
			return ferr
		}
	}
	if err == nil {
		return nil
	}

	cmdErr := cli.NewCommandError("run", err)
	var batch *application.BatchError
	if errors.As(err, &batch) && summary != nil && summary.Succeeded > 0 {
		cmdErr.Code = cli.ExitPartialFailure
	}
	return cmdErr
}

// watchModel runs the model, then again after every change of the input
// file or its datasets, until ctx is cancelled.
func watchModel(ctx context.Context, cfg *config.Config, app *application.Application, checker *health.Checker, logger *logging.Logger, inputPath string, out io.Writer, format cli.OutputFormat) error {
	tracker := &health.RunTracker{}
	checker.RegisterCheck("last_run", tracker.Check)

	err := runOnce(ctx, app, inputPath, out, format)
	tracker.Record(err)
	if err != nil {
		logger.Error("model run failed", "error", err)
	}

	paths, isOutput, err := app.WatchTargets(inputPath)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	wcfg := watch.FromConfig(*cfg, paths...)
	wcfg.Ignore = isOutput
	watcher, err := watch.NewFileWatcher(wcfg, logger.Slog())
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer watcher.Stop()
	checker.RegisterCheck("watcher", health.WatcherCheck(watcher))

	logger.Info("watching for changes", "paths", paths)
	err = watcher.Watch(ctx, func(path string) error {
		logger.Debug("re-running model", "trigger", path)
		err := runOnce(ctx, app, inputPath, out, format)
		tracker.Record(err)
		return err
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return cli.NewCommandError("run", err)
	}
	return nil
}

// newMetricsServer builds the listener for the Prometheus and health
// endpoints used while watching. It returns nil when metrics or the listen
// address are not configured.
func newMetricsServer(cfg *config.Config, collector *metrics.Collector, checker *health.Checker, logger *logging.Logger) *server.Server {
	if !cfg.Metrics.Enabled || cfg.Metrics.ListenAddress == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, collector.Handler())
	health.Register(mux, checker, health.VersionInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	})
	return server.New(cfg.Metrics.ListenAddress, mux, logger.Slog())
}
