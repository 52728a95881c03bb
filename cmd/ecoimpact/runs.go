package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/cli"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/runstore"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/runstore/retention"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/runstore/storage"
)

var runsFlags struct {
	status string
	input  string
	model  string
	since  time.Duration
	limit  int
	offset int
	format string
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect the run history",
	Long: `Inspect and maintain the run history.

Every model run over one partition of its input data is recorded with its
status, duration, rule executions and output file.

Subcommands:
  list   - List recorded runs, newest first
  prune  - Delete runs outside the retention policy`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs",
	Long: `List recorded runs, newest first.

Examples:
  # Last runs
  ecoimpact runs list

  # Failed runs of the last day as CSV
  ecoimpact runs list --status failed --since 24h --format csv`,
	Args: cobra.NoArgs,
	RunE: listRuns,
}

var runsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs outside the retention policy",
	Long: `Delete runs older than runstore.retention.days and, when
runstore.retention.max_records is set, the oldest runs above that count.`,
	Args: cobra.NoArgs,
	RunE: pruneRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd, runsPruneCmd)

	runsListCmd.Flags().StringVar(&runsFlags.status, "status", "", "filter by status (success, failed, cancelled)")
	runsListCmd.Flags().StringVar(&runsFlags.input, "input", "", "filter by input file")
	runsListCmd.Flags().StringVar(&runsFlags.model, "model", "", "filter by model name")
	runsListCmd.Flags().DurationVar(&runsFlags.since, "since", 0, "only runs started within this duration")
	runsListCmd.Flags().IntVar(&runsFlags.limit, "limit", 0, "max results (default runstore.default_limit)")
	runsListCmd.Flags().IntVar(&runsFlags.offset, "offset", 0, "pagination offset")
	runsListCmd.Flags().StringVar(&runsFlags.format, "format", "text", "output format: text, json, csv")
}

// buildRunsQuery turns the list flags into a store query.
func buildRunsQuery(now time.Time, defaultLimit int) (*runstore.Query, error) {
	query := &runstore.Query{
		Status:    runstore.Status(runsFlags.status),
		InputFile: runsFlags.input,
		ModelName: runsFlags.model,
		Limit:     runsFlags.limit,
		Offset:    runsFlags.offset,
		SortOrder: "desc",
	}
	if query.Status != "" && !query.Status.Valid() {
		return nil, cli.NewConfigError("status", fmt.Sprintf("unknown status %q (use success, failed or cancelled)", runsFlags.status))
	}
	if query.Limit <= 0 {
		query.Limit = defaultLimit
	}
	if runsFlags.since > 0 {
		start := now.Add(-runsFlags.since)
		query.StartTime = &start
	}
	return query, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(runsFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	query, err := buildRunsQuery(time.Now(), cfg.RunStore.DefaultLimit)
	if err != nil {
		return err
	}

	store, err := storage.Open(&cfg.RunStore, logger.Slog())
	if err != nil {
		return cli.NewCommandError("runs list", err)
	}
	defer store.Close()

	records, err := store.Query(cmd.Context(), query)
	if err != nil {
		return cli.NewCommandError("runs list", err)
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), cli.RunTable(records))
}

func pruneRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	store, err := storage.Open(&cfg.RunStore, logger.Slog())
	if err != nil {
		return cli.NewCommandError("runs prune", err)
	}
	defer store.Close()

	pruner := retention.NewPruner(store, cfg.RunStore.Retention, logger.Slog())
	deleted, err := pruner.Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("runs prune", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Pruned %s run records\n", humanize.Comma(deleted))
	return nil
}
