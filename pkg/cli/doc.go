/*
Package cli provides command-line interface utilities for EcoImpact.

The cli package includes output formatters, progress reporters, and common CLI
helpers used by the ecoimpact command.

Output Formatting:

Run history and validation reports can be printed as text, JSON or CSV:

	formatter, err := cli.NewFormatter(cli.FormatCSV)
	if err != nil {
		return err
	}
	if err := formatter.FormatTo(os.Stdout, cli.RunTable(records)); err != nil {
		return err
	}

Text output uses the data's Text method when it has one; CSV output
requires the data to implement CSVWriter.

Progress Reporting:

A partitioned model run reports progress per partition:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(int64(partitions))
	// after each partition
	progress.Update(int64(done))
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
	// Use ctx for operations that should be cancelled on shutdown

Exit Codes:

ExitCode maps command errors to process exit codes.
*/
package cli
