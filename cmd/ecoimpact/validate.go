package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/application"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/cli"
)

var validateFlags struct {
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate <input.yaml>...",
	Short: "Check input files without running them",
	Long: `Check input files without running them.

Validation parses the input file, validates every rule, reads the input
datasets of the first partition and checks that every rule can be
scheduled: each of its inputs must be an input variable or the output of
another rule.

Examples:
  # Validate one input file
  ecoimpact validate input.yaml

  # Validate several input files and print JSON
  ecoimpact validate models/*.yaml --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateInputs,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json, csv")
}

func validateInputs(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(validateFlags.format)
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

	app := application.New(cfg, logger, nil, nil)
	formatter := cli.NewFormatter(format)
	out := cmd.OutOrStdout()

	invalid := 0
	for _, path := range args {
		report := app.Validate(path)
		if !report.Valid {
			invalid++
		}
		if err := formatter.FormatTo(out, cli.ReportView{Report: report}); err != nil {
			return err
		}
	}

	if invalid > 0 {
		return cli.NewCommandError("validate", fmt.Errorf("%d of %d input files are invalid", invalid, len(args)))
	}
	return nil
}
