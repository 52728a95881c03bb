package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/application"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/runstore"
)

// RunTable renders run records as a table.
type RunTable []*runstore.RunRecord

// Text implements Texter.
func (t RunTable) Text(w io.Writer) error {
	if len(t) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMODEL\tPARTITION\tSTATUS\tSTARTED\tDURATION\tRULES\tERROR")
	for _, r := range t {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			shortID(r.ID),
			r.ModelName,
			orDash(r.Partition),
			r.Status,
			humanize.Time(r.StartedAt),
			r.Duration.Round(time.Millisecond),
			r.RuleCount,
			truncate(r.Error, 60),
		)
	}
	return tw.Flush()
}

// CSVHeader implements CSVWriter.
func (t RunTable) CSVHeader() []string {
	return []string{
		"id", "input_file", "partition", "model_name", "status",
		"started_at", "finished_at", "duration_ms",
		"rule_count", "wave_count", "output_file", "error",
	}
}

// CSVRows implements CSVWriter.
func (t RunTable) CSVRows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		rows = append(rows, []string{
			r.ID,
			r.InputFile,
			r.Partition,
			r.ModelName,
			string(r.Status),
			r.StartedAt.Format(time.RFC3339),
			r.FinishedAt.Format(time.RFC3339),
			strconv.FormatInt(r.Duration.Milliseconds(), 10),
			strconv.Itoa(r.RuleCount),
			strconv.Itoa(r.WaveCount),
			r.OutputFile,
			r.Error,
		})
	}
	return rows
}

// ReportView renders a validation report.
type ReportView struct {
	*application.Report
}

// Text implements Texter.
func (v ReportView) Text(w io.Writer) error {
	r := v.Report
	if r.Valid {
		fmt.Fprintf(w, "✓ %s is valid\n", r.InputFile)
		fmt.Fprintf(w, "  model %s: %s, %s, %s\n",
			r.ModelName,
			plural(r.RuleCount, "rule"),
			plural(r.Waves, "wave"),
			plural(r.Partitions, "partition"),
		)
	} else {
		fmt.Fprintf(w, "✗ %s has %s\n", r.InputFile, plural(r.Errors(), "error"))
	}

	for _, p := range r.Problems {
		location := ""
		if p.Line > 0 {
			location = fmt.Sprintf(" (line %d)", p.Line)
		}
		if _, err := fmt.Fprintf(w, "  - %s%s: %s\n", p.Severity, location, p.Message); err != nil {
			return err
		}
	}
	return nil
}

// CSVHeader implements CSVWriter.
func (v ReportView) CSVHeader() []string {
	return []string{"input_file", "severity", "line", "message"}
}

// CSVRows implements CSVWriter.
func (v ReportView) CSVRows() [][]string {
	rows := make([][]string, 0, len(v.Problems))
	for _, p := range v.Problems {
		rows = append(rows, []string{v.InputFile, p.Severity, strconv.Itoa(p.Line), p.Message})
	}
	return rows
}

// SummaryView renders the outcome of a model run.
type SummaryView struct {
	*application.Summary
}

// Text implements Texter.
func (v SummaryView) Text(w io.Writer) error {
	s := v.Summary
	fmt.Fprintf(w, "Model %s: %d succeeded, %d failed", s.ModelName, s.Succeeded, s.Failed)
	if s.Cancelled > 0 {
		fmt.Fprintf(w, ", %d cancelled", s.Cancelled)
	}
	fmt.Fprintf(w, " in %s\n", s.Duration.Round(time.Millisecond))

	for _, r := range s.Runs {
		target := r.OutputFile
		if r.Status != runstore.StatusSuccess {
			target = r.Error
		}
		if _, err := fmt.Fprintf(w, "  %s %-10s %s\n", statusMark(r.Status), orDash(r.Partition), target); err != nil {
			return err
		}
	}
	return nil
}

// CSVHeader implements CSVWriter.
func (v SummaryView) CSVHeader() []string {
	return RunTable(v.Runs).CSVHeader()
}

// CSVRows implements CSVWriter.
func (v SummaryView) CSVRows() [][]string {
	return RunTable(v.Runs).CSVRows()
}

func statusMark(s runstore.Status) string {
	switch s {
	case runstore.StatusSuccess:
		return "✓"
	case runstore.StatusCancelled:
		return "-"
	default:
		return "✗"
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return humanize.Comma(int64(n)) + " " + word + "s"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
