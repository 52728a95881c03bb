package application

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/dataset"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/input"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/processor"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/rules"
)

// Severity levels of validation problems.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Problem is one finding of Validate.
type Problem struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Line     int    `json:"line,omitempty"` // Line in the input file, 0 when unknown
}

// Report is the result of validating an input file without running it.
type Report struct {
	InputFile  string    `json:"input_file"`
	ModelName  string    `json:"model_name,omitempty"`
	Valid      bool      `json:"valid"`
	RuleCount  int       `json:"rule_count"`
	Partitions int       `json:"partitions"`
	Waves      int       `json:"waves"`
	Problems   []Problem `json:"problems,omitempty"`
}

func (r *Report) add(severity, format string, args ...any) {
	r.Problems = append(r.Problems, Problem{Severity: severity, Message: fmt.Sprintf(format, args...)})
}

// Errors returns the number of error-level problems.
func (r *Report) Errors() int {
	n := 0
	for _, p := range r.Problems {
		if p.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Validate checks an input file without executing any rule: the document
// must parse, every rule must be valid, the input datasets must be
// readable and every rule input must become available in some wave.
func (a *Application) Validate(inputPath string) *Report {
	report := &Report{InputFile: inputPath}
	defer func() { report.Valid = report.Errors() == 0 }()

	md, err := a.Parse(inputPath)
	if err != nil {
		addParseProblems(report, err)
		return report
	}
	report.ModelName = md.Name
	report.RuleCount = len(md.Rules)

	logger := &problemLogger{report: report, next: a.logger}
	for _, r := range md.Rules {
		if !r.Validate(logger) {
			report.add(SeverityError, "rule %q is not valid", r.Name())
		}
	}

	if len(md.Datasets) == 0 {
		report.add(SeverityError, "%v", ErrNoInputData)
		return report
	}
	parts, err := expandPartitions(md.Datasets[0].Filename)
	if err != nil {
		report.add(SeverityError, "%v", err)
		return report
	}
	report.Partitions = len(parts)

	// Variable names are taken from the first partition; partitions of
	// one pattern are expected to share their layout.
	merged := dataset.New()
	for i, dd := range md.Datasets {
		path := dd.Filename
		if i == 0 {
			path = parts[0].Path
		}
		ds, err := readDataset(path, dd.VariableMapping)
		if err != nil {
			report.add(SeverityError, "%v", err)
			return report
		}
		merged.Merge(ds)
	}

	available := slices.Concat(merged.Names(), merged.CoordNames())
	waves, unresolved := processor.ResolveWaves(md.Rules, available)
	report.Waves = len(waves)
	for _, r := range unresolved {
		report.add(SeverityError, "rule %q can not be resolved: inputs %v never become available", r.Name(), r.InputVariableNames())
	}

	produced := slices.Clone(available)
	for _, r := range md.Rules {
		produced = append(produced, r.OutputVariableName())
	}
	for _, name := range md.Output.SaveOnlyVariables {
		if !slices.Contains(produced, name) {
			report.add(SeverityError, "save_only_variables: %q is neither an input variable nor a rule output", name)
		}
	}
	return report
}

func addParseProblems(report *Report, err error) {
	var list *input.ErrorList
	var single *input.Error
	switch {
	case errors.As(err, &list):
		for _, e := range list.Errors {
			report.Problems = append(report.Problems, Problem{Severity: SeverityError, Message: e.Message, Line: e.Line})
		}
	case errors.As(err, &single):
		report.Problems = append(report.Problems, Problem{Severity: SeverityError, Message: single.Message, Line: single.Line})
	default:
		report.add(SeverityError, "%v", err)
	}
}

// problemLogger turns rule validation warnings and errors into report
// problems and forwards every message.
type problemLogger struct {
	report *Report
	next   rules.Logger
}

func (l *problemLogger) Debug(msg string, args ...any) { l.next.Debug(msg, args...) }
func (l *problemLogger) Info(msg string, args ...any)  { l.next.Info(msg, args...) }

func (l *problemLogger) Warn(msg string, args ...any) {
	l.report.Problems = append(l.report.Problems, Problem{Severity: SeverityWarning, Message: msg})
	l.next.Warn(msg, args...)
}

func (l *problemLogger) Error(msg string, args ...any) {
	l.report.Problems = append(l.report.Problems, Problem{Severity: SeverityError, Message: msg})
	l.next.Error(msg, args...)
}
