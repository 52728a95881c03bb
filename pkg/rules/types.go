package rules

import (
	"fmt"
	"slices"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/dataset"
)

// Kind identifies the execution shape of a rule.
type Kind int

const (
	// KindArray rules transform one whole array.
	KindArray Kind = iota + 1

	// KindCell rules map one scalar to one scalar plus range warnings.
	KindCell

	// KindMultiArray rules combine several whole arrays.
	KindMultiArray

	// KindMultiCell rules combine several arrays cell by cell.
	KindMultiCell
)

// String returns the name used in logs and run records.
func (k Kind) String() string {
	switch k {
	case KindArray:
		return "array"
	case KindCell:
		return "cell"
	case KindMultiArray:
		return "multi_array"
	case KindMultiCell:
		return "multi_cell"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Logger receives rule diagnostics. Implementations must not fail.
// Both *slog.Logger and *logging.Logger satisfy it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Rule is the capability set shared by every rule.
type Rule interface {
	// Name identifies the rule in logs.
	Name() string

	// Description is free text from the input file.
	Description() string

	// InputVariableNames lists the variables the rule reads, in order.
	InputVariableNames() []string

	// OutputVariableName is the variable the rule writes.
	OutputVariableName() string

	// Kind selects the execution shape. The value determines which of the
	// shape interfaces below the rule implements.
	Kind() Kind

	// Validate checks the rule's own configuration and logs every problem found.
	// It does not check whether the inputs can be provided.
	Validate(logger Logger) bool
}

// ArrayRule transforms one whole array.
type ArrayRule interface {
	Rule
	Execute(input *dataset.Variable, logger Logger) (*dataset.Variable, error)
}

// CellRule maps a single value. It must be pure so cells can be processed in any order.
type CellRule interface {
	Rule
	ExecuteCell(value float64) (float64, CellWarnings)
}

// MultiArrayRule combines whole arrays keyed by input variable name.
type MultiArrayRule interface {
	Rule
	ExecuteMulti(inputs map[string]*dataset.Variable, logger Logger) (*dataset.Variable, error)
}

// MultiCellRule combines the values of several arrays at one index.
type MultiCellRule interface {
	Rule
	ExecuteCells(values map[string]float64) (float64, error)
}

// CellWarnings counts out-of-range values seen by a cell rule.
type CellWarnings struct {
	BelowMin int
	AboveMax int
}

// Add accumulates o into w.
func (w *CellWarnings) Add(o CellWarnings) {
	w.BelowMin += o.BelowMin
	w.AboveMax += o.AboveMax
}

// Any reports whether any warning was counted.
func (w CellWarnings) Any() bool {
	return w.BelowMin > 0 || w.AboveMax > 0
}

// Base holds the identity and contract every rule shares.
type Base struct {
	RuleName        string
	RuleDescription string
	InputNames      []string
	OutputName      string
}

// Name returns the rule name.
func (b *Base) Name() string { return b.RuleName }

// Description returns the rule description.
func (b *Base) Description() string { return b.RuleDescription }

// SetDescription replaces the rule description.
func (b *Base) SetDescription(description string) { b.RuleDescription = description }

// InputVariableNames returns a copy of the input names.
func (b *Base) InputVariableNames() []string { return slices.Clone(b.InputNames) }

// OutputVariableName returns the output name.
func (b *Base) OutputVariableName() string { return b.OutputName }

// validateBase checks the contract shared by every rule.
func (b *Base) validateBase(logger Logger) bool {
	valid := true
	if b.RuleName == "" {
		logger.Error("rule has no name")
		valid = false
	}
	if len(b.InputNames) == 0 {
		logger.Error("rule has no input variables", "rule", b.RuleName)
		valid = false
	}
	if b.OutputName == "" {
		logger.Error("rule has no output variable", "rule", b.RuleName)
		valid = false
	}
	seen := make(map[string]bool, len(b.InputNames))
	for _, name := range b.InputNames {
		if seen[name] {
			logger.Error("input variable listed more than once", "rule", b.RuleName, "variable", name)
			valid = false
		}
		seen[name] = true
	}
	if seen[b.OutputName] {
		logger.Error("rule reads its own output", "rule", b.RuleName, "variable", b.OutputName)
		valid = false
	}
	return valid
}
