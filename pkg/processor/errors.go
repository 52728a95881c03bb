package processor

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRules is returned by New when the rule list is empty.
	ErrNoRules = errors.New("no rules given to the processor")

	// ErrNilDataset is returned by New when no dataset is given.
	ErrNilDataset = errors.New("no dataset given to the processor")

	// ErrNotInitialized is returned by ProcessRules when Initialize has not succeeded.
	ErrNotInitialized = errors.New("processor must be initialized first")
)

// MissingVariableError reports an input that is neither in the input data nor
// produced by an earlier rule. It indicates a resolver defect.
type MissingVariableError struct {
	// Variable is the input that was not found
	Variable string

	// Rule is the rule that needed it
	Rule string
}

// Error implements the error interface.
func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("variable %q needed by rule %q was not found in the input data or calculated output",
		e.Variable, e.Rule)
}

// RuleExecutionError reports a rule that could not be executed.
type RuleExecutionError struct {
	// Rule is the rule name
	Rule string

	// Message describes the failure
	Message string

	// Cause is the underlying error, if any
	Cause error
}

// Error implements the error interface.
func (e *RuleExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rule %q: %s: %v", e.Rule, e.Message, e.Cause)
	}
	return fmt.Sprintf("rule %q: %s", e.Rule, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *RuleExecutionError) Unwrap() error {
	return e.Cause
}

// DimensionMismatchError reports multi-cell inputs that still differ in
// dimensions after broadcasting.
type DimensionMismatchError struct {
	Rule string

	// Variable and Dims describe the offending input
	Variable string
	Dims     []string

	// Reference and ReferenceDims describe the input it was compared with
	Reference     string
	ReferenceDims []string
}

// Error implements the error interface.
func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("rule %q: variables %q %v and %q %v have different dimensions",
		e.Rule, e.Variable, e.Dims, e.Reference, e.ReferenceDims)
}
