package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidationFailed is returned by RunE when Validate reports false.
	ErrValidationFailed = errors.New("model validation failed")

	// ErrNoInputData is returned when a model has no input datasets.
	ErrNoInputData = errors.New("model has no input datasets")
)

// UnresolvedRulesError reports rules whose inputs can never become available.
type UnresolvedRulesError struct {
	// Model is the model name
	Model string

	// Rules are the names of the rules left over after resolution
	Rules []string
}

// Error implements the error interface.
func (e *UnresolvedRulesError) Error() string {
	return fmt.Sprintf("model %s: rules can not be resolved: %s", e.Model, strings.Join(e.Rules, ", "))
}

// PhaseError reports a failure in one lifecycle phase.
type PhaseError struct {
	// Model is the model name
	Model string

	// Phase is the status the model was in when it failed
	Phase Status

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *PhaseError) Error() string {
	return fmt.Sprintf("model %s failed while %s: %v", e.Model, e.Phase, e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *PhaseError) Unwrap() error {
	return e.Cause
}
