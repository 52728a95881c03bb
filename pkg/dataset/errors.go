package dataset

import (
	"errors"
	"fmt"
)

// ErrVariableNotFound is returned when a named variable is not present in a dataset.
var ErrVariableNotFound = errors.New("variable not found")

// ShapeError represents an inconsistency between dimensions, shape and data.
type ShapeError struct {
	// Op is the operation that detected the inconsistency (e.g., "new", "transpose")
	Op string

	// Message describes the inconsistency
	Message string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape error during %s: %s", e.Op, e.Message)
}

// DimensionError represents an invalid reference to a named dimension.
type DimensionError struct {
	// Dim is the dimension name involved
	Dim string

	// Message describes the problem
	Message string
}

// Error implements the error interface.
func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension %q: %s", e.Dim, e.Message)
}

// FileError represents a failure reading or writing a dataset file.
type FileError struct {
	// Path is the file that failed
	Path string

	// Op is "read" or "write"
	Op string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *FileError) Error() string {
	return fmt.Sprintf("failed to %s dataset file %q: %v", e.Op, e.Path, e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *FileError) Unwrap() error {
	return e.Cause
}
