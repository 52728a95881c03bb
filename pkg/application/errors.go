package application

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoInputData is returned when an input file names no datasets.
	ErrNoInputData = errors.New("input file names no datasets")

	// ErrNoMatchingFiles is returned when a dataset pattern matches nothing.
	ErrNoMatchingFiles = errors.New("no files match dataset pattern")
)

// PartitionError reports the failure of one partition.
type PartitionError struct {
	// Partition is the partition suffix, empty when the input is not partitioned
	Partition string

	// RunID identifies the run record of the partition
	RunID string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *PartitionError) Error() string {
	if e.Partition == "" {
		return fmt.Sprintf("run %s failed: %v", e.RunID, e.Cause)
	}
	return fmt.Sprintf("partition %q (run %s) failed: %v", e.Partition, e.RunID, e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *PartitionError) Unwrap() error {
	return e.Cause
}

// BatchError aggregates the failed partitions of one run.
type BatchError struct {
	// Total is the number of partitions attempted
	Total int

	// Errors holds one entry per failed partition in run order
	Errors []*PartitionError
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d partitions failed:", len(e.Errors), e.Total)
	for _, pe := range e.Errors {
		b.WriteString("\n  - ")
		b.WriteString(pe.Error())
	}
	return b.String()
}

// Unwrap returns the partition errors so errors.Is and errors.As see every
// cause.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, pe := range e.Errors {
		errs[i] = pe
	}
	return errs
}
