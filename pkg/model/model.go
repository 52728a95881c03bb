package model

import (
	"fmt"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/dataset"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/rules"
)

// Status is the lifecycle stage of a model.
type Status int

const (
	StatusCreated Status = iota
	StatusValidating
	StatusValidated
	StatusValidationFailed
	StatusInitializing
	StatusInitialized
	StatusExecuting
	StatusExecuted
	StatusFinalizing
	StatusFinalized
	StatusFailed
)

var statusNames = map[Status]string{
	StatusCreated:          "created",
	StatusValidating:       "validating",
	StatusValidated:        "validated",
	StatusValidationFailed: "validation failed",
	StatusInitializing:     "initializing",
	StatusInitialized:      "initialized",
	StatusExecuting:        "executing",
	StatusExecuted:         "executed",
	StatusFinalizing:       "finalizing",
	StatusFinalized:        "finalized",
	StatusFailed:           "failed",
}

// String returns the status name.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// Terminal reports whether no further transition follows.
func (s Status) Terminal() bool {
	return s == StatusFinalized || s == StatusFailed || s == StatusValidationFailed
}

// Model is a unit of work driven through validate, initialize, execute and
// finalize by Run.
type Model interface {
	Name() string
	Status() Status
	SetStatus(s Status)

	// Validate checks the model configuration and logs every problem found.
	Validate(logger rules.Logger) bool

	Initialize(logger rules.Logger) error
	Execute(logger rules.Logger) error
	Finalize(logger rules.Logger) error

	// OutputDataset returns the working dataset after execution.
	OutputDataset() *dataset.Dataset
}
