package runstore

import (
	"context"
	"time"
)

// Status is the outcome of one model run.
type Status string

const (
	// StatusSuccess means the model reached the finalized state and its
	// output was written.
	StatusSuccess Status = "success"

	// StatusFailed means validation, initialization, execution or output
	// writing failed.
	StatusFailed Status = "failed"

	// StatusCancelled means the run was interrupted before it finished.
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// RunRecord is the history entry of one model run over one partition of
// the input data.
type RunRecord struct {
	// Identity
	ID        string `json:"id"`         // UUID v4
	InputFile string `json:"input_file"` // Input file the model was read from
	Partition string `json:"partition"`  // Partition suffix, empty when unpartitioned
	ModelName string `json:"model_name"`

	// Outcome
	Status     Status        `json:"status"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`
	Error      string        `json:"error,omitempty"`

	// Model shape
	RuleCount  int    `json:"rule_count"`
	WaveCount  int    `json:"wave_count"`
	OutputFile string `json:"output_file,omitempty"`

	// Rules lists every executed rule in execution order.
	Rules []RuleRecord `json:"rules"`
}

// RuleRecord describes one rule execution within a run.
type RuleRecord struct {
	Rule     string        `json:"rule"`
	Kind     string        `json:"kind"`
	Wave     int           `json:"wave"`
	Duration time.Duration `json:"duration"`
	BelowMin int           `json:"below_min,omitempty"` // Cells below the rule's table
	AboveMax int           `json:"above_max,omitempty"` // Cells above the rule's table
	Error    string        `json:"error,omitempty"`
}

// Query defines filter parameters for querying run records.
type Query struct {
	// Time range on StartedAt
	StartTime *time.Time `json:"start_time,omitempty"` // Inclusive start time
	EndTime   *time.Time `json:"end_time,omitempty"`   // Inclusive end time

	// Filters
	Status    Status   `json:"status,omitempty"`
	InputFile string   `json:"input_file,omitempty"`
	ModelName string   `json:"model_name,omitempty"`
	IDs       []string `json:"ids,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`  // Max records to return
	Offset int `json:"offset,omitempty"` // Skip N records

	// SortOrder orders by StartedAt: "asc" or "desc".
	SortOrder string `json:"sort_order,omitempty"`
}

// Storage defines the interface for run record storage backends.
// Implementations must be thread-safe and support concurrent access.
type Storage interface {
	// Store persists a run record.
	Store(ctx context.Context, record *RunRecord) error

	// Query retrieves run records matching the query filters.
	// Returns an empty slice if no records match.
	Query(ctx context.Context, query *Query) ([]*RunRecord, error)

	// Count returns the number of run records matching the query filters.
	// Pagination is ignored.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes run records matching the query filters and returns the
	// number deleted. Pagination is ignored.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases any resources held by the storage backend.
	Close() error
}
