package runstore

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/processor"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/rules"
)

func TestRecorder(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := start
	rec := newRecorder("model.yaml", "2020", "model", func() time.Time { return now })

	if _, err := uuid.Parse(rec.ID()); err != nil {
		t.Errorf("ID %q is not a UUID: %v", rec.ID(), err)
	}

	rec.ObserveRule(processor.RuleEvent{
		Rule:     "depth class",
		Kind:     rules.KindCell,
		Wave:     1,
		Duration: 3 * time.Millisecond,
		Warnings: rules.CellWarnings{BelowMin: 2},
	})
	rec.ObserveRule(processor.RuleEvent{
		Rule: "habitat",
		Kind: rules.KindMultiCell,
		Wave: 2,
		Err:  errors.New("shape mismatch"),
	})

	now = start.Add(5 * time.Second)
	record := rec.Finish(Outcome{
		Status:    StatusFailed,
		RuleCount: 3,
		WaveCount: 2,
		Err:       errors.New("model failed"),
	})

	if record.ID != rec.ID() || record.Partition != "2020" || record.ModelName != "model" {
		t.Errorf("identity = %+v", record)
	}
	if record.Status != StatusFailed || record.Error != "model failed" {
		t.Errorf("outcome = %s %q", record.Status, record.Error)
	}
	if !record.StartedAt.Equal(start) || record.Duration != 5*time.Second {
		t.Errorf("timing = %v + %v", record.StartedAt, record.Duration)
	}
	if record.RuleCount != 3 || record.WaveCount != 2 {
		t.Errorf("shape = %d rules, %d waves", record.RuleCount, record.WaveCount)
	}
	if len(record.Rules) != 2 {
		t.Fatalf("got %d rule records, want 2", len(record.Rules))
	}

	want := RuleRecord{Rule: "depth class", Kind: "cell", Wave: 1, Duration: 3 * time.Millisecond, BelowMin: 2}
	if record.Rules[0] != want {
		t.Errorf("rule 1 = %+v, want %+v", record.Rules[0], want)
	}
	if record.Rules[1].Error != "shape mismatch" || record.Rules[1].Kind != "multi_cell" {
		t.Errorf("rule 2 = %+v", record.Rules[1])
	}
}

func TestRecorder_FinishReturnsCopy(t *testing.T) {
	rec := NewRecorder("in.yaml", "", "m")
	rec.ObserveRule(processor.RuleEvent{Rule: "a", Kind: rules.KindArray})

	first := rec.Finish(Outcome{Status: StatusSuccess})
	first.Rules[0].Rule = "changed"

	second := rec.Finish(Outcome{Status: StatusSuccess})
	if second.Rules[0].Rule != "a" {
		t.Errorf("record shares rule slice with a previous result")
	}
}

func TestValidateQuery(t *testing.T) {
	early := time.Now()
	late := early.Add(time.Hour)

	tests := []struct {
		name    string
		query   Query
		wantErr bool
	}{
		{"empty", Query{}, false},
		{"full", Query{StartTime: &early, EndTime: &late, Status: StatusSuccess, Limit: 10, SortOrder: "asc"}, false},
		{"negative limit", Query{Limit: -1}, true},
		{"limit too large", Query{Limit: MaxLimit + 1}, true},
		{"negative offset", Query{Offset: -1}, true},
		{"bad sort order", Query{SortOrder: "up"}, true},
		{"inverted range", Query{StartTime: &late, EndTime: &early}, true},
		{"bad status", Query{Status: "done"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuery(&tt.query)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateQuery() error = %v, wantErr %v", err, tt.wantErr)
			}
			var qErr *QueryError
			if err != nil && !errors.As(err, &qErr) {
				t.Errorf("error type = %T, want *QueryError", err)
			}
		})
	}
}

func TestApplyQueryDefaults(t *testing.T) {
	q := Query{}
	ApplyQueryDefaults(&q)
	if q.Limit != DefaultLimit || q.SortOrder != "desc" {
		t.Errorf("defaults = %+v", q)
	}

	q = Query{Limit: 5, SortOrder: "asc"}
	ApplyQueryDefaults(&q)
	if q.Limit != 5 || q.SortOrder != "asc" {
		t.Errorf("explicit values overwritten: %+v", q)
	}
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"storage", NewStorageError("sqlite", "store", cause), "storage error [backend=sqlite, operation=store]: disk full"},
		{"query", NewQueryError(&Query{}, cause), "query error: disk full"},
		{"retention", NewRetentionError(30, cause), "retention error [retention_days=30]: disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.want)
			}
			if !errors.Is(tt.err, cause) {
				t.Error("cause not reachable through errors.Is")
			}
		})
	}
}
