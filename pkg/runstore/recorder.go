package runstore

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/processor"
)

// Recorder builds the RunRecord of one run. It observes rule executions
// through processor.WithObserver and is finished once the run ends.
type Recorder struct {
	mu     sync.Mutex
	record RunRecord
	now    func() time.Time
}

var _ processor.Observer = (*Recorder)(nil)

// NewRecorder starts a record for a run of modelName over one partition of
// inputFile.
func NewRecorder(inputFile, partition, modelName string) *Recorder {
	return newRecorder(inputFile, partition, modelName, time.Now)
}

func newRecorder(inputFile, partition, modelName string, now func() time.Time) *Recorder {
	return &Recorder{
		record: RunRecord{
			ID:        uuid.NewString(),
			InputFile: inputFile,
			Partition: partition,
			ModelName: modelName,
			StartedAt: now().UTC(),
		},
		now: now,
	}
}

// ID returns the identifier of the record being built.
func (r *Recorder) ID() string {
	return r.record.ID
}

// ObserveRule appends a rule execution. It implements processor.Observer.
func (r *Recorder) ObserveRule(event processor.RuleEvent) {
	rr := RuleRecord{
		Rule:     event.Rule,
		Kind:     event.Kind.String(),
		Wave:     event.Wave,
		Duration: event.Duration,
		BelowMin: event.Warnings.BelowMin,
		AboveMax: event.Warnings.AboveMax,
	}
	if event.Err != nil {
		rr.Error = event.Err.Error()
	}

	r.mu.Lock()
	r.record.Rules = append(r.record.Rules, rr)
	r.mu.Unlock()
}

// Outcome is what a run reports when it ends.
type Outcome struct {
	Status     Status
	RuleCount  int
	WaveCount  int
	OutputFile string
	Err        error
}

// Finish completes the record and returns a copy of it.
func (r *Recorder) Finish(o Outcome) *RunRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record.Status = o.Status
	r.record.RuleCount = o.RuleCount
	r.record.WaveCount = o.WaveCount
	r.record.OutputFile = o.OutputFile
	if o.Err != nil {
		r.record.Error = o.Err.Error()
	}
	r.record.FinishedAt = r.now().UTC()
	r.record.Duration = r.record.FinishedAt.Sub(r.record.StartedAt)

	rec := r.record
	rec.Rules = append([]RuleRecord(nil), r.record.Rules...)
	return &rec
}
