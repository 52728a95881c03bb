package application

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/config"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/dataset"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/input"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/model"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/processor"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/runstore"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/telemetry/logging"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/telemetry/metrics"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/telemetry/tracing"
)

// Application runs the model of an input file over every partition of its
// input data.
type Application struct {
	config    *config.Config
	logger    *logging.Logger
	store     runstore.Storage
	collector *metrics.Collector
	tracer    *tracing.Tracer
	progress  func(done, total int)
}

// Summary describes one call to Run.
type Summary struct {
	InputFile string `json:"input_file"`
	ModelName string `json:"model_name"`

	// Runs holds one record per attempted partition in run order.
	Runs []*runstore.RunRecord `json:"runs"`

	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Cancelled int           `json:"cancelled"`
	Duration  time.Duration `json:"duration"`
}

// New creates an application. store and collector are optional; without
// them runs are neither recorded nor measured.
func New(cfg *config.Config, logger *logging.Logger, store runstore.Storage, collector *metrics.Collector) *Application {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Application{
		config:    cfg,
		logger:    logger.WithComponent("application"),
		store:     store,
		collector: collector,
		tracer:    tracing.Noop(),
	}
}

// SetTracer makes every run export a span for the batch, each partition
// and each executed rule.
func (a *Application) SetTracer(t *tracing.Tracer) {
	if t == nil {
		t = tracing.Noop()
	}
	a.tracer = t
}

// SetProgress registers fn to be called after every finished partition.
func (a *Application) SetProgress(fn func(done, total int)) {
	a.progress = fn
}

// Parse reads an input file with the configured size and formula limits.
func (a *Application) Parse(inputPath string) (*input.ModelData, error) {
	parser := input.NewParser().
		WithMaxFileSize(a.config.Processing.MaxInputFileSize).
		WithFormulaCostLimit(a.config.Processing.FormulaCostLimit)
	return parser.Parse(inputPath)
}

// Run parses inputPath and runs its model once per partition. Partitions
// run sequentially; a cancelled context stops the batch before the next
// partition starts and the remaining partitions are not attempted.
//
// The returned summary is non-nil whenever the input file could be parsed.
// The error is the parse error, ctx.Err() after cancellation, or a
// *BatchError when one or more partitions failed.
func (a *Application) Run(ctx context.Context, inputPath string) (*Summary, error) {
	ctx, span := a.tracer.Start(ctx, tracing.SpanRun)
	defer span.End()
	span.SetAttributes(tracing.AttrInputFile.String(inputPath))

	summary, err := a.run(ctx, inputPath)
	if summary != nil {
		tracing.SetOutcomeAttributes(span, summary.Succeeded, summary.Failed, summary.Cancelled)
	}
	tracing.SetError(span, err)
	tracing.SetStatus(span, err)
	return summary, err
}

func (a *Application) run(ctx context.Context, inputPath string) (*Summary, error) {
	start := time.Now()

	md, err := a.Parse(inputPath)
	if err != nil {
		return nil, err
	}
	if len(md.Datasets) == 0 {
		return nil, ErrNoInputData
	}

	parts, err := expandPartitions(md.Datasets[0].Filename)
	if err != nil {
		return nil, err
	}

	tracing.SetModelAttributes(trace.SpanFromContext(ctx), md.Name, len(parts))

	summary := &Summary{InputFile: inputPath, ModelName: md.Name}
	batch := &BatchError{Total: len(parts)}

	ctx = logging.WithInputFile(ctx, inputPath)
	ctx = logging.WithModel(ctx, md.Name)
	a.logger.InfoContext(ctx, "starting model run",
		"partitions", len(parts),
		"rules", len(md.Rules),
	)

	for i, p := range parts {
		if ctx.Err() != nil {
			break
		}

		record, err := a.runPartition(ctx, inputPath, md, p)
		summary.Runs = append(summary.Runs, record)
		if a.progress != nil {
			a.progress(i+1, len(parts))
		}

		switch record.Status {
		case runstore.StatusSuccess:
			summary.Succeeded++
		case runstore.StatusCancelled:
			summary.Cancelled++
		default:
			summary.Failed++
		}

		if err != nil {
			batch.Errors = append(batch.Errors, &PartitionError{Partition: p.Suffix, RunID: record.ID, Cause: err})
			if a.config.Processing.FailFast {
				a.logger.WarnContext(ctx, "stopping after failed partition", "partition", p.Suffix)
				break
			}
		}
	}

	summary.Duration = time.Since(start)
	a.exportMetrics(ctx)

	a.logger.InfoContext(ctx, "model run finished",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"cancelled", summary.Cancelled,
		"duration", summary.Duration,
	)

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	if len(batch.Errors) > 0 {
		return summary, batch
	}
	return summary, nil
}

// runPartition runs the model over one partition and stores its record.
// The record is returned even when the run failed.
func (a *Application) runPartition(ctx context.Context, inputPath string, md *input.ModelData, p partition) (*runstore.RunRecord, error) {
	rec := runstore.NewRecorder(inputPath, p.Suffix, md.Name)
	ctx, span := a.tracer.Start(ctx, tracing.SpanPartition)
	defer span.End()
	tracing.SetPartitionAttributes(span, p.Suffix, rec.ID())

	ctx = logging.WithRunID(ctx, rec.ID())
	ctx = logging.WithPartition(ctx, p.Suffix)
	logger := a.logger.WithContext(ctx)

	outFile := outputPath(md.Output.Filename, p.Suffix)
	out := runstore.Outcome{RuleCount: len(md.Rules), OutputFile: outFile}

	err := a.execute(ctx, logger, md, p, outFile, rec, &out)
	switch {
	case err == nil:
		out.Status = runstore.StatusSuccess
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		out.Status = runstore.StatusCancelled
		out.Err = err
	default:
		out.Status = runstore.StatusFailed
		out.Err = err
		logger.Error("partition failed", "error", err)
	}
	if out.Status != runstore.StatusSuccess {
		out.OutputFile = ""
	}

	record := rec.Finish(out)
	span.SetAttributes(tracing.AttrStatus.String(string(record.Status)))
	tracing.SetError(span, err)
	tracing.SetStatus(span, err)
	if a.collector != nil {
		a.collector.RecordPartition(string(record.Status))
	}
	a.saveRecord(ctx, record)

	if err == nil {
		logger.Info("partition finished",
			"output", outFile,
			"waves", record.WaveCount,
			"duration", record.Duration,
		)
	}
	return record, err
}

func (a *Application) execute(ctx context.Context, logger *logging.Logger, md *input.ModelData, p partition, outFile string, rec *runstore.Recorder, out *runstore.Outcome) error {
	inputs := make([]*dataset.Dataset, 0, len(md.Datasets))
	for i, dd := range md.Datasets {
		path := dd.Filename
		if i == 0 {
			path = p.Path
		}
		ds, err := readDataset(path, dd.VariableMapping)
		if err != nil {
			return err
		}
		logger.Debug("dataset loaded", "path", path, "variables", len(ds.Names()))
		inputs = append(inputs, ds)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	opts := []processor.Option{processor.WithObserver(rec)}
	if a.collector != nil {
		opts = append(opts, processor.WithObserver(a.collector))
	}
	if a.tracer.Enabled() {
		opts = append(opts, processor.WithObserver(a.tracer.RuleObserver(ctx)))
	}
	m := model.NewRuleBasedModel(md.Name, inputs, md.Rules, opts...)

	started := time.Now()
	err := model.RunE(m, logger)
	out.WaveCount = m.WaveCount()
	if a.collector != nil {
		a.collector.RecordModelRun(m.Status().String(), time.Since(started))
	}
	if err != nil {
		return err
	}

	result := m.OutputDataset()
	if len(md.Output.SaveOnlyVariables) > 0 {
		result, err = result.Select(md.Output.SaveOnlyVariables)
		if err != nil {
			return fmt.Errorf("save_only_variables: %w", err)
		}
	}
	return dataset.WriteFile(outFile, result)
}

// readDataset reads a dataset file and renames its variables. Variables
// missing from the mapping keep their name. All renames apply at once, so
// mappings may swap names or chain into a name that is itself renamed.
func readDataset(path string, mapping map[string]string) (*dataset.Dataset, error) {
	ds, err := dataset.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var moved []string
	for _, oldName := range slices.Sorted(maps.Keys(mapping)) {
		if mapping[oldName] == oldName {
			continue
		}
		if err := ds.Rename(oldName, pendingName(oldName)); err != nil {
			return nil, fmt.Errorf("variable_mapping of %s: %w", filepath.Base(path), err)
		}
		moved = append(moved, oldName)
	}
	for _, oldName := range moved {
		newName := mapping[oldName]
		if ds.Has(newName) {
			return nil, fmt.Errorf("variable_mapping of %s: cannot rename %q to %q: name already in use",
				filepath.Base(path), oldName, newName)
		}
		if err := ds.Rename(pendingName(oldName), newName); err != nil {
			return nil, fmt.Errorf("variable_mapping of %s: %w", filepath.Base(path), err)
		}
	}
	return ds, nil
}

// pendingName is the name a mapped variable holds between the two rename
// passes. No dataset file can contain it.
func pendingName(name string) string {
	return "\x00mapping:" + name
}

// saveRecord persists a record. Failures are logged; they never fail the run.
func (a *Application) saveRecord(ctx context.Context, record *runstore.RunRecord) {
	if a.store == nil {
		return
	}
	if err := a.store.Store(context.WithoutCancel(ctx), record); err != nil {
		a.logger.ErrorContext(ctx, "failed to store run record", "run_id", record.ID, "error", err)
	}
}

func (a *Application) exportMetrics(ctx context.Context) {
	path := a.config.Metrics.TextfilePath
	if a.collector == nil || !a.collector.Enabled() || path == "" {
		return
	}
	if err := a.collector.WriteTextfile(path); err != nil {
		a.logger.WarnContext(ctx, "failed to export metrics", "path", path, "error", err)
	}
}
