package application

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/config"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/dataset"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/runstore"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/runstore/storage"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/telemetry/metrics"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/telemetry/tracing"
)

const testInput = `version: 0.1.0
input-data:
  - dataset:
      filename: %s
      variable_mapping:
        mesh2d_s1: water_level
output-data:
  filename: ./out/result.json
  save_only_variables: [water_level_cm]
rules:
  - multiply_rule:
      name: level in cm
      input_variable: water_level
      multipliers: [100.0]
      output_variable: water_level_cm
`

const levelDataset = `{
  "variables": [
    {"name": "mesh2d_s1", "dims": ["face"], "shape": [3], "data": [1, 2, null]},
    {"name": "mesh2d_flowelem_bl", "dims": ["face"], "shape": [3], "data": [0, 0, 0]}
  ]
}`

const brokenDataset = `{
  "variables": [
    {"name": "other", "dims": ["face"], "shape": [1], "data": [1]}
  ]
}`

// writeModel creates an input file reading datasetPattern and the given
// dataset files relative to a fresh directory.
func writeModel(t *testing.T, datasetPattern string, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	inputPath := filepath.Join(dir, "model.yaml")
	content := strings.Replace(testInput, "%s", datasetPattern, 1)
	if err := os.WriteFile(inputPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return inputPath
}

func newTestApp(t *testing.T, cfg *config.Config) (*Application, *storage.MemoryStorage) {
	t.Helper()
	if cfg == nil {
		cfg = config.NewDefault()
	}
	store := storage.NewMemoryStorage()
	return New(cfg, nil, store, nil), store
}

func TestRun_Partitioned(t *testing.T) {
	inputPath := writeModel(t, "./data/model_*.json", map[string]string{
		"data/model_2020.json": levelDataset,
		"data/model_2021.json": levelDataset,
	})
	app, store := newTestApp(t, nil)

	summary, err := app.Run(context.Background(), inputPath)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Succeeded != 2 || summary.Failed != 0 {
		t.Errorf("summary = %d succeeded, %d failed, want 2, 0", summary.Succeeded, summary.Failed)
	}
	if summary.ModelName != "model" {
		t.Errorf("ModelName = %q, want %q", summary.ModelName, "model")
	}

	dir := filepath.Dir(inputPath)
	for _, suffix := range []string{"2020", "2021"} {
		out := filepath.Join(dir, "out", "result_"+suffix+".json")
		ds, err := dataset.ReadFile(out)
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", out, err)
		}
		if got := ds.Names(); len(got) != 1 || got[0] != "water_level_cm" {
			t.Errorf("output variables = %v, want [water_level_cm]", got)
		}
		v, _ := ds.Get("water_level_cm")
		if v.Data[0] != 100 || v.Data[1] != 200 || !math.IsNaN(v.Data[2]) {
			t.Errorf("water_level_cm = %v, want [100 200 NaN]", v.Data)
		}
	}

	if store.Size() != 2 {
		t.Fatalf("stored records = %d, want 2", store.Size())
	}
	for _, rec := range summary.Runs {
		if rec.Status != runstore.StatusSuccess {
			t.Errorf("record %s status = %s, want success", rec.Partition, rec.Status)
		}
		if rec.RuleCount != 1 || rec.WaveCount != 1 {
			t.Errorf("record %s rules/waves = %d/%d, want 1/1", rec.Partition, rec.RuleCount, rec.WaveCount)
		}
		if len(rec.Rules) != 1 || rec.Rules[0].Rule != "level in cm" {
			t.Errorf("record %s rules = %+v", rec.Partition, rec.Rules)
		}
	}
	if summary.Runs[0].Partition != "2020" || summary.Runs[1].Partition != "2021" {
		t.Errorf("partitions = %q, %q, want 2020, 2021", summary.Runs[0].Partition, summary.Runs[1].Partition)
	}
}

func TestRun_SingleFile(t *testing.T) {
	inputPath := writeModel(t, "./data/levels.json", map[string]string{
		"data/levels.json": levelDataset,
	})
	app, _ := newTestApp(t, nil)

	summary, err := app.Run(context.Background(), inputPath)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(summary.Runs) != 1 || summary.Runs[0].Partition != "" {
		t.Fatalf("runs = %+v, want one unpartitioned run", summary.Runs)
	}
	out := filepath.Join(filepath.Dir(inputPath), "out", "result.json")
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output %s not written: %v", out, err)
	}
	if summary.Runs[0].OutputFile != out {
		t.Errorf("OutputFile = %q, want %q", summary.Runs[0].OutputFile, out)
	}
}

func TestRun_FailedPartitionDoesNotStopBatch(t *testing.T) {
	inputPath := writeModel(t, "./data/model_*.json", map[string]string{
		"data/model_2020.json": levelDataset,
		"data/model_2021.json": brokenDataset,
		"data/model_2022.json": levelDataset,
	})
	app, store := newTestApp(t, nil)

	summary, err := app.Run(context.Background(), inputPath)
	if err == nil {
		t.Fatal("Run() error = nil, want batch error")
	}

	var batch *BatchError
	if !errors.As(err, &batch) {
		t.Fatalf("error type = %T, want *BatchError", err)
	}
	if len(batch.Errors) != 1 || batch.Total != 3 {
		t.Fatalf("batch = %d of %d failed, want 1 of 3", len(batch.Errors), batch.Total)
	}
	var pe *PartitionError
	if !errors.As(err, &pe) || pe.Partition != "2021" {
		t.Errorf("partition error = %v, want partition 2021", pe)
	}
	if !errors.Is(err, dataset.ErrVariableNotFound) {
		t.Errorf("errors.Is(err, ErrVariableNotFound) = false, error = %v", err)
	}

	if summary.Succeeded != 2 || summary.Failed != 1 {
		t.Errorf("summary = %d succeeded, %d failed, want 2, 1", summary.Succeeded, summary.Failed)
	}
	failed := summary.Runs[1]
	if failed.Status != runstore.StatusFailed || failed.Error == "" || failed.OutputFile != "" {
		t.Errorf("failed record = %+v", failed)
	}
	if store.Size() != 3 {
		t.Errorf("stored records = %d, want 3", store.Size())
	}
}

func TestRun_FailFast(t *testing.T) {
	inputPath := writeModel(t, "./data/model_*.json", map[string]string{
		"data/model_2020.json": brokenDataset,
		"data/model_2021.json": levelDataset,
	})
	cfg := config.NewDefault()
	cfg.Processing.FailFast = true
	app, _ := newTestApp(t, cfg)

	summary, err := app.Run(context.Background(), inputPath)
	if err == nil {
		t.Fatal("Run() error = nil, want error")
	}
	if len(summary.Runs) != 1 {
		t.Errorf("runs = %d, want 1", len(summary.Runs))
	}
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	inputPath := writeModel(t, "./data/model_*.json", map[string]string{
		"data/model_2020.json": levelDataset,
	})
	app, store := newTestApp(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := app.Run(ctx, inputPath)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(summary.Runs) != 0 || store.Size() != 0 {
		t.Errorf("runs = %d, stored = %d, want none", len(summary.Runs), store.Size())
	}
}

func TestRun_Errors(t *testing.T) {
	t.Run("missing input file", func(t *testing.T) {
		app, _ := newTestApp(t, nil)
		summary, err := app.Run(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
		if err == nil || summary != nil {
			t.Errorf("Run() = %v, %v, want nil summary and error", summary, err)
		}
	})

	t.Run("pattern without matches", func(t *testing.T) {
		inputPath := writeModel(t, "./data/model_*.json", nil)
		app, _ := newTestApp(t, nil)
		_, err := app.Run(context.Background(), inputPath)
		if !errors.Is(err, ErrNoMatchingFiles) {
			t.Errorf("Run() error = %v, want ErrNoMatchingFiles", err)
		}
	})
}

func TestRun_Metrics(t *testing.T) {
	inputPath := writeModel(t, "./data/model_*.json", map[string]string{
		"data/model_2020.json": levelDataset,
		"data/model_2021.json": brokenDataset,
	})
	textfile := filepath.Join(t.TempDir(), "metrics", "ecoimpact.prom")

	cfg := config.NewDefault()
	cfg.Metrics.Enabled = true
	cfg.Metrics.TextfilePath = textfile
	collector := metrics.NewCollector(&cfg.Metrics, nil)
	app := New(cfg, nil, nil, collector)

	if _, err := app.Run(context.Background(), inputPath); err == nil {
		t.Fatal("Run() error = nil, want batch error")
	}

	data, err := os.ReadFile(textfile)
	if err != nil {
		t.Fatalf("metrics textfile not written: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		`ecoimpact_engine_partitions_total{status="success"} 1`,
		`ecoimpact_engine_partitions_total{status="failed"} 1`,
		`ecoimpact_engine_model_runs_total{status="finalized"} 1`,
		`ecoimpact_engine_rule_executions_total`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestBatchError(t *testing.T) {
	cause := errors.New("boom")
	err := &BatchError{Total: 3, Errors: []*PartitionError{
		{Partition: "a", RunID: "1", Cause: cause},
		{Partition: "b", RunID: "2", Cause: errors.New("bang")},
	}}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(batch, cause) = false, want true")
	}
	if got := err.Error(); !strings.HasPrefix(got, "2 of 3 partitions failed") {
		t.Errorf("Error() = %q", got)
	}

	single := &BatchError{Total: 1, Errors: []*PartitionError{{RunID: "1", Cause: cause}}}
	if got, want := single.Error(), "run 1 failed: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestRun_Progress(t *testing.T) {
	inputPath := writeModel(t, "./data/model_*.json", map[string]string{
		"data/model_a.json": levelDataset,
		"data/model_b.json": brokenDataset,
		"data/model_c.json": levelDataset,
	})
	app, _ := newTestApp(t, nil)

	var calls [][2]int
	app.SetProgress(func(done, total int) {
		calls = append(calls, [2]int{done, total})
	})
	_, _ = app.Run(context.Background(), inputPath)

	want := [][2]int{{1, 3}, {2, 3}, {3, 3}}
	if len(calls) != len(want) {
		t.Fatalf("progress calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("progress call %d = %v, want %v", i, calls[i], want[i])
		}
	}
}

func TestRun_Tracing(t *testing.T) {
	inputPath := writeModel(t, "./data/model_*.json", map[string]string{
		"data/model_2020.json": levelDataset,
		"data/model_2021.json": brokenDataset,
	})
	app, _ := newTestApp(t, nil)

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer provider.Shutdown(context.Background())
	app.SetTracer(tracing.NewWithProvider(provider))

	if _, err := app.Run(context.Background(), inputPath); err == nil {
		t.Fatal("Run() should report the broken partition")
	}

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	want := []string{tracing.SpanRule, tracing.SpanPartition, tracing.SpanPartition, tracing.SpanRun}
	if !slices.Equal(names, want) {
		t.Fatalf("spans = %v, want %v", names, want)
	}

	spans := recorder.Ended()
	rule, ok2020, broken, batch := spans[0], spans[1], spans[2], spans[3]
	if rule.Parent().SpanID() != ok2020.SpanContext().SpanID() {
		t.Error("rule span should be a child of its partition span")
	}
	if ok2020.Status().Code != codes.Ok || broken.Status().Code != codes.Error {
		t.Errorf("partition status = %v, %v, want Ok, Error", ok2020.Status().Code, broken.Status().Code)
	}
	if batch.Status().Code != codes.Error {
		t.Errorf("run status = %v, want Error", batch.Status().Code)
	}
	for _, kv := range batch.Attributes() {
		if kv.Key == tracing.AttrFailed && kv.Value.AsInt64() != 1 {
			t.Errorf("failed partitions = %d, want 1", kv.Value.AsInt64())
		}
	}
}

func TestReadDataset_VariableMapping(t *testing.T) {
	const abc = `{
  "variables": [
    {"name": "a", "dims": ["face"], "shape": [1], "data": [1]},
    {"name": "b", "dims": ["face"], "shape": [1], "data": [2]},
    {"name": "c", "dims": ["face"], "shape": [1], "data": [3]}
  ]
}`

	tests := []struct {
		name    string
		mapping map[string]string
		want    map[string]float64
		wantErr string
	}{
		{
			name:    "swap",
			mapping: map[string]string{"a": "b", "b": "a"},
			want:    map[string]float64{"a": 2, "b": 1, "c": 3},
		},
		{
			name:    "chain",
			mapping: map[string]string{"a": "b", "b": "d"},
			want:    map[string]float64{"b": 1, "d": 2, "c": 3},
		},
		{
			name:    "rotation",
			mapping: map[string]string{"a": "b", "b": "c", "c": "a"},
			want:    map[string]float64{"a": 3, "b": 1, "c": 2},
		},
		{
			name:    "identity",
			mapping: map[string]string{"a": "a", "b": "x"},
			want:    map[string]float64{"a": 1, "x": 2, "c": 3},
		},
		{
			name:    "target kept by another variable",
			mapping: map[string]string{"a": "c"},
			wantErr: `cannot rename "a" to "c"`,
		},
		{
			name:    "two sources one target",
			mapping: map[string]string{"a": "x", "b": "x"},
			wantErr: "name already in use",
		},
		{
			name:    "unknown source",
			mapping: map[string]string{"missing": "x"},
			wantErr: "missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "abc.json")
			if err := os.WriteFile(path, []byte(abc), 0644); err != nil {
				t.Fatal(err)
			}

			ds, err := readDataset(path, tt.mapping)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("readDataset() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("readDataset() error = %v", err)
			}

			if got := len(ds.Names()); got != len(tt.want) {
				t.Errorf("got %d variables %v, want %d", got, ds.Names(), len(tt.want))
			}
			for name, want := range tt.want {
				v, ok := ds.Get(name)
				if !ok {
					t.Errorf("variable %q missing, have %v", name, ds.Names())
					continue
				}
				if v.Data[0] != want {
					t.Errorf("%s = %v, want %v", name, v.Data[0], want)
				}
			}
		})
	}
}
