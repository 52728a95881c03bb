package processor

import (
	"errors"
	"slices"
	"testing"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/dataset"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/rules"
)

// sumCells adds all inputs of a cell.
type sumCells struct{ rules.Base }

func (r *sumCells) Kind() rules.Kind           { return rules.KindMultiCell }
func (r *sumCells) Validate(rules.Logger) bool { return true }
func (r *sumCells) ExecuteCells(values map[string]float64) (float64, error) {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total, nil
}

func runSingle(t *testing.T, r rules.Rule, ds *dataset.Dataset, logger rules.Logger) *dataset.Variable {
	t.Helper()
	p, err := New([]rules.Rule{r}, ds)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !p.Initialize(logger) {
		t.Fatal("Initialize() = false")
	}
	if _, err := p.ProcessRules(ds, logger); err != nil {
		t.Fatalf("ProcessRules() error = %v", err)
	}
	out, ok := ds.Variable(r.OutputVariableName())
	if !ok {
		t.Fatalf("output %q not written", r.OutputVariableName())
	}
	return out
}

func TestProcessCells_KeepsShapeAndCoordinates(t *testing.T) {
	in := dataset.MustVariable([]string{"time", "face"}, []int{2, 3}, []float64{-5, 25, 175, 300, 5000, 6000})
	in.Coords["time"] = dataset.NewIndexCoordinate("time", []float64{0, 3600})
	in.Coords["face"] = dataset.NewIndexCoordinate("face", []float64{0, 1, 2})

	ds := dataset.New()
	ds.Set("depth", in)

	curve := rules.NewResponseCurveRule("curve", "depth", "response",
		[]float64{0, 50, 300, 5000}, []float64{0, 1, 2, 3})
	logger := &recordingLogger{}
	out := runSingle(t, curve, ds, logger)

	if !out.SameShape(in) {
		t.Errorf("shape = %v %v, want %v %v", out.Dims, out.Shape, in.Dims, in.Shape)
	}
	for name, c := range in.Coords {
		if out.Coords[name] != c {
			t.Errorf("coordinate %q not preserved", name)
		}
	}
	if want := []float64{0, 0.5, 1.5, 2, 3, 3}; !slices.Equal(out.Data, want) {
		t.Errorf("Data = %v, want %v", out.Data, want)
	}
	if !logger.find("WARN", "value less than min: 1") {
		t.Errorf("below-min warning not logged: %v", logger.messages)
	}
	if !logger.find("WARN", "value greater than max: 1") {
		t.Errorf("above-max warning not logged: %v", logger.messages)
	}
}

func TestProcessCells_NoWarningsWhenInRange(t *testing.T) {
	ds := dataset.New()
	ds.Set("depth", dataset.MustVariable([]string{"face"}, []int{2}, []float64{1, 2}))

	step := rules.NewStepFunctionRule("step", "depth", "class", []float64{0, 1.5, 5}, []float64{10, 20, 30})
	logger := &recordingLogger{}
	out := runSingle(t, step, ds, logger)

	if want := []float64{10, 20}; !slices.Equal(out.Data, want) {
		t.Errorf("Data = %v, want %v", out.Data, want)
	}
	if logger.find("WARN", "") {
		t.Errorf("unexpected warning: %v", logger.messages)
	}
}

func TestProcessCells_ObserverGetsWarnings(t *testing.T) {
	ds := dataset.New()
	ds.Set("depth", dataset.MustVariable([]string{"face"}, []int{3}, []float64{-1, -2, 99}))

	var got RuleEvent
	curve := rules.NewResponseCurveRule("curve", "depth", "response", []float64{0, 10}, []float64{0, 1})
	p, _ := New([]rules.Rule{curve}, ds, WithObserver(ObserverFunc(func(e RuleEvent) { got = e })))
	if !p.Initialize(discard()) {
		t.Fatal("Initialize() = false")
	}
	if _, err := p.ProcessRules(ds, discard()); err != nil {
		t.Fatalf("ProcessRules() error = %v", err)
	}

	if got.Warnings != (rules.CellWarnings{BelowMin: 2, AboveMax: 1}) {
		t.Errorf("Warnings = %+v, want {BelowMin:2 AboveMax:1}", got.Warnings)
	}
	if got.Kind != rules.KindCell {
		t.Errorf("Kind = %v, want %v", got.Kind, rules.KindCell)
	}
}

func TestProcessMultiCell_BroadcastsToLargestInput(t *testing.T) {
	ds := dataset.New()
	ds.Set("level", dataset.MustVariable([]string{"time", "face"}, []int{2, 3}, []float64{1, 2, 3, 4, 5, 6}))
	ds.Set("bed", dataset.MustVariable([]string{"face"}, []int{3}, []float64{10, 20, 30}))
	ds.Set("offset", dataset.MustVariable([]string{"time"}, []int{2}, []float64{100, 200}))

	r := &sumCells{Base: rules.Base{
		RuleName:   "sum",
		InputNames: []string{"bed", "level", "offset"},
		OutputName: "total",
	}}
	logger := &recordingLogger{}
	out := runSingle(t, r, ds, logger)

	if want := []string{"time", "face"}; !slices.Equal(out.Dims, want) {
		t.Errorf("Dims = %v, want %v", out.Dims, want)
	}
	want := []float64{111, 122, 133, 214, 225, 236}
	if !slices.Equal(out.Data, want) {
		t.Errorf("Data = %v, want %v", out.Data, want)
	}
	if !logger.find("INFO", "Broadcasting input bed") {
		t.Errorf("broadcast of bed not logged: %v", logger.messages)
	}
	if !logger.find("INFO", "Broadcasting input offset") {
		t.Errorf("broadcast of offset not logged: %v", logger.messages)
	}
}

func TestProcessMultiCell_ReordersSameDimensions(t *testing.T) {
	ds := dataset.New()
	ds.Set("a", dataset.MustVariable([]string{"time", "face"}, []int{2, 2}, []float64{1, 2, 3, 4}))
	ds.Set("b", dataset.MustVariable([]string{"face", "time"}, []int{2, 2}, []float64{10, 30, 20, 40}))

	r := &sumCells{Base: rules.Base{RuleName: "sum", InputNames: []string{"a", "b"}, OutputName: "c"}}
	out := runSingle(t, r, ds, discard())

	if want := []float64{11, 22, 33, 44}; !slices.Equal(out.Data, want) {
		t.Errorf("Data = %v, want %v", out.Data, want)
	}
}

func TestProcessMultiCell_DimensionMismatch(t *testing.T) {
	tests := []struct {
		name string
		a, b *dataset.Variable
	}{
		{
			name: "different dimensions of equal rank",
			a:    dataset.MustVariable([]string{"time", "face"}, []int{2, 2}, nil),
			b:    dataset.MustVariable([]string{"time", "layer"}, []int{2, 2}, nil),
		},
		{
			name: "dimension absent from the reference",
			a:    dataset.MustVariable([]string{"time", "face"}, []int{2, 2}, nil),
			b:    dataset.MustVariable([]string{"layer"}, []int{3}, nil),
		},
		{
			name: "conflicting sizes",
			a:    dataset.MustVariable([]string{"time", "face"}, []int{2, 2}, nil),
			b:    dataset.MustVariable([]string{"face"}, []int{5}, nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := dataset.New()
			ds.Set("a", tt.a)
			ds.Set("b", tt.b)

			r := &sumCells{Base: rules.Base{RuleName: "sum", InputNames: []string{"a", "b"}, OutputName: "c"}}
			p, _ := New([]rules.Rule{r}, ds)
			if !p.Initialize(discard()) {
				t.Fatal("Initialize() = false")
			}
			_, err := p.ProcessRules(ds, discard())

			var mismatch *DimensionMismatchError
			if !errors.As(err, &mismatch) {
				t.Fatalf("ProcessRules() error = %v, want *DimensionMismatchError", err)
			}
			if mismatch.Variable != "b" || mismatch.Reference != "a" {
				t.Errorf("mismatch = %+v, want variable b against a", mismatch)
			}
		})
	}
}

func TestProcessRules_FormulaAndCombine(t *testing.T) {
	ds := dataset.New()
	ds.Set("a", dataset.MustVariable([]string{"face"}, []int{3}, []float64{20, 7, 3}))
	ds.Set("b", dataset.MustVariable([]string{"face"}, []int{3}, []float64{4, 5, 6}))

	combine := rules.NewCombineResultsRule("add", []string{"a", "b"}, "sum", rules.CombineAdd, false)
	formula, err := rules.NewFormulaRule("half", []string{"sum"}, "half", "sum / 2.0", 0)
	if err != nil {
		t.Fatalf("NewFormulaRule() error = %v", err)
	}

	p, _ := New([]rules.Rule{formula, combine}, ds)
	if !p.Initialize(discard()) {
		t.Fatal("Initialize() = false")
	}
	if _, err := p.ProcessRules(ds, discard()); err != nil {
		t.Fatalf("ProcessRules() error = %v", err)
	}

	sum, _ := ds.Variable("sum")
	if want := []float64{24, 12, 9}; !slices.Equal(sum.Data, want) {
		t.Errorf("sum = %v, want %v", sum.Data, want)
	}
	a, _ := ds.Variable("a")
	if !slices.Equal(sum.Dims, a.Dims) {
		t.Errorf("sum dims = %v, want %v", sum.Dims, a.Dims)
	}
	half, _ := ds.Variable("half")
	if want := []float64{12, 6, 4.5}; !slices.Equal(half.Data, want) {
		t.Errorf("half = %v, want %v", half.Data, want)
	}
}
