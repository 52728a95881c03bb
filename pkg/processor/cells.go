package processor

import (
	"errors"
	"fmt"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/dataset"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/rules"
)

// processCells applies a cell rule to every value of input. The result keeps
// the dimensions, shape and coordinates of input.
func processCells(rule rules.CellRule, input *dataset.Variable, logger rules.Logger) (*dataset.Variable, rules.CellWarnings) {
	var warnings rules.CellWarnings
	out := make([]float64, len(input.Data))
	for i, x := range input.Data {
		y, w := rule.ExecuteCell(x)
		out[i] = y
		warnings.Add(w)
	}

	if warnings.BelowMin > 0 {
		logger.Warn(fmt.Sprintf("value less than min: %d occurence(s)", warnings.BelowMin),
			"rule", rule.Name(), "count", warnings.BelowMin)
	}
	if warnings.AboveMax > 0 {
		logger.Warn(fmt.Sprintf("value greater than max: %d occurence(s)", warnings.AboveMax),
			"rule", rule.Name(), "count", warnings.AboveMax)
	}

	return input.WithData(out), warnings
}

// processMultiCell aligns the inputs to the input with the most dimensions and
// calls the rule once per cell.
func processMultiCell(rule rules.MultiCellRule, names []string, inputs map[string]*dataset.Variable, logger rules.Logger) (*dataset.Variable, error) {
	if len(names) == 0 {
		return nil, &RuleExecutionError{Rule: rule.Name(), Message: "rule has no inputs"}
	}

	refName := names[0]
	for _, name := range names[1:] {
		if inputs[name].NDim() > inputs[refName].NDim() {
			refName = name
		}
	}
	ref := inputs[refName]

	aligned := make([]*dataset.Variable, len(names))
	for i, name := range names {
		v, err := alignInput(rule.Name(), name, inputs[name], refName, ref, logger)
		if err != nil {
			return nil, err
		}
		aligned[i] = v
	}

	values := make(map[string]float64, len(names))
	out := make([]float64, ref.Size())
	for flat := range out {
		for i, name := range names {
			values[name] = aligned[i].Data[flat]
		}
		y, err := rule.ExecuteCells(values)
		if err != nil {
			return nil, &RuleExecutionError{
				Rule:    rule.Name(),
				Message: fmt.Sprintf("cell %v", ref.Index(flat)),
				Cause:   err,
			}
		}
		out[flat] = y
	}

	return ref.WithData(out), nil
}

// alignInput broadcasts v to ref when it has fewer dimensions and reorders
// it when it holds the same dimensions in a different order. The result must
// match ref exactly.
func alignInput(rule, name string, v *dataset.Variable, refName string, ref *dataset.Variable, logger rules.Logger) (*dataset.Variable, error) {
	mismatch := func() error {
		return &DimensionMismatchError{
			Rule:          rule,
			Variable:      name,
			Dims:          v.Dims,
			Reference:     refName,
			ReferenceDims: ref.Dims,
		}
	}

	out := v
	if v.NDim() < ref.NDim() {
		b, added, err := v.BroadcastLike(ref)
		if err != nil {
			var dimErr *dataset.DimensionError
			if errors.As(err, &dimErr) {
				return nil, mismatch()
			}
			return nil, &RuleExecutionError{Rule: rule, Message: fmt.Sprintf("broadcasting %q", name), Cause: err}
		}
		logger.Info(fmt.Sprintf("Broadcasting input %s: added dimensions %v", name, added),
			"rule", rule, "variable", name, "added_dims", added)
		out = b
	}

	if !dataset.SameDimSet(out.Dims, ref.Dims) {
		return nil, mismatch()
	}
	if !out.SameDims(ref) {
		t, err := out.Transpose(ref.Dims)
		if err != nil {
			return nil, mismatch()
		}
		out = t
	}
	if !out.SameShape(ref) {
		return nil, mismatch()
	}
	return out, nil
}
