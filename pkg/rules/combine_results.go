package rules

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/dataset"
)

// CombineOperation is the reduction a CombineResultsRule applies across its inputs.
type CombineOperation string

const (
	CombineMultiply CombineOperation = "MULTIPLY"
	CombineMin      CombineOperation = "MIN"
	CombineMax      CombineOperation = "MAX"
	CombineAverage  CombineOperation = "AVERAGE"
	CombineMedian   CombineOperation = "MEDIAN"
	CombineAdd      CombineOperation = "ADD"
	CombineSubtract CombineOperation = "SUBTRACT"
)

var combineOperations = []CombineOperation{
	CombineMultiply, CombineMin, CombineMax, CombineAverage,
	CombineMedian, CombineAdd, CombineSubtract,
}

// ParseCombineOperation parses an operation name case-insensitively.
func ParseCombineOperation(s string) (CombineOperation, error) {
	op := CombineOperation(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(combineOperations, op) {
		return "", fmt.Errorf("unsupported combine operation %q (supported: %v)", s, combineOperations)
	}
	return op, nil
}

// CombineResultsRule combines equally shaped arrays cell by cell with a
// single operation. SUBTRACT subtracts every later input from the first.
// With IgnoreNaN, missing values are left out of the operation; a cell with
// only missing values stays missing.
type CombineResultsRule struct {
	Base
	Operation CombineOperation
	IgnoreNaN bool
}

// NewCombineResultsRule creates a combine results rule.
func NewCombineResultsRule(name string, inputs []string, output string, op CombineOperation, ignoreNaN bool) *CombineResultsRule {
	return &CombineResultsRule{
		Base: Base{
			RuleName:   name,
			InputNames: inputs,
			OutputName: output,
		},
		Operation: op,
		IgnoreNaN: ignoreNaN,
	}
}

// Kind returns KindMultiArray.
func (r *CombineResultsRule) Kind() Kind { return KindMultiArray }

// Validate requires a supported operation.
func (r *CombineResultsRule) Validate(logger Logger) bool {
	valid := r.validateBase(logger)
	if !slices.Contains(combineOperations, r.Operation) {
		logger.Error("unsupported combine operation", "rule", r.RuleName, "operation", string(r.Operation))
		valid = false
	}
	return valid
}

// ExecuteMulti combines the inputs. The result has the dimensions of the first input.
func (r *CombineResultsRule) ExecuteMulti(inputs map[string]*dataset.Variable, _ Logger) (*dataset.Variable, error) {
	arrays, err := orderedInputs(r.InputNames, inputs)
	if err != nil {
		return nil, err
	}
	first := arrays[0]
	for i, v := range arrays[1:] {
		if !v.SameShape(first) {
			return nil, fmt.Errorf("input %q has dimensions %v%v, expected %v%v like %q",
				r.InputNames[i+1], v.Dims, v.Shape, first.Dims, first.Shape, r.InputNames[0])
		}
	}

	reduce := r.reducer()
	values := make([]float64, len(arrays))
	kept := make([]float64, 0, len(arrays))
	out := make([]float64, first.Size())
	for i := range out {
		for j, v := range arrays {
			values[j] = v.Data[i]
		}
		if r.IgnoreNaN {
			kept = dropNaN(kept, values)
			out[i] = reduce(kept)
			continue
		}
		if hasNaN(values) {
			out[i] = math.NaN()
			continue
		}
		out[i] = reduce(values)
	}

	return first.WithData(out), nil
}

func (r *CombineResultsRule) reducer() func([]float64) float64 {
	switch r.Operation {
	case CombineMultiply:
		return prodOf
	case CombineMin:
		return minOf
	case CombineMax:
		return maxOf
	case CombineAverage:
		return meanOf
	case CombineMedian:
		return medianOf
	case CombineAdd:
		return sumOf
	case CombineSubtract:
		return func(xs []float64) float64 {
			if len(xs) == 0 {
				return math.NaN()
			}
			return xs[0] - floats.Sum(xs[1:])
		}
	default:
		return func([]float64) float64 { return math.NaN() }
	}
}

// orderedInputs returns the inputs in declaration order.
func orderedInputs(names []string, inputs map[string]*dataset.Variable) ([]*dataset.Variable, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("rule has no inputs")
	}
	out := make([]*dataset.Variable, len(names))
	for i, name := range names {
		v, ok := inputs[name]
		if !ok || v == nil {
			return nil, fmt.Errorf("input %q: %w", name, dataset.ErrVariableNotFound)
		}
		out[i] = v
	}
	return out, nil
}
