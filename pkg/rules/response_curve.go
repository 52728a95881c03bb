package rules

import (
	"math"
	"sort"
)

// ResponseCurveRule interpolates linearly between (InputValues[i], OutputValues[i])
// points. Values outside the curve are clamped to the first or last output.
type ResponseCurveRule struct {
	Base
	InputValues  []float64
	OutputValues []float64
}

// NewResponseCurveRule creates a response curve rule.
func NewResponseCurveRule(name, input, output string, inputValues, outputValues []float64) *ResponseCurveRule {
	return &ResponseCurveRule{
		Base: Base{
			RuleName:   name,
			InputNames: []string{input},
			OutputName: output,
		},
		InputValues:  inputValues,
		OutputValues: outputValues,
	}
}

// Kind returns KindCell.
func (r *ResponseCurveRule) Kind() Kind { return KindCell }

// Validate requires at least two points and strictly increasing input values.
func (r *ResponseCurveRule) Validate(logger Logger) bool {
	valid := r.validateBase(logger)
	if len(r.InputValues) < 2 {
		logger.Error("response curve needs at least two points", "rule", r.RuleName)
		return false
	}
	if len(r.InputValues) != len(r.OutputValues) {
		logger.Error("response curve input and output values differ in length",
			"rule", r.RuleName, "input_values", len(r.InputValues), "output_values", len(r.OutputValues))
		valid = false
	}
	if !strictlyIncreasing(r.InputValues) {
		logger.Error("response curve input values must be strictly increasing", "rule", r.RuleName)
		valid = false
	}
	return valid
}

// ExecuteCell returns the interpolated response for value.
func (r *ResponseCurveRule) ExecuteCell(value float64) (float64, CellWarnings) {
	if math.IsNaN(value) {
		return math.NaN(), CellWarnings{}
	}
	xs, ys := r.InputValues, r.OutputValues
	last := len(xs) - 1
	if value < xs[0] {
		return ys[0], CellWarnings{BelowMin: 1}
	}
	if value > xs[last] {
		return ys[last], CellWarnings{AboveMax: 1}
	}

	i := sort.SearchFloat64s(xs, value)
	if xs[i] == value {
		return ys[i], CellWarnings{}
	}
	// xs[i-1] < value < xs[i]
	t := (value - xs[i-1]) / (xs[i] - xs[i-1])
	return ys[i-1] + t*(ys[i]-ys[i-1]), CellWarnings{}
}
