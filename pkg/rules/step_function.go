package rules

import (
	"math"
	"sort"
)

// StepFunctionRule maps a value to the response of the greatest limit not
// above it. Values outside the limits take the nearest boundary response.
type StepFunctionRule struct {
	Base
	Limits    []float64
	Responses []float64
}

// NewStepFunctionRule creates a step function rule.
func NewStepFunctionRule(name, input, output string, limits, responses []float64) *StepFunctionRule {
	return &StepFunctionRule{
		Base: Base{
			RuleName:   name,
			InputNames: []string{input},
			OutputName: output,
		},
		Limits:    limits,
		Responses: responses,
	}
}

// Kind returns KindCell.
func (r *StepFunctionRule) Kind() Kind { return KindCell }

// Validate requires equally long, non-empty tables with strictly increasing limits.
func (r *StepFunctionRule) Validate(logger Logger) bool {
	valid := r.validateBase(logger)
	if len(r.Limits) == 0 {
		logger.Error("step function has no limits", "rule", r.RuleName)
		return false
	}
	if len(r.Limits) != len(r.Responses) {
		logger.Error("step function limits and responses differ in length",
			"rule", r.RuleName, "limits", len(r.Limits), "responses", len(r.Responses))
		valid = false
	}
	if !strictlyIncreasing(r.Limits) {
		logger.Error("step function limits must be strictly increasing", "rule", r.RuleName)
		valid = false
	}
	return valid
}

// ExecuteCell returns the step response for value.
func (r *StepFunctionRule) ExecuteCell(value float64) (float64, CellWarnings) {
	if math.IsNaN(value) {
		return math.NaN(), CellWarnings{}
	}
	last := len(r.Limits) - 1
	if value < r.Limits[0] {
		return r.Responses[0], CellWarnings{BelowMin: 1}
	}
	if value > r.Limits[last] {
		return r.Responses[last], CellWarnings{AboveMax: 1}
	}
	// first limit strictly above value, minus one
	i := sort.Search(len(r.Limits), func(i int) bool { return r.Limits[i] > value }) - 1
	return r.Responses[i], CellWarnings{}
}

func strictlyIncreasing(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return false
		}
	}
	return true
}
