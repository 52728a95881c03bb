package rules

import (
	"github.com/Deltares/D-EcoImpact-sub000/pkg/dataset"
)

// MultiplyRule scales every value of its input by the product of Multipliers.
type MultiplyRule struct {
	Base
	Multipliers []float64
}

// NewMultiplyRule creates a multiply rule.
func NewMultiplyRule(name, input, output string, multipliers []float64) *MultiplyRule {
	return &MultiplyRule{
		Base: Base{
			RuleName:   name,
			InputNames: []string{input},
			OutputName: output,
		},
		Multipliers: multipliers,
	}
}

// Kind returns KindArray.
func (r *MultiplyRule) Kind() Kind { return KindArray }

// Validate requires at least one multiplier.
func (r *MultiplyRule) Validate(logger Logger) bool {
	valid := r.validateBase(logger)
	if len(r.Multipliers) == 0 {
		logger.Error("multiply rule needs at least one multiplier", "rule", r.RuleName)
		valid = false
	}
	return valid
}

// Execute returns input scaled by the combined multiplier.
func (r *MultiplyRule) Execute(input *dataset.Variable, _ Logger) (*dataset.Variable, error) {
	factor := prodOf(r.Multipliers)
	return input.Map(func(x float64) float64 { return x * factor }), nil
}
