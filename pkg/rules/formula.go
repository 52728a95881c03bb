package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"
	celast "github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/ext"
)

// DefaultFormulaCostLimit bounds the evaluation cost of a single formula call.
const DefaultFormulaCostLimit = 1000000

// FormulaRule evaluates a CEL expression once per cell. Every input variable
// is declared as a double and integer literals are read as doubles, so
// "depth * 2" and "depth > 1" compile. Boolean results become 1 or 0.
//
// Example:
//
//	water_depth > 0.5 && salinity < 10 ? 1 : 0
type FormulaRule struct {
	Base
	Formula   string
	CostLimit uint64

	program cel.Program
	err     error
}

// NewFormulaRule creates a formula rule and compiles its expression.
// A zero costLimit selects DefaultFormulaCostLimit. Compilation problems are
// returned and also reported by Validate.
func NewFormulaRule(name string, inputs []string, output, formula string, costLimit uint64) (*FormulaRule, error) {
	if costLimit == 0 {
		costLimit = DefaultFormulaCostLimit
	}
	r := &FormulaRule{
		Base: Base{
			RuleName:   name,
			InputNames: inputs,
			OutputName: output,
		},
		Formula:   formula,
		CostLimit: costLimit,
	}
	r.program, r.err = compileFormula(formula, inputs, costLimit)
	return r, r.err
}

func compileFormula(formula string, inputs []string, costLimit uint64) (cel.Program, error) {
	opts := []cel.EnvOption{ext.Math(), cel.CrossTypeNumericComparisons(true)}
	for _, name := range inputs {
		opts = append(opts, cel.Variable(name, cel.DoubleType))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create formula environment: %w", err)
	}

	parsed, issues := env.Parse(formula)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	promoteIntLiterals(parsed.NativeRep().Expr())

	checked, issues := env.Check(parsed)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	prog, err := env.Program(checked, cel.CostLimit(costLimit))
	if err != nil {
		return nil, fmt.Errorf("program creation error: %w", err)
	}
	return prog, nil
}

// promoteIntLiterals rewrites int and uint literals in e to doubles. CEL has
// no mixed int/double arithmetic and every cell value is a double.
func promoteIntLiterals(e celast.Expr) {
	fac := celast.NewExprFactory()
	celast.PostOrderVisit(e, celast.NewExprVisitor(func(e celast.Expr) {
		if e.Kind() != celast.LiteralKind {
			return
		}
		switch v := e.AsLiteral().(type) {
		case types.Int:
			e.SetKindCase(fac.NewLiteral(e.ID(), types.Double(v)))
		case types.Uint:
			e.SetKindCase(fac.NewLiteral(e.ID(), types.Double(v)))
		}
	}))
}

// cellActivation exposes the values of one cell to the formula without
// copying them into a map[string]any.
type cellActivation map[string]float64

func (a cellActivation) ResolveName(name string) (any, bool) {
	v, ok := a[name]
	return v, ok
}

func (a cellActivation) Parent() cel.Activation { return nil }

// Kind returns KindMultiCell.
func (r *FormulaRule) Kind() Kind { return KindMultiCell }

// Validate requires a compiled formula.
func (r *FormulaRule) Validate(logger Logger) bool {
	valid := r.validateBase(logger)
	if r.Formula == "" {
		logger.Error("formula rule has no formula", "rule", r.RuleName)
		return false
	}
	if r.err != nil || r.program == nil {
		logger.Error("formula does not compile", "rule", r.RuleName, "formula", r.Formula, "error", r.err)
		valid = false
	}
	return valid
}

// ExecuteCells evaluates the formula for one cell.
func (r *FormulaRule) ExecuteCells(values map[string]float64) (float64, error) {
	if r.program == nil {
		return 0, fmt.Errorf("formula %q is not compiled: %w", r.Formula, r.err)
	}

	out, _, err := r.program.Eval(cellActivation(values))
	if err != nil {
		return 0, fmt.Errorf("failed to evaluate formula %q: %w", r.Formula, err)
	}

	switch v := out.Value().(type) {
	case float64:
		return v, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("formula %q produced %T, want a number or boolean", r.Formula, v)
	}
}
