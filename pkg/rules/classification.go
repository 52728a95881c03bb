package rules

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/dataset"
)

// CriterionOp is the comparison a Criterion performs.
type CriterionOp int

const (
	// CriterionAny matches every value, including missing ones.
	CriterionAny CriterionOp = iota
	CriterionEqual
	CriterionRange
	CriterionGreater
	CriterionGreaterEqual
	CriterionLess
	CriterionLessEqual
)

// Criterion is one cell of a classification table.
type Criterion struct {
	Op    CriterionOp
	Value float64

	// Upper is the inclusive upper bound of a CriterionRange; Value is the lower bound.
	Upper float64
}

// ParseCriterion parses a criteria table cell. Accepted forms are "-",
// a number, "a:b", ">x", ">=x", "<x" and "<=x".
func ParseCriterion(s string) (Criterion, error) {
	s = strings.TrimSpace(s)
	if s == "-" || s == "" {
		return Criterion{Op: CriterionAny}, nil
	}

	prefixes := []struct {
		prefix string
		op     CriterionOp
	}{
		{">=", CriterionGreaterEqual},
		{"<=", CriterionLessEqual},
		{">", CriterionGreater},
		{"<", CriterionLess},
	}
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(s, p.prefix); ok {
			x, err := parseNumber(rest)
			if err != nil {
				return Criterion{}, fmt.Errorf("criterion %q: %w", s, err)
			}
			return Criterion{Op: p.op, Value: x}, nil
		}
	}

	if lo, hi, ok := strings.Cut(s, ":"); ok {
		a, err := parseNumber(lo)
		if err != nil {
			return Criterion{}, fmt.Errorf("criterion %q: %w", s, err)
		}
		b, err := parseNumber(hi)
		if err != nil {
			return Criterion{}, fmt.Errorf("criterion %q: %w", s, err)
		}
		if a > b {
			return Criterion{}, fmt.Errorf("criterion %q: lower bound exceeds upper bound", s)
		}
		return Criterion{Op: CriterionRange, Value: a, Upper: b}, nil
	}

	x, err := parseNumber(s)
	if err != nil {
		return Criterion{}, fmt.Errorf("criterion %q: %w", s, err)
	}
	return Criterion{Op: CriterionEqual, Value: x}, nil
}

func parseNumber(s string) (float64, error) {
	x, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", strings.TrimSpace(s))
	}
	return x, nil
}

// Matches reports whether x satisfies the criterion.
func (c Criterion) Matches(x float64) bool {
	if c.Op == CriterionAny {
		return true
	}
	if math.IsNaN(x) {
		return false
	}
	switch c.Op {
	case CriterionEqual:
		return x == c.Value
	case CriterionRange:
		return x >= c.Value && x <= c.Upper
	case CriterionGreater:
		return x > c.Value
	case CriterionGreaterEqual:
		return x >= c.Value
	case CriterionLess:
		return x < c.Value
	case CriterionLessEqual:
		return x <= c.Value
	default:
		return false
	}
}

// ClassificationRow assigns Output to every cell whose inputs satisfy all
// Criteria. Criteria are listed in input variable order.
type ClassificationRow struct {
	Output   float64
	Criteria []Criterion
}

// ClassificationRule classifies cells using a criteria table. When several
// rows match, the last one wins. Cells matching no row are missing.
type ClassificationRule struct {
	Base
	Rows []ClassificationRow
}

// NewClassificationRule creates a classification rule.
func NewClassificationRule(name string, inputs []string, output string, rows []ClassificationRow) *ClassificationRule {
	return &ClassificationRule{
		Base: Base{
			RuleName:   name,
			InputNames: inputs,
			OutputName: output,
		},
		Rows: rows,
	}
}

// Kind returns KindMultiArray.
func (r *ClassificationRule) Kind() Kind { return KindMultiArray }

// Validate requires at least one row with one criterion per input.
func (r *ClassificationRule) Validate(logger Logger) bool {
	valid := r.validateBase(logger)
	if len(r.Rows) == 0 {
		logger.Error("classification table has no rows", "rule", r.RuleName)
		valid = false
	}
	for i, row := range r.Rows {
		if len(row.Criteria) != len(r.InputNames) {
			logger.Error("classification row has wrong number of criteria",
				"rule", r.RuleName, "row", i+1, "criteria", len(row.Criteria), "inputs", len(r.InputNames))
			valid = false
		}
	}
	return valid
}

// ExecuteMulti classifies every cell. Inputs with fewer dimensions than the
// largest input are broadcast to it.
func (r *ClassificationRule) ExecuteMulti(inputs map[string]*dataset.Variable, logger Logger) (*dataset.Variable, error) {
	arrays, err := orderedInputs(r.InputNames, inputs)
	if err != nil {
		return nil, err
	}
	arrays, err = alignToLargest(r.InputNames, arrays, logger)
	if err != nil {
		return nil, err
	}

	ref := arrays[0]
	out := make([]float64, ref.Size())
	for i := range out {
		out[i] = math.NaN()
		for _, row := range r.Rows {
			if r.rowMatches(row, arrays, i) {
				out[i] = row.Output
			}
		}
	}
	return ref.WithData(out), nil
}

func (r *ClassificationRule) rowMatches(row ClassificationRow, arrays []*dataset.Variable, flat int) bool {
	for j, c := range row.Criteria {
		if !c.Matches(arrays[j].Data[flat]) {
			return false
		}
	}
	return true
}

// alignToLargest broadcasts every array to the one with the most dimensions
// (the first wins ties) and checks that all of them end up identically shaped.
func alignToLargest(names []string, arrays []*dataset.Variable, logger Logger) ([]*dataset.Variable, error) {
	ref := 0
	for i, v := range arrays {
		if v.NDim() > arrays[ref].NDim() {
			ref = i
		}
	}

	out := make([]*dataset.Variable, len(arrays))
	for i, v := range arrays {
		if v.NDim() >= arrays[ref].NDim() {
			out[i] = v
			continue
		}
		b, added, err := v.BroadcastLike(arrays[ref])
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", names[i], err)
		}
		logger.Debug("broadcast input", "variable", names[i], "added_dims", added)
		out[i] = b
	}

	for i, v := range out {
		if !v.SameShape(out[ref]) {
			return nil, fmt.Errorf("input %q has dimensions %v%v, expected %v%v like %q",
				names[i], v.Dims, v.Shape, out[ref].Dims, out[ref].Shape, names[ref])
		}
	}
	return out, nil
}
