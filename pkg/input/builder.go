package input

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/rules"
)

var topLevelFields = []string{"version", "input-data", "output-data", "rules"}

// commonRuleFields are accepted by every rule type.
var commonRuleFields = []string{"name", "description", "output_variable"}

// ruleSpec lists the fields a rule type needs and accepts, and how to build it.
type ruleSpec struct {
	required []string
	optional []string
	build    func(b *builder, yr *yamlRule) rules.Rule
}

var ruleSpecs = map[string]ruleSpec{
	"multiply_rule": {
		required: []string{"input_variable", "multipliers"},
		build:    (*builder).buildMultiply,
	},
	"step_function_rule": {
		required: []string{"input_variable", "limit_response_table"},
		build:    (*builder).buildStepFunction,
	},
	"response_curve_rule": {
		required: []string{"input_variable", "input_values", "output_values"},
		build:    (*builder).buildResponseCurve,
	},
	"combine_results_rule": {
		required: []string{"input_variables", "operation"},
		optional: []string{"ignore_nan"},
		build:    (*builder).buildCombineResults,
	},
	"classification_rule": {
		required: []string{"input_variables", "criteria_table"},
		build:    (*builder).buildClassification,
	},
	"formula_rule": {
		required: []string{"input_variables", "formula"},
		build:    (*builder).buildFormula,
	},
	"layer_filter_rule": {
		required: []string{"input_variable", "layer_number"},
		optional: []string{"layer_dimension"},
		build:    (*builder).buildLayerFilter,
	},
	"axis_filter_rule": {
		required: []string{"input_variable", "axis_name", "element_index"},
		build:    (*builder).buildAxisFilter,
	},
	"depth_average_rule": {
		required: []string{"input_variable"},
		optional: []string{"bed_level_variable", "water_level_variable", "interfaces_variable"},
		build:    (*builder).buildDepthAverage,
	},
	"time_aggregation_rule": {
		required: []string{"input_variable", "operation", "time_scale"},
		build:    (*builder).buildTimeAggregation,
	},
}

// RuleTypes returns the supported rule type keys in sorted order.
func RuleTypes() []string {
	types := make([]string, 0, len(ruleSpecs))
	for t := range ruleSpecs {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// builder turns the intermediate YAML structures into ModelData.
// Problems are collected rather than returned one at a time.
type builder struct {
	sourcePath string
	costLimit  uint64
	errors     *ErrorList
}

func newBuilder(sourcePath string, costLimit uint64) *builder {
	return &builder{
		sourcePath: sourcePath,
		costLimit:  costLimit,
		errors:     NewErrorList(),
	}
}

func (b *builder) add(errType ErrorType, node *yaml.Node, suggestion, format string, args ...any) {
	e := &Error{
		Type:       errType,
		Message:    fmt.Sprintf(format, args...),
		File:       b.sourcePath,
		Suggestion: suggestion,
	}
	if node != nil {
		e.Line = node.Line
		e.Column = node.Column
	}
	b.errors.Add(e)
}

func (b *builder) buildModelData(in *yamlInput, name string) *ModelData {
	root := rootMapping(in.node)
	keys := mappingKeys(root)
	b.checkFields(keys, topLevelFields, "field")

	md := &ModelData{
		Name:    name,
		Version: in.Version,
	}

	if in.Version == "" {
		b.add(ErrorTypeStructural, root, "Add 'version: 0.1.0' at the top of the file",
			"Missing required field 'version'")
	}

	if len(in.InputData) == 0 {
		b.add(ErrorTypeStructural, orNode(keys["input-data"], root), "",
			"At least one input dataset is required under 'input-data'")
	}
	for i, d := range in.InputData {
		if d.Dataset == nil || strings.TrimSpace(d.Dataset.Filename) == "" {
			b.add(ErrorTypeStructural, orNode(keys["input-data"], root), "",
				"Input dataset %d has no 'filename'", i+1)
			continue
		}
		md.Datasets = append(md.Datasets, DatasetData{
			Filename:        d.Dataset.Filename,
			VariableMapping: d.Dataset.VariableMapping,
		})
	}

	if in.OutputData == nil || strings.TrimSpace(in.OutputData.Filename) == "" {
		b.add(ErrorTypeStructural, orNode(keys["output-data"], root), "",
			"Missing required field 'output-data.filename'")
	} else {
		md.Output = OutputData{
			Filename:          in.OutputData.Filename,
			SaveOnlyVariables: in.OutputData.SaveOnlyVariables,
		}
	}

	if len(in.Rules) == 0 {
		b.add(ErrorTypeStructural, orNode(keys["rules"], root), "", "No rules defined")
	}

	seen := make(map[string]int)
	for i := range in.Rules {
		rule := b.buildRule(&in.Rules[i], i)
		if rule == nil {
			continue
		}
		if line, dup := seen[rule.Name()]; dup {
			b.add(ErrorTypeValidation, &in.Rules[i], "",
				"Duplicate rule name %q (first defined on line %d)", rule.Name(), line)
			continue
		}
		seen[rule.Name()] = in.Rules[i].Line
		md.Rules = append(md.Rules, rule)
	}

	return md
}

// buildRule builds one entry of the rules list, a single-key mapping from
// rule type to its fields. It returns nil when the entry is unusable.
func (b *builder) buildRule(node *yaml.Node, index int) rules.Rule {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		b.add(ErrorTypeStructural, node, "Write rules as '- <type>_rule: {...}'",
			"Rule %d must be a mapping with exactly one rule type", index+1)
		return nil
	}

	typeNode, body := node.Content[0], node.Content[1]
	spec, ok := ruleSpecs[typeNode.Value]
	if !ok {
		b.add(ErrorTypeStructural, typeNode, suggestName(typeNode.Value, RuleTypes()),
			"Unknown rule type '%s'", typeNode.Value)
		return nil
	}

	var yr yamlRule
	if err := body.Decode(&yr); err != nil {
		b.add(ErrorTypeStructural, body, "", "Invalid %s: %s", typeNode.Value, decodeMessage(err))
		return nil
	}
	yr.node = body
	yr.keys = mappingKeys(body)

	allowed := slices.Concat(commonRuleFields, spec.required, spec.optional)
	if !b.checkFields(yr.keys, allowed, typeNode.Value+" field") {
		return nil
	}

	missing := false
	for _, field := range append([]string{"name", "output_variable"}, spec.required...) {
		if _, ok := yr.keys[field]; !ok {
			b.add(ErrorTypeStructural, typeNode, "",
				"%s is missing required field '%s'", typeNode.Value, field)
			missing = true
		}
	}
	if missing {
		return nil
	}

	rule := spec.build(b, &yr)
	if rule == nil {
		return nil
	}
	if d, ok := rule.(interface{ SetDescription(string) }); ok {
		d.SetDescription(yr.Description)
	}
	return rule
}

// checkFields reports keys that are not allowed. It returns false when any
// unknown key was found.
func (b *builder) checkFields(keys map[string]*yaml.Node, allowed []string, what string) bool {
	ok := true
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if slices.Contains(allowed, k) {
			continue
		}
		b.add(ErrorTypeStructural, keys[k], suggestName(k, allowed), "Unknown %s '%s'", what, k)
		ok = false
	}
	return ok
}

func (b *builder) buildMultiply(yr *yamlRule) rules.Rule {
	if len(yr.Multipliers) == 0 {
		b.add(ErrorTypeValidation, yr.keys["multipliers"], "", "Rule %q needs at least one multiplier", yr.Name)
		return nil
	}
	return rules.NewMultiplyRule(yr.Name, yr.InputVariable, yr.OutputVariable, yr.Multipliers)
}

func (b *builder) buildStepFunction(yr *yamlRule) rules.Rule {
	node := yr.keys["limit_response_table"]
	rows := yr.LimitResponseTable
	if len(rows) > 0 && !numericRow(rows[0]) {
		rows = rows[1:] // header
	}

	limits := make([]float64, 0, len(rows))
	responses := make([]float64, 0, len(rows))
	for i, row := range rows {
		if len(row) != 2 || !numericRow(row) {
			b.add(ErrorTypeValidation, node, "Use rows of the form [limit, response]",
				"Rule %q: limit_response_table row %d must hold two numbers", yr.Name, i+1)
			return nil
		}
		limit, _ := toFloat(row[0])
		response, _ := toFloat(row[1])
		limits = append(limits, limit)
		responses = append(responses, response)
	}
	if len(limits) == 0 {
		b.add(ErrorTypeValidation, node, "", "Rule %q: limit_response_table is empty", yr.Name)
		return nil
	}
	return rules.NewStepFunctionRule(yr.Name, yr.InputVariable, yr.OutputVariable, limits, responses)
}

func (b *builder) buildResponseCurve(yr *yamlRule) rules.Rule {
	if len(yr.InputValues) != len(yr.OutputValues) {
		b.add(ErrorTypeValidation, yr.keys["output_values"], "",
			"Rule %q: input_values has %d entries but output_values has %d",
			yr.Name, len(yr.InputValues), len(yr.OutputValues))
		return nil
	}
	return rules.NewResponseCurveRule(yr.Name, yr.InputVariable, yr.OutputVariable, yr.InputValues, yr.OutputValues)
}

func (b *builder) buildCombineResults(yr *yamlRule) rules.Rule {
	op, err := rules.ParseCombineOperation(yr.Operation)
	if err != nil {
		b.add(ErrorTypeValidation, yr.keys["operation"], "", "Rule %q: %v", yr.Name, err)
		return nil
	}
	return rules.NewCombineResultsRule(yr.Name, yr.InputVariables, yr.OutputVariable, op, yr.IgnoreNaN)
}

// buildClassification reads a criteria table whose header row is
// [output, <input>...]. Columns are reordered to follow input_variables.
func (b *builder) buildClassification(yr *yamlRule) rules.Rule {
	node := yr.keys["criteria_table"]
	table := yr.CriteriaTable
	if len(table) < 2 {
		b.add(ErrorTypeValidation, node, "Start the table with a header row [output, <input>...]",
			"Rule %q: criteria_table needs a header row and at least one criteria row", yr.Name)
		return nil
	}

	header := make([]string, len(table[0]))
	for i, cell := range table[0] {
		header[i] = fmt.Sprint(cell)
	}
	if header[0] != "output" {
		b.add(ErrorTypeValidation, node, "", "Rule %q: first header column must be 'output', got %q", yr.Name, header[0])
		return nil
	}

	columns := make([]int, len(yr.InputVariables))
	for i, name := range yr.InputVariables {
		col := slices.Index(header[1:], name)
		if col < 0 {
			b.add(ErrorTypeValidation, node, suggestName(name, header[1:]),
				"Rule %q: input variable %q has no column in criteria_table", yr.Name, name)
			return nil
		}
		columns[i] = col + 1
	}
	if len(header)-1 != len(yr.InputVariables) {
		b.add(ErrorTypeValidation, node, "",
			"Rule %q: criteria_table has %d criteria columns but %d input variables",
			yr.Name, len(header)-1, len(yr.InputVariables))
		return nil
	}

	rows := make([]rules.ClassificationRow, 0, len(table)-1)
	for r, cells := range table[1:] {
		if len(cells) != len(header) {
			b.add(ErrorTypeValidation, node, "",
				"Rule %q: criteria_table row %d has %d cells, want %d", yr.Name, r+1, len(cells), len(header))
			return nil
		}
		out, ok := toFloat(cells[0])
		if !ok {
			b.add(ErrorTypeValidation, node, "",
				"Rule %q: criteria_table row %d has non-numeric output %v", yr.Name, r+1, cells[0])
			return nil
		}
		row := rules.ClassificationRow{Output: out, Criteria: make([]rules.Criterion, len(columns))}
		for i, col := range columns {
			c, err := rules.ParseCriterion(fmt.Sprint(cells[col]))
			if err != nil {
				b.add(ErrorTypeValidation, node, "Use '-', a number, 'a:b', '>x', '>=x', '<x' or '<=x'",
					"Rule %q: criteria_table row %d: %v", yr.Name, r+1, err)
				return nil
			}
			row.Criteria[i] = c
		}
		rows = append(rows, row)
	}
	return rules.NewClassificationRule(yr.Name, yr.InputVariables, yr.OutputVariable, rows)
}

func (b *builder) buildFormula(yr *yamlRule) rules.Rule {
	rule, err := rules.NewFormulaRule(yr.Name, yr.InputVariables, yr.OutputVariable, yr.Formula, b.costLimit)
	if err != nil {
		b.add(ErrorTypeValidation, yr.keys["formula"], "Formulas are CEL expressions over the input variables",
			"Rule %q: %v", yr.Name, err)
		return nil
	}
	return rule
}

func (b *builder) buildLayerFilter(yr *yamlRule) rules.Rule {
	if yr.LayerNumber < 1 {
		b.add(ErrorTypeValidation, yr.keys["layer_number"], "Layers are numbered from 1",
			"Rule %q: layer_number must be positive, got %d", yr.Name, yr.LayerNumber)
		return nil
	}
	rule := rules.NewLayerFilterRule(yr.Name, yr.InputVariable, yr.OutputVariable, yr.LayerNumber)
	rule.LayerDimension = yr.LayerDimension
	return rule
}

func (b *builder) buildAxisFilter(yr *yamlRule) rules.Rule {
	if yr.ElementIndex < 1 {
		b.add(ErrorTypeValidation, yr.keys["element_index"], "Elements are numbered from 1",
			"Rule %q: element_index must be positive, got %d", yr.Name, yr.ElementIndex)
		return nil
	}
	return rules.NewAxisFilterRule(yr.Name, yr.InputVariable, yr.OutputVariable, yr.AxisName, yr.ElementIndex)
}

func (b *builder) buildDepthAverage(yr *yamlRule) rules.Rule {
	return rules.NewDepthAverageRule(yr.Name, yr.InputVariable,
		orDefault(yr.BedLevelVariable, rules.DefaultBedLevelVariable),
		orDefault(yr.WaterLevelVariable, rules.DefaultWaterLevelVariable),
		orDefault(yr.InterfacesVariable, rules.DefaultInterfacesVariable),
		yr.OutputVariable)
}

func (b *builder) buildTimeAggregation(yr *yamlRule) rules.Rule {
	op, percentile, err := rules.ParseTimeOperation(yr.Operation)
	if err != nil {
		b.add(ErrorTypeValidation, yr.keys["operation"], "", "Rule %q: %v", yr.Name, err)
		return nil
	}
	scale, err := rules.ParseTimeScale(yr.TimeScale)
	if err != nil {
		b.add(ErrorTypeValidation, yr.keys["time_scale"], "", "Rule %q: %v", yr.Name, err)
		return nil
	}
	rule := rules.NewTimeAggregationRule(yr.Name, yr.InputVariable, yr.OutputVariable, op, scale)
	if op == rules.TimePercentile {
		rule.SetPercentile(percentile)
	}
	return rule
}

func numericRow(row []any) bool {
	for _, cell := range row {
		if _, ok := toFloat(cell); !ok {
			return false
		}
	}
	return true
}

// toFloat converts a decoded YAML scalar to float64. Strings are accepted
// when they hold a number.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orNode(n, fallback *yaml.Node) *yaml.Node {
	if n != nil {
		return n
	}
	return fallback
}

// decodeMessage strips the "yaml: unmarshal errors:" preamble.
func decodeMessage(err error) string {
	var te *yaml.TypeError
	if errors.As(err, &te) {
		return strings.Join(te.Errors, "; ")
	}
	return err.Error()
}
