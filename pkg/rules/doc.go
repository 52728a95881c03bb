// Package rules defines the impact rule abstraction and the built-in rule library.
//
// Every rule declares its input variable names, a single output variable name
// and a Kind. The Kind tells the processor which execution shape the rule
// implements:
//
//	KindArray       ArrayRule.Execute          one whole array in, one out
//	KindCell        CellRule.ExecuteCell       one value in, one value out plus warnings
//	KindMultiArray  MultiArrayRule.ExecuteMulti several whole arrays in, one out
//	KindMultiCell   MultiCellRule.ExecuteCells  several values in, one value out
//
// Built-in rules:
//
//   - MultiplyRule (array)
//   - StepFunctionRule, ResponseCurveRule (cell)
//   - CombineResultsRule, ClassificationRule, DepthAverageRule (multi-array)
//   - FormulaRule (multi-cell, CEL expressions)
//   - LayerFilterRule, AxisFilterRule, TimeAggregationRule (array)
//
// Rules are built once per model run and are not modified during execution.
package rules
