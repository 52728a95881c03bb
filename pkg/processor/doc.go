// Package processor resolves rule dependencies and executes rules against a dataset.
//
// Initialize groups rules into waves. A rule joins the first wave in which
// all of its inputs are available, either from the input dataset (variables
// and coordinates) or as outputs of earlier waves. When no remaining rule can
// run, Initialize logs the unresolved rules and returns false; a dependency
// cycle shows up the same way.
//
// ProcessRules walks the waves in order and dispatches each rule by its kind:
//
//   - multi-array rules receive all inputs as whole arrays
//   - multi-cell rules are called once per cell after broadcasting every input
//     to the input with the most dimensions
//   - array rules receive their single input
//   - cell rules are called once per value; range warnings are summed and
//     logged once per rule
//
// Each result is named after the rule's output variable, inherits the
// location and mesh attributes of the rule's first input, and is stored in
// the dataset. Coordinates carried by a result are added to the dataset
// unless a coordinate of that name already exists.
//
// Basic usage:
//
//	p, err := processor.New(ruleList, ds)
//	if err != nil {
//		return err
//	}
//	if !p.Initialize(logger) {
//		return errors.New("rules could not be resolved")
//	}
//	ds, err = p.ProcessRules(ds, logger)
package processor
