// Package application runs EcoImpact models end to end.
//
// An Application parses an input file, splits the first input dataset into
// partitions when its filename is a glob pattern, and runs the model once
// per partition:
//
//	app := application.New(cfg, logger, store, collector)
//	summary, err := app.Run(ctx, "input.yaml")
//
// Each partition reads its datasets, renames variables according to the
// variable_mapping of the dataset, runs the rule-based model, keeps the
// save_only_variables and writes the output dataset. For a pattern such as
// model_*.json the output file of the partition matched by model_2020.json
// gets the suffix _2020.
//
// Partitions are isolated from each other. A failing partition is logged,
// recorded in the run store and counted in the metrics; the remaining
// partitions still run unless processing.fail_fast is set. Run returns a
// *BatchError listing every failed partition.
package application
