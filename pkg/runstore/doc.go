// Package runstore keeps the history of model runs.
//
// Every run of a model over one partition of its input data produces a
// RunRecord: which input file and partition were processed, how the run
// ended, how long it took and, per executed rule, its wave, duration and
// the number of cells that fell outside the rule's table.
//
// A Recorder builds the record while the model runs. It is registered as a
// processor.Observer and finished with the run's Outcome:
//
//	rec := runstore.NewRecorder(inputPath, partition, md.Name)
//	m := model.NewRuleBasedModel(md.Name, inputs, md.Rules,
//		processor.WithObserver(rec))
//	err := model.RunE(m, logger)
//	record := rec.Finish(runstore.Outcome{Status: runstore.StatusSuccess})
//	store.Store(ctx, record)
//
// Records are persisted by a Storage backend from the storage sub-package
// and pruned by the retention sub-package.
package runstore
