// Package watch re-runs a model when its files change.
//
// A FileWatcher watches the input file and the directories holding the
// input datasets with fsnotify. Events are filtered by extension, hidden
// files are skipped and an optional Ignore function keeps the model's own
// output from triggering a new run. Bursts of events, such as an editor
// saving through a temporary file, are collapsed by a Debouncer into one
// callback.
//
//	fw, err := watch.NewFileWatcher(watch.FromConfig(*cfg, inputPath), logger)
//	if err != nil {
//		return err
//	}
//	defer fw.Stop()
//	return fw.Watch(ctx, func(string) error {
//		_, err := app.Run(ctx, inputPath)
//		return err
//	})
package watch
