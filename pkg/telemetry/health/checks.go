package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/runstore"
)

// StoreCheck verifies that the run store answers queries.
func StoreCheck(store runstore.Storage) CheckFunc {
	return func(ctx context.Context) error {
		if _, err := store.Count(ctx, &runstore.Query{}); err != nil {
			return fmt.Errorf("run store unavailable: %w", err)
		}
		return nil
	}
}

// Runner is implemented by components that run in the background.
type Runner interface {
	Running() bool
}

// WatcherCheck verifies that the file watcher is active.
func WatcherCheck(w Runner) CheckFunc {
	return func(context.Context) error {
		if !w.Running() {
			return errors.New("file watcher is not running")
		}
		return nil
	}
}

// RunTracker remembers the outcome of the latest model run.
type RunTracker struct {
	mu       sync.RWMutex
	finished time.Time
	err      error
}

// Record stores the outcome of a finished run.
func (t *RunTracker) Record(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.finished = time.Now()
	t.err = err
}

// Check fails while the latest run failed. It passes before the first run.
func (t *RunTracker) Check(context.Context) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.err != nil {
		return fmt.Errorf("last run at %s failed: %w", t.finished.Format(time.RFC3339), t.err)
	}
	return nil
}
