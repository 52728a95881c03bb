package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/config"
)

// ErrAlreadyRunning is returned by Watch when the watcher is already active.
var ErrAlreadyRunning = errors.New("watcher already running")

// Config contains configuration for the file watcher.
type Config struct {
	// Paths are the files and directories to watch. A file is watched
	// through its directory, so replacing it (as most editors do) is seen.
	Paths []string

	// Debounce is the quiet period after the last change before the
	// callback runs.
	Debounce time.Duration

	// Extensions is the list of file extensions that trigger a change.
	Extensions []string

	// SkipHidden ignores files and directories whose name starts with a dot.
	SkipHidden bool

	// Ignore reports paths whose changes never trigger, such as files the
	// callback itself writes. Optional.
	Ignore func(path string) bool
}

// DefaultConfig returns the default watcher configuration.
func DefaultConfig() *Config {
	return FromConfig(*config.NewDefault())
}

// FromConfig builds a watcher configuration from the application settings.
func FromConfig(cfg config.Config, paths ...string) *Config {
	return &Config{
		Paths:      paths,
		Debounce:   cfg.Watch.Debounce,
		Extensions: slices.Clone(cfg.Watch.Extensions),
		SkipHidden: true,
	}
}

// FileWatcher watches input files and data directories for changes and
// calls back once the changes settle.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   *Config
	debounce *Debouncer

	mu       sync.RWMutex
	running  bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewFileWatcher creates a new file watcher. It does not watch anything
// until Watch is called.
func NewFileWatcher(cfg *Config, logger *slog.Logger) (*FileWatcher, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher:  watcher,
		logger:   logger.With("component", "watch"),
		config:   cfg,
		debounce: NewDebouncer(cfg.Debounce),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch starts watching and calls onChange with the last changed path once
// no further change arrived for the debounce interval. Errors returned by
// onChange are logged and watching continues.
//
// Watch blocks until ctx is cancelled or Stop is called. A watcher can
// only watch once.
func (fw *FileWatcher) Watch(ctx context.Context, onChange func(path string) error) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return ErrAlreadyRunning
	}
	fw.running = true
	fw.mu.Unlock()

	defer func() {
		fw.debounce.Stop()
		fw.mu.Lock()
		fw.running = false
		fw.mu.Unlock()
		close(fw.doneCh)
	}()

	for _, path := range fw.config.Paths {
		if err := fw.addPath(path); err != nil {
			return fmt.Errorf("failed to watch %q: %w", path, err)
		}
	}

	fw.logger.Info("Watching for changes",
		"paths", fw.config.Paths,
		"debounce_ms", fw.config.Debounce.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			fw.logger.Debug("File watcher stopped (context cancelled)")
			return nil

		case <-fw.stopCh:
			fw.logger.Debug("File watcher stopped")
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}

			if event.Has(fsnotify.Create) && fw.isNewDirectory(event.Name) {
				if err := fw.addDirectory(event.Name); err != nil {
					fw.logger.Warn("Cannot watch new directory", "path", event.Name, "error", err)
				}
				continue
			}

			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.logger.Debug("File event detected",
				"path", event.Name,
				"op", event.Op.String(),
			)

			path := event.Name
			fw.debounce.Trigger(func() {
				fw.logger.Info("Change detected", "path", path)
				if err := onChange(path); err != nil {
					fw.logger.Error("Re-run after change failed", "error", err)
				}
			})

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			fw.logger.Error("File watcher error", "error", err)
		}
	}
}

// Running reports whether Watch is active.
func (fw *FileWatcher) Running() bool {
	fw.mu.RLock()
	defer fw.mu.RUnlock()
	return fw.running
}

// Stop stops watching and releases the underlying watcher. It is safe to
// call Stop more than once and before Watch.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		close(fw.stopCh)

		fw.mu.RLock()
		running := fw.running
		fw.mu.RUnlock()
		if running {
			<-fw.doneCh
		}

		fw.debounce.Stop()
		if cerr := fw.watcher.Close(); cerr != nil {
			err = fmt.Errorf("failed to close watcher: %w", cerr)
		}
	})
	return err
}

// addPath adds a file's directory, or a directory tree, to the watcher.
func (fw *FileWatcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fw.addDirectory(path)
	}
	return fw.watcher.Add(filepath.Dir(path))
}

// addDirectory adds a directory and all subdirectories to the watcher.
func (fw *FileWatcher) addDirectory(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && fw.isHidden(path) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", path, err)
		}
		fw.logger.Debug("Watching directory", "path", path)
		return nil
	})
}

func (fw *FileWatcher) isNewDirectory(path string) bool {
	if fw.isHidden(path) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// shouldProcessEvent determines if an event should trigger the callback.
func (fw *FileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if !fw.hasValidExtension(strings.ToLower(filepath.Ext(event.Name))) {
		return false
	}
	if fw.isHidden(event.Name) {
		return false
	}
	if fw.config.Ignore != nil && fw.config.Ignore(event.Name) {
		return false
	}
	return true
}

func (fw *FileWatcher) isHidden(path string) bool {
	return fw.config.SkipHidden && strings.HasPrefix(filepath.Base(path), ".")
}

// hasValidExtension checks if a file extension should be watched. An empty
// extension list accepts every file.
func (fw *FileWatcher) hasValidExtension(ext string) bool {
	if len(fw.config.Extensions) == 0 {
		return true
	}
	for _, validExt := range fw.config.Extensions {
		if ext == strings.ToLower(validExt) {
			return true
		}
	}
	return false
}
