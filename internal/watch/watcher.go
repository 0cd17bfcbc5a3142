// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a trigger when manifests or Go sources below a project
// root change. Bursts of filesystem events are coalesced into one trigger call.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/pkgsettings/pkgsettings/internal/logging"
)

// DefaultDebounce is the quiet period used when Options.Debounce is not positive.
const DefaultDebounce = 300 * time.Millisecond

var (
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("watcher already running")

	// ErrInvalidPattern is returned by New for a malformed glob.
	ErrInvalidPattern = errors.New("invalid watch pattern")

	// Editor swap files and VCS metadata change constantly and never affect output.
	noise = []string{
		"**/.git",
		"**/.git/**",
		"**/*.swp",
		"**/*.swo",
		"**/*~",
		"**/.DS_Store",
	}
)

type (
	// Trigger is called with the sorted, slash-separated paths (relative to the
	// watched root) that changed since the previous call.
	Trigger func(ctx context.Context, changed []string) error

	// Options configures a Watcher.
	Options struct {
		// Root is the directory watched recursively.
		Root string
		// Patterns select the files whose changes fire the trigger, e.g.
		// "**/package.toml". No patterns means every file.
		Patterns []string
		// Exclude prunes matching directories and files. Patterns are relative to Root.
		Exclude []string
		// Debounce is the quiet period after the last event before the trigger runs.
		Debounce time.Duration
		Logger   *log.Logger
	}

	// Watcher watches a directory tree with fsnotify.
	Watcher struct {
		root     string
		patterns []string
		exclude  []string
		debounce time.Duration
		logger   *log.Logger
		fsw      *fsnotify.Watcher
		started  atomic.Bool
	}
)

// New validates opts and registers every directory below opts.Root that is not excluded.
func New(opts Options) (*Watcher, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve watch root: %w", err)
	}

	for _, pattern := range slices.Concat(opts.Patterns, opts.Exclude) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
		}
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		root:     root,
		patterns: slices.Clone(opts.Patterns),
		exclude:  slices.Concat(noise, opts.Exclude),
		debounce: debounce,
		logger:   logging.OrDiscard(opts.Logger),
		fsw:      fsw,
	}

	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Root returns the absolute watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Relevant reports whether a change to rel (relative to the root) fires the trigger.
func (w *Watcher) Relevant(rel string) bool {
	rel = filepath.ToSlash(rel)
	if w.excluded(rel) {
		return false
	}
	if len(w.patterns) == 0 {
		return true
	}
	return matchAny(w.patterns, rel)
}

// Run processes events until ctx is done and calls trigger once per burst of
// relevant changes. Trigger runs on the event loop, so events that arrive while
// it works are batched into the next call. Trigger errors are logged and do not
// stop the watcher. Run returns nil when ctx is canceled and an error when the
// underlying watcher breaks.
func (w *Watcher) Run(ctx context.Context, trigger Trigger) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("closing watcher", "error", err)
		}
	}()

	var (
		pending = make(map[string]struct{})
		timer   = time.NewTimer(w.debounce)
		fire    <-chan time.Time
	)
	timer.Stop()
	defer timer.Stop()

	w.logger.Debug("watching", "root", w.root, "patterns", w.patterns)

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("fsnotify event channel closed")
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}
			rel, err := filepath.Rel(w.root, evt.Name)
			if err != nil || !w.Relevant(rel) {
				continue
			}
			pending[filepath.ToSlash(rel)] = struct{}{}
			timer.Reset(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)
			w.logger.Debug("change detected", "paths", changed)
			if err := trigger(ctx, changed); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Error("trigger failed", "error", err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("fsnotify error channel closed")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watcher stopped: %w", err)
			}
			w.logger.Warn("fsnotify error", "error", err)
		}
	}
}

func (w *Watcher) addTree(dir string) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Debug("skipping inaccessible path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.excludedDir(path) {
			return filepath.SkipDir
		}
		if addErr := w.fsw.Add(path); addErr != nil {
			return fmt.Errorf("watch %q: %w", path, addErr)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("register watch directories: %w", err)
	}
	return nil
}

// maybeAddDir extends the watch to directories created after New.
func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.excludedDir(path) {
		return
	}
	if err := w.addTree(path); err != nil {
		w.logger.Warn("watching new directory", "path", path, "error", err)
	}
}

func (w *Watcher) excludedDir(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	return w.excluded(filepath.ToSlash(rel))
}

func (w *Watcher) excluded(rel string) bool {
	return matchAny(w.exclude, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
