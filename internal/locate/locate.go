// SPDX-License-Identifier: MPL-2.0

package locate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/pkgsettings/pkgsettings/internal/logging"
	"github.com/pkgsettings/pkgsettings/pkg/manifest"
)

type (
	// Locator searches a project tree for manifests.
	Locator struct {
		manifestName string
		exclude      []string
		logger       *log.Logger
	}

	// Option configures a Locator.
	Option func(*Locator)
)

// ErrInvalidExcludePattern is returned by New when an exclude glob is malformed.
var ErrInvalidExcludePattern = errors.New("invalid exclude pattern")

// WithManifestName overrides the manifest file name (default manifest.DefaultFileName).
func WithManifestName(name string) Option {
	return func(l *Locator) {
		if name != "" {
			l.manifestName = name
		}
	}
}

// WithExclude prunes directories matching any of the doublestar patterns during the
// component search. Patterns are matched against slash-separated paths relative to
// the search root, e.g. "**/node_modules" or "vendor".
func WithExclude(patterns ...string) Option {
	return func(l *Locator) {
		l.exclude = append(l.exclude, patterns...)
	}
}

// WithLogger sets the logger used for search tracing.
func WithLogger(logger *log.Logger) Option {
	return func(l *Locator) {
		l.logger = logger
	}
}

// New creates a Locator.
func New(opts ...Option) (*Locator, error) {
	l := &Locator{manifestName: manifest.DefaultFileName}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logging.OrDiscard(l.logger)

	for _, pattern := range l.exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidExcludePattern, pattern)
		}
	}
	return l, nil
}

// ManifestName returns the manifest file name this locator looks for.
func (l *Locator) ManifestName() string {
	return l.manifestName
}

// FindRoot walks upward from start and returns the project root. The first ancestor
// (start included) whose manifest has a workspace section wins immediately. Otherwise
// the outermost ancestor whose manifest declares package.name is returned, or start
// itself when no such manifest exists. Unreadable or malformed manifests are ignored.
func (l *Locator) FindRoot(start string) string {
	dir, err := filepath.Abs(start)
	if err != nil {
		return start
	}

	bestMatch := dir
	for {
		doc, loadErr := manifest.Load(filepath.Join(dir, l.manifestName))
		if loadErr == nil {
			if manifest.IsWorkspace(doc) {
				l.logger.Debug("found workspace root", "dir", dir)
				return dir
			}
			if _, ok := manifest.PackageName(doc); ok {
				bestMatch = dir
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	l.logger.Debug("using outermost package manifest as root", "dir", bestMatch)
	return bestMatch
}

// FindComponentRoot walks the tree below root depth-first in lexical order and returns
// the directory of the first manifest whose package.name equals name. Every manifest
// in the tree is visited unless an exclude pattern prunes its directory. The only error
// is cancellation of ctx.
func (l *Locator) FindComponentRoot(ctx context.Context, root, name string) (string, bool, error) {
	var found string

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// Best effort: unreadable entries are skipped.
			return nil
		}

		if d.IsDir() {
			if path != root && l.excluded(root, path) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != l.manifestName {
			return nil
		}

		doc, loadErr := manifest.Load(path)
		if loadErr != nil {
			l.logger.Debug("skipping unreadable manifest", "path", path, "error", loadErr)
			return nil
		}
		if pkgName, ok := manifest.PackageName(doc); ok && pkgName == name {
			found = filepath.Dir(path)
			return fs.SkipAll
		}
		return nil
	})
	if walkErr != nil {
		return "", false, fmt.Errorf("searching for component %q: %w", name, walkErr)
	}

	return found, found != "", nil
}

// ComponentDir returns the directory holding the manifest of the named component,
// searched below root (normally FindRoot(cwd)). When no manifest declares the name,
// cwd is returned.
func (l *Locator) ComponentDir(ctx context.Context, root, cwd, name string) (string, error) {
	l.logger.Debug("searching for component", "name", name, "root", root)

	dir, ok, err := l.FindComponentRoot(ctx, root, name)
	if err != nil {
		return "", err
	}
	if !ok {
		l.logger.Debug("component not found, falling back to working directory", "name", name, "cwd", cwd)
		return cwd, nil
	}

	l.logger.Debug("found component", "name", name, "dir", dir)
	return dir, nil
}

func (l *Locator) excluded(root, path string) bool {
	if len(l.exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range l.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
