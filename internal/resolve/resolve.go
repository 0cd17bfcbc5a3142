// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/pkgsettings/pkgsettings/internal/logging"
	"github.com/pkgsettings/pkgsettings/pkg/manifest"
)

type (
	// Path names a setting: package.metadata.settings.<Namespace>.<Key>.
	Path struct {
		Namespace string
		Key       string
	}

	// Resolution is a resolved setting and the manifest that supplied it.
	Resolution struct {
		Value    manifest.Value
		Manifest string
	}

	// Resolver performs the upward manifest search.
	Resolver struct {
		manifestName string
		logger       *log.Logger
	}

	// Option configures a Resolver.
	Option func(*Resolver)
)

// String returns the dotted settings path.
func (p Path) String() string {
	return SegmentKey.TablePath(p)
}

// IsValid reports whether both namespace and key are non-empty.
func (p Path) IsValid() (bool, []error) {
	var errs []error
	if p.Namespace == "" {
		errs = append(errs, fmt.Errorf("%w: namespace must not be empty", ErrInvalidPath))
	}
	if p.Key == "" {
		errs = append(errs, fmt.Errorf("%w: key must not be empty", ErrInvalidPath))
	}
	return len(errs) == 0, errs
}

// WithManifestName overrides the manifest file name (default manifest.DefaultFileName).
func WithManifestName(name string) Option {
	return func(r *Resolver) {
		if name != "" {
			r.manifestName = name
		}
	}
}

// WithLogger sets the logger used to trace skipped manifests.
func WithLogger(logger *log.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{manifestName: manifest.DefaultFileName}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrDiscard(r.logger)
	return r
}

// Resolve looks up p starting at startDir. Any failure in a directory's manifest moves the
// search to the parent directory when the parent has a manifest; otherwise the failure is
// returned as *Error. Every call re-reads the manifests.
func (r *Resolver) Resolve(ctx context.Context, p Path, startDir string) (Resolution, error) {
	if ok, errs := p.IsValid(); !ok {
		return Resolution{}, errors.Join(errs...)
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolving start directory: %w", err)
	}

	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Resolution{}, ctxErr
		}

		path := filepath.Join(dir, r.manifestName)
		value, lookupErr := r.lookup(path, p)
		if lookupErr == nil {
			r.logger.Debug("resolved setting", "setting", p.String(), "manifest", path)
			return Resolution{Value: value, Manifest: path}, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir || !exists(filepath.Join(parent, r.manifestName)) {
			return Resolution{}, lookupErr
		}

		r.logger.Debug("setting not found, trying parent", "setting", p.String(), "manifest", path, "reason", lookupErr)
		dir = parent
	}
}

func (r *Resolver) lookup(path string, p Path) (manifest.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return manifest.Value{}, &Error{Segment: SegmentFile, Manifest: path, Path: p, Cause: err}
	}

	doc, err := manifest.Parse(data)
	if err != nil {
		return manifest.Value{}, &Error{Segment: SegmentParse, Manifest: path, Path: p, Cause: err}
	}

	steps := []struct {
		segment Segment
		key     string
	}{
		{SegmentPackage, manifest.PackageKey},
		{SegmentMetadata, manifest.MetadataKey},
		{SegmentSettings, manifest.SettingsKey},
		{SegmentNamespace, p.Namespace},
	}

	table := doc
	for _, step := range steps {
		next, ok := table.Get(step.key)
		if !ok {
			return manifest.Value{}, &Error{Segment: step.segment, Manifest: path, Path: p}
		}
		// A non-table intermediate fails at the following segment.
		sub, isTable := next.Table()
		if !isTable {
			return manifest.Value{}, &Error{Segment: step.segment + 1, Manifest: path, Path: p}
		}
		table = sub
	}

	value, ok := table.Get(p.Key)
	if !ok {
		return manifest.Value{}, &Error{Segment: SegmentKey, Manifest: path, Path: p}
	}
	return value, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
