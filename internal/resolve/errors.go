// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pkgsettings/pkgsettings/pkg/manifest"
)

// Segment identifies the lookup step that failed.
const (
	SegmentFile Segment = iota + 1
	SegmentParse
	SegmentPackage
	SegmentMetadata
	SegmentSettings
	SegmentNamespace
	SegmentKey
)

var (
	// ErrManifestUnreadable is wrapped when the manifest file cannot be read.
	ErrManifestUnreadable = errors.New("manifest unreadable")
	// ErrManifestUnparseable is wrapped when the manifest file is not valid TOML.
	ErrManifestUnparseable = errors.New("manifest unparseable")
	// ErrPathSegmentMissing is wrapped when a table or the key is absent.
	ErrPathSegmentMissing = errors.New("path segment missing")
	// ErrInvalidPath is returned when the namespace or key is empty.
	ErrInvalidPath = errors.New("invalid settings path")
)

type (
	// Segment is one step of the settings lookup.
	Segment int

	// Error is the failure of the last manifest examined by Resolve.
	Error struct {
		// Segment is the first step that could not be completed.
		Segment Segment
		// Manifest is the absolute path of the manifest examined.
		Manifest string
		// Path is the setting being resolved.
		Path Path
		// Cause is the underlying read or parse error, nil for missing segments.
		Cause error
	}
)

// String returns the dotted table path the segment reaches, or "file"/"parse".
func (s Segment) String() string {
	switch s {
	case SegmentFile:
		return "file"
	case SegmentParse:
		return "parse"
	case SegmentPackage:
		return "package"
	case SegmentMetadata:
		return "metadata"
	case SegmentSettings:
		return "settings"
	case SegmentNamespace:
		return "namespace"
	case SegmentKey:
		return "key"
	default:
		return "unknown"
	}
}

// TablePath returns the dotted manifest path reached by the segment for p, e.g.
// "package.metadata.settings.ns". It is empty for the file and parse segments.
func (s Segment) TablePath(p Path) string {
	parts := []string{manifest.PackageKey, manifest.MetadataKey, manifest.SettingsKey, p.Namespace, p.Key}
	switch s {
	case SegmentPackage:
		return strings.Join(parts[:1], ".")
	case SegmentMetadata:
		return strings.Join(parts[:2], ".")
	case SegmentSettings:
		return strings.Join(parts[:3], ".")
	case SegmentNamespace:
		return strings.Join(parts[:4], ".")
	case SegmentKey:
		return strings.Join(parts, ".")
	default:
		return ""
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Segment {
	case SegmentFile:
		return fmt.Sprintf("failed to read '%s'", e.Manifest)
	case SegmentParse:
		return fmt.Sprintf("failed to parse '%s' as valid TOML", e.Manifest)
	default:
		return fmt.Sprintf("failed to find table '%s' in '%s'", e.Segment.TablePath(e.Path), e.Manifest)
	}
}

// Unwrap returns the sentinel for the failed segment together with the cause, so both
// errors.Is(err, ErrManifestUnreadable) and errors.Is(err, fs.ErrNotExist) hold.
func (e *Error) Unwrap() []error {
	var sentinel error
	switch e.Segment {
	case SegmentFile:
		sentinel = ErrManifestUnreadable
	case SegmentParse:
		sentinel = ErrManifestUnparseable
	default:
		sentinel = ErrPathSegmentMissing
	}
	if e.Cause == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Cause}
}
