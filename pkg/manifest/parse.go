// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	// DefaultFileName is the manifest file name looked up in each directory.
	DefaultFileName = "package.toml"

	// PackageKey is the top-level table declaring the component identity.
	PackageKey = "package"
	// NameKey is the component name inside the package table.
	NameKey = "name"
	// MetadataKey is the free-form metadata table inside the package table.
	MetadataKey = "metadata"
	// SettingsKey is the settings table inside package.metadata.
	SettingsKey = "settings"
	// WorkspaceKey is the top-level marker designating a project root.
	WorkspaceKey = "workspace"
)

// ErrUnsupportedNode is returned when the TOML decoder yields a Go type outside the
// seven-kind model. It indicates a decoder change rather than a bad manifest.
var ErrUnsupportedNode = errors.New("unsupported TOML node")

// Parse decodes a TOML document into a Table.
func Parse(data []byte) (Table, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return convertTable(raw)
}

// Load reads and parses the manifest at path.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return t, nil
}

// PackageName returns package.name when it is declared as a string.
func PackageName(t Table) (string, bool) {
	pkg, ok := t.Get(PackageKey)
	if !ok {
		return "", false
	}
	pkgTable, ok := pkg.Table()
	if !ok {
		return "", false
	}
	name, ok := pkgTable.Get(NameKey)
	if !ok {
		return "", false
	}
	return name.Str()
}

// IsWorkspace reports whether the manifest carries the workspace marker section.
func IsWorkspace(t Table) bool {
	_, ok := t.Get(WorkspaceKey)
	return ok
}

func convertTable(raw map[string]any) (Table, error) {
	t := make(Table, len(raw))
	for key, node := range raw {
		v, err := convert(node)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		t[key] = v
	}
	return t, nil
}

func convert(node any) (Value, error) {
	switch n := node.(type) {
	case string:
		return NewString(n), nil
	case int64:
		return NewInteger(n), nil
	case float64:
		return NewFloat(n), nil
	case bool:
		return NewBoolean(n), nil
	case time.Time:
		// go-toml decodes both Z and +00:00 to time.UTC; both render as Z.
		return NewTimestamp(n.Format(time.RFC3339Nano)), nil
	case toml.LocalDateTime:
		return NewTimestamp(n.String()), nil
	case toml.LocalDate:
		return NewTimestamp(n.String()), nil
	case toml.LocalTime:
		return NewTimestamp(n.String()), nil
	case []any:
		elems := make([]Value, len(n))
		for i, elem := range n {
			v, err := convert(elem)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			elems[i] = v
		}
		return Value{kind: KindArray, arr: elems}, nil
	case map[string]any:
		t, err := convertTable(n)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindTable, tbl: t}, nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedNode, node)
	}
}
