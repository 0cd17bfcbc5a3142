// SPDX-License-Identifier: MPL-2.0

// Package codegen renders resolved settings as a Go source file of constants and
// variables.
package codegen

import (
	"errors"
	"fmt"
	"go/types"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/tools/imports"

	"github.com/pkgsettings/pkgsettings/internal/resolve"
	"github.com/pkgsettings/pkgsettings/pkg/literal"
)

const (
	// Header marks generated files so that go/ast.IsGenerated and linters recognize them.
	Header = "// Code generated by pkgsettings. DO NOT EDIT."
	// DefaultFileName is the generated file written next to the directives.
	DefaultFileName = "settings_gen.go"
)

// ErrNameConflict is returned when a definition collides with an identifier the
// generated file needs.
var ErrNameConflict = errors.New("definition name conflicts with generated code")

// Definition is one declaration of the generated file.
type Definition struct {
	// Name is the declared identifier.
	Name string
	// Path is the setting the value was resolved from.
	Path resolve.Path
	// Source is the manifest that supplied the value, preferably relative to the project root.
	Source string
	// Literal is the encoded value.
	Literal literal.Literal
}

// Render returns the formatted Go source declaring defs in package pkg. Scalars become
// constants (integers typed int64); arrays and non-finite floats become package-level
// variables.
func Render(pkg string, defs []Definition) ([]byte, error) {
	needsMath := false
	for _, def := range defs {
		if usesMath(def.Literal) {
			needsMath = true
		}
	}
	for _, def := range defs {
		switch {
		case def.Name == "init", def.Name == "main" && pkg == "main":
			return nil, fmt.Errorf("%w: %s cannot be declared as a value", ErrNameConflict, def.Name)
		case types.Universe.Lookup(def.Name) != nil:
			return nil, fmt.Errorf("%w: %s shadows a predeclared identifier", ErrNameConflict, def.Name)
		case needsMath && def.Name == "math":
			return nil, fmt.Errorf("%w: %s shadows the math import", ErrNameConflict, def.Name)
		}
	}

	var sb strings.Builder
	sb.WriteString(Header)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "package %s\n", pkg)
	if needsMath {
		sb.WriteString("\nimport \"math\"\n")
	}

	for _, def := range defs {
		sb.WriteString("\n")
		writeDoc(&sb, def)
		if def.Literal.Shape == literal.ShapeArray || !def.Literal.IsFinite() {
			fmt.Fprintf(&sb, "var %s = %s\n", def.Name, Expr(def.Literal))
			continue
		}
		typ := ""
		if def.Literal.Type == literal.TypeInteger {
			// Untyped integer constants would default to int rather than GoType's int64.
			typ = " " + GoType(def.Literal)
		}
		fmt.Fprintf(&sb, "const %s%s = %s\n", def.Name, typ, Expr(def.Literal))
	}

	out, err := imports.Process(DefaultFileName, []byte(sb.String()), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("formatting generated source: %w", err)
	}
	return out, nil
}

func writeDoc(sb *strings.Builder, def Definition) {
	fmt.Fprintf(sb, "// %s resolves %s", def.Name, docPath(def.Path))
	if def.Source != "" {
		fmt.Fprintf(sb, " from %s", quoteUnless(def.Source, isPrintablePath))
	}
	sb.WriteString(".\n")
	if def.Literal.Shape == literal.ShapeFormatted {
		sb.WriteString("// The table value is rendered as TOML text.\n")
	}
}

// docPath renders the settings path for a line comment. Segments that are not TOML
// bare keys are quoted, so control characters cannot end the comment.
func docPath(p resolve.Path) string {
	return resolve.SegmentSettings.TablePath(p) + "." + quoteUnless(p.Namespace, isBareKey) + "." + quoteUnless(p.Key, isBareKey)
}

func quoteUnless(s string, plain func(rune) bool) string {
	for _, r := range s {
		if !plain(r) {
			return strconv.Quote(s)
		}
	}
	return s
}

func isBareKey(r rune) bool {
	return r == '_' || r == '-' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')
}

func isPrintablePath(r rune) bool {
	return unicode.IsPrint(r)
}

// GoType returns the Go type of the literal's value, e.g. "string" or "[][]int64".
func GoType(l literal.Literal) string {
	if l.Shape == literal.ShapeArray {
		if len(l.Elems) == 0 {
			return "[]" + scalarType(l.Type)
		}
		return "[]" + GoType(l.Elems[0])
	}
	return scalarType(l.Type)
}

func scalarType(t literal.Type) string {
	switch t {
	case literal.TypeInteger:
		return "int64"
	case literal.TypeFloat:
		return "float64"
	case literal.TypeBoolean:
		return "bool"
	default:
		return "string"
	}
}

// Expr renders l as a Go expression. Array elements omit their own type, as composite
// literal elision allows.
func Expr(l literal.Literal) string {
	if l.Shape == literal.ShapeArray {
		return GoType(l) + elems(l)
	}
	return scalarExpr(l)
}

func elems(l literal.Literal) string {
	parts := make([]string, len(l.Elems))
	for i, elem := range l.Elems {
		if elem.Shape == literal.ShapeArray {
			parts[i] = elems(elem)
			continue
		}
		parts[i] = scalarExpr(elem)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func scalarExpr(l literal.Literal) string {
	switch l.Type {
	case literal.TypeInteger, literal.TypeBoolean:
		return l.Text
	case literal.TypeFloat:
		switch l.Text {
		case "inf":
			return "math.Inf(1)"
		case "-inf":
			return "math.Inf(-1)"
		case "nan":
			return "math.NaN()"
		}
		return l.Text
	default:
		return strconv.Quote(l.Text)
	}
}

func usesMath(l literal.Literal) bool {
	if l.Shape == literal.ShapeArray {
		for _, elem := range l.Elems {
			if usesMath(elem) {
				return true
			}
		}
		return false
	}
	return !l.IsFinite()
}
