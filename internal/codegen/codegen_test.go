// SPDX-License-Identifier: MPL-2.0

package codegen

import (
	"errors"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"math"
	"strings"
	"testing"

	"github.com/pkgsettings/pkgsettings/internal/resolve"
	"github.com/pkgsettings/pkgsettings/pkg/literal"
	"github.com/pkgsettings/pkgsettings/pkg/manifest"
)

func mustEncode(t *testing.T, v manifest.Value) literal.Literal {
	t.Helper()
	lit, err := literal.Encode(v)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return lit
}

func def(t *testing.T, name, key string, v manifest.Value) Definition {
	t.Helper()
	return Definition{
		Name:    name,
		Path:    resolve.Path{Namespace: "ns", Key: key},
		Source:  "package.toml",
		Literal: mustEncode(t, v),
	}
}

func TestRender_Scalars(t *testing.T) {
	defs := []Definition{
		def(t, "Greeting", "greeting", manifest.NewString("hey \"you\"")),
		def(t, "Number", "number", manifest.NewInteger(33)),
		def(t, "Ratio", "ratio", manifest.NewFloat(55.6)),
		def(t, "Enabled", "enabled", manifest.NewBoolean(true)),
		def(t, "Born", "born", manifest.NewTimestamp("1979-05-27T07:32:00Z")),
	}

	out, err := Render("example", defs)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := Header + `

package example

// Greeting resolves package.metadata.settings.ns.greeting from package.toml.
const Greeting = "hey \"you\""

// Number resolves package.metadata.settings.ns.number from package.toml.
const Number int64 = 33

// Ratio resolves package.metadata.settings.ns.ratio from package.toml.
const Ratio = 55.6

// Enabled resolves package.metadata.settings.ns.enabled from package.toml.
const Enabled = true

// Born resolves package.metadata.settings.ns.born from package.toml.
const Born = "1979-05-27T07:32:00Z"
`
	if string(out) != want {
		t.Errorf("Render() =\n%s\nwant\n%s", out, want)
	}
}

func TestRender_ArraysAndTables(t *testing.T) {
	ints := manifest.NewArray(
		manifest.NewArray(manifest.NewInteger(1), manifest.NewInteger(2)),
		manifest.NewArray(manifest.NewInteger(3)),
	)
	defs := []Definition{
		def(t, "Names", "names", manifest.NewArray(manifest.NewString("a"), manifest.NewString("b"))),
		def(t, "Mixed", "mixed", manifest.NewArray(manifest.NewString("hey"), manifest.NewInteger(1), manifest.NewBoolean(false))),
		def(t, "Grid", "grid", ints),
		def(t, "Empty", "empty", manifest.NewArray()),
		def(t, "Table", "table", manifest.NewTable(manifest.Table{
			"key1": manifest.NewString("hey"),
			"key2": manifest.NewInteger(3),
		})),
	}

	out, err := Render("example", defs)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	src := string(out)

	for _, want := range []string{
		`var Names = []string{"a", "b"}`,
		`var Mixed = []string{"hey", "1", "false"}`,
		`var Grid = [][]int64{{1, 2}, {3}}`,
		`var Empty = []string{}`,
		`const Table = "{ key1 = \"hey\", key2 = 3 }"`,
		"// The table value is rendered as TOML text.",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("Render() missing %q in:\n%s", want, src)
		}
	}
	if strings.Contains(src, "import") {
		t.Errorf("Render() imported a package without non-finite floats:\n%s", src)
	}
	assertCompiles(t, out)
}

func TestRender_NonFiniteFloats(t *testing.T) {
	defs := []Definition{
		def(t, "PosInf", "p", manifest.NewFloat(math.Inf(1))),
		def(t, "Floats", "f", manifest.NewArray(manifest.NewFloat(1.5), manifest.NewFloat(math.NaN()), manifest.NewFloat(math.Inf(-1)))),
		def(t, "Finite", "x", manifest.NewFloat(2)),
	}

	out, err := Render("example", defs)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	src := string(out)

	for _, want := range []string{
		`import "math"`,
		"var PosInf = math.Inf(1)",
		"var Floats = []float64{1.5, math.NaN(), math.Inf(-1)}",
		"const Finite = 2.0",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("Render() missing %q in:\n%s", want, src)
		}
	}
	assertCompiles(t, out)
}

func TestRender_MathNameConflict(t *testing.T) {
	defs := []Definition{def(t, "math", "m", manifest.NewFloat(math.Inf(1)))}
	if _, err := Render("example", defs); !errors.Is(err, ErrNameConflict) {
		t.Errorf("Render() error = %v, want ErrNameConflict", err)
	}

	// Without a non-finite float no import is needed and the name is free.
	defs = []Definition{def(t, "math", "m", manifest.NewFloat(1))}
	if _, err := Render("example", defs); err != nil {
		t.Errorf("Render() error = %v", err)
	}
}

func TestRender_NoDefinitions(t *testing.T) {
	out, err := Render("empty", nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if want := Header + "\n\npackage empty\n"; string(out) != want {
		t.Errorf("Render() = %q, want %q", out, want)
	}
}

func TestGoType(t *testing.T) {
	tests := []struct {
		value manifest.Value
		want  string
	}{
		{manifest.NewString("a"), "string"},
		{manifest.NewInteger(1), "int64"},
		{manifest.NewFloat(1), "float64"},
		{manifest.NewBoolean(true), "bool"},
		{manifest.NewArray(manifest.NewBoolean(true)), "[]bool"},
		{manifest.NewArray(manifest.NewArray(manifest.NewFloat(1))), "[][]float64"},
		{manifest.NewTable(nil), "string"},
	}
	for _, tt := range tests {
		if got := GoType(mustEncode(t, tt.value)); got != tt.want {
			t.Errorf("GoType(%s) = %s, want %s", tt.value, got, tt.want)
		}
	}
}

// assertCompiles parses and type-checks generated source.
func assertCompiles(t *testing.T, src []byte) *types.Package {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, DefaultFileName, src, parser.ParseComments)
	if err != nil {
		t.Fatalf("generated source does not parse: %v\n%s", err, src)
	}
	conf := types.Config{Importer: importer.ForCompiler(fset, "source", nil)}
	pkg, err := conf.Check(file.Name.Name, fset, []*ast.File{file}, nil)
	if err != nil {
		t.Fatalf("generated source does not type-check: %v\n%s", err, src)
	}
	return pkg
}

func TestRender_TypeChecksWithConstantTypes(t *testing.T) {
	defs := []Definition{
		def(t, "Name", "name", manifest.NewString("x")),
		def(t, "Names", "names", manifest.NewArray(manifest.NewString("a"))),
		def(t, "Count", "count", manifest.NewInteger(7)),
		def(t, "Ratio", "ratio", manifest.NewFloat(0.5)),
		def(t, "On", "on", manifest.NewBoolean(true)),
		def(t, "Grid", "grid", manifest.NewArray(manifest.NewArray(manifest.NewInteger(1)))),
	}
	out, err := Render("example", defs)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	pkg := assertCompiles(t, out)

	for _, d := range defs {
		obj := pkg.Scope().Lookup(d.Name)
		if obj == nil {
			t.Fatalf("%s not declared", d.Name)
		}
		got := types.Default(obj.Type()).String()
		if want := GoType(d.Literal); got != want {
			t.Errorf("%s has type %s, want %s", d.Name, got, want)
		}
	}
}

func TestRender_RejectsReservedNames(t *testing.T) {
	names := []struct {
		pkg, name string
	}{
		{"example", "string"},
		{"example", "int64"},
		{"example", "true"},
		{"example", "nil"},
		{"example", "init"},
		{"main", "main"},
	}
	for _, tt := range names {
		defs := []Definition{
			def(t, tt.name, "k", manifest.NewString("x")),
			def(t, "Names", "names", manifest.NewArray(manifest.NewString("a"))),
		}
		if _, err := Render(tt.pkg, defs); !errors.Is(err, ErrNameConflict) {
			t.Errorf("Render(%s, %s) error = %v, want ErrNameConflict", tt.pkg, tt.name, err)
		}
	}

	// main is an ordinary name outside package main.
	if _, err := Render("example", []Definition{def(t, "main", "k", manifest.NewString("x"))}); err != nil {
		t.Errorf("Render(example, main) error = %v", err)
	}
}

func TestRender_QuotesUnusualKeysInComments(t *testing.T) {
	d := def(t, "Odd", "line\nbreak", manifest.NewString("x"))
	d.Path.Namespace = "my ns"
	d.Source = "dir\nname/package.toml"

	out, err := Render("example", []Definition{d})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := `// Odd resolves package.metadata.settings."my ns"."line\nbreak" from "dir\nname/package.toml".`
	if !strings.Contains(string(out), want) {
		t.Errorf("Render() missing %q in:\n%s", want, out)
	}
	assertCompiles(t, out)
}

func TestExpr(t *testing.T) {
	tests := []struct {
		lit  literal.Literal
		want string
	}{
		{literal.Literal{Shape: literal.ShapeScalar, Type: literal.TypeString, Text: "a\"b"}, `"a\"b"`},
		{literal.Literal{Shape: literal.ShapeScalar, Type: literal.TypeInteger, Text: "-4"}, "-4"},
		{literal.Literal{Shape: literal.ShapeScalar, Type: literal.TypeFloat, Text: "-inf"}, "math.Inf(-1)"},
		{literal.Literal{Shape: literal.ShapeFormatted, Type: literal.TypeString, Text: "{ a = 1 }"}, `"{ a = 1 }"`},
		{
			literal.Literal{Shape: literal.ShapeArray, Type: literal.TypeBoolean, Elems: []literal.Literal{
				{Shape: literal.ShapeScalar, Type: literal.TypeBoolean, Text: "true"},
			}},
			"[]bool{true}",
		},
	}

	for _, tt := range tests {
		if got := Expr(tt.lit); got != tt.want {
			t.Errorf("Expr(%+v) = %s, want %s", tt.lit, got, tt.want)
		}
	}
}
