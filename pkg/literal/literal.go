// SPDX-License-Identifier: MPL-2.0

package literal

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkgsettings/pkgsettings/pkg/manifest"
)

const (
	// ShapeScalar is a single string, integer, float, or boolean token.
	ShapeScalar Shape = iota + 1
	// ShapeArray is an array literal whose elements share one signature.
	ShapeArray
	// ShapeFormatted is a string token produced by rendering a table.
	ShapeFormatted
)

const (
	// TypeString is a string token.
	TypeString Type = iota + 1
	// TypeInteger is a 64-bit signed integer token.
	TypeInteger
	// TypeFloat is a 64-bit float token.
	TypeFloat
	// TypeBoolean is a boolean token.
	TypeBoolean
)

type (
	// Shape describes the outer form of an encoded literal.
	Shape int

	// Type is the scalar type of a scalar or formatted literal, or the leaf element
	// type of an array literal.
	Type int

	// Literal is the description of a value handed to a code generator.
	Literal struct {
		// Shape is the outer form.
		Shape Shape
		// Type is the scalar type (leaf type for arrays).
		Type Type
		// Source is the manifest kind the literal was encoded from.
		Source manifest.Kind
		// Text is the token content for scalars and formatted strings. String content is
		// unquoted; numbers use their decimal text; floats use inf, -inf, or nan when not
		// finite.
		Text string
		// Elems holds the element literals of an array.
		Elems []Literal
	}
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapeArray:
		return "array"
	case ShapeFormatted:
		return "formatted"
	default:
		return "unknown"
	}
}

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// Signature names the literal's full type independently of any target language,
// e.g. "string", "[]integer", "[][]boolean". Two array elements can share an array
// literal only when their signatures are equal.
func (l Literal) Signature() string {
	if l.Shape != ShapeArray {
		return l.Type.String()
	}
	if len(l.Elems) == 0 {
		return "[]" + l.Type.String()
	}
	return "[]" + l.Elems[0].Signature()
}

// Eval returns the Go value the literal denotes: string, int64, float64, bool, or
// []any for arrays. Malformed numeric text evaluates to the zero value.
func (l Literal) Eval() any {
	if l.Shape == ShapeArray {
		out := make([]any, len(l.Elems))
		for i, elem := range l.Elems {
			out[i] = elem.Eval()
		}
		return out
	}

	switch l.Type {
	case TypeInteger:
		i, _ := strconv.ParseInt(l.Text, 10, 64)
		return i
	case TypeFloat:
		return parseFloat(l.Text)
	case TypeBoolean:
		return l.Text == "true"
	default:
		return l.Text
	}
}

// IsFinite reports whether a float literal denotes a finite number. It is true for
// every other type.
func (l Literal) IsFinite() bool {
	if l.Type != TypeFloat || l.Shape == ShapeArray {
		return true
	}
	f := parseFloat(l.Text)
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

func parseFloat(text string) float64 {
	switch strings.TrimPrefix(text, "+") {
	case "inf":
		return math.Inf(1)
	case "-inf":
		return math.Inf(-1)
	case "nan", "-nan":
		return math.NaN()
	}
	f, _ := strconv.ParseFloat(text, 64)
	return f
}
