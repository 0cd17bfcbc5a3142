// SPDX-License-Identifier: MPL-2.0

package literal

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/pkgsettings/pkgsettings/pkg/manifest"
)

// ErrUnsupportedValue is the sentinel wrapped by UnsupportedValueError.
var ErrUnsupportedValue = errors.New("unsupported value")

type (
	// Encoder converts manifest values into literals.
	// The zero value degrades tables and heterogeneous arrays to strings.
	Encoder struct {
		// Strict rejects values that would otherwise be degraded to strings.
		Strict bool
	}

	// UnsupportedValueError reports a value a strict encoder cannot represent.
	// It wraps ErrUnsupportedValue for errors.Is() compatibility.
	UnsupportedValueError struct {
		// Kind is the kind of the offending value.
		Kind manifest.Kind
		// Rendering is the value's TOML text.
		Rendering string
		// Reason says why the value has no typed literal form.
		Reason string
	}
)

// Error implements the error interface.
func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("unsupported %s value %s: %s", e.Kind, e.Rendering, e.Reason)
}

// Unwrap returns ErrUnsupportedValue.
func (e *UnsupportedValueError) Unwrap() error { return ErrUnsupportedValue }

// Encode encodes v with the default (degrading) policy. It never fails for values
// built by the manifest package.
func Encode(v manifest.Value) (Literal, error) {
	return Encoder{}.Encode(v)
}

// Encode converts v into a literal.
func (e Encoder) Encode(v manifest.Value) (Literal, error) {
	switch v.Kind() {
	case manifest.KindString:
		s, _ := v.Str()
		return scalar(TypeString, v.Kind(), s), nil
	case manifest.KindInteger:
		i, _ := v.Int()
		return scalar(TypeInteger, v.Kind(), strconv.FormatInt(i, 10)), nil
	case manifest.KindFloat:
		f, _ := v.Float()
		return scalar(TypeFloat, v.Kind(), manifest.FormatFloat(f)), nil
	case manifest.KindBoolean:
		b, _ := v.Bool()
		return scalar(TypeBoolean, v.Kind(), strconv.FormatBool(b)), nil
	case manifest.KindTimestamp:
		ts, _ := v.Timestamp()
		return scalar(TypeString, v.Kind(), ts), nil
	case manifest.KindArray:
		return e.encodeArray(v)
	case manifest.KindTable:
		if e.Strict {
			return Literal{}, &UnsupportedValueError{
				Kind:      v.Kind(),
				Rendering: v.TOML(),
				Reason:    "tables have no typed literal form",
			}
		}
		return Literal{Shape: ShapeFormatted, Type: TypeString, Source: v.Kind(), Text: v.TOML()}, nil
	default:
		return Literal{}, &UnsupportedValueError{Kind: v.Kind(), Rendering: "<invalid>", Reason: "value has no kind"}
	}
}

func (e Encoder) encodeArray(v manifest.Value) (Literal, error) {
	elems, _ := v.Array()
	if len(elems) == 0 {
		return Literal{Shape: ShapeArray, Type: TypeString, Source: manifest.KindArray}, nil
	}

	reason := "elements mix kinds"
	if uniformKind(elems) {
		encoded := make([]Literal, len(elems))
		for i, elem := range elems {
			lit, err := e.Encode(elem)
			if err != nil {
				return Literal{}, err
			}
			encoded[i] = lit
		}
		if uniformSignature(encoded) {
			return Literal{
				Shape:  ShapeArray,
				Type:   encoded[0].Type,
				Source: manifest.KindArray,
				Elems:  encoded,
			}, nil
		}
		reason = "nested arrays disagree in element type"
	}

	if e.Strict {
		return Literal{}, &UnsupportedValueError{Kind: manifest.KindArray, Rendering: v.TOML(), Reason: reason}
	}
	return degradeArray(elems), nil
}

// degradeArray renders every element as text: strings pass through, everything
// else uses its TOML rendering.
func degradeArray(elems []manifest.Value) Literal {
	out := make([]Literal, len(elems))
	for i, elem := range elems {
		out[i] = scalar(TypeString, elem.Kind(), elem.Text())
	}
	return Literal{Shape: ShapeArray, Type: TypeString, Source: manifest.KindArray, Elems: out}
}

func uniformKind(elems []manifest.Value) bool {
	first := manifest.Classify(elems[0])
	for _, elem := range elems[1:] {
		if manifest.Classify(elem) != first {
			return false
		}
	}
	return true
}

func uniformSignature(lits []Literal) bool {
	first := lits[0].Signature()
	for _, lit := range lits[1:] {
		if lit.Signature() != first {
			return false
		}
	}
	return true
}

func scalar(typ Type, source manifest.Kind, text string) Literal {
	return Literal{Shape: ShapeScalar, Type: typ, Source: source, Text: text}
}
