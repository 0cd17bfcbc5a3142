// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

type (
	// Value is one node of a parsed manifest. Exactly one payload field is meaningful,
	// selected by kind. The zero Value has no kind and is never produced by Parse.
	Value struct {
		kind Kind
		text string // KindString and KindTimestamp
		i    int64
		f    float64
		b    bool
		arr  []Value
		tbl  Table
	}

	// Table maps keys to values. Key order carries no meaning; renderings sort keys.
	// Tables returned from this package must not be mutated.
	Table map[string]Value
)

// NewString returns a string value.
func NewString(s string) Value { return Value{kind: KindString, text: s} }

// NewInteger returns an integer value.
func NewInteger(i int64) Value { return Value{kind: KindInteger, i: i} }

// NewFloat returns a float value.
func NewFloat(f float64) Value { return Value{kind: KindFloat, f: f} }

// NewBoolean returns a boolean value.
func NewBoolean(b bool) Value { return Value{kind: KindBoolean, b: b} }

// NewTimestamp returns a timestamp value from its canonical textual form,
// e.g. "1979-05-27T07:32:00Z" or "1979-05-27".
func NewTimestamp(canonical string) Value { return Value{kind: KindTimestamp, text: canonical} }

// NewArray returns an array value holding a copy of elems.
func NewArray(elems ...Value) Value {
	return Value{kind: KindArray, arr: slices.Clone(elems)}
}

// NewTable returns a table value holding a copy of t.
func NewTable(t Table) Value {
	if t == nil {
		t = Table{}
	}
	return Value{kind: KindTable, tbl: maps.Clone(t)}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// Str returns the payload of a string value.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.text, true
}

// Int returns the payload of an integer value.
func (v Value) Int() (int64, bool) {
	if v.kind != KindInteger {
		return 0, false
	}
	return v.i, true
}

// Float returns the payload of a float value.
func (v Value) Float() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

// Bool returns the payload of a boolean value.
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBoolean {
		return false, false
	}
	return v.b, true
}

// Timestamp returns the canonical text of a timestamp value.
func (v Value) Timestamp() (string, bool) {
	if v.kind != KindTimestamp {
		return "", false
	}
	return v.text, true
}

// Array returns a copy of the elements of an array value.
func (v Value) Array() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return slices.Clone(v.arr), true
}

// Table returns the entries of a table value.
func (v Value) Table() (Table, bool) {
	if v.kind != KindTable {
		return nil, false
	}
	return v.tbl, true
}

// Get returns the value stored under key.
func (t Table) Get(key string) (Value, bool) {
	v, ok := t[key]
	return v, ok
}

// Keys returns the table's keys in sorted order.
func (t Table) Keys() []string {
	return slices.Sorted(maps.Keys(t))
}

// Text returns the value as plain text: string content is returned unquoted,
// every other kind uses its TOML rendering.
func (v Value) Text() string {
	if v.kind == KindString {
		return v.text
	}
	return v.TOML()
}

// TOML renders the value the way it would be written on the right-hand side of a
// manifest assignment. Tables render inline with sorted keys.
func (v Value) TOML() string {
	var sb strings.Builder
	v.writeTOML(&sb)
	return sb.String()
}

// String implements fmt.Stringer using the TOML rendering.
func (v Value) String() string { return v.TOML() }

func (v Value) writeTOML(sb *strings.Builder) {
	switch v.kind {
	case KindString:
		writeBasicString(sb, v.text)
	case KindInteger:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		sb.WriteString(FormatFloat(v.f))
	case KindBoolean:
		sb.WriteString(strconv.FormatBool(v.b))
	case KindTimestamp:
		sb.WriteString(v.text)
	case KindArray:
		sb.WriteByte('[')
		for i, elem := range v.arr {
			if i > 0 {
				sb.WriteString(", ")
			}
			elem.writeTOML(sb)
		}
		sb.WriteByte(']')
	case KindTable:
		if len(v.tbl) == 0 {
			sb.WriteString("{}")
			return
		}
		sb.WriteString("{ ")
		for i, key := range v.tbl.Keys() {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeKey(sb, key)
			sb.WriteString(" = ")
			v.tbl[key].writeTOML(sb)
		}
		sb.WriteString(" }")
	}
}

// FormatFloat renders f in its shortest exact form, always recognizable as a float:
// integral values gain a ".0" suffix and non-finite values use TOML's inf/nan spelling.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func writeKey(sb *strings.Builder, key string) {
	if isBareKey(key) {
		sb.WriteString(key)
		return
	}
	writeBasicString(sb, key)
}

func isBareKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

// writeBasicString writes s as a double-quoted TOML basic string.
func writeBasicString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\b':
			sb.WriteString(`\b`)
		case '\t':
			sb.WriteString(`\t`)
		case '\n':
			sb.WriteString(`\n`)
		case '\f':
			sb.WriteString(`\f`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				sb.WriteString(`\u`)
				hex := strconv.FormatInt(int64(r), 16)
				sb.WriteString(strings.Repeat("0", 4-len(hex)))
				sb.WriteString(strings.ToUpper(hex))
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
}
