// SPDX-License-Identifier: MPL-2.0

package manifest

// Value kinds. The set is closed: every Value carries exactly one of them.
const (
	// KindString is a TOML string.
	KindString Kind = iota + 1
	// KindInteger is a 64-bit signed TOML integer.
	KindInteger
	// KindFloat is a 64-bit TOML float, including inf and nan.
	KindFloat
	// KindBoolean is a TOML boolean.
	KindBoolean
	// KindTimestamp is any TOML date/time flavor, kept as its canonical text.
	KindTimestamp
	// KindArray is an ordered TOML array.
	KindArray
	// KindTable is a TOML table or inline table.
	KindTable
)

// Kind classifies a Value.
type Kind int

// String returns the lower-case kind name used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindTimestamp:
		return "timestamp"
	case KindArray:
		return "array"
	case KindTable:
		return "table"
	default:
		return "unknown"
	}
}

// Classify returns the kind of v. It is total over all values built by this package.
func Classify(v Value) Kind {
	return v.kind
}
