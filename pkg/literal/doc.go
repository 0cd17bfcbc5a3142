// SPDX-License-Identifier: MPL-2.0

// Package literal converts resolved manifest values into self-describing literal
// descriptions that a code generator can splice verbatim into generated source.
//
// The coercion policy is deterministic:
//   - scalars keep their kind; timestamps become strings holding their canonical text
//   - arrays whose elements share one kind (and one encoded shape) stay typed
//   - arrays mixing kinds degrade silently to arrays of strings
//   - tables degrade to a single formatted string such as `{ key1 = "hey", key2 = 3 }`
//
// An [Encoder] with Strict set refuses both degradations and reports
// [ErrUnsupportedValue] instead.
package literal
