// SPDX-License-Identifier: MPL-2.0

// Package invocation parses settings directives out of Go source files.
//
// A directive is a line comment of the form
//
//	//settings:def Name = settings("namespace", "key")
//
// where both arguments are non-empty Go string literals. Name becomes the identifier of
// the generated constant or variable.
package invocation
