// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved, and suggestions.
// The catalog (Get, Values) holds Markdown help for each failure class of the
// generator, rendered for the terminal with glamour.
package issue
