// SPDX-License-Identifier: MPL-2.0

// Package settings wires the locator, the resolver, the literal encoder and the code
// generator together.
//
// Evaluate answers a single lookup; Generate processes every directive of a Go
// package and writes the generated file only when all of them resolve.
package settings
