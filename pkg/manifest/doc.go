// SPDX-License-Identifier: MPL-2.0

// Package manifest adapts parsed TOML manifests into a closed value model.
//
// A manifest is a per-component TOML document. Two logical paths are read from it:
//
//	[package]
//	name = "inner_c"
//
//	[package.metadata.settings.inner_c]
//	some_int = 37
//
// Parsing is delegated to go-toml. The decoded tree is converted into [Value]s, each of
// which carries exactly one of seven [Kind]s: String, Integer, Float, Boolean, Timestamp,
// Array, or Table. Values are immutable once built.
//
// Every value also has a natural textual rendering ([Value.TOML]) that matches how the
// value would be written in a manifest. Literal encoders use it when a value has to be
// degraded to a string.
package manifest
