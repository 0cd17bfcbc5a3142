// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against an embedded schema and decodes
// them into Go values.
//
//	//go:embed config_schema.cue
//	var schema []byte
//
//	res, err := cueutil.ParseAndDecode[map[string]any](schema, data, "#Config",
//		cueutil.WithConcrete(false),
//		cueutil.WithFilename("pkgsettings.cue"),
//	)
//
// Errors carry the file name and the field path of the offending value, e.g.
// "pkgsettings.cue: ui.color_scheme: 3 errors in empty disjunction".
package cueutil
