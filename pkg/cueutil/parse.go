// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// DefaultMaxFileSize caps the input accepted by ParseAndDecode (1 MiB).
const DefaultMaxFileSize int64 = 1 << 20

type (
	// Option configures ParseAndDecode.
	Option func(*options)

	options struct {
		maxFileSize int64
		concrete    bool
		filename    string
	}

	// ParseResult holds the decoded value and the unified CUE value it came from.
	ParseResult[T any] struct {
		Value   *T
		Unified cue.Value
	}
)

// WithMaxFileSize overrides DefaultMaxFileSize.
func WithMaxFileSize(size int64) Option {
	return func(o *options) { o.maxFileSize = size }
}

// WithConcrete controls whether every field must have a concrete value after
// unification. The default is true; configuration files with optional fields
// usually want false.
func WithConcrete(concrete bool) Option {
	return func(o *options) { o.concrete = concrete }
}

// WithFilename names the input in error messages.
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

// ParseAndDecode compiles schema, unifies the definition at schemaPath with data,
// validates the result and decodes it into a T.
func ParseAndDecode[T any](schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	o := options{maxFileSize: DefaultMaxFileSize, concrete: true, filename: "<input>"}
	for _, opt := range opts {
		opt(&o)
	}

	if err := CheckFileSize(data, o.maxFileSize, o.filename); err != nil {
		return nil, err
	}

	cctx := cuecontext.New()

	schemaValue := cctx.CompileBytes(schema)
	if err := schemaValue.Err(); err != nil {
		return nil, fmt.Errorf("internal error: compiling schema: %w", err)
	}
	def := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("internal error: schema definition %s: %w", schemaPath, err)
	}

	userValue := cctx.CompileBytes(data, cue.Filename(o.filename))
	if err := userValue.Err(); err != nil {
		return nil, FormatError(err, o.filename)
	}

	unified := def.Unify(userValue)
	var validateOpts []cue.Option
	if o.concrete {
		validateOpts = append(validateOpts, cue.Concrete(true))
	}
	if err := unified.Validate(validateOpts...); err != nil {
		return nil, FormatError(err, o.filename)
	}

	var out T
	if err := unified.Decode(&out); err != nil {
		return nil, FormatError(err, o.filename)
	}
	return &ParseResult[T]{Value: &out, Unified: unified}, nil
}
