// SPDX-License-Identifier: MPL-2.0

// Package cueutil wraps the CUE evaluator with the schema-unify-decode flow
// used for manifest and config validation. Manifest files are plain JSON,
// which is a syntactic subset of CUE, so the same flow validates both.
package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// DefaultMaxFileSize is the maximum accepted input size (1MB). Manifests and
// config files are small; anything larger is rejected before evaluation.
const DefaultMaxFileSize int64 = 1 * 1024 * 1024

type (
	// parseOptions holds configuration for CUE parsing.
	parseOptions struct {
		maxFileSize int64
		concrete    bool
		filename    string
	}

	// Option configures parsing behavior.
	Option func(*parseOptions)
)

// WithMaxFileSize overrides the maximum allowed input size.
func WithMaxFileSize(size int64) Option {
	return func(o *parseOptions) {
		o.maxFileSize = size
	}
}

// WithConcrete sets whether all values must be concrete after unification.
// Default is true. Set to false for config files with optional fields.
func WithConcrete(concrete bool) Option {
	return func(o *parseOptions) {
		o.concrete = concrete
	}
}

// WithFilename sets the filename reported in error messages.
func WithFilename(name string) Option {
	return func(o *parseOptions) {
		o.filename = name
	}
}

// DecodeResult contains the result of a successful decode.
type DecodeResult[T any] struct {
	// Value is the decoded Go struct.
	Value *T

	// Unified is the unified CUE value, kept for callers that need to
	// inspect fields beyond what the Go struct captures.
	Unified cue.Value
}

// Decode validates data against the named definition in schema and decodes
// the unified value into T:
//
//  1. Compile the embedded schema
//  2. Compile the input and unify with the schema definition
//  3. Validate and decode to a Go struct
//
// schemaPath is the root definition path (e.g. "#Manifest", "#Config").
func Decode[T any](schema, data []byte, schemaPath string, opts ...Option) (*DecodeResult[T], error) {
	options := parseOptions{
		maxFileSize: DefaultMaxFileSize,
		concrete:    true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	filename := options.filename
	if filename == "" {
		filename = "<input>"
	}

	if err := CheckFileSize(data, options.maxFileSize, filename); err != nil {
		return nil, err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(schema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(filename))
	if userValue.Err() != nil {
		return nil, FormatError(userValue.Err(), filename)
	}

	schemaRoot := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if schemaRoot.Err() != nil {
		return nil, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, schemaRoot.Err())
	}

	unified := schemaRoot.Unify(userValue)

	if options.concrete {
		if err := unified.Validate(cue.Concrete(true)); err != nil {
			return nil, FormatError(err, filename)
		}
	} else {
		if err := unified.Validate(); err != nil {
			return nil, FormatError(err, filename)
		}
	}

	var result T
	if err := unified.Decode(&result); err != nil {
		return nil, FormatError(err, filename)
	}

	return &DecodeResult[T]{
		Value:   &result,
		Unified: unified,
	}, nil
}

// DecodeString is a convenience wrapper that accepts the schema as a string,
// matching the usual //go:embed declaration type.
func DecodeString[T any](schema string, data []byte, schemaPath string, opts ...Option) (*DecodeResult[T], error) {
	return Decode[T]([]byte(schema), data, schemaPath, opts...)
}
