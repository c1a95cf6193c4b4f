// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binon

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/binon/lib/schema"
)

var (
	// ErrFieldCoercion means a field value is missing or cannot be
	// represented in the field's declared type.
	ErrFieldCoercion = errors.New("field value cannot be coerced")

	// ErrUnknownTypeCode means a buffer's type code names no schema.
	// It wraps schema.ErrNotFound.
	ErrUnknownTypeCode = fmt.Errorf("unknown type code: %w", schema.ErrNotFound)

	// ErrNestingTooDeep means references nest deeper than
	// Options.MaxDepth.
	ErrNestingTooDeep = errors.New("nesting too deep")

	// ErrInvalidObject means a nil object, or a value of the wrong
	// shape where a nested record or array was expected.
	ErrInvalidObject = errors.New("invalid object")
)

// FieldError reports which field of which record an encode, decode, or
// conversion failed on.
type FieldError struct {
	// Schema is the schema of the record holding the field.
	Schema string

	// Path locates the field from the top-level record, e.g.
	// "legs[2].meters".
	Path string

	// Offset is the byte offset of the field in the buffer being
	// decoded or produced. It is -1 for conversions that do not touch
	// a buffer.
	Offset int

	Err error
}

func (e *FieldError) Error() string {
	location := e.Schema
	if e.Path != "" {
		location += "." + e.Path
	}
	if e.Offset < 0 {
		return fmt.Sprintf("%s: %v", location, e.Err)
	}
	return fmt.Sprintf("%s at offset %d: %v", location, e.Offset, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// fieldError wraps err unless it already carries field context from a
// nested record.
func fieldError(schemaName, path string, offset int, err error) error {
	var nested *FieldError
	if errors.As(err, &nested) {
		return err
	}
	return &FieldError{Schema: schemaName, Path: path, Offset: offset, Err: err}
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func indexPath(parent string, index int) string {
	return fmt.Sprintf("%s[%d]", parent, index)
}
