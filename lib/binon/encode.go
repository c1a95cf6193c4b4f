// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binon

import (
	"fmt"
	"math"

	"github.com/bureau-foundation/binon/lib/schema"
	"github.com/bureau-foundation/binon/lib/wire"
)

// Encode writes object against the schema named by override, or by
// the object's map name when override is empty. An override ending in
// "*" names the element schema of an array and is resolved without the
// marker.
//
// Inherited fields are written before the schema's own fields. The
// returned buffer is freshly allocated; object is never modified.
func (c *Codec) Encode(object Object, override string) ([]byte, error) {
	if isNilObject(object) {
		return nil, fmt.Errorf("%w: nil object", ErrInvalidObject)
	}
	s, err := c.resolve(override, object.MapName())
	if err != nil {
		return nil, err
	}

	encoder := &encoder{codec: c}
	if err := encoder.object(object, s, "", 0); err != nil {
		return nil, err
	}
	return wire.ConcatLength(encoder.chunks, encoder.size)
}

type encoder struct {
	codec  *Codec
	chunks [][]byte
	size   int
}

func (e *encoder) emit(chunk []byte) {
	e.chunks = append(e.chunks, chunk)
	e.size += len(chunk)
}

func (e *encoder) object(object Object, s *schema.Schema, path string, depth int) error {
	if depth > e.codec.maxDepth {
		return fieldError(s.Name, path, e.size, fmt.Errorf("%w: depth %d exceeds %d", ErrNestingTooDeep, depth, e.codec.maxDepth))
	}
	if isNilObject(object) {
		return fieldError(s.Name, path, e.size, fmt.Errorf("%w: nil nested record", ErrInvalidObject))
	}

	for _, field := range s.EffectiveFields() {
		fieldPath := joinPath(path, field.Name)
		start := e.size
		value, ok := object.Get(field.Name)
		if !ok {
			return fieldError(s.Name, fieldPath, start, fmt.Errorf("%w: missing value", ErrFieldCoercion))
		}

		switch field.Type.Kind {
		case schema.KindReference:
			nested, err := asObject(value)
			if err != nil {
				return fieldError(s.Name, fieldPath, start, err)
			}
			target, err := e.codec.registry.Target(field)
			if err != nil {
				return fieldError(s.Name, fieldPath, start, err)
			}
			if err := e.object(nested, target, fieldPath, depth+1); err != nil {
				return err
			}

		case schema.KindReferenceArray:
			elements, err := asObjects(value)
			if err != nil {
				return fieldError(s.Name, fieldPath, start, err)
			}
			if len(elements) > math.MaxUint16 {
				return fieldError(s.Name, fieldPath, start,
					fmt.Errorf("%w: %d elements exceed the uint16 count", ErrFieldCoercion, len(elements)))
			}
			target, err := e.codec.registry.Target(field)
			if err != nil {
				return fieldError(s.Name, fieldPath, start, err)
			}
			e.emit(wire.PutUint16(uint16(len(elements))))
			for index, element := range elements {
				if err := e.object(element, target, indexPath(fieldPath, index), depth+1); err != nil {
					return err
				}
			}

		default:
			typed, err := Coerce(field.Type.Kind, value)
			if err != nil {
				return fieldError(s.Name, fieldPath, start, err)
			}
			e.emit(integerBytes(field.Type.Kind, typed))
		}
	}
	return nil
}
