// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binon

import (
	"fmt"
	"math/big"

	"github.com/bureau-foundation/binon/lib/bigint"
	"github.com/bureau-foundation/binon/lib/schema"
	"github.com/bureau-foundation/binon/lib/wire"
)

// Decode reads one record from buffer starting at offset and returns
// the offset just past it.
//
// With an empty override the schema is chosen by the big-endian type
// code at offset, which is peeked and not consumed. Otherwise the
// override names the schema (an array marker is ignored).
func (c *Codec) Decode(buffer []byte, offset int, override string) (int, Object, error) {
	s, err := c.decodeSchema(buffer, offset, override)
	if err != nil {
		return offset, nil, err
	}
	reader, err := wire.NewReader(buffer, offset)
	if err != nil {
		return offset, nil, err
	}

	decoder := &decoder{codec: c, reader: reader}
	object, err := decoder.object(s, "", 0)
	if err != nil {
		return offset, nil, err
	}
	return reader.Offset(), object, nil
}

// DecodeInto is Decode onto a caller-supplied object. Fields are set on
// target, along with its map name and type code, only once the whole
// record has decoded; on error target is untouched.
func (c *Codec) DecodeInto(buffer []byte, offset int, target Object, override string) (int, error) {
	if isNilObject(target) {
		return offset, fmt.Errorf("%w: nil target", ErrInvalidObject)
	}
	s, err := c.decodeSchema(buffer, offset, override)
	if err != nil {
		return offset, err
	}
	reader, err := wire.NewReader(buffer, offset)
	if err != nil {
		return offset, err
	}

	var staged []member
	decoder := &decoder{codec: c, reader: reader}
	err = decoder.fields(s, "", 0, func(name string, value any) {
		staged = append(staged, member{key: name, value: value})
	})
	if err != nil {
		return offset, err
	}

	target.SetMapName(s.Name)
	target.SetTypeCode(s.TypeCode)
	for _, field := range staged {
		target.Set(field.key, field.value)
	}
	return reader.Offset(), nil
}

// Annotation describes one value read while decoding, for dumps.
type Annotation struct {
	// Offset and Width locate the value's bytes. Width is zero for the
	// start of a nested record.
	Offset int
	Width  int

	// Path locates the field from the top-level record.
	Path string

	// Type is the field type in canonical spelling, or "count" for a
	// reference array's element count.
	Type string

	// Value is the decoded value, or the nested schema name.
	Value string
}

// Inspect decodes like [Codec.Decode] and returns an annotation per
// value read, in buffer order.
func (c *Codec) Inspect(buffer []byte, offset int, override string) ([]Annotation, int, error) {
	s, err := c.decodeSchema(buffer, offset, override)
	if err != nil {
		return nil, offset, err
	}
	reader, err := wire.NewReader(buffer, offset)
	if err != nil {
		return nil, offset, err
	}

	var annotations []Annotation
	decoder := &decoder{
		codec:  c,
		reader: reader,
		annotate: func(annotation Annotation) {
			annotations = append(annotations, annotation)
		},
	}
	if _, err := decoder.object(s, "", 0); err != nil {
		return annotations, offset, err
	}
	return annotations, reader.Offset(), nil
}

// TypeFromBuffer returns the type code at the start of buffer.
func TypeFromBuffer(buffer []byte) (uint16, error) {
	return wire.PeekUint16(buffer, 0)
}

// MapFromBuffer returns the name of the schema whose type code starts
// buffer.
func (c *Codec) MapFromBuffer(buffer []byte) (string, error) {
	s, err := c.decodeSchema(buffer, 0, "")
	if err != nil {
		return "", err
	}
	return s.Name, nil
}

func (c *Codec) decodeSchema(buffer []byte, offset int, override string) (*schema.Schema, error) {
	if override != "" {
		return c.resolve(override, "")
	}
	code, err := wire.PeekUint16(buffer, offset)
	if err != nil {
		return nil, err
	}
	s, err := c.registry.ByTypeCode(code)
	if err != nil {
		return nil, fmt.Errorf("%w %s at offset %d", ErrUnknownTypeCode, schema.TypeCode(code), offset)
	}
	return s, nil
}

type decoder struct {
	codec    *Codec
	reader   *wire.Reader
	annotate func(Annotation)
}

func (d *decoder) object(s *schema.Schema, path string, depth int) (Object, error) {
	if depth > d.codec.maxDepth {
		return nil, fieldError(s.Name, path, d.reader.Offset(),
			fmt.Errorf("%w: depth %d exceeds %d", ErrNestingTooDeep, depth, d.codec.maxDepth))
	}
	object, err := d.codec.newObject(s)
	if err != nil {
		return nil, fieldError(s.Name, path, d.reader.Offset(), err)
	}
	if err := d.fields(s, path, depth, object.Set); err != nil {
		return nil, err
	}
	return object, nil
}

// fields decodes the effective fields of s, passing each value to set
// in wire order.
func (d *decoder) fields(s *schema.Schema, path string, depth int, set func(name string, value any)) error {
	for _, field := range s.EffectiveFields() {
		fieldPath := joinPath(path, field.Name)
		start := d.reader.Offset()

		switch field.Type.Kind {
		case schema.KindReference:
			target, err := d.codec.registry.Target(field)
			if err != nil {
				return fieldError(s.Name, fieldPath, start, err)
			}
			d.note(start, 0, fieldPath, field.Type.String(), target.Name)
			nested, err := d.object(target, fieldPath, depth+1)
			if err != nil {
				return err
			}
			set(field.Name, nested)

		case schema.KindReferenceArray:
			target, err := d.codec.registry.Target(field)
			if err != nil {
				return fieldError(s.Name, fieldPath, start, err)
			}
			count, err := d.reader.Uint16()
			if err != nil {
				return fieldError(s.Name, fieldPath, start, err)
			}
			d.note(start, 2, fieldPath, "count", fmt.Sprint(count))
			elements := make([]Object, 0, count)
			for index := 0; index < int(count); index++ {
				elementPath := indexPath(fieldPath, index)
				d.note(d.reader.Offset(), 0, elementPath, "<"+target.Name+">", target.Name)
				element, err := d.object(target, elementPath, depth+1)
				if err != nil {
					return err
				}
				elements = append(elements, element)
			}
			set(field.Name, elements)

		default:
			value, err := d.integer(field.Type.Kind)
			if err != nil {
				return fieldError(s.Name, fieldPath, start, err)
			}
			d.note(start, field.Type.Kind.Width(), fieldPath, field.Type.String(), fmt.Sprint(value))
			set(field.Name, value)
		}
	}
	return nil
}

func (d *decoder) integer(kind schema.Kind) (any, error) {
	switch kind {
	case schema.KindUint8:
		return d.reader.Uint8()
	case schema.KindUint16:
		return d.reader.Uint16()
	case schema.KindUint32:
		return d.reader.Uint32()
	case schema.KindInt8:
		return d.reader.Int8()
	case schema.KindInt16:
		return d.reader.Int16()
	case schema.KindInt32:
		return d.reader.Int32()
	case schema.KindUint256, schema.KindInt256:
		window, err := d.reader.Next(bigint.Size)
		if err != nil {
			return (*big.Int)(nil), err
		}
		return bigint.Decode256(window, kind.Signed())
	default:
		return nil, fmt.Errorf("field kind %s is not an integer", kind)
	}
}

func (d *decoder) note(offset, width int, path, typeName, value string) {
	if d.annotate != nil {
		d.annotate(Annotation{Offset: offset, Width: width, Path: path, Type: typeName, Value: value})
	}
}
