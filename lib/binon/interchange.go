// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binon

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/binon/lib/codec"
	"github.com/bureau-foundation/binon/lib/schema"
)

// ToJSON renders object as a JSON object: "map" first, then every
// effective field in wire order. Values are validated and coerced as
// Encode would, so ToJSON succeeds exactly when Encode does.
func (c *Codec) ToJSON(object Object, override string) ([]byte, error) {
	doc, err := c.document(object, override)
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// ToJSONC is ToJSON indented with tabs for reading and hand editing.
func (c *Codec) ToJSONC(object Object, override string) ([]byte, error) {
	doc, err := c.document(object, override)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "\t")
}

// FromJSON builds an object from a JSON document. The schema is named
// by override, or by the document's "map" key. Keys that are not fields
// of the schema are ignored; fields absent from the document are left
// unset.
func (c *Codec) FromJSON(data []byte, override string) (Object, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var tree map[string]any
	if err := decoder.Decode(&tree); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidObject, err)
	}
	return c.FromTree(tree, override)
}

// FromJSONC is FromJSON for input with comments and trailing commas.
func (c *Codec) FromJSONC(data []byte, override string) (Object, error) {
	return c.FromJSON(jsonc.ToJSON(data), override)
}

// ToCBOR renders object as a deterministic CBOR map with the same keys
// as ToJSON. 256-bit values that fit 64 bits are plain CBOR integers;
// larger ones are bignums.
func (c *Codec) ToCBOR(object Object, override string) ([]byte, error) {
	doc, err := c.document(object, override)
	if err != nil {
		return nil, err
	}
	return codec.Marshal(doc.tree())
}

// FromCBOR builds an object from a CBOR map produced by ToCBOR or any
// equivalent encoder.
func (c *Codec) FromCBOR(data []byte, override string) (Object, error) {
	var tree map[string]any
	if err := codec.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidObject, err)
	}
	return c.FromTree(tree, override)
}

// BufferToJSON decodes buffer from offset zero and renders it as JSON.
func (c *Codec) BufferToJSON(buffer []byte, override string) ([]byte, error) {
	_, object, err := c.Decode(buffer, 0, override)
	if err != nil {
		return nil, err
	}
	return c.ToJSON(object, override)
}

// BufferToJSONC decodes buffer from offset zero and renders it as
// indented JSON.
func (c *Codec) BufferToJSONC(buffer []byte, override string) ([]byte, error) {
	_, object, err := c.Decode(buffer, 0, override)
	if err != nil {
		return nil, err
	}
	return c.ToJSONC(object, override)
}

// JSONToBuffer parses a JSON document and encodes it.
func (c *Codec) JSONToBuffer(data []byte, override string) ([]byte, error) {
	object, err := c.FromJSON(data, override)
	if err != nil {
		return nil, err
	}
	return c.Encode(object, override)
}

// JSONCToBuffer parses a JSON-with-comments document and encodes it.
func (c *Codec) JSONCToBuffer(data []byte, override string) ([]byte, error) {
	return c.JSONToBuffer(jsonc.ToJSON(data), override)
}

// FromTree builds an object from a generic map such as encoding/json
// or CBOR produce: nested records are map[string]any and reference
// arrays are []any.
func (c *Codec) FromTree(tree map[string]any, override string) (Object, error) {
	if tree == nil {
		return nil, fmt.Errorf("%w: document is not an object", ErrInvalidObject)
	}
	mapName, _ := tree[mapKey].(string)
	s, err := c.resolve(override, mapName)
	if err != nil {
		return nil, err
	}
	return c.fromTree(tree, s, "", 0)
}

func (c *Codec) fromTree(tree map[string]any, s *schema.Schema, path string, depth int) (Object, error) {
	if depth > c.maxDepth {
		return nil, fieldError(s.Name, path, -1, fmt.Errorf("%w: depth %d exceeds %d", ErrNestingTooDeep, depth, c.maxDepth))
	}
	object, err := c.newObject(s)
	if err != nil {
		return nil, fieldError(s.Name, path, -1, err)
	}

	for _, field := range s.EffectiveFields() {
		raw, ok := tree[field.Name]
		if !ok {
			continue
		}
		fieldPath := joinPath(path, field.Name)

		switch field.Type.Kind {
		case schema.KindReference:
			nested, ok := raw.(map[string]any)
			if !ok {
				return nil, fieldError(s.Name, fieldPath, -1, fmt.Errorf("%w: nested record is %T", ErrInvalidObject, raw))
			}
			target, err := c.registry.Target(field)
			if err != nil {
				return nil, fieldError(s.Name, fieldPath, -1, err)
			}
			value, err := c.fromTree(nested, target, fieldPath, depth+1)
			if err != nil {
				return nil, err
			}
			object.Set(field.Name, value)

		case schema.KindReferenceArray:
			list, ok := raw.([]any)
			if !ok {
				return nil, fieldError(s.Name, fieldPath, -1, fmt.Errorf("%w: array is %T", ErrInvalidObject, raw))
			}
			target, err := c.registry.Target(field)
			if err != nil {
				return nil, fieldError(s.Name, fieldPath, -1, err)
			}
			elements := make([]Object, len(list))
			for index, item := range list {
				elementPath := indexPath(fieldPath, index)
				nested, ok := item.(map[string]any)
				if !ok {
					return nil, fieldError(s.Name, elementPath, -1, fmt.Errorf("%w: element is %T", ErrInvalidObject, item))
				}
				if elements[index], err = c.fromTree(nested, target, elementPath, depth+1); err != nil {
					return nil, err
				}
			}
			object.Set(field.Name, elements)

		default:
			value, err := Coerce(field.Type.Kind, raw)
			if err != nil {
				return nil, fieldError(s.Name, fieldPath, -1, err)
			}
			object.Set(field.Name, value)
		}
	}
	return object, nil
}

// document renders object as an ordered document, validating it the
// way Encode does.
func (c *Codec) document(object Object, override string) (document, error) {
	if isNilObject(object) {
		return nil, fmt.Errorf("%w: nil object", ErrInvalidObject)
	}
	s, err := c.resolve(override, object.MapName())
	if err != nil {
		return nil, err
	}
	return c.documentOf(object, s, "", 0)
}

func (c *Codec) documentOf(object Object, s *schema.Schema, path string, depth int) (document, error) {
	if depth > c.maxDepth {
		return nil, fieldError(s.Name, path, -1, fmt.Errorf("%w: depth %d exceeds %d", ErrNestingTooDeep, depth, c.maxDepth))
	}
	if isNilObject(object) {
		return nil, fieldError(s.Name, path, -1, fmt.Errorf("%w: nil nested record", ErrInvalidObject))
	}

	fields := s.EffectiveFields()
	doc := make(document, 0, len(fields)+1)
	doc = append(doc, member{key: mapKey, value: s.Name})
	for _, field := range fields {
		fieldPath := joinPath(path, field.Name)
		value, ok := object.Get(field.Name)
		if !ok {
			return nil, fieldError(s.Name, fieldPath, -1, fmt.Errorf("%w: missing value", ErrFieldCoercion))
		}

		switch field.Type.Kind {
		case schema.KindReference:
			nested, err := asObject(value)
			if err != nil {
				return nil, fieldError(s.Name, fieldPath, -1, err)
			}
			target, err := c.registry.Target(field)
			if err != nil {
				return nil, fieldError(s.Name, fieldPath, -1, err)
			}
			rendered, err := c.documentOf(nested, target, fieldPath, depth+1)
			if err != nil {
				return nil, err
			}
			doc = append(doc, member{key: field.Name, value: rendered})

		case schema.KindReferenceArray:
			elements, err := asObjects(value)
			if err != nil {
				return nil, fieldError(s.Name, fieldPath, -1, err)
			}
			target, err := c.registry.Target(field)
			if err != nil {
				return nil, fieldError(s.Name, fieldPath, -1, err)
			}
			rendered := make([]document, len(elements))
			for index, element := range elements {
				if rendered[index], err = c.documentOf(element, target, indexPath(fieldPath, index), depth+1); err != nil {
					return nil, err
				}
			}
			doc = append(doc, member{key: field.Name, value: rendered})

		default:
			typed, err := Coerce(field.Type.Kind, value)
			if err != nil {
				return nil, fieldError(s.Name, fieldPath, -1, err)
			}
			doc = append(doc, member{key: field.Name, value: typed})
		}
	}
	return doc, nil
}
