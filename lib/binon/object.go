// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Object is a record the codec can read fields from and write fields
// to. Implementations are supplied per schema name through a [Factory];
// [Record] is the general-purpose one.
type Object interface {
	// MapName returns the name of the schema the object follows.
	MapName() string
	SetMapName(name string)

	// TypeCode returns the type code of the object's most-derived
	// schema.
	TypeCode() uint16
	SetTypeCode(code uint16)

	// Get returns the value of a field and whether it is set.
	Get(field string) (any, bool)

	// Set stores the value of a field.
	Set(field string, value any)
}

// Factory constructs an empty object for one schema. The codec sets
// the map name and type code after construction.
type Factory func() Object

// Record is an [Object] holding fields in insertion order. The zero
// value is an empty record with no schema.
type Record struct {
	mapName  string
	typeCode uint16
	hasCode  bool
	keys     []string
	values   map[string]any
}

// NewRecord returns an empty record for the named schema.
func NewRecord(mapName string) *Record {
	return &Record{mapName: mapName}
}

// NewRecordFactory is a [Factory] producing *Record values.
func NewRecordFactory() Object { return &Record{} }

func (r *Record) MapName() string { return r.mapName }

func (r *Record) SetMapName(name string) { r.mapName = name }

func (r *Record) TypeCode() uint16 { return r.typeCode }

func (r *Record) SetTypeCode(code uint16) {
	r.typeCode = code
	r.hasCode = true
}

// Get returns a stored field. A record whose type code was set answers
// "type" with that code when no explicit "type" value is stored, so
// records built by [Codec.NewObject] encode their own header.
func (r *Record) Get(field string) (any, bool) {
	if value, ok := r.values[field]; ok {
		return value, true
	}
	if field == "type" && r.hasCode {
		return r.typeCode, true
	}
	return nil, false
}

func (r *Record) Set(field string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, exists := r.values[field]; !exists {
		r.keys = append(r.keys, field)
	}
	r.values[field] = value
}

// Keys returns the stored field names in insertion order.
func (r *Record) Keys() []string { return slices.Clone(r.keys) }

// Len returns the number of stored fields.
func (r *Record) Len() int { return len(r.keys) }

// MarshalJSON writes the record as an object with "map" first and the
// stored fields after it in insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	members := make(document, 0, len(r.keys)+1)
	if r.mapName != "" {
		members = append(members, member{key: mapKey, value: r.mapName})
	}
	for _, key := range r.keys {
		members = append(members, member{key: key, value: r.values[key]})
	}
	return members.MarshalJSON()
}

// String renders the record as compact JSON for logs and test output.
func (r *Record) String() string {
	data, err := r.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Record(%s: %v)", r.mapName, err)
	}
	return string(data)
}

// mapKey names the schema of a record in JSON and CBOR documents.
const mapKey = "map"

type member struct {
	key   string
	value any
}

// document is a JSON object whose keys keep their order.
type document []member

func (d document) MarshalJSON() ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteByte('{')
	for index, member := range d {
		if index > 0 {
			buffer.WriteByte(',')
		}
		key, err := json.Marshal(member.key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(member.value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", member.key, err)
		}
		buffer.Write(key)
		buffer.WriteByte(':')
		buffer.Write(value)
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

// tree converts the document and everything nested in it to plain maps
// and slices.
func (d document) tree() map[string]any {
	result := make(map[string]any, len(d))
	for _, member := range d {
		switch value := member.value.(type) {
		case document:
			result[member.key] = value.tree()
		case []document:
			elements := make([]any, len(value))
			for index, element := range value {
				elements[index] = element.tree()
			}
			result[member.key] = elements
		default:
			result[member.key] = value
		}
	}
	return result
}
