// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"
	"strings"
)

// Kind classifies a field type.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUint8
	KindUint16
	KindUint32
	KindUint256
	KindInt8
	KindInt16
	KindInt32
	KindInt256
	// KindReference is one nested record of another schema.
	KindReference
	// KindReferenceArray is a count-prefixed sequence of nested records.
	KindReferenceArray
)

var kindNames = map[Kind]string{
	KindUint8:   "uint8",
	KindUint16:  "uint16",
	KindUint32:  "uint32",
	KindUint256: "uint256",
	KindInt8:    "int8",
	KindInt16:   "int16",
	KindInt32:   "int32",
	KindInt256:  "int256",
}

// String returns the definition-file spelling for integer kinds and a
// descriptive name otherwise.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	switch k {
	case KindReference:
		return "reference"
	case KindReferenceArray:
		return "reference-array"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(k))
	}
}

// IsInteger reports whether k is one of the fixed-width integer kinds.
func (k Kind) IsInteger() bool {
	return k >= KindUint8 && k <= KindInt256
}

// IsReference reports whether k refers to another schema.
func (k Kind) IsReference() bool {
	return k == KindReference || k == KindReferenceArray
}

// Signed reports whether k is a signed integer kind.
func (k Kind) Signed() bool {
	return k >= KindInt8 && k <= KindInt256
}

// Width returns the encoded size in bytes of an integer kind, or 0 for
// references, whose size depends on the nested data.
func (k Kind) Width() int {
	switch k {
	case KindUint8, KindInt8:
		return 1
	case KindUint16, KindInt16:
		return 2
	case KindUint32, KindInt32:
		return 4
	case KindUint256, KindInt256:
		return 32
	default:
		return 0
	}
}

// TypeTag is a parsed field type.
type TypeTag struct {
	Kind Kind

	// Ref names the referenced schema for KindReference and
	// KindReferenceArray. Empty for integer kinds.
	Ref string
}

// ParseTypeTag parses the type string of a field definition. Accepted
// forms are the integer kind names, "<Name>" or "Name" for a nested
// record, and "<Name>*", "<Name*>" or "Name*" for a reference array.
// Arrays of arrays are rejected.
func ParseTypeTag(text string) (TypeTag, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return TypeTag{}, fmt.Errorf("empty field type")
	}
	for kind, name := range kindNames {
		if text == name {
			return TypeTag{Kind: kind}, nil
		}
	}

	name, repeated := SplitArrayMarker(text)
	if strings.HasPrefix(name, "<") && strings.HasSuffix(name, ">") {
		name = strings.TrimSpace(name[1 : len(name)-1])
		if inner, innerRepeated := SplitArrayMarker(name); innerRepeated {
			if repeated {
				return TypeTag{}, fmt.Errorf("field type %q: arrays of arrays are not supported", text)
			}
			name, repeated = inner, true
		}
	}

	if name == "" {
		return TypeTag{}, fmt.Errorf("field type %q: missing schema name", text)
	}
	if strings.ContainsAny(name, "<>*") || strings.ContainsFunc(name, isSpace) {
		return TypeTag{}, fmt.Errorf("field type %q: invalid schema name %q", text, name)
	}

	if repeated {
		return TypeTag{Kind: KindReferenceArray, Ref: name}, nil
	}
	return TypeTag{Kind: KindReference, Ref: name}, nil
}

// SplitArrayMarker strips one trailing "*" from a type or schema name
// and reports whether it was present.
func SplitArrayMarker(text string) (string, bool) {
	trimmed, found := strings.CutSuffix(strings.TrimSpace(text), "*")
	return strings.TrimSpace(trimmed), found
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// String returns the canonical definition-file spelling of the tag.
func (t TypeTag) String() string {
	switch t.Kind {
	case KindReference:
		return "<" + t.Ref + ">"
	case KindReferenceArray:
		return "<" + t.Ref + ">*"
	default:
		return t.Kind.String()
	}
}

// Field is one entry of a schema's field list.
type Field struct {
	Name string
	Type TypeTag

	// target is the arena id of the referenced schema plus one, so the
	// zero value means unresolved.
	target int
}

// resolved returns the arena id of the referenced schema.
func (f Field) resolved() (int, bool) {
	return f.target - 1, f.target > 0
}

// Schema is a validated record layout held by a [Registry].
type Schema struct {
	// Name is the schema's unique name.
	Name string

	// TypeCode is the schema's unique 16-bit identifier.
	TypeCode uint16

	// Extends names the parent schema, or is empty.
	Extends string

	// Fields are the schema's own fields in wire order, excluding
	// inherited ones.
	Fields []Field

	// Path is the definition file the schema was loaded from. Empty for
	// schemas built in memory.
	Path string

	id        int
	parent    int
	effective []Field
}

// ID returns the schema's arena index within its registry.
func (s *Schema) ID() int { return s.id }

// EffectiveFields returns the full wire layout: every ancestor's own
// fields, root first, followed by this schema's own fields. The slice
// is shared and must not be modified.
func (s *Schema) EffectiveFields() []Field { return s.effective }

// HasParent reports whether the schema extends another.
func (s *Schema) HasParent() bool { return s.parent >= 0 }
