// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binon

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bureau-foundation/binon/lib/schema"
)

// compareObjects compares decoded object graphs, including the
// unexported state of *Record and *big.Int values by magnitude.
var compareObjects = cmp.Options{
	cmp.AllowUnexported(Record{}),
	cmp.Comparer(func(a, b *big.Int) bool {
		if a == nil || b == nil {
			return a == b
		}
		return a.Cmp(b) == 0
	}),
}

func fields(pairs ...string) []schema.FieldDefinition {
	definitions := make([]schema.FieldDefinition, 0, len(pairs)/2)
	for index := 0; index+1 < len(pairs); index += 2 {
		definitions = append(definitions, schema.FieldDefinition{Name: pairs[index], Type: pairs[index+1]})
	}
	return definitions
}

// testDefinitions is a self-describing family rooted at Header, whose
// only field carries the type code.
func testDefinitions() []schema.Definition {
	return []schema.Definition{
		{Name: "Header", Type: 0x0001, Fields: fields("type", "uint16")},
		{Name: "Point", Type: 0x0010, Extends: "Header", Fields: fields("x", "int16", "y", "int16")},
		{Name: "Path", Type: 0x0011, Extends: "Header", Fields: fields("id", "uint8", "start", "<Point>", "hops", "<Point>*")},
		{Name: "Ledger", Type: 0x0012, Extends: "Header", Fields: fields("balance", "uint256", "delta", "int256")},
		{Name: "Ints", Type: 0x0013, Extends: "Header", Fields: fields(
			"a", "uint8", "b", "uint16", "c", "uint32", "d", "int8", "e", "int16", "f", "int32")},
		{Name: "Loop", Type: 0x0020, Fields: fields("next", "<Loop>")},
		{Name: "Dangling", Type: 0x0021, Extends: "Header", Fields: fields("ghost", "<Ghost>")},
	}
}

func newTestCodec(t *testing.T, options Options) *Codec {
	t.Helper()
	if options.Registry == nil {
		registry, err := schema.NewRegistry(testDefinitions()...)
		if err != nil {
			t.Fatalf("NewRegistry failed: %v", err)
		}
		options.Registry = registry
	}
	if options.Factories == nil {
		options.Factories = map[string]Factory{}
	}
	codec, err := New(options)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return codec
}

// record builds an object for name with its "type" field set
// explicitly, followed by the given field/value pairs in order.
func record(t *testing.T, c *Codec, name string, pairs ...any) Object {
	t.Helper()
	object, err := c.NewObject(name)
	if err != nil {
		t.Fatalf("NewObject(%q) failed: %v", name, err)
	}
	s, _ := c.Registry().ByName(name)
	if fields := s.EffectiveFields(); len(fields) > 0 && fields[0].Name == "type" {
		object.Set("type", s.TypeCode)
	}
	for index := 0; index+1 < len(pairs); index += 2 {
		object.Set(pairs[index].(string), pairs[index+1])
	}
	return object
}

func point(t *testing.T, c *Codec, x, y int16) Object {
	return record(t, c, "Point", "x", x, "y", y)
}

func examplePath(t *testing.T, c *Codec) Object {
	return record(t, c, "Path",
		"id", uint8(7),
		"start", point(t, c, -1, 2),
		"hops", []Object{point(t, c, 1, 2), point(t, c, -3, 4)},
	)
}

// examplePathBytes is the encoding of examplePath.
var examplePathBytes = []byte{
	0x00, 0x11, // type
	0x07,       // id
	0x00, 0x10, 0xff, 0xff, 0x00, 0x02, // start
	0x00, 0x02, // hops count
	0x00, 0x10, 0x00, 0x01, 0x00, 0x02, // hops[0]
	0x00, 0x10, 0xff, 0xfd, 0x00, 0x04, // hops[1]
}

func mustBig(t *testing.T, text string) *big.Int {
	t.Helper()
	value, ok := new(big.Int).SetString(text, 0)
	if !ok {
		t.Fatalf("bad big integer literal %q", text)
	}
	return value
}
