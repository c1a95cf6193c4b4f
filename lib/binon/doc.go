// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package binon encodes and decodes records against a schema
// [schema.Registry].
//
// The wire format has no framing of its own. A record is its schema's
// effective fields in order (inherited fields first), each written
// big-endian at its declared width: 1, 2, 4, or 32 bytes for the
// integer kinds, the nested record's bytes for a reference, and a
// uint16 count followed by that many nested records for a reference
// array. 256-bit fields saturate at the type's bounds; every other
// integer must fit its width exactly or encoding fails with
// [ErrFieldCoercion].
//
// Buffers are self-describing when the root of the schema chain starts
// with a uint16 field holding the schema's type code, conventionally
// named "type". [Codec.Decode] without a schema override peeks that
// code at the start offset to choose the schema, then decodes the
// record from the same offset, so the code is read again as an
// ordinary field.
//
// # Objects
//
// Decoded records are [Object] values built by a [Factory] registered
// for the schema name, the factory named by Options.DefaultObject, or
// a [*Record] when neither exists. Integer fields decode to the exact
// Go type of their width (uint8 through int32) and to *big.Int for the
// 256-bit kinds; references decode to [Object] and reference arrays to
// []Object.
//
// # Interchange
//
// [Codec.ToJSON], [Codec.FromJSON], and their JSONC and CBOR siblings
// convert between objects and text or CBOR documents. Conversions are
// schema-guided: field order follows the schema, a "map" key names the
// record's schema, and values are coerced exactly as Encode would.
//
// A Codec is immutable after [New] and safe for concurrent use.
package binon
