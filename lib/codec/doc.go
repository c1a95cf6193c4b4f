// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the shared CBOR configuration used wherever
// binon emits or reads CBOR.
//
// binon has one binary format of its own, the schema-driven layout in
// lib/binon, which carries no field names and cannot be read without
// the schemas. CBOR is the self-describing interchange beside it:
//
//   - decoded object graphs exported with binon's ToCBOR / FromCBOR,
//     for tools that do not have the schema tree;
//   - the canonical encoding of a registry's definitions, which is what
//     lib/schema hashes to produce a registry fingerprint.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. The
// same logical data always produces identical bytes, which the
// fingerprint depends on.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Decoding into interface values produces map[string]any for maps and
// *big.Int for bignums, matching the shapes binon's JSON path produces.
//
// Types that serialize to both JSON and CBOR carry only json struct
// tags; fxamacker/cbor reads them when cbor tags are absent.
package codec
