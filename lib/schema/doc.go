// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package schema loads, validates, and indexes binon record schemas.
//
// A schema describes the binary layout of one record type: a name, a
// 16-bit type code, an optional parent schema it extends, and an
// ordered list of fields. Field order is wire order.
//
// # Definition files
//
// Schemas are authored one per file in a relaxed JSON dialect:
//
//	// Distance is a Simple carrying a length in meters.
//	{
//	  name: "Distance",
//	  type: 0x1002,
//	  extends: "Simple",
//	  fields: [
//	    { name: "meters", type: "uint32" },
//	    { name: "hops",   type: "<Hop>*" },
//	  ],
//	}
//
// Comments and trailing commas are stripped with tidwall/jsonc. Input
// that is then valid JSON is decoded with encoding/json; anything else
// (unquoted keys, hex or octal type codes, single-quoted strings) is
// decoded with yaml.v3, whose flow syntax is a superset of the
// remaining JSON5 forms in practice.
//
// Field types are one of the fixed-width integers (uint8, uint16,
// uint32, uint256, int8, int16, int32, int256), a reference to another
// schema ("<Name>" or "Name": one nested record), or a reference array
// ("<Name>*" or "Name*": a uint16 count followed by that many nested
// records).
//
// # Registry
//
// [Load] walks a directory tree concurrently, parses every file, and
// returns an immutable [Registry] once every unit of work has finished.
// Unreadable entries and malformed definitions are logged, recorded in
// the [LoadReport], and skipped; they never fail the load as a whole.
//
// The registry stores schemas in an arena indexed by integer id. Parent
// links and reference targets are ids, and each schema's effective
// field list (inherited fields followed by its own) is computed once
// when the registry is built.
package schema
