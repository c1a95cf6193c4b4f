// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire holds the byte-level primitives shared by the binon
// encoder and decoder: buffer assembly and bounds-checked big-endian
// integer access.
//
// All multi-byte integers on the binon wire are big-endian. Widths are
// fixed per type: 1, 2 or 4 bytes for the small integer kinds and 32
// bytes for the 256-bit kinds (handled by lib/bigint, which uses the
// [Reader] here to obtain its 32-byte window).
//
// [Concat] joins the chunks an encoder produced into one buffer. A
// [Reader] walks a buffer with a cursor; every read checks the
// remaining length first and fails with [ErrBufferTooShort] rather than
// truncating or panicking.
//
// This package has no dependencies on other binon packages.
package wire
