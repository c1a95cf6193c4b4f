// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package frame wraps encoded binon buffers in a small compressed
// envelope for storage and transport.
//
// A frame is one compression tag byte, the uncompressed payload length
// and the stored body length as unsigned varints, and the body:
//
//	+-----+-----------------+-----------------+------------------+
//	| tag | uvarint payload | uvarint body    | body             |
//	+-----+-----------------+-----------------+------------------+
//
// binon buffers carry no length of their own, so the body length also
// makes frames self-delimiting: [Split] walks a stream of concatenated
// frames.
//
// Tags are protocol constants. LZ4 frames hold one LZ4 block; zstd
// frames hold one zstd frame at the default level. [Pack] falls back
// to [None] when compression would not make the payload smaller.
package frame
