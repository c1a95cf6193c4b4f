// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import "fmt"

// Concat joins chunks into one contiguous buffer, in order. Zero chunks
// yield an empty (non-nil) slice. A single chunk is returned as-is
// without copying, so callers must treat the result as read-only when
// they still hold the chunk.
func Concat(chunks [][]byte) []byte {
	switch len(chunks) {
	case 0:
		return []byte{}
	case 1:
		return chunks[0]
	}

	total := 0
	for _, chunk := range chunks {
		total += len(chunk)
	}

	buffer := make([]byte, total)
	position := 0
	for _, chunk := range chunks {
		position += copy(buffer[position:], chunk)
	}
	return buffer
}

// ConcatLength is [Concat] with a caller-supplied total length. The
// length must equal the sum of the chunk lengths: a shorter length
// would silently drop bytes and a longer one would pad with zeros, so
// both are rejected.
func ConcatLength(chunks [][]byte, length int) ([]byte, error) {
	sum := 0
	for _, chunk := range chunks {
		sum += len(chunk)
	}
	if length != sum {
		return nil, fmt.Errorf("concat: declared length %d does not match chunk total %d", length, sum)
	}
	return Concat(chunks), nil
}
