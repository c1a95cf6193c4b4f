// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import "encoding/binary"

// The Put functions allocate a buffer of exactly the type's width and
// write the value big-endian. Range checking is the caller's job; these
// take already-narrowed Go types.

// PutUint8 returns a 1-byte buffer holding value.
func PutUint8(value uint8) []byte { return []byte{value} }

// PutUint16 returns a 2-byte big-endian buffer holding value.
func PutUint16(value uint16) []byte {
	buffer := make([]byte, 2)
	binary.BigEndian.PutUint16(buffer, value)
	return buffer
}

// PutUint32 returns a 4-byte big-endian buffer holding value.
func PutUint32(value uint32) []byte {
	buffer := make([]byte, 4)
	binary.BigEndian.PutUint32(buffer, value)
	return buffer
}

// PutInt8 returns the two's-complement byte of value.
func PutInt8(value int8) []byte { return PutUint8(uint8(value)) }

// PutInt16 returns the big-endian two's-complement encoding of value.
func PutInt16(value int16) []byte { return PutUint16(uint16(value)) }

// PutInt32 returns the big-endian two's-complement encoding of value.
func PutInt32(value int32) []byte { return PutUint32(uint32(value)) }
