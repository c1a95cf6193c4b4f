// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrBufferTooShort is returned when a read would run past the end of
// the buffer.
var ErrBufferTooShort = errors.New("buffer too short")

// Reader is a forward-only cursor over a byte slice. The zero value is
// not useful; construct with [NewReader].
type Reader struct {
	buffer []byte
	offset int
}

// NewReader returns a Reader positioned at offset. An offset outside
// [0, len(buffer)] fails with ErrBufferTooShort.
func NewReader(buffer []byte, offset int) (*Reader, error) {
	if offset < 0 || offset > len(buffer) {
		return nil, fmt.Errorf("start offset %d outside buffer of %d bytes: %w", offset, len(buffer), ErrBufferTooShort)
	}
	return &Reader{buffer: buffer, offset: offset}, nil
}

// Offset returns the cursor position.
func (r *Reader) Offset() int { return r.offset }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buffer) - r.offset }

// Next returns the next width bytes and advances past them. The
// returned slice aliases the underlying buffer.
func (r *Reader) Next(width int) ([]byte, error) {
	if width < 0 || width > r.Remaining() {
		return nil, fmt.Errorf("reading %d bytes at offset %d with %d remaining: %w",
			width, r.offset, r.Remaining(), ErrBufferTooShort)
	}
	window := r.buffer[r.offset : r.offset+width]
	r.offset += width
	return window, nil
}

// Uint8 reads one byte.
func (r *Reader) Uint8() (uint8, error) {
	window, err := r.Next(1)
	if err != nil {
		return 0, err
	}
	return window[0], nil
}

// Uint16 reads a big-endian uint16.
func (r *Reader) Uint16() (uint16, error) {
	window, err := r.Next(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(window), nil
}

// Uint32 reads a big-endian uint32.
func (r *Reader) Uint32() (uint32, error) {
	window, err := r.Next(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(window), nil
}

// Int8 reads a two's-complement int8.
func (r *Reader) Int8() (int8, error) {
	value, err := r.Uint8()
	return int8(value), err
}

// Int16 reads a big-endian two's-complement int16.
func (r *Reader) Int16() (int16, error) {
	value, err := r.Uint16()
	return int16(value), err
}

// Int32 reads a big-endian two's-complement int32.
func (r *Reader) Int32() (int32, error) {
	value, err := r.Uint32()
	return int32(value), err
}

// PeekUint16 reads a big-endian uint16 at offset without a cursor. Used
// for the type-code header, which is inspected but not consumed.
func PeekUint16(buffer []byte, offset int) (uint16, error) {
	if offset < 0 || len(buffer)-offset < 2 {
		return 0, fmt.Errorf("reading type code at offset %d of %d-byte buffer: %w", offset, len(buffer), ErrBufferTooShort)
	}
	return binary.BigEndian.Uint16(buffer[offset:]), nil
}
