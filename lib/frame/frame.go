// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package frame

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Tag identifies the compression of a frame payload.
type Tag uint8

const (
	// None stores the payload as-is.
	None Tag = 0

	// LZ4 stores one LZ4 block. Fast, modest ratio.
	LZ4 Tag = 1

	// Zstd stores one zstd frame. Better ratio on repetitive records.
	Zstd Tag = 2
)

// MaxPayload is the largest uncompressed payload a frame may declare.
// Unpack rejects larger lengths before allocating.
const MaxPayload = 1 << 30

// ErrTruncated means a frame ends before its header or payload does.
var ErrTruncated = errors.New("frame truncated")

var errIncompressible = errors.New("payload is incompressible")

// String returns the configuration name of the tag.
func (tag Tag) String() string {
	switch tag {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(tag))
	}
}

// ParseTag parses a tag from its configuration name.
func ParseTag(name string) (Tag, error) {
	switch name {
	case "none", "":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return Zstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (want none, lz4, or zstd)", name)
	}
}

// Pack frames payload compressed with tag. If compression does not
// shrink the payload the frame is written with [None] instead; the
// tag in the result is authoritative.
func Pack(payload []byte, tag Tag) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("payload of %d bytes exceeds %d", len(payload), MaxPayload)
	}

	body, err := compress(payload, tag)
	if errors.Is(err, errIncompressible) {
		tag, body, err = None, payload, nil
	}
	if err != nil {
		return nil, err
	}

	frame := make([]byte, 0, 1+2*binary.MaxVarintLen64+len(body))
	frame = append(frame, byte(tag))
	frame = binary.AppendUvarint(frame, uint64(len(payload)))
	frame = binary.AppendUvarint(frame, uint64(len(body)))
	return append(frame, body...), nil
}

// Unpack decodes one frame that fills data exactly and returns its
// payload and tag.
func Unpack(data []byte) ([]byte, Tag, error) {
	payload, tag, consumed, err := unpackPrefix(data)
	if err != nil {
		return nil, tag, err
	}
	if consumed != len(data) {
		return nil, tag, fmt.Errorf("%d trailing bytes after frame", len(data)-consumed)
	}
	return payload, tag, nil
}

// Next decodes the frame at the start of data and returns its payload
// and tag along with the bytes after it.
func Next(data []byte) (payload []byte, tag Tag, rest []byte, err error) {
	payload, tag, consumed, err := unpackPrefix(data)
	if err != nil {
		return nil, tag, data, err
	}
	return payload, tag, data[consumed:], nil
}

// Split decodes every frame in a stream of concatenated frames.
func Split(data []byte) ([][]byte, error) {
	var payloads [][]byte
	for offset := 0; offset < len(data); {
		payload, _, consumed, err := unpackPrefix(data[offset:])
		if err != nil {
			return nil, fmt.Errorf("frame at offset %d: %w", offset, err)
		}
		payloads = append(payloads, payload)
		offset += consumed
	}
	return payloads, nil
}

// unpackPrefix decodes the frame at the start of data and returns the
// number of bytes it occupies.
func unpackPrefix(data []byte) ([]byte, Tag, int, error) {
	if len(data) == 0 {
		return nil, 0, 0, ErrTruncated
	}
	tag := Tag(data[0])
	offset := 1

	var lengths [2]uint64
	for index := range lengths {
		value, width := binary.Uvarint(data[offset:])
		if width <= 0 {
			return nil, tag, 0, fmt.Errorf("%w: bad length varint at offset %d", ErrTruncated, offset)
		}
		if value > MaxPayload {
			return nil, tag, 0, fmt.Errorf("declared length %d exceeds %d", value, MaxPayload)
		}
		lengths[index] = value
		offset += width
	}
	size, bodySize := int(lengths[0]), int(lengths[1])
	if len(data)-offset < bodySize {
		return nil, tag, 0, fmt.Errorf("%w: body has %d of %d bytes", ErrTruncated, len(data)-offset, bodySize)
	}
	body := data[offset : offset+bodySize]
	consumed := offset + bodySize

	var payload []byte
	var err error
	switch tag {
	case None:
		if bodySize != size {
			err = fmt.Errorf("uncompressed frame: body of %d bytes declares payload of %d", bodySize, size)
		}
		payload = body
	case LZ4:
		payload, err = decompressLZ4(body, size)
	case Zstd:
		payload, err = decompressZstd(body, size)
	default:
		err = fmt.Errorf("unsupported compression tag %d", uint8(tag))
	}
	if err != nil {
		return nil, tag, 0, err
	}
	return payload, tag, consumed, nil
}

func compress(payload []byte, tag Tag) ([]byte, error) {
	switch tag {
	case None:
		return payload, nil
	case LZ4:
		return compressLZ4(payload)
	case Zstd:
		return compressZstd(payload)
	default:
		return nil, fmt.Errorf("unsupported compression tag %d", uint8(tag))
	}
}

func compressLZ4(payload []byte) ([]byte, error) {
	destination := make([]byte, lz4.CompressBlockBound(len(payload)))
	written, err := lz4.CompressBlock(payload, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	// CompressBlock returns 0 for incompressible input.
	if written == 0 || written >= len(payload) {
		return nil, errIncompressible
	}
	return destination[:written], nil
}

func decompressLZ4(body []byte, size int) ([]byte, error) {
	destination := make([]byte, size)
	read, err := lz4.UncompressBlock(body, destination)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if read != size {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, size)
	}
	return destination, nil
}

// The zstd encoder and decoder are safe for concurrent use and are
// shared across calls.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("frame: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("frame: zstd decoder initialization failed: " + err.Error())
	}
}

func compressZstd(payload []byte) ([]byte, error) {
	compressed := zstdEncoder.EncodeAll(payload, nil)
	if len(compressed) >= len(payload) {
		return nil, errIncompressible
	}
	return compressed, nil
}

func decompressZstd(body []byte, size int) ([]byte, error) {
	result, err := zstdDecoder.DecodeAll(body, make([]byte, 0, size))
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(result) != size {
		return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), size)
	}
	return result, nil
}
