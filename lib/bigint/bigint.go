// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bigint

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// Size is the encoded width of a 256-bit field in bytes.
const Size = 32

var (
	one = big.NewInt(1)

	// MaxUint256 is 2^256-1.
	MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(one, 256), one)

	// MinInt256 is -2^255.
	MinInt256 = new(big.Int).Neg(new(big.Int).Lsh(one, 255))

	// MaxInt256 is 2^255-1.
	MaxInt256 = new(big.Int).Sub(new(big.Int).Lsh(one, 255), one)
)

// Bounds returns the inclusive range of the 256-bit type. The returned
// values are shared and must not be modified.
func Bounds(signed bool) (minimum, maximum *big.Int) {
	if signed {
		return MinInt256, MaxInt256
	}
	return new(big.Int), MaxUint256
}

// Clamp returns value saturated into the range of the 256-bit type.
// The result is a fresh *big.Int; value is not modified. A nil value
// is treated as zero.
func Clamp(value *big.Int, signed bool) *big.Int {
	if value == nil {
		return new(big.Int)
	}
	minimum, maximum := Bounds(signed)
	switch {
	case value.Cmp(minimum) < 0:
		return new(big.Int).Set(minimum)
	case value.Cmp(maximum) > 0:
		return new(big.Int).Set(maximum)
	default:
		return new(big.Int).Set(value)
	}
}

// Saturated reports whether Clamp would change value.
func Saturated(value *big.Int, signed bool) bool {
	if value == nil {
		return false
	}
	minimum, maximum := Bounds(signed)
	return value.Cmp(minimum) < 0 || value.Cmp(maximum) > 0
}

// Encode256 returns the 32-byte big-endian encoding of value after
// saturating it to the type's range.
func Encode256(value *big.Int, signed bool) [Size]byte {
	clamped := Clamp(value, signed)
	// Clamped values always fit in 256 bits, so the overflow flag is
	// never set. Negative values come back in two's complement.
	packed, _ := uint256.FromBig(clamped)
	return packed.Bytes32()
}

// Decode256 interprets the first 32 bytes of data as an unsigned
// magnitude or, when signed, a two's-complement integer.
func Decode256(data []byte, signed bool) (*big.Int, error) {
	if len(data) < Size {
		return nil, fmt.Errorf("256-bit field needs %d bytes, have %d", Size, len(data))
	}
	packed := new(uint256.Int).SetBytes32(data[:Size])
	if !signed || packed.Sign() >= 0 {
		return packed.ToBig(), nil
	}
	result := new(uint256.Int).Neg(packed).ToBig()
	return result.Neg(result), nil
}
