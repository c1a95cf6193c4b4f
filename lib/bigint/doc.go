// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bigint packs arbitrary-precision integers into the 32-byte
// big-endian fields used by the binon uint256 and int256 types.
//
// Values cross the API as *big.Int. Encoding saturates: anything below
// the type's minimum becomes the minimum and anything above its maximum
// becomes the maximum. There is no wraparound.
//
//	uint256: [0, 2^256-1], unsigned magnitude
//	int256:  [-2^255, 2^255-1], two's complement
//
// The fixed-width packing itself is done with holiman/uint256, whose
// SetFromBig produces the two's-complement form for negative inputs.
package bigint
