// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binon

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/holiman/uint256"

	"github.com/bureau-foundation/binon/lib/bigint"
	"github.com/bureau-foundation/binon/lib/schema"
	"github.com/bureau-foundation/binon/lib/wire"
)

// fixedBounds holds the inclusive ranges of the integer kinds narrower
// than 256 bits.
var fixedBounds = map[schema.Kind][2]int64{
	schema.KindUint8:  {0, math.MaxUint8},
	schema.KindUint16: {0, math.MaxUint16},
	schema.KindUint32: {0, math.MaxUint32},
	schema.KindInt8:   {math.MinInt8, math.MaxInt8},
	schema.KindInt16:  {math.MinInt16, math.MaxInt16},
	schema.KindInt32:  {math.MinInt32, math.MaxInt32},
}

// Coerce converts value to the Go type a decode of kind produces:
// uint8, uint16, uint32, int8, int16, int32, or *big.Int for the
// 256-bit kinds.
//
// Accepted inputs are Go integers, integral floats, json.Number,
// decimal or base-prefixed ("0x", "0o", "0b") strings, *big.Int,
// big.Int, and *uint256.Int. 256-bit results saturate at the kind's
// bounds; narrower kinds fail with ErrFieldCoercion when out of range.
func Coerce(kind schema.Kind, value any) (any, error) {
	if !kind.IsInteger() {
		return nil, fmt.Errorf("%w: %s is not an integer kind", ErrFieldCoercion, kind)
	}
	number, err := toBig(value)
	if err != nil {
		return nil, err
	}

	if kind.Width() == bigint.Size {
		return bigint.Clamp(number, kind.Signed()), nil
	}

	bounds := fixedBounds[kind]
	if !number.IsInt64() || number.Int64() < bounds[0] || number.Int64() > bounds[1] {
		return nil, fmt.Errorf("%w: %s out of range for %s", ErrFieldCoercion, number, kind)
	}
	small := number.Int64()
	switch kind {
	case schema.KindUint8:
		return uint8(small), nil
	case schema.KindUint16:
		return uint16(small), nil
	case schema.KindUint32:
		return uint32(small), nil
	case schema.KindInt8:
		return int8(small), nil
	case schema.KindInt16:
		return int16(small), nil
	default:
		return int32(small), nil
	}
}

// integerBytes writes a value produced by Coerce for kind.
func integerBytes(kind schema.Kind, value any) []byte {
	switch typed := value.(type) {
	case uint8:
		return wire.PutUint8(typed)
	case uint16:
		return wire.PutUint16(typed)
	case uint32:
		return wire.PutUint32(typed)
	case int8:
		return wire.PutInt8(typed)
	case int16:
		return wire.PutInt16(typed)
	case int32:
		return wire.PutInt32(typed)
	case *big.Int:
		packed := bigint.Encode256(typed, kind.Signed())
		return packed[:]
	default:
		panic(fmt.Sprintf("binon: integerBytes called with %T", value))
	}
}

func toBig(value any) (*big.Int, error) {
	switch v := value.(type) {
	case int:
		return big.NewInt(int64(v)), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case float32:
		return fromFloat(float64(v))
	case float64:
		return fromFloat(v)
	case json.Number:
		return parseNumber(string(v))
	case string:
		return parseNumber(v)
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("%w: nil *big.Int", ErrFieldCoercion)
		}
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case *uint256.Int:
		if v == nil {
			return nil, fmt.Errorf("%w: nil *uint256.Int", ErrFieldCoercion)
		}
		return v.ToBig(), nil
	case nil:
		return nil, fmt.Errorf("%w: nil value", ErrFieldCoercion)
	default:
		return nil, fmt.Errorf("%w: unsupported value type %T", ErrFieldCoercion, value)
	}
}

func fromFloat(value float64) (*big.Int, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || math.Trunc(value) != value {
		return nil, fmt.Errorf("%w: %v is not an integer", ErrFieldCoercion, value)
	}
	result, _ := big.NewFloat(value).Int(nil)
	return result, nil
}

// parseNumber accepts Go integer literal syntax, then falls back to
// decimal floating-point notation with an integral value ("42.0",
// "1e3").
func parseNumber(text string) (*big.Int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty string", ErrFieldCoercion)
	}
	if result, ok := new(big.Int).SetString(text, 0); ok {
		return result, nil
	}
	float, _, err := big.ParseFloat(text, 10, 1024, big.ToNearestEven)
	if err != nil || !float.IsInt() {
		return nil, fmt.Errorf("%w: %q is not an integer", ErrFieldCoercion, text)
	}
	result, _ := float.Int(nil)
	return result, nil
}
