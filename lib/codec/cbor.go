// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding. Big integers that fit in 64 bits are written as plain
// integers; larger ones as bignum tags.
var encMode cbor.EncMode

// decMode accepts standard CBOR. Unknown struct fields are ignored.
var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.BigIntConvert = cbor.BigIntConvertShortest
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Object graphs are keyed by field name. The CBOR default for
		// any-typed maps is map[interface{}]interface{}, which
		// encoding/json cannot marshal.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		// 256-bit fields come back as *big.Int, the same type the
		// binary decoder produces.
		BigIntDec: cbor.BigIntDecodePointer,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// NewEncoder returns a CBOR stream encoder writing to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder returns a CBOR stream decoder reading from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}

// Diagnose renders every item of a CBOR sequence in RFC 8949 Extended
// Diagnostic Notation, one item per returned string.
func Diagnose(data []byte) ([]string, error) {
	var items []string
	remaining := data
	for len(remaining) > 0 {
		notation, rest, err := cbor.DiagnoseFirst(remaining)
		if err != nil {
			return items, fmt.Errorf("diagnose CBOR at byte %d: %w", len(data)-len(remaining), err)
		}
		items = append(items, notation)
		remaining = rest
	}
	return items, nil
}
