// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bigint

import (
	"bytes"
	"math/big"
	"testing"
)

func mustBig(t *testing.T, text string) *big.Int {
	t.Helper()
	value, ok := new(big.Int).SetString(text, 0)
	if !ok {
		t.Fatalf("bad big integer literal %q", text)
	}
	return value
}

func filled(b byte) []byte {
	return bytes.Repeat([]byte{b}, Size)
}

func TestEncode256_Saturation(t *testing.T) {
	twoTo256 := new(big.Int).Lsh(big.NewInt(1), 256)

	tests := []struct {
		name   string
		value  *big.Int
		signed bool
		want   []byte
	}{
		{name: "unsigned -1 clamps to zero", value: big.NewInt(-1), want: filled(0x00)},
		{name: "unsigned 2^256 clamps to max", value: twoTo256, want: filled(0xff)},
		{name: "unsigned max", value: MaxUint256, want: filled(0xff)},
		{name: "signed -1", value: big.NewInt(-1), signed: true, want: filled(0xff)},
		{name: "signed 2^256 clamps to max", value: twoTo256, signed: true, want: append([]byte{0x7f}, filled(0xff)[1:]...)},
		{name: "signed below min clamps to min", value: new(big.Int).Neg(twoTo256), signed: true, want: append([]byte{0x80}, filled(0x00)[1:]...)},
		{name: "nil is zero", value: nil, want: filled(0x00)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Encode256(test.value, test.signed)
			if !bytes.Equal(got[:], test.want) {
				t.Errorf("Encode256 = %x, want %x", got, test.want)
			}
		})
	}
}

func TestEncode256_BigEndianLayout(t *testing.T) {
	got := Encode256(big.NewInt(0x0102), false)
	want := make([]byte, Size)
	want[30], want[31] = 0x01, 0x02
	if !bytes.Equal(got[:], want) {
		t.Errorf("Encode256(0x0102) = %x, want %x", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		text   string
		signed bool
	}{
		{"0", false},
		{"1", false},
		{"0xdeadbeefcafebabe0123456789abcdef", false},
		{"0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", false},
		{"0", true},
		{"-1", true},
		{"12345678901234567890123456789", true},
		{"-12345678901234567890123456789", true},
		{"0x7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", true},
		{"-0x8000000000000000000000000000000000000000000000000000000000000000", true},
	}

	for _, test := range tests {
		value := mustBig(t, test.text)
		encoded := Encode256(value, test.signed)
		decoded, err := Decode256(encoded[:], test.signed)
		if err != nil {
			t.Fatalf("Decode256(%s): %v", test.text, err)
		}
		if decoded.Cmp(value) != 0 {
			t.Errorf("round trip %s (signed=%v) = %s", test.text, test.signed, decoded)
		}
	}
}

func TestDecode256_SignInterpretation(t *testing.T) {
	data := filled(0xff)

	unsigned, err := Decode256(data, false)
	if err != nil {
		t.Fatalf("Decode256 unsigned: %v", err)
	}
	if unsigned.Cmp(MaxUint256) != 0 {
		t.Errorf("unsigned all-ones = %s, want 2^256-1", unsigned)
	}

	signed, err := Decode256(data, true)
	if err != nil {
		t.Fatalf("Decode256 signed: %v", err)
	}
	if signed.Cmp(big.NewInt(-1)) != 0 {
		t.Errorf("signed all-ones = %s, want -1", signed)
	}
}

func TestDecode256_Short(t *testing.T) {
	if _, err := Decode256(make([]byte, Size-1), false); err == nil {
		t.Error("Decode256 of 31 bytes succeeded, want error")
	}
}

func TestClampDoesNotModifyInput(t *testing.T) {
	value := big.NewInt(-5)
	clamped := Clamp(value, false)
	if value.Cmp(big.NewInt(-5)) != 0 {
		t.Errorf("input modified to %s", value)
	}
	if clamped.Sign() != 0 {
		t.Errorf("Clamp(-5, unsigned) = %s, want 0", clamped)
	}
	if !Saturated(value, false) || Saturated(value, true) {
		t.Error("Saturated disagrees with the type ranges")
	}
}
