// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"bytes"
	"testing"
)

func TestConcat(t *testing.T) {
	tests := []struct {
		name   string
		chunks [][]byte
		want   []byte
	}{
		{name: "no chunks", chunks: nil, want: []byte{}},
		{name: "single chunk", chunks: [][]byte{{1, 2, 3}}, want: []byte{1, 2, 3}},
		{name: "several chunks", chunks: [][]byte{{1}, {2, 3}, {}, {4, 5, 6}}, want: []byte{1, 2, 3, 4, 5, 6}},
		{name: "only empty chunks", chunks: [][]byte{{}, {}}, want: []byte{}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Concat(test.chunks)
			if got == nil {
				t.Fatal("Concat returned nil")
			}
			if !bytes.Equal(got, test.want) {
				t.Errorf("Concat = %x, want %x", got, test.want)
			}
		})
	}
}

func TestConcat_SingleChunkIsNotCopied(t *testing.T) {
	chunk := []byte{9, 8, 7}
	got := Concat([][]byte{chunk})
	if &got[0] != &chunk[0] {
		t.Error("single chunk was copied, want the same backing array")
	}
}

func TestConcat_CopiesMultipleChunks(t *testing.T) {
	first := []byte{1, 2}
	got := Concat([][]byte{first, {3}})
	first[0] = 0xff
	if got[0] != 1 {
		t.Errorf("result aliases input chunk: got[0] = %#x", got[0])
	}
}

func TestConcatLength(t *testing.T) {
	chunks := [][]byte{{1, 2}, {3}}

	got, err := ConcatLength(chunks, 3)
	if err != nil {
		t.Fatalf("ConcatLength: %v", err)
	}
	if !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("ConcatLength = %x, want 010203", got)
	}

	for _, length := range []int{2, 4} {
		if _, err := ConcatLength(chunks, length); err == nil {
			t.Errorf("ConcatLength(%d) succeeded, want mismatch error", length)
		}
	}
}
