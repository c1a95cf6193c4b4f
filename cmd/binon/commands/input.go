// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"unicode"
)

// readInput returns the contents of the last argument if it names a
// regular file, else all of stdin, along with the arguments left over.
// With hexMode the bytes are hex text and are decoded.
func readInput(args []string, stdin io.Reader, hexMode bool) ([]byte, []string, error) {
	var data []byte
	remaining := args

	if length := len(args); length > 0 {
		candidate := args[length-1]
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			data, err = os.ReadFile(candidate)
			if err != nil {
				return nil, nil, fmt.Errorf("read %s: %w", candidate, err)
			}
			remaining = args[:length-1]
		}
	}

	if data == nil {
		var err error
		data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, nil, fmt.Errorf("read stdin: %w", err)
		}
	}

	if hexMode {
		decoded, err := decodeHexInput(data)
		if err != nil {
			return nil, nil, err
		}
		data = decoded
	}
	return data, remaining, nil
}

// decodeHexInput decodes hex text, ignoring whitespace anywhere in it.
func decodeHexInput(data []byte) ([]byte, error) {
	cleaned := bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, data)
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("empty input after stripping whitespace from hex")
	}

	decoded := make([]byte, hex.DecodedLen(len(cleaned)))
	count, err := hex.Decode(decoded, cleaned)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return decoded[:count], nil
}

// writeBytes writes data raw, or as hex followed by a newline.
func writeBytes(w io.Writer, data []byte, hexMode bool) error {
	if !hexMode {
		_, err := w.Write(data)
		return err
	}
	_, err := fmt.Fprintln(w, hex.EncodeToString(data))
	return err
}

// noArguments rejects leftover positional arguments.
func noArguments(command string, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%s: unexpected argument %q (input file must exist)", command, args[0])
	}
	return nil
}
