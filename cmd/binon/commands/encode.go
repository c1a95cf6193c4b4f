// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/bureau-foundation/binon/cmd/binon/cli"
	"github.com/bureau-foundation/binon/lib/binon"
	"github.com/bureau-foundation/binon/lib/frame"
	"github.com/bureau-foundation/binon/lib/wire"
	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"
)

type encodeParams struct {
	sessionParams
	Override    string `flag:"override,o" desc:"schema to encode against instead of each record's \"map\""`
	From        string `flag:"from" desc:"input format: json (comments allowed) or cbor" default:"json"`
	Hex         bool   `flag:"hex,x" desc:"write hex text instead of binary"`
	Frame       bool   `flag:"frame,f" desc:"wrap the output in a compressed frame"`
	Compression string `flag:"compression" desc:"frame compression: none, lz4, or zstd (overrides output.compression)"`
}

func encodeCommand(std streams) *cli.Command {
	var params encodeParams

	return &cli.Command{
		Name:    "encode",
		Summary: "Encode JSON or CBOR records to a BinOn buffer",
		Description: `Read records as JSON (comments and trailing commas allowed) or CBOR
and write their BinOn encoding.

Each record names its schema in a "map" key unless --override is set.
A JSON array encodes every element and concatenates the buffers.
With --frame the result is wrapped in a frame compressed per
--compression or the config's output.compression.`,
		Usage: "binon encode [flags] [file]",
		Examples: []cli.Example{
			{
				Description: "Encode a record and print it as hex",
				Command:     `echo '{"map":"Distance","meters":42}' | binon encode --hex`,
			},
			{
				Description: "Encode against an explicit schema",
				Command:     "binon encode --override Path record.jsonc > record.bin",
			},
			{
				Description: "Encode a batch into a zstd frame",
				Command:     "binon encode --frame --compression zstd batch.json > batch.frame",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("encode", &params)
		},
		Run: func(args []string) error {
			data, remaining, err := readInput(args, std.stdin, false)
			if err != nil {
				return err
			}
			if err := noArguments("encode", remaining); err != nil {
				return err
			}

			session, err := params.open(context.Background(), "encode")
			if err != nil {
				return err
			}

			buffer, err := encodeRecords(session.codec, data, params.From, params.Override)
			if err != nil {
				return err
			}
			if params.Frame {
				compression := session.config.Output.Compression
				if params.Compression != "" {
					compression = params.Compression
				}
				if buffer, err = packFrame(buffer, compression); err != nil {
					return err
				}
			}
			return writeBytes(std.stdout, buffer, params.Hex)
		},
	}
}

// encodeRecords encodes one record or, for a JSON array, each element
// in order.
func encodeRecords(codec *binon.Codec, data []byte, from, override string) ([]byte, error) {
	switch from {
	case "cbor":
		object, err := codec.FromCBOR(data, override)
		if err != nil {
			return nil, err
		}
		return codec.Encode(object, override)

	case "json", "jsonc", "":
		plain := jsonc.ToJSON(data)
		trimmed := bytes.TrimSpace(plain)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			return codec.JSONToBuffer(plain, override)
		}

		var elements []json.RawMessage
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return nil, fmt.Errorf("parse JSON array: %w", err)
		}
		chunks := make([][]byte, len(elements))
		for index, element := range elements {
			chunk, err := codec.JSONToBuffer(element, override)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", index, err)
			}
			chunks[index] = chunk
		}
		return wire.Concat(chunks), nil

	default:
		return nil, fmt.Errorf("unknown input format %q (want json or cbor)", from)
	}
}

func packFrame(payload []byte, compression string) ([]byte, error) {
	tag, err := frame.ParseTag(compression)
	if err != nil {
		return nil, err
	}
	return frame.Pack(payload, tag)
}
