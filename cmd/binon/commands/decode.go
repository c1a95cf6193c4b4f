// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/bureau-foundation/binon/cmd/binon/cli"
	"github.com/bureau-foundation/binon/lib/binon"
	"github.com/bureau-foundation/binon/lib/frame"
	"github.com/spf13/pflag"
)

// bufferParams are the flags of commands that read BinOn buffers.
type bufferParams struct {
	sessionParams
	Override string `flag:"override,o" desc:"schema to decode against instead of the buffer's type code"`
	Offset   int    `flag:"offset" desc:"byte offset of the first record"`
	Hex      bool   `flag:"hex,x" desc:"treat input as hex text"`
	Framed   bool   `flag:"framed" desc:"input is one or more frames written by \"binon frame pack\" or \"encode --frame\""`
}

// read returns the input buffer, unpacking frames when --framed.
func (p *bufferParams) read(command string, args []string, stdin io.Reader) ([]byte, error) {
	data, remaining, err := readInput(args, stdin, p.Hex)
	if err != nil {
		return nil, err
	}
	if err := noArguments(command, remaining); err != nil {
		return nil, err
	}
	if !p.Framed {
		return data, nil
	}
	return unpackFrames(data)
}

type decodeParams struct {
	bufferParams
	Format string `flag:"format" desc:"output format: json, jsonc, or cbor" default:"json"`
	First  bool   `flag:"first" desc:"decode only the record at --offset"`
}

func decodeCommand(std streams) *cli.Command {
	var params decodeParams

	return &cli.Command{
		Name:    "decode",
		Summary: "Decode a BinOn buffer to JSON or CBOR",
		Description: `Decode the records of a BinOn buffer.

Records are read back to back from --offset until the buffer ends. The
schema of each is chosen by the type code at its start unless
--override names one.

Output formats:
  json   one compact JSON document per line
  jsonc  indented JSON per record
  cbor   a CBOR sequence, one item per record`,
		Usage: "binon decode [flags] [file]",
		Examples: []cli.Example{
			{
				Description: "Decode a file of records",
				Command:     "binon decode records.bin",
			},
			{
				Description: "Decode hex text against an explicit schema",
				Command:     "echo '00 00 00 2a' | binon decode --hex --override Distance",
			},
			{
				Description: "Decode a compressed frame to CBOR",
				Command:     "binon decode --framed --format cbor batch.frame | binon diag --cbor",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("decode", &params)
		},
		Run: func(args []string) error {
			buffer, err := params.read("decode", args, std.stdin)
			if err != nil {
				return err
			}
			session, err := params.open(context.Background(), "decode")
			if err != nil {
				return err
			}
			return decodeRecords(session.codec, buffer, std.stdout, params)
		},
	}
}

// decodeRecords writes each decoded record in params.Format.
func decodeRecords(codec *binon.Codec, buffer []byte, w io.Writer, params decodeParams) error {
	render, err := renderer(codec, params.Format, params.Override)
	if err != nil {
		return err
	}
	return eachRecord(codec, buffer, params.bufferParams, params.First, func(object binon.Object) error {
		data, err := render(object)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
}

func renderer(codec *binon.Codec, format, override string) (func(binon.Object) ([]byte, error), error) {
	switch format {
	case "json":
		return func(object binon.Object) ([]byte, error) {
			data, err := codec.ToJSON(object, override)
			return append(data, '\n'), err
		}, nil
	case "jsonc":
		return func(object binon.Object) ([]byte, error) {
			data, err := codec.ToJSONC(object, override)
			return append(data, '\n'), err
		}, nil
	case "cbor":
		return func(object binon.Object) ([]byte, error) {
			return codec.ToCBOR(object, override)
		}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want json, jsonc, or cbor)", format)
	}
}

// eachRecord decodes records from params.Offset to the end of buffer,
// or just the first when first is set.
func eachRecord(codec *binon.Codec, buffer []byte, params bufferParams, first bool, visit func(binon.Object) error) error {
	offset := params.Offset
	if offset < 0 || offset > len(buffer) {
		return fmt.Errorf("offset %d outside buffer of %d bytes", offset, len(buffer))
	}

	for index := 0; offset < len(buffer) || index == 0; index++ {
		next, object, err := codec.Decode(buffer, offset, params.Override)
		if err != nil {
			return fmt.Errorf("record %d at offset %d: %w", index, offset, err)
		}
		if err := visit(object); err != nil {
			return err
		}
		if first || next == offset {
			return nil
		}
		offset = next
	}
	return nil
}

func unpackFrames(data []byte) ([]byte, error) {
	payloads, err := frame.Split(data)
	if err != nil {
		return nil, err
	}
	var buffer []byte
	for _, payload := range payloads {
		buffer = append(buffer, payload...)
	}
	return buffer, nil
}
