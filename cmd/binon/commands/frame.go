// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"

	"github.com/bureau-foundation/binon/cmd/binon/cli"
	"github.com/bureau-foundation/binon/lib/frame"
	"github.com/spf13/pflag"
)

func frameCommand(std streams) *cli.Command {
	return &cli.Command{
		Name:    "frame",
		Summary: "Pack and unpack compressed frames",
		Description: `Wrap a buffer in a frame or recover buffers from frames.

A frame is a one-byte compression tag (none, lz4, zstd), the payload
length, the stored body length, and the body. Frames can be
concatenated; unpack restores and joins every payload in order.`,
		Subcommands: []*cli.Command{
			framePackCommand(std),
			frameUnpackCommand(std),
		},
	}
}

type framePackParams struct {
	ConfigPath  string `flag:"config" desc:"config file (default: $BINON_CONFIG, else built-in defaults)"`
	Compression string `flag:"compression,c" desc:"none, lz4, or zstd (overrides output.compression)"`
	HexInput    bool   `flag:"hex-input" desc:"treat input as hex text"`
	Hex         bool   `flag:"hex,x" desc:"write hex text instead of binary"`
}

func framePackCommand(std streams) *cli.Command {
	var params framePackParams

	return &cli.Command{
		Name:    "pack",
		Summary: "Wrap input in one compressed frame",
		Usage:   "binon frame pack [flags] [file]",
		Examples: []cli.Example{
			{Description: "Compress a buffer with LZ4", Command: "binon frame pack -c lz4 records.bin > records.frame"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("pack", &params)
		},
		Run: func(args []string) error {
			data, remaining, err := readInput(args, std.stdin, params.HexInput)
			if err != nil {
				return err
			}
			if err := noArguments("frame pack", remaining); err != nil {
				return err
			}

			compression := params.Compression
			if compression == "" {
				sessionConfig, err := (&sessionParams{ConfigPath: params.ConfigPath}).loadConfig()
				if err != nil {
					return err
				}
				compression = sessionConfig.Output.Compression
			}
			packed, err := packFrame(data, compression)
			if err != nil {
				return err
			}
			return writeBytes(std.stdout, packed, params.Hex)
		},
	}
}

type frameUnpackParams struct {
	HexInput bool `flag:"hex-input" desc:"treat input as hex text"`
	Hex      bool `flag:"hex,x" desc:"write hex text instead of binary"`
	Verbose  bool `flag:"verbose,v" desc:"describe each frame on stderr"`
}

func frameUnpackCommand(std streams) *cli.Command {
	var params frameUnpackParams

	return &cli.Command{
		Name:    "unpack",
		Summary: "Restore the payloads of one or more frames",
		Usage:   "binon frame unpack [flags] [file]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("unpack", &params)
		},
		Run: func(args []string) error {
			data, remaining, err := readInput(args, std.stdin, params.HexInput)
			if err != nil {
				return err
			}
			if err := noArguments("frame unpack", remaining); err != nil {
				return err
			}
			var log io.Writer
			if params.Verbose {
				log = std.stderr
			}
			payload, err := unpackDescribed(data, log)
			if err != nil {
				return err
			}
			return writeBytes(std.stdout, payload, params.Hex)
		},
	}
}

// unpackDescribed unpacks every frame in data, describing each on log
// when it is not nil.
func unpackDescribed(data []byte, log io.Writer) ([]byte, error) {
	var payload []byte
	for index := 0; len(data) > 0; index++ {
		next, tag, rest, err := frame.Next(data)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", index, err)
		}
		if log != nil {
			fmt.Fprintf(log, "frame %d: %s, %d bytes framed, %d byte payload\n",
				index, tag, len(data)-len(rest), len(next))
		}
		payload = append(payload, next...)
		data = rest
	}
	return payload, nil
}
