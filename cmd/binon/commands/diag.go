// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/bureau-foundation/binon/cmd/binon/cli"
	"github.com/bureau-foundation/binon/lib/binon"
	"github.com/bureau-foundation/binon/lib/codec"
	"github.com/spf13/pflag"
)

type diagParams struct {
	bufferParams
	CBOR bool `flag:"cbor" desc:"input is a CBOR sequence (as from \"decode --format cbor\") rather than BinOn"`
}

func diagCommand(std streams) *cli.Command {
	var params diagParams

	return &cli.Command{
		Name:    "diag",
		Summary: "Print records in CBOR diagnostic notation",
		Description: `Decode BinOn records and print each in CBOR Extended Diagnostic
Notation (RFC 8949 section 8), one record per line. Unlike JSON output,
256-bit fields appear as CBOR bignums.

With --cbor the input is already a CBOR sequence and is printed
without loading any schemas.`,
		Usage: "binon diag [flags] [file]",
		Examples: []cli.Example{
			{
				Description: "Show a record's CBOR form",
				Command:     "binon diag record.bin",
			},
			{
				Description: "Diagnose a CBOR export",
				Command:     "binon diag --cbor export.cbor",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("diag", &params)
		},
		Run: func(args []string) error {
			data, err := params.read("diag", args, std.stdin)
			if err != nil {
				return err
			}
			if params.CBOR {
				return diagCBOR(data, std.stdout)
			}
			session, err := params.open(context.Background(), "diag")
			if err != nil {
				return err
			}
			return diagRecords(session.codec, data, std.stdout, params.bufferParams)
		},
	}
}

func diagRecords(binonCodec *binon.Codec, buffer []byte, w io.Writer, params bufferParams) error {
	var sequence []byte
	err := eachRecord(binonCodec, buffer, params, false, func(object binon.Object) error {
		item, err := binonCodec.ToCBOR(object, params.Override)
		sequence = append(sequence, item...)
		return err
	})
	if err != nil {
		return err
	}
	return diagCBOR(sequence, w)
}

func diagCBOR(data []byte, w io.Writer) error {
	items, err := codec.Diagnose(data)
	for _, item := range items {
		if _, writeErr := fmt.Fprintln(w, item); writeErr != nil {
			return writeErr
		}
	}
	return err
}
