// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bureau-foundation/binon/cmd/binon/cli"
	"github.com/bureau-foundation/binon/lib/binon"
	"github.com/spf13/pflag"
)

type inspectParams struct {
	bufferParams
	cli.JSONOutput
}

// annotationView is the JSON form of one annotation.
type annotationView struct {
	Offset int    `json:"offset"`
	Width  int    `json:"width"`
	Path   string `json:"path"`
	Type   string `json:"type"`
	Value  string `json:"value"`
	Bytes  string `json:"bytes,omitempty"`
}

func inspectCommand(std streams) *cli.Command {
	var params inspectParams

	return &cli.Command{
		Name:    "inspect",
		Summary: "Show where each field of a record sits in a buffer",
		Description: `Decode one record and list every value read: its byte offset and
width, its field path, its type, and the decoded value. Nested records
appear as zero-width rows naming their schema; reference arrays show
their element count as a "count" row.`,
		Usage: "binon inspect [flags] [file]",
		Examples: []cli.Example{
			{
				Description: "Inspect the first record of a file",
				Command:     "binon inspect record.bin",
			},
			{
				Description: "Inspect the second record as JSON",
				Command:     "binon inspect --offset 23 --json records.bin",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("inspect", &params)
		},
		Run: func(args []string) error {
			buffer, err := params.read("inspect", args, std.stdin)
			if err != nil {
				return err
			}
			session, err := params.open(context.Background(), "inspect")
			if err != nil {
				return err
			}
			return inspectRecord(session.codec, buffer, std.stdout, params)
		},
	}
}

func inspectRecord(codec *binon.Codec, buffer []byte, w io.Writer, params inspectParams) error {
	annotations, end, err := codec.Inspect(buffer, params.Offset, params.Override)
	if err != nil {
		return err
	}

	views := make([]annotationView, len(annotations))
	for index, annotation := range annotations {
		views[index] = annotationView{
			Offset: annotation.Offset,
			Width:  annotation.Width,
			Path:   annotation.Path,
			Type:   annotation.Type,
			Value:  annotation.Value,
			Bytes:  hex.EncodeToString(buffer[annotation.Offset : annotation.Offset+annotation.Width]),
		}
	}
	if done, err := params.EmitJSON(w, views); done {
		return err
	}

	table := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintln(table, "OFFSET\tWIDTH\tPATH\tTYPE\tVALUE\tBYTES")
	for _, view := range views {
		path := view.Path
		if path == "" {
			path = "."
		}
		fmt.Fprintf(table, "%d\t%d\t%s\t%s\t%s\t%s\n",
			view.Offset, view.Width, path, view.Type, view.Value, view.Bytes)
	}
	if err := table.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "\n%d bytes, next record at offset %d\n", end-params.Offset, end)
	return err
}
