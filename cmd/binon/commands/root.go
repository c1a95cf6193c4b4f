// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/bureau-foundation/binon/cmd/binon/cli"
	"github.com/bureau-foundation/binon/lib/version"
	"github.com/spf13/pflag"
)

// streams are the standard streams a command tree reads and writes.
type streams struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// Root returns the binon command tree wired to the process's standard
// streams.
func Root() *cli.Command {
	return newRoot(streams{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr})
}

func newRoot(std streams) *cli.Command {
	var showVersion bool

	var root *cli.Command
	root = &cli.Command{
		Name:    "binon",
		Summary: "Encode, decode, and inspect BinOn records",
		Description: `Encode, decode, and inspect BinOn records.

BinOn is a schema-driven, big-endian binary layout. Schemas are loaded
from a tree of definition files (./BinOn by default) and describe each
record as an ordered list of fixed-width integers, nested records, and
counted arrays of records.`,
		Output: std.stderr,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("binon", pflag.ContinueOnError)
			flagSet.BoolVar(&showVersion, "version", false, "print version information")
			return flagSet
		},
		Subcommands: []*cli.Command{
			encodeCommand(std),
			decodeCommand(std),
			inspectCommand(std),
			diagCommand(std),
			schemaCommand(std),
			frameCommand(std),
			versionCommand(std),
		},
		Run: func(args []string) error {
			if showVersion {
				_, err := fmt.Fprintln(std.stdout, version.Info())
				return err
			}
			if len(args) > 0 {
				return root.UnknownCommand(args[0])
			}
			root.PrintHelp(std.stderr)
			return fmt.Errorf("command required")
		},
	}
	return root
}

func versionCommand(std streams) *cli.Command {
	var full bool
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("version", pflag.ContinueOnError)
			flagSet.BoolVar(&full, "full", false, "include Go version and platform")
			return flagSet
		},
		Run: func(args []string) error {
			if err := noArguments("version", args); err != nil {
				return err
			}
			text := version.Info()
			if full {
				text = version.Full()
			}
			_, err := fmt.Fprintln(std.stdout, text)
			return err
		},
	}
}
