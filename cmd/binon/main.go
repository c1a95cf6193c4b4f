// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Command binon encodes, decodes, and inspects BinOn records against
// a tree of schema definitions.
package main

import (
	"fmt"
	"os"

	"github.com/bureau-foundation/binon/cmd/binon/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own report (like schema check)
		// return an error carrying the exit code.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return commands.Root().Execute(os.Args[1:])
}
