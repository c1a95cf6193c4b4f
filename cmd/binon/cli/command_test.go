// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestExecuteDispatchesToNestedSubcommand(t *testing.T) {
	var called string
	var received []string

	root := &Command{
		Name:   "binon",
		Output: &bytes.Buffer{},
		Subcommands: []*Command{
			{Name: "encode", Run: func(args []string) error { called = "encode"; return nil }},
			{
				Name: "schema",
				Subcommands: []*Command{
					{Name: "list", Run: func(args []string) error {
						called, received = "schema list", args
						return nil
					}},
				},
			},
		},
	}

	if err := root.Execute([]string{"schema", "list", "extra"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "schema list" {
		t.Errorf("dispatched to %q, want %q", called, "schema list")
	}
	if len(received) != 1 || received[0] != "extra" {
		t.Errorf("args = %v, want [extra]", received)
	}
}

func TestExecuteParsesFlags(t *testing.T) {
	var format string
	var received []string

	command := &Command{
		Name: "decode",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("decode", pflag.ContinueOnError)
			flagSet.StringVar(&format, "format", "json", "output format")
			return flagSet
		},
		Run: func(args []string) error {
			received = args
			return nil
		},
	}

	if err := command.Execute([]string{"--format", "cbor", "input.bin"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if format != "cbor" {
		t.Errorf("format = %q, want cbor", format)
	}
	if len(received) != 1 || received[0] != "input.bin" {
		t.Errorf("args = %v, want [input.bin]", received)
	}
}

func TestExecuteFallsBackToRun(t *testing.T) {
	var received []string
	root := &Command{
		Name:        "frame",
		Subcommands: []*Command{{Name: "pack", Run: func([]string) error { return nil }}},
		Run: func(args []string) error {
			received = args
			return nil
		},
	}

	if err := root.Execute([]string{"payload.bin"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(received) != 1 || received[0] != "payload.bin" {
		t.Errorf("args = %v, want [payload.bin]", received)
	}
}

func TestExecuteUnknownCommandSuggests(t *testing.T) {
	root := &Command{
		Name: "binon",
		Subcommands: []*Command{
			{Name: "encode", Run: func([]string) error { return nil }},
			{Name: "decode", Run: func([]string) error { return nil }},
		},
	}

	err := root.Execute([]string{"encdoe"})
	if err == nil {
		t.Fatal("Execute() succeeded for unknown command")
	}
	if !strings.Contains(err.Error(), `did you mean "encode"?`) {
		t.Errorf("error = %q, want a suggestion for encode", err)
	}

	err = root.Execute([]string{"completely-different"})
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %v, want no suggestion", err)
	}
}

func TestExecuteUnknownFlagSuggests(t *testing.T) {
	command := &Command{
		Name: "encode",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("encode", pflag.ContinueOnError)
			flagSet.String("override", "", "schema name")
			return flagSet
		},
		Run: func([]string) error { return nil },
	}

	err := command.Execute([]string{"--overide", "Path"})
	if err == nil {
		t.Fatal("Execute() succeeded with an unknown flag")
	}
	if !strings.Contains(err.Error(), "did you mean --override?") {
		t.Errorf("error = %q, want a suggestion for --override", err)
	}
}

func TestExecuteRequiresSubcommand(t *testing.T) {
	var help bytes.Buffer
	root := &Command{
		Name:        "schema",
		Output:      &help,
		Subcommands: []*Command{{Name: "list", Summary: "List schemas", Run: func([]string) error { return nil }}},
	}

	if err := root.Execute(nil); err == nil || err.Error() != "subcommand required" {
		t.Errorf("Execute(nil) error = %v, want subcommand required", err)
	}
	if !strings.Contains(help.String(), "list") {
		t.Errorf("help output %q does not list subcommands", help.String())
	}
}

func TestPrintHelp(t *testing.T) {
	var format string
	root := &Command{Name: "binon"}
	command := &Command{
		Name:        "decode",
		Description: "Decode a buffer.",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("decode", pflag.ContinueOnError)
			flagSet.StringVar(&format, "format", "json", "output format")
			return flagSet
		},
		Examples: []Example{{Description: "Decode from a file", Command: "binon decode record.bin"}},
		parent:   root,
	}

	var output bytes.Buffer
	command.PrintHelp(&output)
	for _, want := range []string{
		"Decode a buffer.",
		"Usage:\n  binon decode [flags]",
		"--format",
		"# Decode from a file",
		"binon decode record.bin",
	} {
		if !strings.Contains(output.String(), want) {
			t.Errorf("help output missing %q:\n%s", want, output.String())
		}
	}
}

func TestHelpFlagPrintsHelp(t *testing.T) {
	var output bytes.Buffer
	ran := false
	command := &Command{
		Name:    "inspect",
		Summary: "Annotate a buffer",
		Output:  &output,
		Run:     func([]string) error { ran = true; return nil },
	}

	if err := command.Execute([]string{"--help"}); err != nil {
		t.Fatalf("Execute(--help) error: %v", err)
	}
	if ran {
		t.Error("Run was called for --help")
	}
	if !strings.Contains(output.String(), "Annotate a buffer") {
		t.Errorf("help output = %q", output.String())
	}
}
