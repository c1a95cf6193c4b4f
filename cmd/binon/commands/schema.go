// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/bureau-foundation/binon/cmd/binon/cli"
	"github.com/bureau-foundation/binon/lib/codec"
	"github.com/bureau-foundation/binon/lib/schema"
	"github.com/spf13/pflag"
)

func schemaCommand(std streams) *cli.Command {
	return &cli.Command{
		Name:    "schema",
		Summary: "List, show, and check loaded schemas",
		Description: `Inspect the schema registry built from the definition tree.

Every subcommand walks the tree the same way encode and decode do, so
"schema check" reports exactly the files those commands would skip.`,
		Subcommands: []*cli.Command{
			schemaListCommand(std),
			schemaShowCommand(std),
			schemaCheckCommand(std),
			schemaFingerprintCommand(std),
			schemaExportCommand(std),
		},
	}
}

type schemaListParams struct {
	sessionParams
	cli.JSONOutput
}

type schemaSummary struct {
	Name     string `json:"name"`
	TypeCode uint16 `json:"type"`
	Extends  string `json:"extends,omitempty"`
	Fields   int    `json:"fields"`
	Path     string `json:"path,omitempty"`
}

func schemaListCommand(std streams) *cli.Command {
	var params schemaListParams

	return &cli.Command{
		Name:    "list",
		Summary: "List schemas ordered by type code",
		Usage:   "binon schema list [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(args []string) error {
			if err := noArguments("schema list", args); err != nil {
				return err
			}
			session, err := params.open(context.Background(), "schema/list")
			if err != nil {
				return err
			}
			return listSchemas(session.codec.Registry(), std.stdout, &params.JSONOutput)
		},
	}
}

func listSchemas(registry *schema.Registry, w io.Writer, output *cli.JSONOutput) error {
	var summaries []schemaSummary
	for _, s := range registry.Schemas() {
		summaries = append(summaries, schemaSummary{
			Name:     s.Name,
			TypeCode: s.TypeCode,
			Extends:  s.Extends,
			Fields:   len(s.EffectiveFields()),
			Path:     s.Path,
		})
	}
	if done, err := output.EmitJSON(w, summaries); done {
		return err
	}

	table := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintln(table, "TYPE\tNAME\tEXTENDS\tFIELDS\tPATH")
	for _, summary := range summaries {
		extends := summary.Extends
		if extends == "" {
			extends = "-"
		}
		fmt.Fprintf(table, "%s\t%s\t%s\t%d\t%s\n",
			schema.TypeCode(summary.TypeCode), summary.Name, extends, summary.Fields, summary.Path)
	}
	return table.Flush()
}

type schemaShowParams struct {
	sessionParams
	cli.JSONOutput
}

func schemaShowCommand(std streams) *cli.Command {
	var params schemaShowParams

	return &cli.Command{
		Name:    "show",
		Summary: "Show a schema's effective wire layout",
		Description: `Show one schema's effective field list: inherited fields first, root
ancestor outermost, then its own. Fixed-width fields show their byte
offset from the record start; offsets after the first nested record or
array depend on the data and are shown as "+".

With --json, prints the schema's definition in canonical form.`,
		Usage: "binon schema show [flags] <name|type-code>",
		Examples: []cli.Example{
			{Description: "Show by name", Command: "binon schema show Distance"},
			{Description: "Show by type code", Command: "binon schema show 0x1002"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("show", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("schema show takes exactly one schema name or type code")
			}
			session, err := params.open(context.Background(), "schema/show")
			if err != nil {
				return err
			}
			s, err := lookupSchema(session.codec.Registry(), args[0])
			if err != nil {
				return err
			}
			return showSchema(session.codec.Registry(), s, std.stdout, &params.JSONOutput)
		},
	}
}

// lookupSchema finds a schema by name, falling back to a type code.
func lookupSchema(registry *schema.Registry, key string) (*schema.Schema, error) {
	s, err := registry.ByName(key)
	if err == nil {
		return s, nil
	}
	code, parseErr := schema.ParseTypeCode(key)
	if parseErr != nil {
		return nil, err
	}
	return registry.ByTypeCode(uint16(code))
}

func showSchema(registry *schema.Registry, s *schema.Schema, w io.Writer, output *cli.JSONOutput) error {
	if done, err := output.EmitJSON(w, s.Definition()); done {
		return err
	}

	var chain []string
	for ancestor := registry.Parent(s); ancestor != nil; ancestor = registry.Parent(ancestor) {
		chain = append(chain, ancestor.Name)
	}
	fmt.Fprintf(w, "%s (%s)\n", s.Name, schema.TypeCode(s.TypeCode))
	if len(chain) > 0 {
		fmt.Fprintf(w, "extends: %s\n", strings.Join(chain, " -> "))
	}
	if s.Path != "" {
		fmt.Fprintf(w, "path: %s\n", s.Path)
	}
	fmt.Fprintln(w)

	table := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintln(table, "OFFSET\tWIDTH\tFIELD\tTYPE")
	offset, fixed := 0, true
	for _, field := range s.EffectiveFields() {
		width := field.Type.Kind.Width()
		offsetText, widthText := "+", "var"
		if fixed {
			offsetText = fmt.Sprint(offset)
		}
		if field.Type.Kind.IsInteger() {
			widthText = fmt.Sprint(width)
			offset += width
		} else {
			fixed = false
		}
		fmt.Fprintf(table, "%s\t%s\t%s\t%s\n", offsetText, widthText, field.Name, field.Type)
	}
	if err := table.Flush(); err != nil {
		return err
	}
	if fixed {
		_, err := fmt.Fprintf(w, "\nfixed size: %d bytes\n", offset)
		return err
	}
	return nil
}

type schemaCheckParams struct {
	sessionParams
	cli.JSONOutput
}

type checkResult struct {
	Root     string         `json:"root"`
	Loaded   int            `json:"loaded"`
	Schemas  int            `json:"schemas"`
	Skipped  []skippedEntry `json:"skipped"`
	Duration string         `json:"duration"`
}

type skippedEntry struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
	Error  string `json:"error"`
}

func schemaCheckCommand(std streams) *cli.Command {
	var params schemaCheckParams

	return &cli.Command{
		Name:    "check",
		Summary: "Load the definition tree and report skipped files",
		Description: `Walk the definition tree and report every file that was skipped:
unreadable entries, malformed definitions, and schemas excluded for a
missing or cyclic parent. Exits 1 when anything was skipped.`,
		Usage: "binon schema check [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("check", &params)
		},
		Run: func(args []string) error {
			if err := noArguments("schema check", args); err != nil {
				return err
			}
			session, err := params.open(context.Background(), "schema/check")
			if err != nil {
				return err
			}
			return checkSchemas(session, std.stdout, &params.JSONOutput)
		},
	}
}

func checkSchemas(session *session, w io.Writer, output *cli.JSONOutput) error {
	report := session.report
	result := checkResult{
		Root:     report.Root,
		Loaded:   report.Loaded,
		Schemas:  session.codec.Registry().Len(),
		Skipped:  []skippedEntry{},
		Duration: report.Duration.String(),
	}
	for _, failure := range report.Skipped {
		reason := "error"
		switch {
		case errors.Is(failure.Err, schema.ErrMalformedDefinition):
			reason = "malformed"
		case errors.Is(failure.Err, schema.ErrFilesystem):
			reason = "unreadable"
		}
		result.Skipped = append(result.Skipped, skippedEntry{
			Path:   failure.Path,
			Reason: reason,
			Error:  failure.Err.Error(),
		})
	}

	session.logger.Info("definition tree checked",
		"loaded", result.Loaded,
		"schemas", result.Schemas,
		"skipped", len(result.Skipped),
		"duration", report.Duration,
	)

	if done, err := output.EmitJSON(w, result); !done {
		fmt.Fprintf(w, "%s: %d schemas from %d files in %s\n",
			result.Root, result.Schemas, result.Loaded, result.Duration)
		for _, entry := range result.Skipped {
			fmt.Fprintf(w, "  skipped (%s) %s: %s\n", entry.Reason, entry.Path, entry.Error)
		}
	} else if err != nil {
		return err
	}

	if len(result.Skipped) > 0 {
		return &cli.ExitError{Code: 1}
	}
	return nil
}

func schemaFingerprintCommand(std streams) *cli.Command {
	var params sessionParams

	return &cli.Command{
		Name:    "fingerprint",
		Summary: "Print a digest of the loaded schema set",
		Description: `Print a keyed BLAKE3 digest of every loaded definition in canonical
form. Two trees that load to the same schemas print the same
fingerprint regardless of file layout, formatting, or comments, so
peers can compare schema sets before exchanging buffers.`,
		Usage: "binon schema fingerprint [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("fingerprint", &params)
		},
		Run: func(args []string) error {
			if err := noArguments("schema fingerprint", args); err != nil {
				return err
			}
			session, err := params.open(context.Background(), "schema/fingerprint")
			if err != nil {
				return err
			}
			fingerprint, err := session.codec.Registry().Fingerprint()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(std.stdout, fingerprint)
			return err
		},
	}
}

type schemaExportParams struct {
	sessionParams
	Format string `flag:"format" desc:"export format: json or cbor" default:"json"`
}

func schemaExportCommand(std streams) *cli.Command {
	var params schemaExportParams

	return &cli.Command{
		Name:    "export",
		Summary: "Write every loaded definition in canonical form",
		Description: `Write every loaded definition, ordered by type code, as one JSON
array or one CBOR array. The output is what "schema fingerprint"
digests.`,
		Usage: "binon schema export [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("export", &params)
		},
		Run: func(args []string) error {
			if err := noArguments("schema export", args); err != nil {
				return err
			}
			session, err := params.open(context.Background(), "schema/export")
			if err != nil {
				return err
			}
			return exportSchemas(session.codec.Registry(), std.stdout, params.Format)
		},
	}
}

func exportSchemas(registry *schema.Registry, w io.Writer, format string) error {
	definitions := registry.Definitions()
	switch format {
	case "json":
		return cli.WriteJSON(w, definitions)
	case "cbor":
		data, err := codec.Marshal(definitions)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown export format %q (want json or cbor)", format)
	}
}
