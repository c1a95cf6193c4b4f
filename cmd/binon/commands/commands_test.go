// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bureau-foundation/binon/cmd/binon/cli"
	"github.com/bureau-foundation/binon/lib/codec"
	"github.com/bureau-foundation/binon/lib/config"
	"github.com/bureau-foundation/binon/lib/frame"
	"github.com/bureau-foundation/binon/lib/schema"
	"github.com/bureau-foundation/binon/lib/testutil"
)

var definitionFiles = map[string]string{
	"Simple.json5": `// Every record starts with its type code.
{name: "Simple", type: 0x1001, fields: [{name: "type", type: "uint16"}]}`,
	"geo/Distance.json5": `{name: "Distance", type: 0x1002, extends: "Simple", fields: [{name: "meters", type: "uint32"}]}`,
	"geo/Route.json":     `{"name": "Route", "type": 4099, "extends": "Simple", "fields": [{"name": "legs", "type": "<Distance>*"}]}`,
}

const (
	distanceJSON = `{"map":"Distance","type":4098,"meters":42}`
	distanceHex  = "10020000002a"
	routeJSON    = `{"map":"Route","type":4099,"legs":[` +
		`{"map":"Distance","type":4098,"meters":5},{"map":"Distance","type":4098,"meters":7}]}`
	routeHex = "1003" + "0002" + "100200000005" + "100200000007"
)

// writeSchemas writes the test definition tree and clears any config
// path inherited from the environment.
func writeSchemas(t *testing.T) string {
	t.Helper()
	t.Setenv(config.EnvironmentVariable, "")
	return testutil.WriteTree(t, definitionFiles)
}

// run executes the command tree with stdin and returns what it wrote.
func run(t *testing.T, stdin []byte, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRoot(streams{stdin: bytes.NewReader(stdin), stdout: &stdout, stderr: &stderr})
	err := root.Execute(args)
	return stdout.String(), stderr.String(), err
}

// schemaFlags are the flags pointing a command at root quietly.
func schemaFlags(root string) []string {
	return []string{"--schemas", root, "--log-level", "error"}
}

func command(root string, args ...string) []string {
	return append(append(args[:1:1], schemaFlags(root)...), args[1:]...)
}

func TestEncodeDecode(t *testing.T) {
	root := writeSchemas(t)

	encoded, _, err := run(t, []byte(`{"map": "Distance", "meters": 42}`), command(root, "encode", "--hex")...)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if encoded != distanceHex+"\n" {
		t.Errorf("encode --hex = %q, want %q", encoded, distanceHex+"\n")
	}

	decoded, _, err := run(t, []byte(encoded), command(root, "decode", "--hex")...)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded != distanceJSON+"\n" {
		t.Errorf("decode = %q, want %q", decoded, distanceJSON+"\n")
	}
}

func TestEncodeBatchWithComments(t *testing.T) {
	root := writeSchemas(t)
	input := `[
	// Type codes come from the schemas.
	{map: "Distance", meters: 42},
	{"map": "Route", "legs": [{"meters": 5}, {"meters": 7},],},
]`
	// Unquoted keys are not JSON; only comments and trailing commas
	// are relaxed for records.
	if _, _, err := run(t, []byte(input), command(root, "encode")...); err == nil {
		t.Fatal("encode accepted unquoted keys")
	}

	input = strings.ReplaceAll(input, `{map: "Distance", meters: 42}`, `{"map": "Distance", "meters": 42}`)
	encoded, _, err := run(t, []byte(input), command(root, "encode", "--hex")...)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if want := distanceHex + routeHex + "\n"; encoded != want {
		t.Errorf("encode = %q, want %q", encoded, want)
	}

	decoded, _, err := run(t, []byte(encoded), command(root, "decode", "--hex")...)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if want := distanceJSON + "\n" + routeJSON + "\n"; decoded != want {
		t.Errorf("decode =\n%s\nwant\n%s", decoded, want)
	}

	first, _, err := run(t, []byte(encoded), command(root, "decode", "--hex", "--first", "--offset", "6")...)
	if err != nil {
		t.Fatalf("decode --first failed: %v", err)
	}
	if first != routeJSON+"\n" {
		t.Errorf("decode --first --offset 6 = %q, want %q", first, routeJSON+"\n")
	}
}

func TestEncodeOverride(t *testing.T) {
	root := writeSchemas(t)

	encoded, _, err := run(t, []byte(`{"meters": 7}`), command(root, "encode", "--hex", "--override", "Distance")...)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if encoded != "100200000007\n" {
		t.Errorf("encode = %q, want 100200000007", encoded)
	}

	decoded, _, err := run(t, []byte("00 00 00 00 00 07"), command(root, "decode", "--hex", "--override", "Distance")...)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if want := `{"map":"Distance","type":0,"meters":7}` + "\n"; decoded != want {
		t.Errorf("decode --override = %q, want %q", decoded, want)
	}
}

func TestEncodeErrors(t *testing.T) {
	root := writeSchemas(t)

	tests := []struct {
		name  string
		input string
		args  []string
		want  string
	}{
		{"unknown schema", `{"map": "Nope"}`, nil, "Nope"},
		{"missing field", `{"map": "Distance"}`, nil, "meters"},
		{"out of range", `{"map": "Distance", "meters": -1}`, nil, "meters"},
		{"bad array element", `[{"map": "Distance", "meters": 1}, {"map": "Distance"}]`, nil, "record 1"},
		{"unknown input format", `{}`, []string{"--from", "yaml"}, "unknown input format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(command(root, "encode"), tt.args...)
			_, _, err := run(t, []byte(tt.input), args...)
			if err == nil {
				t.Fatal("encode succeeded")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestDecodeFormats(t *testing.T) {
	root := writeSchemas(t)
	buffer, _ := hex.DecodeString(distanceHex)

	jsonc, _, err := run(t, buffer, command(root, "decode", "--format", "jsonc")...)
	if err != nil {
		t.Fatalf("decode --format jsonc failed: %v", err)
	}
	if !strings.Contains(jsonc, "\n\t\"meters\": 42") {
		t.Errorf("jsonc output not indented:\n%s", jsonc)
	}

	cborOutput, _, err := run(t, buffer, command(root, "decode", "--format", "cbor")...)
	if err != nil {
		t.Fatalf("decode --format cbor failed: %v", err)
	}
	var tree map[string]any
	if err := codec.Unmarshal([]byte(cborOutput), &tree); err != nil {
		t.Fatalf("decode output is not CBOR: %v", err)
	}
	if tree["map"] != "Distance" {
		t.Errorf("CBOR map = %v, want Distance", tree["map"])
	}

	encoded, _, err := run(t, []byte(cborOutput), command(root, "encode", "--from", "cbor", "--hex")...)
	if err != nil {
		t.Fatalf("encode --from cbor failed: %v", err)
	}
	if encoded != distanceHex+"\n" {
		t.Errorf("CBOR round trip = %q, want %q", encoded, distanceHex)
	}

	if _, _, err := run(t, buffer, command(root, "decode", "--format", "xml")...); err == nil {
		t.Error("decode accepted format xml")
	}
}

func TestDecodeErrors(t *testing.T) {
	root := writeSchemas(t)

	tests := []struct {
		name string
		hex  string
		args []string
		want string
	}{
		{"unknown type code", "7777", nil, "unknown type code"},
		{"truncated field", "100200", nil, "meters"},
		{"offset past end", distanceHex, []string{"--offset", "9"}, "outside buffer"},
		{"second record truncated", distanceHex + "1002", nil, "record 1 at offset 6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(command(root, "decode", "--hex"), tt.args...)
			_, _, err := run(t, []byte(tt.hex), args...)
			if err == nil {
				t.Fatal("decode succeeded")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestEncodeFrameDecodeFramed(t *testing.T) {
	root := writeSchemas(t)
	var batch []string
	for i := 0; i < 200; i++ {
		batch = append(batch, `{"map": "Distance", "meters": 42}`)
	}
	input := "[" + strings.Join(batch, ",") + "]"

	framed, _, err := run(t, []byte(input), command(root, "encode", "--frame", "--compression", "zstd")...)
	if err != nil {
		t.Fatalf("encode --frame failed: %v", err)
	}
	payload, tag, err := frame.Unpack([]byte(framed))
	if err != nil {
		t.Fatalf("output is not a frame: %v", err)
	}
	if tag != frame.Zstd || len(payload) != 200*6 {
		t.Errorf("frame = %s with %d byte payload, want zstd with %d", tag, len(payload), 200*6)
	}

	decoded, _, err := run(t, []byte(framed), command(root, "decode", "--framed")...)
	if err != nil {
		t.Fatalf("decode --framed failed: %v", err)
	}
	if lines := strings.Count(decoded, distanceJSON+"\n"); lines != 200 {
		t.Errorf("decoded %d Distance records, want 200", lines)
	}
}

func TestInspect(t *testing.T) {
	root := writeSchemas(t)

	output, _, err := run(t, []byte(routeHex), command(root, "inspect", "--hex", "--json")...)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	var views []annotationView
	if err := json.Unmarshal([]byte(output), &views); err != nil {
		t.Fatalf("inspect --json output: %v\n%s", err, output)
	}
	want := []annotationView{
		{Offset: 0, Width: 2, Path: "type", Type: "uint16", Value: "4099", Bytes: "1003"},
		{Offset: 2, Width: 2, Path: "legs", Type: "count", Value: "2", Bytes: "0002"},
		{Offset: 4, Width: 0, Path: "legs[0]", Type: "<Distance>", Value: "Distance"},
		{Offset: 4, Width: 2, Path: "legs[0].type", Type: "uint16", Value: "4098", Bytes: "1002"},
		{Offset: 6, Width: 4, Path: "legs[0].meters", Type: "uint32", Value: "5", Bytes: "00000005"},
		{Offset: 10, Width: 0, Path: "legs[1]", Type: "<Distance>", Value: "Distance"},
		{Offset: 10, Width: 2, Path: "legs[1].type", Type: "uint16", Value: "4098", Bytes: "1002"},
		{Offset: 12, Width: 4, Path: "legs[1].meters", Type: "uint32", Value: "7", Bytes: "00000007"},
	}
	if diff := cmp.Diff(want, views); diff != "" {
		t.Errorf("annotations (-want +got):\n%s", diff)
	}

	text, _, err := run(t, []byte(routeHex), command(root, "inspect", "--hex")...)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	for _, want := range []string{"OFFSET", "legs[1].meters", "00000007", "16 bytes, next record at offset 16"} {
		if !strings.Contains(text, want) {
			t.Errorf("inspect output missing %q:\n%s", want, text)
		}
	}
}

func TestDiag(t *testing.T) {
	root := writeSchemas(t)

	output, _, err := run(t, []byte(distanceHex+distanceHex), command(root, "diag", "--hex")...)
	if err != nil {
		t.Fatalf("diag failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 2 {
		t.Fatalf("diag printed %d lines, want 2:\n%s", len(lines), output)
	}
	for _, want := range []string{`"map": "Distance"`, `"meters": 42`} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("diag line %q missing %q", lines[0], want)
		}
	}

	sequence, err := codec.Marshal(map[string]any{"count": 3})
	if err != nil {
		t.Fatal(err)
	}
	raw, _, err := run(t, sequence, "diag", "--cbor")
	if err != nil {
		t.Fatalf("diag --cbor failed: %v", err)
	}
	if raw != `{"count": 3}`+"\n" {
		t.Errorf("diag --cbor = %q", raw)
	}
}

func TestSchemaList(t *testing.T) {
	root := writeSchemas(t)

	output, _, err := run(t, nil, command(root, "schema", "list", "--json")...)
	if err == nil {
		t.Fatal("schema accepted session flags before the subcommand")
	}

	output, _, err = run(t, nil, append([]string{"schema", "list", "--json"}, schemaFlags(root)...)...)
	if err != nil {
		t.Fatalf("schema list failed: %v", err)
	}
	var summaries []schemaSummary
	if err := json.Unmarshal([]byte(output), &summaries); err != nil {
		t.Fatalf("schema list --json output: %v", err)
	}
	for index := range summaries {
		summaries[index].Path = filepath.Base(summaries[index].Path)
	}
	want := []schemaSummary{
		{Name: "Simple", TypeCode: 0x1001, Fields: 1, Path: "Simple.json5"},
		{Name: "Distance", TypeCode: 0x1002, Extends: "Simple", Fields: 2, Path: "Distance.json5"},
		{Name: "Route", TypeCode: 0x1003, Extends: "Simple", Fields: 2, Path: "Route.json"},
	}
	if diff := cmp.Diff(want, summaries); diff != "" {
		t.Errorf("schemas (-want +got):\n%s", diff)
	}

	text, _, err := run(t, nil, append([]string{"schema", "list"}, schemaFlags(root)...)...)
	if err != nil {
		t.Fatalf("schema list failed: %v", err)
	}
	if !strings.Contains(text, "0x1002") || !strings.Contains(text, "Distance") {
		t.Errorf("schema list output:\n%s", text)
	}
}

func TestSchemaShow(t *testing.T) {
	root := writeSchemas(t)
	show := func(args ...string) (string, error) {
		output, _, err := run(t, nil, append(append([]string{"schema", "show"}, schemaFlags(root)...), args...)...)
		return output, err
	}

	output, err := show("Distance")
	if err != nil {
		t.Fatalf("schema show failed: %v", err)
	}
	for _, want := range []string{"Distance (0x1002)", "extends: Simple", "meters", "fixed size: 6 bytes"} {
		if !strings.Contains(output, want) {
			t.Errorf("schema show Distance missing %q:\n%s", want, output)
		}
	}

	output, err = show("0x1003")
	if err != nil {
		t.Fatalf("schema show by type code failed: %v", err)
	}
	if !strings.Contains(output, "<Distance>*") || strings.Contains(output, "fixed size") {
		t.Errorf("schema show Route:\n%s", output)
	}

	output, err = show("--json", "Route")
	if err != nil {
		t.Fatalf("schema show --json failed: %v", err)
	}
	var definition schema.Definition
	if err := json.Unmarshal([]byte(output), &definition); err != nil {
		t.Fatalf("schema show --json output: %v", err)
	}
	if definition.Name != "Route" || definition.Fields[0].Type != "<Distance>*" {
		t.Errorf("definition = %+v", definition)
	}

	if _, err := show("Nowhere"); !errors.Is(err, schema.ErrNotFound) {
		t.Errorf("schema show Nowhere error = %v, want ErrNotFound", err)
	}
}

func TestSchemaCheck(t *testing.T) {
	root := writeSchemas(t)

	output, _, err := run(t, nil, append([]string{"schema", "check"}, schemaFlags(root)...)...)
	if err != nil {
		t.Fatalf("schema check failed on a clean tree: %v\n%s", err, output)
	}
	if !strings.Contains(output, "3 schemas from 3 files") {
		t.Errorf("schema check output: %q", output)
	}

	if err := os.WriteFile(filepath.Join(root, "broken.json"), []byte("{not a definition"), 0o644); err != nil {
		t.Fatal(err)
	}
	output, _, err = run(t, nil, append([]string{"schema", "check", "--json"}, schemaFlags(root)...)...)
	var exit *cli.ExitError
	if !errors.As(err, &exit) || exit.Code != 1 {
		t.Fatalf("schema check error = %v, want exit code 1", err)
	}
	var result checkResult
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("schema check --json output: %v", err)
	}
	if result.Schemas != 3 || len(result.Skipped) != 1 {
		t.Fatalf("result = %+v", result)
	}
	if skipped := result.Skipped[0]; skipped.Reason != "malformed" || filepath.Base(skipped.Path) != "broken.json" {
		t.Errorf("skipped = %+v", skipped)
	}
}

func TestSchemaCheckLogsSummary(t *testing.T) {
	root := writeSchemas(t)
	if err := os.WriteFile(filepath.Join(root, "broken.json"), []byte("{not a definition"), 0o644); err != nil {
		t.Fatal(err)
	}

	params := sessionParams{Root: root, LogLevel: "error"}
	session, err := params.open(context.Background(), "schema/check")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	var logs bytes.Buffer
	session.logger = slog.New(slog.NewJSONHandler(&logs, nil))

	var stdout bytes.Buffer
	err = checkSchemas(session, &stdout, &cli.JSONOutput{})
	var exit *cli.ExitError
	if !errors.As(err, &exit) || exit.Code != 1 {
		t.Fatalf("checkSchemas error = %v, want exit code 1", err)
	}

	var entry struct {
		Msg     string `json:"msg"`
		Loaded  int    `json:"loaded"`
		Schemas int    `json:"schemas"`
		Skipped int    `json:"skipped"`
	}
	if err := json.Unmarshal(logs.Bytes(), &entry); err != nil {
		t.Fatalf("log output %q: %v", logs.String(), err)
	}
	if entry.Msg != "definition tree checked" || entry.Loaded != 3 || entry.Schemas != 3 || entry.Skipped != 1 {
		t.Errorf("log entry = %+v, want 3 loaded, 3 schemas, 1 skipped", entry)
	}
}

func TestSchemaFingerprintAndExport(t *testing.T) {
	root := writeSchemas(t)
	fingerprint := func(root string) string {
		output, _, err := run(t, nil, append([]string{"schema", "fingerprint"}, schemaFlags(root)...)...)
		if err != nil {
			t.Fatalf("schema fingerprint failed: %v", err)
		}
		return strings.TrimSpace(output)
	}

	first := fingerprint(root)
	if len(first) != 64 {
		t.Errorf("fingerprint %q is not 32 bytes of hex", first)
	}

	// The same schemas in one flat directory with different spelling.
	flat := testutil.WriteTree(t, map[string]string{
		"a.json": `{"name": "Route", "type": "0x1003", "extends": "Simple", "fields": [{"name": "legs", "type": "Distance*"}]}`,
		"b.json": `{"name": "Distance", "type": 4098, "extends": "Simple", "fields": [{"name": "meters", "type": "uint32"}]}`,
		"c.yaml": "name: Simple\ntype: 0x1001\nfields:\n  - {name: type, type: uint16}\n",
	})
	if second := fingerprint(flat); second != first {
		t.Errorf("fingerprint of equivalent tree = %s, want %s", second, first)
	}

	exported, _, err := run(t, nil, append([]string{"schema", "export", "--format", "cbor"}, schemaFlags(root)...)...)
	if err != nil {
		t.Fatalf("schema export failed: %v", err)
	}
	var definitions []schema.Definition
	if err := codec.Unmarshal([]byte(exported), &definitions); err != nil {
		t.Fatalf("schema export output: %v", err)
	}
	if len(definitions) != 3 || definitions[2].Name != "Route" || definitions[2].Fields[0].Type != "<Distance>*" {
		t.Errorf("exported definitions = %+v", definitions)
	}
}

func TestFramePackUnpack(t *testing.T) {
	t.Setenv(config.EnvironmentVariable, "")
	payload := bytes.Repeat([]byte(distanceHex), 100)

	packed, _, err := run(t, payload, "frame", "pack", "-c", "lz4")
	if err != nil {
		t.Fatalf("frame pack failed: %v", err)
	}
	if _, tag, err := frame.Unpack([]byte(packed)); err != nil || tag != frame.LZ4 {
		t.Fatalf("packed frame tag = %s, err %v", tag, err)
	}

	stream := []byte(packed + packed)
	unpacked, log, err := run(t, stream, "frame", "unpack", "--verbose")
	if err != nil {
		t.Fatalf("frame unpack failed: %v", err)
	}
	if want := string(payload) + string(payload); unpacked != want {
		t.Errorf("unpacked %d bytes, want %d", len(unpacked), len(want))
	}
	if strings.Count(log, "lz4") != 2 {
		t.Errorf("verbose log = %q, want two lz4 frames", log)
	}

	if _, _, err := run(t, stream[:len(stream)-1], "frame", "unpack"); !errors.Is(err, frame.ErrTruncated) {
		t.Errorf("unpack of truncated stream error = %v, want ErrTruncated", err)
	}
}

func TestConfigFile(t *testing.T) {
	root := writeSchemas(t)
	configPath := filepath.Join(t.TempDir(), "binon.yaml")
	contents := "schemas:\n  root: " + root + "\noutput:\n  compression: zstd\nlog:\n  level: error\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	encoded, _, err := run(t, []byte(`{"map": "Distance", "meters": 42}`), "encode", "--config", configPath, "--hex")
	if err != nil {
		t.Fatalf("encode with --config failed: %v", err)
	}
	if encoded != distanceHex+"\n" {
		t.Errorf("encode = %q, want %q", encoded, distanceHex)
	}

	t.Setenv(config.EnvironmentVariable, configPath)
	payload := bytes.Repeat([]byte{0x10, 0x02, 0, 0, 0, 42}, 100)
	packed, _, err := run(t, payload, "frame", "pack")
	if err != nil {
		t.Fatalf("frame pack with $BINON_CONFIG failed: %v", err)
	}
	if _, tag, err := frame.Unpack([]byte(packed)); err != nil || tag != frame.Zstd {
		t.Errorf("frame tag = %s, err %v, want zstd from config", tag, err)
	}

	if err := os.WriteFile(configPath, []byte("log:\n  format: xml\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := run(t, nil, "schema", "list"); err == nil || !strings.Contains(err.Error(), "log.format") {
		t.Errorf("invalid config error = %v", err)
	}
}

func TestVersionAndUnknownCommand(t *testing.T) {
	output, _, err := run(t, nil, "--version")
	if err != nil || !strings.Contains(output, "(") {
		t.Errorf("--version = %q, %v", output, err)
	}
	output, _, err = run(t, nil, "version", "--full")
	if err != nil || !strings.Contains(output, "Go: ") {
		t.Errorf("version --full = %q, %v", output, err)
	}

	_, _, err = run(t, nil, "decdoe")
	if err == nil || !strings.Contains(err.Error(), `did you mean "decode"?`) {
		t.Errorf("unknown command error = %v", err)
	}

	_, help, err := run(t, nil)
	if err == nil || !strings.Contains(help, "Commands:") {
		t.Errorf("bare binon = %v, help %q", err, help)
	}
}
