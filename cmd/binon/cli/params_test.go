// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"slices"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

type sharedParams struct {
	Config string `flag:"config" desc:"config file"`
}

type sampleParams struct {
	sharedParams
	JSONOutput
	Format     string        `flag:"format,f" desc:"output format" default:"json"`
	Hex        bool          `flag:"hex,x" desc:"hex input"`
	Offset     int           `flag:"offset" desc:"start offset" default:"2"`
	Timeout    time.Duration `flag:"timeout" desc:"load timeout" default:"5s"`
	Extensions []string      `flag:"extension" desc:"definition extensions" default:".json5,.jsonc"`
	Untagged   string
}

func TestBindFlagsDefaults(t *testing.T) {
	var params sampleParams
	flagSet := FlagsFromParams("sample", &params)
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if params.Format != "json" || params.Hex || params.Offset != 2 || params.Timeout != 5*time.Second {
		t.Errorf("defaults = %+v", params)
	}
	if !slices.Equal(params.Extensions, []string{".json5", ".jsonc"}) {
		t.Errorf("Extensions = %v", params.Extensions)
	}
	if flagSet.Lookup("untagged") != nil {
		t.Error("untagged field was bound")
	}
}

func TestBindFlagsParses(t *testing.T) {
	var params sampleParams
	flagSet := FlagsFromParams("sample", &params)
	err := flagSet.Parse([]string{
		"-f", "cbor", "-x", "--offset=7", "--timeout", "1m",
		"--extension", ".yaml", "--config", "binon.yaml", "--json", "rest",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if params.Format != "cbor" || !params.Hex || params.Offset != 7 || params.Timeout != time.Minute {
		t.Errorf("parsed = %+v", params)
	}
	if params.Config != "binon.yaml" {
		t.Errorf("embedded Config = %q, want binon.yaml", params.Config)
	}
	if !params.OutputJSON {
		t.Error("--json did not set OutputJSON")
	}
	if !slices.Equal(params.Extensions, []string{".yaml"}) {
		t.Errorf("Extensions = %v, want [.yaml]", params.Extensions)
	}
	if !slices.Equal(flagSet.Args(), []string{"rest"}) {
		t.Errorf("Args() = %v, want [rest]", flagSet.Args())
	}
}

func TestBindFlagsRejects(t *testing.T) {
	tests := []struct {
		name   string
		params any
	}{
		{"not a pointer", sampleParams{}},
		{"pointer to non-struct", new(string)},
		{"unsupported type", &struct {
			Ratio float32 `flag:"ratio"`
		}{}},
		{"bad default", &struct {
			Count int `flag:"count" default:"many"`
		}{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := BindFlags(tt.params, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
				t.Error("BindFlags succeeded")
			}
		})
	}
}
