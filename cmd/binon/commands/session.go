// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/bureau-foundation/binon/cmd/binon/cli"
	"github.com/bureau-foundation/binon/lib/binon"
	"github.com/bureau-foundation/binon/lib/config"
	"github.com/bureau-foundation/binon/lib/schema"
)

// recordFactory is the factory name config's codec.default_object may
// select. It is the only object type the CLI knows.
const recordFactory = "Record"

// sessionParams are the flags shared by every command that loads
// definitions.
type sessionParams struct {
	ConfigPath string `flag:"config" desc:"config file (default: $BINON_CONFIG, else built-in defaults)"`
	Root       string `flag:"schemas,s" desc:"definition tree root (overrides schemas.root)"`
	LogLevel   string `flag:"log-level" desc:"debug, info, warn, or error (overrides log.level)"`
}

// session is a loaded config, logger, and codec.
type session struct {
	config *config.Config
	logger *slog.Logger
	codec  *binon.Codec
	report *schema.LoadReport
}

// loadConfig resolves the config file and applies flag overrides.
func (p *sessionParams) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case p.ConfigPath != "":
		cfg, err = config.LoadFile(p.ConfigPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if p.Root != "" {
		cfg.Schemas.Root = p.Root
	}
	if p.LogLevel != "" {
		cfg.Log.Level = p.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// open loads the config and the definition tree.
func (p *sessionParams) open(ctx context.Context, command string) (*session, error) {
	cfg, err := p.loadConfig()
	if err != nil {
		return nil, err
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	logger := cli.NewCommandLogger(level, cfg.Log.Format).With(
		"command", command,
		"root", cfg.Schemas.Root,
	)

	codec, report, err := binon.Load(ctx, cfg.Schemas.Root,
		binon.Options{
			Factories:     map[string]binon.Factory{recordFactory: binon.NewRecordFactory},
			DefaultObject: cfg.Codec.DefaultObject,
			MaxDepth:      cfg.Codec.MaxDepth,
		},
		schema.LoadOptions{
			Logger:      logger,
			Concurrency: cfg.Schemas.Concurrency,
			Extensions:  cfg.Schemas.Extensions,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("load schemas from %s: %w", cfg.Schemas.Root, err)
	}
	return &session{config: cfg, logger: logger, codec: codec, report: report}, nil
}
