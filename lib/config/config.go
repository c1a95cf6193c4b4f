// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable [Load] reads the config path
// from.
const EnvironmentVariable = "BINON_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration for binon tools.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Schemas configures where definitions are loaded from.
	Schemas SchemasConfig `yaml:"schemas"`

	// Codec configures encoding and decoding.
	Codec CodecConfig `yaml:"codec"`

	// Output configures how buffers are written.
	Output OutputConfig `yaml:"output"`

	// Log configures command logging.
	Log LogConfig `yaml:"log"`

	// Per-environment overrides, applied after the base config is
	// loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Schemas *SchemasConfig `yaml:"schemas,omitempty"`
	Codec   *CodecConfig   `yaml:"codec,omitempty"`
	Output  *OutputConfig  `yaml:"output,omitempty"`
	Log     *LogConfig     `yaml:"log,omitempty"`
}

// SchemasConfig configures the definition tree.
type SchemasConfig struct {
	// Root is the directory walked for definition files.
	// Default: ./BinOn
	Root string `yaml:"root"`

	// Concurrency bounds concurrent definition-file reads.
	// Default: 16
	Concurrency int `yaml:"concurrency"`

	// Extensions restricts which files are parsed, e.g. [".json5"].
	// Empty parses every regular file.
	Extensions []string `yaml:"extensions"`
}

// CodecConfig configures encoding and decoding.
type CodecConfig struct {
	// MaxDepth bounds reference nesting.
	// Default: 64
	MaxDepth int `yaml:"max_depth"`

	// DefaultObject names the object factory used for schemas without
	// their own. Empty means generic records.
	DefaultObject string `yaml:"default_object"`
}

// OutputConfig configures how buffers are written.
type OutputConfig struct {
	// Compression is the frame compression for packed output: none,
	// lz4, or zstd.
	// Default: none
	Compression string `yaml:"compression"`
}

// LogConfig configures command logging.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	// Default: info
	Level string `yaml:"level"`

	// Format is auto (text on a terminal, JSON otherwise), text, or
	// json.
	// Default: auto (development), json (production)
	Format string `yaml:"format"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Environment: Development,
		Schemas: SchemasConfig{
			Root:        "./BinOn",
			Concurrency: 16,
		},
		Codec: CodecConfig{
			MaxDepth: 64,
		},
		Output: OutputConfig{
			Compression: "none",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load loads configuration from the BINON_CONFIG environment variable.
//
// There are no fallbacks: if BINON_CONFIG is not set, this fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your binon.yaml config file, or use --config flag", EnvironmentVariable)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. The only expansion
// performed is ${HOME}, ${BINON_ROOT}, and ${VAR:-default} in paths.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production logs are for machines.
		if overrides == nil {
			overrides = &ConfigOverrides{Log: &LogConfig{Format: "json"}}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Schemas != nil {
		if overrides.Schemas.Root != "" {
			c.Schemas.Root = overrides.Schemas.Root
		}
		if overrides.Schemas.Concurrency != 0 {
			c.Schemas.Concurrency = overrides.Schemas.Concurrency
		}
		if overrides.Schemas.Extensions != nil {
			c.Schemas.Extensions = overrides.Schemas.Extensions
		}
	}

	if overrides.Codec != nil {
		if overrides.Codec.MaxDepth != 0 {
			c.Codec.MaxDepth = overrides.Codec.MaxDepth
		}
		if overrides.Codec.DefaultObject != "" {
			c.Codec.DefaultObject = overrides.Codec.DefaultObject
		}
	}

	if overrides.Output != nil && overrides.Output.Compression != "" {
		c.Output.Compression = overrides.Output.Compression
	}

	if overrides.Log != nil {
		if overrides.Log.Level != "" {
			c.Log.Level = overrides.Log.Level
		}
		if overrides.Log.Format != "" {
			c.Log.Format = overrides.Log.Format
		}
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"BINON_ROOT": c.Schemas.Root,
		"HOME":       os.Getenv("HOME"),
	}

	c.Schemas.Root = expandVars(c.Schemas.Root, vars)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Provided vars first, then the environment. A provided var
		// never expands to itself.
		if value, ok := vars[name]; ok && value != "" && value != match {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Schemas.Root == "" {
		errs = append(errs, errors.New("schemas.root is required"))
	}
	if c.Schemas.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("schemas.concurrency must not be negative, got %d", c.Schemas.Concurrency))
	}

	if c.Codec.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("codec.max_depth must not be negative, got %d", c.Codec.MaxDepth))
	}

	compressions := []string{"none", "lz4", "zstd"}
	if !slices.Contains(compressions, c.Output.Compression) {
		errs = append(errs, fmt.Errorf("output.compression must be one of: %v", compressions))
	}

	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	formats := []string{"auto", "text", "json"}
	if !slices.Contains(formats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", formats))
	}

	return errors.Join(errs...)
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
