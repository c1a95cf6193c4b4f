// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Definition is the on-disk form of a schema. The same struct is used
// for the JSON and CBOR exports of a registry; yaml.v3 maps the
// lowercased field names without tags.
type Definition struct {
	Name    string            `json:"name"`
	Type    TypeCode          `json:"type"`
	Extends string            `json:"extends,omitempty"`
	Fields  []FieldDefinition `json:"fields"`
}

// FieldDefinition is one field of a [Definition]. Type holds the raw
// type string, parsed by [ParseTypeTag].
type FieldDefinition struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TypeCode is a 16-bit schema type code. Definition files may write it
// as a JSON number, a relaxed-syntax hex literal (0x1002), or a string
// in any base strconv.ParseUint accepts with base 0.
type TypeCode uint16

// String formats the code as four hex digits.
func (c TypeCode) String() string {
	return fmt.Sprintf("0x%04x", uint16(c))
}

// ParseTypeCode parses a type code in decimal or prefixed hex, octal,
// or binary notation.
func ParseTypeCode(text string) (TypeCode, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(text), 0, 16)
	if err != nil {
		return 0, fmt.Errorf("type code %q: %w", text, err)
	}
	return TypeCode(value), nil
}

// UnmarshalJSON accepts a number or a string.
func (c *TypeCode) UnmarshalJSON(data []byte) error {
	text := string(data)
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = unquoted
	}
	code, err := ParseTypeCode(text)
	if err != nil {
		return err
	}
	*c = code
	return nil
}

// UnmarshalYAML accepts any scalar ParseTypeCode understands.
func (c *TypeCode) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: type code must be a scalar", node.Line)
	}
	code, err := ParseTypeCode(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*c = code
	return nil
}

// definitionFile mirrors Definition with a pointer type code so a
// missing "type" key can be told apart from type code zero.
type definitionFile struct {
	Name    string            `json:"name"`
	Type    *TypeCode         `json:"type"`
	Extends string            `json:"extends"`
	Fields  []FieldDefinition `json:"fields"`
}

// Parse decodes one definition file. Comments and trailing commas are
// stripped first; text that is still not strict JSON is retried with
// the YAML decoder for relaxed syntax. The result is validated.
// All failures wrap ErrMalformedDefinition.
func Parse(data []byte) (*Definition, error) {
	stripped := jsonc.ToJSON(data)

	var file definitionFile
	if jsonErr := json.Unmarshal(stripped, &file); jsonErr != nil {
		file = definitionFile{}
		if yamlErr := yaml.Unmarshal(stripped, &file); yamlErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDefinition, errors.Join(jsonErr, yamlErr))
		}
	}

	if file.Type == nil {
		return nil, fmt.Errorf("%w: missing type code", ErrMalformedDefinition)
	}
	definition := &Definition{
		Name:    strings.TrimSpace(file.Name),
		Type:    *file.Type,
		Extends: strings.TrimSpace(file.Extends),
	}
	for _, field := range file.Fields {
		definition.Fields = append(definition.Fields, FieldDefinition{
			Name: strings.TrimSpace(field.Name),
			Type: strings.TrimSpace(field.Type),
		})
	}
	if err := definition.Validate(); err != nil {
		return nil, err
	}
	return definition, nil
}

// ReadFile reads and parses the definition file at path.
func ReadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrFilesystem, path, err)
	}

	definition, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return definition, nil
}

// Validate checks the definition on its own, without reference to other
// schemas: the name is present, the schema does not extend itself, and
// every field has a unique non-empty name and a parseable type.
func (d *Definition) Validate() error {
	var errs []error

	if d.Name == "" {
		errs = append(errs, errors.New("missing name"))
	}
	if d.Extends != "" && d.Extends == d.Name {
		errs = append(errs, fmt.Errorf("schema %q extends itself", d.Name))
	}

	seen := make(map[string]bool, len(d.Fields))
	for index, field := range d.Fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("field %d: missing name", index))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Errorf("field %q declared twice", name))
		}
		seen[name] = true
		if _, err := ParseTypeTag(field.Type); err != nil {
			errs = append(errs, fmt.Errorf("field %q: %w", name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrMalformedDefinition, errors.Join(errs...))
	}
	return nil
}
