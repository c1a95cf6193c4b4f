// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import "errors"

var (
	// ErrNotFound is returned when a schema name or type code is not
	// in the registry.
	ErrNotFound = errors.New("schema not found")

	// ErrMalformedDefinition is returned when a definition file cannot
	// be parsed or describes an invalid schema.
	ErrMalformedDefinition = errors.New("malformed schema definition")

	// ErrFilesystem is recorded when a directory entry cannot be listed,
	// stat'd, or read during a load.
	ErrFilesystem = errors.New("schema filesystem error")
)
