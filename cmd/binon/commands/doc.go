// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the binon command tree.
//
// Commands that touch records load the definition tree first: the
// root comes from --schemas, else the config file's schemas.root. The
// config file is --config, else $BINON_CONFIG, else built-in defaults.
// Binary input is read from a trailing file argument or stdin, and
// --hex accepts hex text in its place.
package commands
