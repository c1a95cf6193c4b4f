// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework for the binon tool.
//
// A [Command] tree dispatches on the first positional argument, parses
// flags with pflag, and prints structured help. Unknown commands and
// flags get an edit-distance suggestion. Commands declare parameters
// as tagged struct fields bound by [FlagsFromParams], log through
// [NewCommandLogger], and signal handled non-zero exits with
// [ExitError].
package cli
