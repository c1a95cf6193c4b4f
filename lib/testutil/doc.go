// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for binon packages.
//
// [WriteTree] materializes a map of relative paths to file contents
// under a fresh temporary directory, creating intermediate directories
// as needed. Schema loader and CLI tests use it to build definition
// trees without fixture files.
//
// [RequireReceive] and [RequireNoReceive] encapsulate the
// timeout safety valve pattern (select with time.After fallback) so
// that individual tests do not need direct time.After calls. These are
// the only place in the test suite where real wall-clock timeouts are
// used.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no binon-internal dependencies.
package testutil
