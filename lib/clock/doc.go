// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for testability.
//
// Production code that needs the current time (for example the schema
// loader timing a directory walk) accepts a [Clock] instead of calling
// time.Now directly. [Real] is backed by the time package. [Fake] stands
// still until the test moves it with Advance or Set, so durations
// reported by the code under test are exact.
package clock
