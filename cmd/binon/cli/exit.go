// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError signals a non-zero exit without an extra error line. The
// command has already written its own output, as "schema check" does
// when definitions were skipped.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code. main checks for this method to tell
// a handled exit from an error to print.
func (e *ExitError) ExitCode() int {
	return e.Code
}
