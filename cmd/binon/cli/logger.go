// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates the structured logger for a command. Format
// "auto" picks slog.TextHandler when stderr is a terminal and
// slog.JSONHandler when it is piped or redirected; "text" and "json"
// force one.
//
// Callers scope the logger with command context via With():
//
//	logger := cli.NewCommandLogger(slog.LevelInfo, "auto").With(
//	    "command", "schema/check",
//	    "root", root,
//	)
func NewCommandLogger(level slog.Level, format string) *slog.Logger {
	logger, err := newLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), level, format)
	if err != nil {
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return logger
}

func newLogger(w io.Writer, terminal bool, level slog.Level, format string) (*slog.Logger, error) {
	options := &slog.HandlerOptions{Level: level}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, options)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, options)), nil
	case "auto", "":
		if terminal {
			return slog.New(slog.NewTextHandler(w, options)), nil
		}
		return slog.New(slog.NewJSONHandler(w, options)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
