// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/bureau-foundation/binon/lib/clock"
)

// DefaultConcurrency bounds concurrent definition-file reads when
// LoadOptions.Concurrency is zero.
const DefaultConcurrency = 16

// LoadOptions configures [Load].
type LoadOptions struct {
	// Logger receives per-entry diagnostics. Nil discards them.
	Logger *slog.Logger

	// Concurrency is the maximum number of files read and parsed at
	// once. Directory fan-out is not limited.
	Concurrency int

	// Extensions restricts which regular files are parsed, e.g.
	// [".json5", ".jsonc"]. Empty means every file is a definition.
	Extensions []string

	// Clock times the load. Nil uses the real clock.
	Clock clock.Clock
}

// LoadFailure is one entry skipped during a load. Err wraps either
// ErrFilesystem or ErrMalformedDefinition.
type LoadFailure struct {
	Path string
	Err  error
}

func (f LoadFailure) Error() string { return fmt.Sprintf("%s: %v", f.Path, f.Err) }

func (f LoadFailure) Unwrap() error { return f.Err }

// LoadReport summarizes a completed load.
type LoadReport struct {
	Root     string
	Loaded   int
	Skipped  []LoadFailure
	Duration time.Duration
}

// Load reads every definition under root and builds a registry.
//
// Entries in a directory are processed concurrently: each subdirectory
// is loaded as one unit and each file is read and parsed as one unit.
// A directory's load completes only when all of its units have, so Load
// returns exactly when the whole tree has been visited. Failures of
// individual entries, including an unreadable root, are logged and
// listed in the report but never returned as an error.
//
// The only error Load returns is the context's, when ctx is cancelled
// before the walk finishes. Entries not yet started are then skipped;
// the registry and report cover what was loaded.
func Load(ctx context.Context, root string, options LoadOptions) (*Registry, *LoadReport, error) {
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if options.Concurrency <= 0 {
		options.Concurrency = DefaultConcurrency
	}
	if options.Clock == nil {
		options.Clock = clock.Real()
	}

	start := options.Clock.Now()
	walk := &walker{
		options:    options,
		logger:     options.Logger,
		builder:    NewBuilder(options.Logger),
		fileSlots:  semaphore.NewWeighted(int64(options.Concurrency)),
		extensions: normalizeExtensions(options.Extensions),
	}

	walk.directory(ctx, root)

	registry, buildFailures := walk.builder.Build()
	for _, failure := range buildFailures {
		walk.fail(failure.Path, failure)
	}

	report := &LoadReport{
		Root:     root,
		Loaded:   registry.Len(),
		Skipped:  walk.failures,
		Duration: clock.Since(options.Clock, start),
	}
	slices.SortFunc(report.Skipped, func(a, b LoadFailure) int {
		return strings.Compare(a.Path, b.Path)
	})

	walk.logger.Info("schemas loaded",
		"root", root,
		"count", report.Loaded,
		"skipped", len(report.Skipped),
		"duration", report.Duration,
	)
	return registry, report, ctx.Err()
}

// LoadAsync runs [Load] on a new goroutine and calls complete exactly
// once with its results. complete runs on that goroutine.
func LoadAsync(ctx context.Context, root string, options LoadOptions, complete func(*Registry, *LoadReport, error)) {
	go func() {
		complete(Load(ctx, root, options))
	}()
}

type walker struct {
	options    LoadOptions
	logger     *slog.Logger
	builder    *Builder
	fileSlots  *semaphore.Weighted
	extensions []string

	mu       sync.Mutex
	failures []LoadFailure
}

func (w *walker) fail(path string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failures = append(w.failures, LoadFailure{Path: path, Err: err})
}

// directory loads every entry of dir concurrently and returns when all
// of them have finished.
func (w *walker) directory(ctx context.Context, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Warn("schema entry unreadable", "path", dir, "error", err)
		w.fail(dir, fmt.Errorf("%w: %v", ErrFilesystem, err))
		return
	}

	var group errgroup.Group
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		group.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			info, err := os.Lstat(path)
			if err != nil {
				w.logger.Warn("schema entry unreadable", "path", path, "error", err)
				w.fail(path, fmt.Errorf("%w: %v", ErrFilesystem, err))
				return nil
			}
			if info.IsDir() {
				w.directory(ctx, path)
				return nil
			}
			w.file(ctx, path)
			return nil
		})
	}
	// Units never return errors; failures are recorded on the walker.
	_ = group.Wait()
}

// file reads, parses, and queues one definition.
func (w *walker) file(ctx context.Context, path string) {
	if !w.accepts(path) {
		w.logger.Debug("schema file ignored", "path", path)
		return
	}
	if err := w.fileSlots.Acquire(ctx, 1); err != nil {
		return
	}
	defer w.fileSlots.Release(1)

	definition, err := ReadFile(path)
	if err != nil {
		w.logger.Warn("schema skipped", "path", path, "error", err)
		w.fail(path, err)
		return
	}
	if err := w.builder.Add(definition, path); err != nil {
		w.logger.Warn("schema skipped", "path", path, "error", err)
		w.fail(path, err)
		return
	}
	w.logger.Debug("schema loaded",
		"name", definition.Name,
		"type_code", definition.Type.String(),
		"path", path,
	)
}

func (w *walker) accepts(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	return slices.Contains(w.extensions, strings.ToLower(filepath.Ext(path)))
}

func normalizeExtensions(extensions []string) []string {
	normalized := make([]string, 0, len(extensions))
	for _, extension := range extensions {
		extension = strings.ToLower(strings.TrimSpace(extension))
		if extension == "" {
			continue
		}
		if !strings.HasPrefix(extension, ".") {
			extension = "." + extension
		}
		normalized = append(normalized, extension)
	}
	return normalized
}
