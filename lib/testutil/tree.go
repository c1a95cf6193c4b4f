// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// WriteTree creates a temporary directory containing files, keyed by
// slash-separated relative path, and returns its path. A key ending in
// "/" creates an empty directory. The directory is removed when the
// test completes.
//
//	root := testutil.WriteTree(t, map[string]string{
//		"Simple.json5":       `{name: "Simple", type: 0x1001, fields: []}`,
//		"geo/Distance.json5": `{name: "Distance", type: 0x1002, ...}`,
//	})
func WriteTree(t testing.TB, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		full := filepath.Join(root, filepath.FromSlash(path))
		if path[len(path)-1] == '/' {
			if err := os.MkdirAll(full, 0o755); err != nil {
				t.Fatalf("creating directory %s: %v", path, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("creating parent of %s: %v", path, err)
		}
		if err := os.WriteFile(full, []byte(files[path]), 0o644); err != nil {
			t.Fatalf("writing %s: %v", path, err)
		}
	}
	return root
}
