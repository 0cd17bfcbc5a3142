// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/pkgsettings/pkgsettings/pkg/manifest"
)

// MustMkdirAll creates a directory along with any necessary parents.
// The test fails immediately if the operation fails.
func MustMkdirAll(t testing.TB, path string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(path, perm); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

// MustWriteFile writes content to path, creating parent directories.
// The test fails immediately if the operation fails.
func MustWriteFile(t testing.TB, path, content string) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path), 0o755)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// WriteTree writes files below root. Keys are slash-separated relative paths.
// Files are written in sorted order so failures are reproducible.
func WriteTree(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for _, rel := range slices.Sorted(maps.Keys(files)) {
		MustWriteFile(t, filepath.Join(root, filepath.FromSlash(rel)), files[rel])
	}
}

// WriteManifest writes content as the default manifest file of dir and returns its path.
func WriteManifest(t testing.TB, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, manifest.DefaultFileName)
	MustWriteFile(t, path, content)
	return path
}

// PackageManifest returns a manifest declaring package.name and, when namespace is
// set, a [package.metadata.settings.<namespace>] table holding lines verbatim, e.g.
//
//	PackageManifest("inner_c", "inner_c", "some_int = 37")
func PackageManifest(name, namespace string, lines ...string) string {
	var sb strings.Builder
	sb.WriteString("[package]\n")
	sb.WriteString("name = \"" + name + "\"\n")
	if namespace != "" {
		sb.WriteString("\n[package.metadata.settings." + namespace + "]\n")
		for _, line := range lines {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
