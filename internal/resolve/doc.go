// SPDX-License-Identifier: MPL-2.0

// Package resolve looks up package.metadata.settings.<namespace>.<key> in the manifest
// of a directory and, when the lookup fails at any step, retries in the parent directory
// for as long as the parent holds a manifest. The nearest manifest with a complete path
// wins.
package resolve
