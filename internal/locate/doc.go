// SPDX-License-Identifier: MPL-2.0

// Package locate finds manifest directories inside a project tree.
//
// Two searches are provided:
//   - FindRoot walks upward from a starting directory to the project root: the first
//     ancestor whose manifest carries a [workspace] section, or else the outermost
//     ancestor whose manifest declares package.name.
//   - FindComponentRoot walks the whole tree below a root and returns the directory of
//     the first manifest whose package.name matches a component name.
//
// Neither search fails on unreadable entries or malformed manifests; those are skipped.
// A component that cannot be found is not an error either: ComponentDir falls back to
// the caller's working directory.
package locate
