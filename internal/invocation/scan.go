// SPDX-License-Identifier: MPL-2.0

package invocation

import (
	"errors"
	"fmt"
	"go/ast"
	"go/build"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoGoFiles is returned by ScanPackage when a directory has no eligible Go files.
var ErrNoGoFiles = errors.New("no Go files")

// Package is the result of scanning one directory.
type Package struct {
	// Name is the Go package name shared by the scanned files.
	Name string
	// Dir is the scanned directory.
	Dir string
	// Directives are the well-formed directives, ordered by file name then offset.
	Directives []Directive
	// Problems are the malformed or duplicate directives, in file order.
	Problems []*SyntaxError
}

// ScanPackage parses the non-test, non-generated Go files of dir that match the
// default build context and collects their directives. Malformed directives are
// reported in Problems; the returned error is reserved for I/O failures, Go syntax
// errors, and mixed package names.
func ScanPackage(dir string) (*Package, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading package directory: %w", err)
	}

	fset := token.NewFileSet()
	pkg := &Package{Dir: dir}
	seen := make(map[string]token.Position)

	for _, entry := range entries {
		if !eligible(entry) {
			continue
		}
		// Files the toolchain would not build (//go:build ignore helpers, other
		// GOOS/GOARCH) contribute neither a package name nor directives.
		match, matchErr := build.Default.MatchFile(dir, entry.Name())
		if matchErr != nil {
			return nil, fmt.Errorf("checking build constraints of %s: %w", entry.Name(), matchErr)
		}
		if !match {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		file, parseErr := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if parseErr != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, parseErr)
		}
		if ast.IsGenerated(file) {
			continue
		}

		switch pkg.Name {
		case "":
			pkg.Name = file.Name.Name
		case file.Name.Name:
		default:
			return nil, fmt.Errorf("found packages %s and %s in %s", pkg.Name, file.Name.Name, dir)
		}

		for _, group := range file.Comments {
			for _, c := range group.List {
				if !IsDirective(c.Text) {
					continue
				}
				pos := fset.Position(c.Slash)

				d, dirErr := ParseDirective(c.Text)
				if dirErr != nil {
					var synErr *SyntaxError
					if errors.As(dirErr, &synErr) {
						synErr.Pos = pos
						pkg.Problems = append(pkg.Problems, synErr)
						continue
					}
					return nil, dirErr
				}
				d.Pos = pos

				if d.Name == "main" && file.Name.Name == "main" {
					pkg.Problems = append(pkg.Problems, &SyntaxError{
						Pos: pos,
						Msg: "main cannot be declared as a setting in package main",
					})
					continue
				}
				if prev, dup := seen[d.Name]; dup {
					pkg.Problems = append(pkg.Problems, &SyntaxError{
						Pos: pos,
						Msg: fmt.Sprintf("%s redeclared, previous directive at %s", d.Name, prev),
					})
					continue
				}
				seen[d.Name] = pos
				pkg.Directives = append(pkg.Directives, d)
			}
		}
	}

	if pkg.Name == "" {
		return nil, fmt.Errorf("%w in %s", ErrNoGoFiles, dir)
	}

	return pkg, nil
}

func eligible(entry os.DirEntry) bool {
	name := entry.Name()
	if entry.IsDir() || filepath.Ext(name) != ".go" {
		return false
	}
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return false
	}
	return !strings.HasSuffix(name, "_test.go")
}
