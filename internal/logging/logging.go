// SPDX-License-Identifier: MPL-2.0

// Package logging builds the prefixed charmbracelet loggers shared by the CLI and
// the resolution packages.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// AppName is used as the root prefix of every logger.
const AppName = "pkgsettings"

// New returns a logger writing to w with the given component prefix.
// Verbose lowers the level from warn to debug.
func New(w io.Writer, component string, verbose bool) *log.Logger {
	if w == nil {
		w = os.Stderr
	}

	prefix := AppName
	if component != "" {
		prefix += "/" + component
	}

	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}

	return log.NewWithOptions(w, log.Options{
		Prefix: prefix,
		Level:  level,
	})
}

// Discard returns a logger that drops every record. Packages use it when the
// caller did not supply one.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
