// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pkgsettings/pkgsettings/internal/codegen"
	"github.com/pkgsettings/pkgsettings/pkg/manifest"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidManifestName is returned when a ManifestName is not a plain file name.
	ErrInvalidManifestName = errors.New("invalid manifest name")
	// ErrInvalidOutputFile is returned when an OutputFile is not a plain .go file name.
	ErrInvalidOutputFile = errors.New("invalid output file")
	// ErrInvalidExcludePattern is returned when an ExcludePattern is not a valid glob.
	ErrInvalidExcludePattern = errors.New("invalid exclude pattern")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// ManifestName is the file name of the TOML manifest looked up in every directory.
	ManifestName string

	// InvalidManifestNameError is returned when a ManifestName is empty or contains a
	// path separator.
	InvalidManifestNameError struct {
		Value ManifestName
	}

	// OutputFile is the name of the generated Go file, written next to the directives.
	OutputFile string

	// InvalidOutputFileError is returned when an OutputFile is empty, contains a path
	// separator, or lacks the .go extension.
	InvalidOutputFileError struct {
		Value OutputFile
	}

	// ExcludePattern is a doublestar glob pruning directories from the component search.
	ExcludePattern string

	// InvalidExcludePatternError is returned when an ExcludePattern does not compile.
	InvalidExcludePatternError struct {
		Value ExcludePattern
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	// It wraps ErrInvalidUIConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// ManifestName is the manifest file name (default "package.toml").
		ManifestName ManifestName `json:"manifest_name" mapstructure:"manifest_name"`
		// Output is the generated file name (default "settings_gen.go").
		Output OutputFile `json:"output" mapstructure:"output"`
		// Strict rejects tables and heterogeneous arrays instead of rendering them as strings.
		Strict bool `json:"strict" mapstructure:"strict"`
		// Exclude lists directories skipped while searching for a component's manifest.
		Exclude []ExcludePattern `json:"exclude" mapstructure:"exclude"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging of the manifest search
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// ExcludeStrings returns the exclude patterns as plain strings.
func (c Config) ExcludeStrings() []string {
	out := make([]string, len(c.Exclude))
	for i, p := range c.Exclude {
		out[i] = string(p)
	}
	return out
}

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ManifestName.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Output.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for _, pattern := range c.Exclude {
		if valid, fieldErrs := pattern.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig followed by the field errors, so errors.Is() matches
// both the aggregate sentinel and the sentinel of each failing field.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		return false, []error{&InvalidUIConfigError{FieldErrors: fieldErrs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid UI config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidUIConfig followed by the field errors.
func (e *InvalidUIConfigError) Unwrap() []error {
	return append([]error{ErrInvalidUIConfig}, e.FieldErrors...)
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the ManifestName.
func (n ManifestName) String() string { return string(n) }

// IsValid returns whether the ManifestName is a non-empty base file name.
func (n ManifestName) IsValid() (bool, []error) {
	if !isBaseName(string(n)) {
		return false, []error{&InvalidManifestNameError{Value: n}}
	}
	return true, nil
}

// Error implements the error interface for InvalidManifestNameError.
func (e *InvalidManifestNameError) Error() string {
	return fmt.Sprintf("invalid manifest name %q: must be a file name without directories", e.Value)
}

// Unwrap returns ErrInvalidManifestName for errors.Is() compatibility.
func (e *InvalidManifestNameError) Unwrap() error { return ErrInvalidManifestName }

// String returns the string representation of the OutputFile.
func (f OutputFile) String() string { return string(f) }

// IsValid returns whether the OutputFile is a base file name ending in .go that the Go
// tool would compile (no _test suffix, no leading dot or underscore).
func (f OutputFile) IsValid() (bool, []error) {
	name := string(f)
	if !isBaseName(name) || filepath.Ext(name) != ".go" ||
		strings.HasSuffix(name, "_test.go") || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
		return false, []error{&InvalidOutputFileError{Value: f}}
	}
	return true, nil
}

// Error implements the error interface for InvalidOutputFileError.
func (e *InvalidOutputFileError) Error() string {
	return fmt.Sprintf("invalid output file %q: must be a compiled .go file name without directories", e.Value)
}

// Unwrap returns ErrInvalidOutputFile for errors.Is() compatibility.
func (e *InvalidOutputFileError) Unwrap() error { return ErrInvalidOutputFile }

// String returns the string representation of the ExcludePattern.
func (p ExcludePattern) String() string { return string(p) }

// IsValid returns whether the ExcludePattern is a valid doublestar glob.
func (p ExcludePattern) IsValid() (bool, []error) {
	if p == "" || !doublestar.ValidatePattern(string(p)) {
		return false, []error{&InvalidExcludePatternError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidExcludePatternError.
func (e *InvalidExcludePatternError) Error() string {
	return fmt.Sprintf("invalid exclude pattern %q", e.Value)
}

// Unwrap returns ErrInvalidExcludePattern for errors.Is() compatibility.
func (e *InvalidExcludePatternError) Unwrap() error { return ErrInvalidExcludePattern }

func isBaseName(name string) bool {
	return strings.TrimSpace(name) != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ManifestName: manifest.DefaultFileName,
		Output:       codegen.DefaultFileName,
		Strict:       false,
		Exclude:      []ExcludePattern{},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
