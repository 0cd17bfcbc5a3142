// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is a user-facing error naming the failed operation, the
	// resource it concerned, and what the user can do about it.
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("load manifest").
	//		WithResource("crates/api/package.toml").
	//		WithSuggestion("Run 'pkgsettings get api some-key --verbose' to trace the lookup").
	//		Wrap(cause).
	//		Build()
	ActionableError struct {
		// Operation is a verb phrase such as "generate settings" or "load configuration".
		Operation string
		// Resource is the file or directory involved, if any.
		Resource string
		// Suggestions are shown as a bullet list under the message.
		Suggestions []string
		// Issue links the error to a catalog entry with a longer explanation.
		Issue Id
		// Cause is the wrapped error.
		Cause error
	}

	// ErrorContext builds an ActionableError step by step.
	ErrorContext struct {
		err ActionableError
	}
)

// NewActionableError returns an ActionableError for operation without a cause.
func NewActionableError(operation string) *ActionableError {
	return &ActionableError{Operation: operation}
}

// NewErrorContext creates an empty builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// WrapWithOperation wraps err, returning nil for a nil err.
func WrapWithOperation(err error, operation string) *ActionableError {
	return WrapWithContext(err, operation, "")
}

// WrapWithContext wraps err with an operation and a resource, returning nil for a nil err.
func WrapWithContext(err error, operation, resource string) *ActionableError {
	if err == nil {
		return nil
	}
	return &ActionableError{Operation: operation, Resource: resource, Cause: err}
}

func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// HasSuggestions reports whether any suggestion is attached.
func (e *ActionableError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// Format renders the message followed by the suggestions. In verbose mode every
// error of the cause chain is listed as well:
//
//	failed to generate settings: ./api: 1 of 3 settings failed
//
//	  • Check the directive syntax
//
//	Error chain:
//	  1. 1 of 3 settings failed
func (e *ActionableError) Format(verbose bool) string {
	var b strings.Builder
	b.WriteString(e.Error())

	if e.HasSuggestions() {
		b.WriteString("\n")
		for _, s := range e.Suggestions {
			b.WriteString("\n  • ")
			b.WriteString(s)
		}
	}

	if verbose && e.Cause != nil {
		b.WriteString("\n\nError chain:")
		for depth, err := 1, e.Cause; err != nil; depth, err = depth+1, errors.Unwrap(err) {
			fmt.Fprintf(&b, "\n  %d. %s", depth, err)
		}
	}
	return b.String()
}

func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.err.Operation = op
	return c
}

func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.err.Resource = res
	return c
}

// WithSuggestion appends one suggestion. It may be called repeatedly.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.err.Suggestions = append(c.err.Suggestions, sug)
	return c
}

func (c *ErrorContext) WithSuggestions(sugs ...string) *ErrorContext {
	c.err.Suggestions = append(c.err.Suggestions, sugs...)
	return c
}

// WithIssue links the error to a catalog entry.
func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.err.Issue = id
	return c
}

// Wrap sets the cause, replacing any previous one.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.err.Cause = err
	return c
}

// Build returns a copy of the accumulated error, or nil when no operation was set.
func (c *ErrorContext) Build() *ActionableError {
	if c.err.Operation == "" {
		return nil
	}
	out := c.err
	out.Suggestions = append([]string(nil), c.err.Suggestions...)
	return &out
}

// BuildError is Build typed as error, so a missing operation yields an untyped nil.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}

// IssueOf returns the catalog entry linked to the first ActionableError in err's
// chain that carries one.
func IssueOf(err error) (*Issue, bool) {
	for err != nil {
		var ae *ActionableError
		if !errors.As(err, &ae) {
			return nil, false
		}
		if ae.Issue != 0 {
			i := Get(ae.Issue)
			return i, i != nil
		}
		err = ae.Cause
	}
	return nil, false
}
