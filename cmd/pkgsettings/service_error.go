// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/pkgsettings/pkgsettings/internal/config"
	"github.com/pkgsettings/pkgsettings/internal/invocation"
	"github.com/pkgsettings/pkgsettings/internal/issue"
	"github.com/pkgsettings/pkgsettings/internal/resolve"
	"github.com/pkgsettings/pkgsettings/pkg/literal"
)

// ServiceError is an error with pre-rendered output and an optional catalog entry.
// Always create it with newServiceError.
type ServiceError struct {
	Err           error
	IssueID       issue.Id
	StyledMessage string
}

func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{Err: err, IssueID: issueID, StyledMessage: styledMessage}
}

func (e *ServiceError) Error() string { return e.Err.Error() }

func (e *ServiceError) Unwrap() error { return e.Err }

// issueFor picks the catalog entry that explains err.
func issueFor(err error) issue.Id {
	if id := linkedIssue(err); id != 0 {
		return id
	}
	switch {
	case errors.Is(err, invocation.ErrSyntax):
		return issue.InvalidDirectiveId
	case errors.Is(err, invocation.ErrNoGoFiles):
		return issue.PackageScanFailedId
	case errors.Is(err, literal.ErrUnsupportedValue):
		return issue.UnsupportedValueId
	case errors.Is(err, resolve.ErrManifestUnreadable), errors.Is(err, resolve.ErrManifestUnparseable):
		return issue.ManifestUnreadableId
	case errors.Is(err, resolve.ErrPathSegmentMissing):
		return issue.SettingNotFoundId
	case errors.Is(err, config.ErrInvalidConfig):
		return issue.ConfigLoadFailedId
	default:
		return 0
	}
}

func linkedIssue(err error) issue.Id {
	if i, ok := issue.IssueOf(err); ok {
		return i.Id()
	}
	return 0
}

// renderError writes err to w. Styled messages come first, then the error itself
// with its suggestions. In verbose mode the catalog entry is appended.
func renderError(w io.Writer, err error, verbose bool, glamourStyle string) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.StyledMessage != "" {
		fmt.Fprint(w, svcErr.StyledMessage)
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	fmt.Fprintln(w, ErrorStyle.Render("Error:")+" "+formatErrorForDisplay(err, verbose))

	if !verbose {
		return
	}
	id := issueFor(err)
	if svcErr != nil && svcErr.IssueID != 0 {
		id = svcErr.IssueID
	}
	if entry := issue.Get(id); entry != nil {
		if rendered, renderErr := entry.Render(glamourStyle); renderErr == nil {
			fmt.Fprint(w, rendered)
		}
	}
}

// formatErrorForDisplay uses ActionableError.Format when the chain holds one.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// glamourStyleFor maps the configured color scheme onto a glamour style name.
func glamourStyleFor(scheme config.ColorScheme) string {
	switch scheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		if lipgloss.HasDarkBackground() {
			return "dark"
		}
		return "light"
	}
}
