// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkgsettings/pkgsettings/internal/config"
	"github.com/pkgsettings/pkgsettings/internal/invocation"
	"github.com/pkgsettings/pkgsettings/internal/issue"
	"github.com/pkgsettings/pkgsettings/internal/settings"
	"github.com/pkgsettings/pkgsettings/internal/watch"
)

func newGenerateCommand(app *App) *cobra.Command {
	var (
		output   string
		strict   bool
		watching bool
		debounce time.Duration
	)

	generateCmd := &cobra.Command{
		Use:   "generate [dir]",
		Short: "Resolve the settings directives of a Go package",
		Long: `Resolve every //settings:def directive of the Go package in dir (default: the
current directory, which is where 'go generate' runs) and write the generated file.

Every directive is checked before anything is written. When one fails, each
problem is reported as file:line:col and the command exits with status 1, which
makes 'go generate' fail.

With --watch the package is regenerated whenever a manifest below the project
root or one of the package's Go files changes. Failures are reported and the
watch continues until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			sess, err := app.open(cmd.Context(), func(cfg *config.Config) error {
				if cmd.Flags().Changed("output") {
					cfg.Output = config.OutputFile(output)
					if ok, errs := cfg.Output.IsValid(); !ok {
						return errors.Join(errs...)
					}
				}
				if cmd.Flags().Changed("strict") {
					cfg.Strict = strict
				}
				return nil
			})
			if err != nil {
				return err
			}

			if watching {
				return watchPackage(cmd.Context(), app, sess, dir, debounce)
			}

			res, err := sess.settings.Generate(cmd.Context(), dir)
			if err != nil {
				return generateError(dir, res, err)
			}
			reportGenerated(cmd.OutOrStdout(), res, app.verbose)
			return nil
		},
	}

	generateCmd.Flags().StringVarP(&output, "output", "o", "", "generated file name (overrides the configured output)")
	generateCmd.Flags().BoolVar(&strict, "strict", false, "fail on tables and mixed arrays instead of rendering them as strings")

	generateCmd.Flags().BoolVarP(&watching, "watch", "w", false, "regenerate whenever manifests or package sources change")
	generateCmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before regenerating in watch mode")

	return generateCmd
}

func reportGenerated(w io.Writer, res settings.GenerateResult, verbose bool) {
	switch {
	case res.Written:
		if verbose {
			fmt.Fprintf(w, "%s wrote %s (%d settings)\n", SuccessStyle.Render("✓"), displayPath(res.Output), len(res.Definitions))
		}
	case len(res.Definitions) > 0 && verbose:
		fmt.Fprintf(w, "%s %s is up to date\n", SuccessStyle.Render("✓"), displayPath(res.Output))
	}
}

// generateError turns a failed Generate into a ServiceError listing the
// diagnostics in go vet style.
func generateError(dir string, res settings.GenerateResult, err error) error {
	if !errors.Is(err, settings.ErrGenerationFailed) {
		ctx := issue.NewErrorContext().WithResource(dir).Wrap(err)
		switch {
		case errors.Is(err, invocation.ErrNoGoFiles):
			ctx.WithOperation("scan package").
				WithIssue(issue.PackageScanFailedId).
				WithSuggestion("Run the command from a directory containing Go files")
		case res.Output != "" && errors.Is(err, os.ErrPermission):
			ctx.WithOperation("write generated file").
				WithResource(displayPath(res.Output)).
				WithIssue(issue.GeneratedFileWriteFailedId)
		default:
			ctx.WithOperation("generate settings")
		}
		return ctx.BuildError()
	}

	var sb strings.Builder
	for _, d := range res.Diagnostics {
		pos := d.Pos
		pos.Filename = displayPath(pos.Filename)
		fmt.Fprintf(&sb, "%s: %s\n", KeyStyle.Render(pos.String()), d.Message())
	}

	id := issue.Id(0)
	if len(res.Diagnostics) > 0 {
		id = issueFor(res.Diagnostics[0].Err)
	}

	wrapped := issue.NewErrorContext().
		WithOperation("generate settings").
		WithResource(dir).
		WithSuggestion("Run 'pkgsettings get <namespace> <key> --explain' to inspect a single setting").
		Wrap(err).
		Build()
	return &ExitError{Code: 1, Err: newServiceError(wrapped, id, sb.String())}
}

// displayPath shortens path relative to the working directory when it lies below it.
func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
