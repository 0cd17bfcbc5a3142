// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the pkgsettings command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pkgsettings",
		Short: "Generate Go constants from settings declared in package manifests",
		Long: TitleStyle.Render("pkgsettings") + SubtitleStyle.Render(" - settings from package manifests, resolved at generate time") + `

Settings live in the manifest of each component, under
package.metadata.settings.<namespace>.<key>. A Go package asks for them with
directives, and 'go generate' turns them into constants:

  //go:generate pkgsettings generate
  //settings:def Greeting = settings("example-crate", "some-key")

When a component does not declare a key, the manifests of its parent directories
are searched, so workspaces can provide defaults for all members.

` + SubtitleStyle.Render("Examples:") + `
  pkgsettings generate                 Generate settings_gen.go for the current package
  pkgsettings get example-crate key    Print the value a directive would receive
  pkgsettings root                     Print the project root
  pkgsettings config show              Show current configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.flags.configPath, "config", "", "config file (default is <user config dir>/pkgsettings/config.cue)")

	rootCmd.AddCommand(
		newGenerateCommand(app),
		newGetCommand(app),
		newRootDirCommand(app),
		newLocateCommand(app),
		newConfigCommand(app),
	)

	return rootCmd
}

func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process. It is called by main.main().
func Execute() {
	os.Exit(Run())
}

// Run runs the CLI with os.Args and returns the exit code.
func Run() int {
	return NewApp(Dependencies{}).Run(context.Background(), os.Args[1:])
}

// Run executes the command tree with args and returns the exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	rootCmd := NewRootCommand(a)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			renderError(w, err, a.verbose || a.flags.verbose, glamourStyleFor(a.colorScheme))
		}),
	)
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}
