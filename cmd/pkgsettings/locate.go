// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pkgsettings/pkgsettings/internal/issue"
)

func newRootDirCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "root [dir]",
		Short: "Print the project root above dir",
		Long: `Print the project root: the nearest ancestor whose manifest has a [workspace]
table, otherwise the outermost ancestor whose manifest declares package.name.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sess.settings.Locator().FindRoot(abs))
			return nil
		},
	}
}

func newLocateCommand(app *App) *cobra.Command {
	var dir string

	locateCmd := &cobra.Command{
		Use:   "locate <name>",
		Short: "Print the directory of the component named <name>",
		Long: `Search the project tree for the manifest whose package.name is <name> and print
its directory. Directories are visited in lexical order; the first match wins.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			locator := sess.settings.Locator()
			root := locator.FindRoot(abs)
			found, ok, err := locator.FindComponentRoot(cmd.Context(), root, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return issue.NewErrorContext().
					WithOperation("locate component").
					WithResource(args[0]).
					WithSuggestion(fmt.Sprintf("No %s below %s declares package.name = %q", locator.ManifestName(), root, args[0])).
					WithSuggestion("Check the exclude patterns of the configuration").
					BuildError()
			}
			fmt.Fprintln(cmd.OutOrStdout(), found)
			return nil
		},
	}

	locateCmd.Flags().StringVarP(&dir, "dir", "C", ".", "directory the project root is searched from")

	return locateCmd
}
