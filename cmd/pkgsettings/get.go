// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkgsettings/pkgsettings/internal/codegen"
	"github.com/pkgsettings/pkgsettings/internal/issue"
	"github.com/pkgsettings/pkgsettings/internal/resolve"
)

func newGetCommand(app *App) *cobra.Command {
	var (
		dir     string
		explain bool
	)

	getCmd := &cobra.Command{
		Use:   "get <namespace> <key>",
		Short: "Print the value a directive would receive",
		Long: `Resolve package.metadata.settings.<namespace>.<key> exactly as 'generate' does for
a directive in dir, and print the value as a Go expression.`,
		Example: `  pkgsettings get example-crate some-key
  pkgsettings get example-crate some-key --dir ./internal/server --explain`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.open(cmd.Context(), nil)
			if err != nil {
				return err
			}

			p := resolve.Path{Namespace: args[0], Key: args[1]}
			eval, err := sess.settings.Evaluate(cmd.Context(), dir, p)
			if err != nil {
				return issue.NewErrorContext().
					WithOperation("resolve setting").
					WithResource(p.String()).
					WithIssue(issueFor(err)).
					Wrap(err).
					BuildError()
			}

			out := cmd.OutOrStdout()
			if !explain {
				fmt.Fprintln(out, codegen.Expr(eval.Literal))
				return nil
			}

			rows := []struct{ label, value string }{
				{"setting", p.String()},
				{"value", codegen.Expr(eval.Literal)},
				{"type", codegen.GoType(eval.Literal)},
				{"manifest", eval.Manifest},
				{"component dir", eval.ComponentDir},
				{"project root", eval.Root},
			}
			for _, row := range rows {
				fmt.Fprintf(out, "%s %s\n", KeyStyle.Render(fmt.Sprintf("%-14s", row.label+":")), row.value)
			}
			return nil
		},
	}

	getCmd.Flags().StringVarP(&dir, "dir", "C", ".", "directory the lookup is made from")
	getCmd.Flags().BoolVar(&explain, "explain", false, "show where the value came from")

	return getCmd
}
