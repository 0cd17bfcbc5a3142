// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pkgsettings/pkgsettings/internal/config"
)

// newConfigCommand creates the `pkgsettings config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage pkgsettings configuration",
		Long: `Manage pkgsettings configuration.

The first existing file wins:
  1. the file given with --config
  2. <user config dir>/pkgsettings/config.cue
     (Linux: ~/.config, macOS: ~/Library/Application Support, Windows: %AppData%)
  3. ` + config.LocalConfigFileName + ` in the working directory

Set ` + config.ConfigDirEnv + ` to use another user config directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			showConfig(cmd.OutOrStdout(), loaded)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := config.ConfigFilePath()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "User config file: %s\n", cfgPath)
			fmt.Fprintf(out, "Project config file: %s\n", config.LocalConfigFileName)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default user configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.CreateDefaultConfig()
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(loaded.Config))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(w io.Writer, loaded config.Loaded) {
	cfg := loaded.Config
	key := KeyStyle.Render
	val := SuccessStyle.Render

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if loaded.Path != "" {
		fmt.Fprintf(w, "%s: %s\n", key("Config file"), loaded.Path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", key("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", key("manifest_name"), val(cfg.ManifestName.String()))
	fmt.Fprintf(w, "%s: %s\n", key("output"), val(cfg.Output.String()))
	fmt.Fprintf(w, "%s: %s\n", key("strict"), val(fmt.Sprint(cfg.Strict)))

	fmt.Fprintf(w, "%s:", key("exclude"))
	if len(cfg.Exclude) == 0 {
		fmt.Fprintf(w, " %s\n", SubtitleStyle.Render("(none)"))
	} else {
		fmt.Fprintf(w, " %s\n", val(strings.Join(cfg.ExcludeStrings(), ", ")))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", key("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", val(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(w, "  verbose: %s\n", val(fmt.Sprint(cfg.UI.Verbose)))
}
