// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invowk/importmap/internal/config"
	"github.com/invowk/importmap/internal/issue"
	"github.com/invowk/importmap/pkg/types"
)

func newConfigCommand(app *App, root *rootFlagValues) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage importmap configuration",
		Long: `Manage importmap configuration.

Configuration is read from the file given with --config, else
` + "`<user config dir>/importmap/config.cue`" + `, else ./config.cue, and
IMPORTMAP_* environment variables override file values.`,
	}

	cmd.AddCommand(
		newConfigShowCommand(app, root),
		newConfigPathCommand(app, root),
		newConfigInitCommand(app),
		newConfigDumpCommand(app, root),
	)
	return cmd
}

func newConfigShowCommand(app *App, root *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context(), root)
			if err != nil {
				return err
			}

			w := app.stdout
			fmt.Fprintln(w, TitleStyle.Render("Configuration"))
			fmt.Fprintln(w)
			rows := [][2]string{
				{"map_path", cfg.MapPath.String()},
				{"map_base_url", orUnset(cfg.MapBaseURL.String())},
				{"referrer", orUnset(cfg.Referrer.String())},
				{"log_level", cfg.LogLevel.String()},
				{"output", cfg.Output.String()},
				{"ui.color_scheme", cfg.UI.ColorScheme.String()},
				{"ui.verbose", fmt.Sprint(cfg.UI.Verbose)},
				{"watch.debounce", cfg.Watch.Debounce.String()},
				{"watch.clear_screen", fmt.Sprint(cfg.Watch.ClearScreen)},
			}
			for _, r := range rows {
				fmt.Fprintf(w, "  %s %s\n", KeyStyle.Render(fmt.Sprintf("%-19s", r[0]+":")), r[1])
			}

			fmt.Fprintln(w)
			path, found, err := config.ConfigFilePath(config.LoadOptions{ConfigFilePath: types.FilesystemPath(root.configPath)})
			switch {
			case err != nil:
				return exitWith(types.ExitUsage, err)
			case found:
				fmt.Fprintf(w, "%s %s\n", SubtitleStyle.Render("Config file:"), path)
			default:
				fmt.Fprintln(w, SubtitleStyle.Render("(using defaults)"))
			}
			return nil
		},
	}
}

func newConfigPathCommand(app *App, root *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Long:  "Print the config file that is read, or where the user config file would be created.",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _, err := config.ConfigFilePath(config.LoadOptions{ConfigFilePath: types.FilesystemPath(root.configPath)})
			if err != nil {
				return exitWith(types.ExitUsage, err)
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	}
}

func newConfigInitCommand(app *App) *cobra.Command {
	var (
		force bool
		dir   string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default config file",
		Long:  "Write config.cue with the default settings. An existing file is kept unless --force is given.",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig(types.FilesystemPath(dir), force)
			if err != nil {
				return exitWith(types.ExitUsage, newServiceError(err, issue.ConfigLoadFailedId, ""))
			}
			fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Config file:"), path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")
	cmd.Flags().StringVar(&dir, "dir", "", "directory to create config.cue in (default: the user config directory)")
	return cmd
}

func newConfigDumpCommand(app *App, root *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration as CUE",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context(), root)
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	}
}

func orUnset(s string) string {
	if s == "" {
		return SubtitleStyle.Render("(unset)")
	}
	return s
}
