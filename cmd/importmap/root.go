// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the importmap CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/invowk/importmap/internal/issue"
	"github.com/invowk/importmap/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	root := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "importmap",
		Short: "Resolve module specifiers through an import map",
		Long: TitleStyle.Render("importmap") + SubtitleStyle.Render(" - resolve module specifiers through an import map") + `

importmap reads an import map (JSON, CUE, YAML or an HTML page with a
<script type="importmap">) and resolves bare or URL-like specifiers the
way a browser would, honoring scopes and blocked (null) entries.

` + SubtitleStyle.Render("Examples:") + `
  importmap resolve lodash            Resolve against ./importmap.json
  importmap resolve -m index.html vue Use the map embedded in a page
  importmap explain -r https://example.com/admin/app.js vue
  importmap check --strict            Fail on any map warning
  importmap watch lodash vue          Re-resolve when the map changes`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&root.configPath, "config", "", "config file (default is <user config dir>/importmap/config.cue)")
	flags.BoolVarP(&root.verbose, "verbose", "v", false, "enable verbose output and debug logging")
	flags.StringVar(&root.logLevel, "log-level", "", "log level: debug, info, warn or error (default from config log_level)")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return exitWith(types.ExitUsage, err)
	})

	rootCmd.AddCommand(
		newResolveCommand(app, root),
		newExplainCommand(app, root),
		newCheckCommand(app, root),
		newWatchCommand(app, root),
		newExploreCommand(app, root),
		newConfigCommand(app, root),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev (built from source)"
}

// Run executes the CLI with args and returns the process exit code.
func Run(ctx context.Context, app *App, args []string) types.ExitCode {
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			app.renderError(w, err)
		}),
	)
	return exitCodeFor(err)
}

// Main runs the CLI with the process arguments and returns the exit code.
func Main() int {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return int(types.ExitUsage)
	}
	return int(Run(context.Background(), app, os.Args[1:]))
}

// Execute runs the CLI and exits the process. It is called by main.main().
func Execute() {
	os.Exit(Main())
}

// renderError prints err, then its issue catalog entry when it has one.
func (a *App) renderError(w io.Writer, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	fmt.Fprintln(w, ErrorStyle.Render("Error:")+" "+formatErrorForDisplay(err, a.verbose))

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		renderServiceError(w, svcErr, a.issueStyle(), a.logger)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
