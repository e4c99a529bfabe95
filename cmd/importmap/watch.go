// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/invowk/importmap/internal/config"
	"github.com/invowk/importmap/internal/issue"
	"github.com/invowk/importmap/internal/watch"
	"github.com/invowk/importmap/pkg/types"
)

func newWatchCommand(app *App, root *rootFlagValues) *cobra.Command {
	mf := &mapFlagValues{}
	var (
		debounce    time.Duration
		clearScreen bool
		patterns    []string
	)

	cmd := &cobra.Command{
		Use:   "watch <specifier>...",
		Short: "Re-resolve specifiers whenever the import map changes",
		Long: `Resolve the specifiers once, then again each time the import map or the
config file changes on disk. Each reload re-reads the config file, so a new
referrer, output format or map base URL applies at once. The set of watched
files is fixed at startup. Extra files can be watched with --watch.

Reload errors are reported and watching continues. Stop with Ctrl+C.`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := app.settings(ctx, root, mf)
			if err != nil {
				return err
			}
			if s.mapPath == stdinPath {
				return exitWith(types.ExitUsage, errors.New("watch needs a map file, not standard input"))
			}

			wcfg, err := app.watchConfig(s, root, debounce, clearScreen, patterns)
			if err != nil {
				return err
			}

			wcfg.OnChange = func(ctx context.Context, changed []string) error {
				app.logger.Info("reloading", "changed", strings.Join(changed, ", "))
				app.watchCycle(ctx, root, mf, args)
				return nil
			}

			w, err := watch.New(wcfg)
			if err != nil {
				return exitWith(types.ExitUsage, newServiceError(err, issue.WatchFailedId, ""))
			}

			app.watchCycle(ctx, root, mf, args)
			app.logger.Info("watching", "map", s.mapPath.String())
			if err := w.Run(ctx); err != nil {
				return exitWith(types.ExitUsage, newServiceError(err, issue.WatchFailedId, ""))
			}
			return nil
		},
	}

	mf.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet period before reloading (default from config watch.debounce)")
	cmd.Flags().BoolVar(&clearScreen, "clear", false, "clear the screen before each reload (default from config watch.clear_screen)")
	cmd.Flags().StringSliceVar(&patterns, "watch", nil, "extra glob patterns to watch, relative to the working directory")
	return cmd
}

// watchCycle reloads configuration and the map, then resolves specifiers.
// Every cycle re-reads the config file so edits to referrer, output or the
// map base URL apply. Failures are rendered and the watch goes on.
func (a *App) watchCycle(ctx context.Context, root *rootFlagValues, mf *mapFlagValues, specifiers []string) {
	s, err := a.settings(ctx, root, mf)
	if err != nil {
		a.renderError(a.stderr, err)
		return
	}
	lm, err := a.loadMap(ctx, s)
	if err != nil {
		a.renderError(a.stderr, err)
		return
	}
	report := a.resolveAll(ctx, lm, s.referrerFor(lm), specifiers)
	if err := writeReport(a.stdout, a.stderr, s.cfg.Output, report); err != nil {
		a.logger.Error("write report", "err", err)
	}
}

// watchConfig builds the watcher configuration: the map file, the config
// file when one is in use and any extra patterns.
func (a *App) watchConfig(s *settings, root *rootFlagValues, debounce time.Duration, clearFlag bool, patterns []string) (watch.Config, error) {
	wcfg := watch.Config{
		Files:  []types.FilesystemPath{s.mapPath},
		Stdout: a.stdout,
		Stderr: a.stderr,
	}

	if path, found, err := config.ConfigFilePath(config.LoadOptions{ConfigFilePath: types.FilesystemPath(root.configPath)}); err == nil && found {
		wcfg.Files = append(wcfg.Files, path)
	}
	for _, p := range patterns {
		wcfg.Patterns = append(wcfg.Patterns, watch.GlobPattern(p))
	}

	if debounce > 0 {
		wcfg.Debounce = debounce
	} else {
		d, err := s.cfg.Watch.Debounce.Duration()
		if err != nil {
			return watch.Config{}, exitWith(types.ExitUsage, err)
		}
		wcfg.Debounce = d
	}

	wcfg.ClearScreen = (clearFlag || s.cfg.Watch.ClearScreen) && isTerminal(a.stdout)
	return wcfg, nil
}
