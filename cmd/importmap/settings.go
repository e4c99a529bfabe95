// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/invowk/importmap/internal/config"
	"github.com/invowk/importmap/internal/issue"
	"github.com/invowk/importmap/pkg/importmap"
	"github.com/invowk/importmap/pkg/types"
	"github.com/invowk/importmap/pkg/urlutil"
)

type (
	// rootFlagValues holds the persistent flags of the root command.
	rootFlagValues struct {
		configPath string
		verbose    bool
		logLevel   string
	}

	// mapFlagValues holds the flags that select and anchor the import map.
	mapFlagValues struct {
		mapPath    string
		mapFormat  string
		mapBaseURL string
		referrer   string
	}

	// settings is the configuration of one invocation: config file values
	// overridden by flags, with URLs parsed.
	settings struct {
		cfg        *config.Config
		mapPath    types.FilesystemPath
		mapFormat  importmap.Format
		mapBaseURL *url.URL
		referrer   *url.URL
	}
)

func (f *mapFlagValues) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.mapPath, "map", "m", "", "import map file, or - for stdin (default from config map_path)")
	flags.StringVar(&f.mapFormat, "map-format", "", "import map format: json, cue, yaml or html (default from the file extension)")
	flags.StringVar(&f.mapBaseURL, "map-base-url", "", "URL relative addresses in the map resolve against (default: the map file URL)")
	flags.StringVarP(&f.referrer, "referrer", "r", "", "URL of the importing module (default: the map base URL)")
}

// loadConfig loads configuration and applies the root flags to the App's
// logger and verbosity.
func (a *App) loadConfig(ctx context.Context, root *rootFlagValues) (*config.Config, error) {
	opts := config.LoadOptions{ConfigFilePath: types.FilesystemPath(root.configPath)}
	cfg, err := a.Config.Load(ctx, opts)
	if err != nil {
		return nil, exitWith(types.ExitUsage, newServiceError(err, issue.ConfigLoadFailedId, ""))
	}

	level := cfg.LogLevel
	if root.logLevel != "" {
		level = config.LogLevel(root.logLevel)
		if ok, errs := level.IsValid(); !ok {
			return nil, exitWith(types.ExitUsage, errs[0])
		}
	}
	a.verbose = root.verbose || cfg.UI.Verbose
	if a.verbose {
		level = config.LogLevelDebug
	}
	a.logger = newLogger(a.stderr, level)
	a.colorScheme = cfg.UI.ColorScheme
	return cfg, nil
}

// settings loads configuration and merges the map flags over it.
func (a *App) settings(ctx context.Context, root *rootFlagValues, mf *mapFlagValues) (*settings, error) {
	cfg, err := a.loadConfig(ctx, root)
	if err != nil {
		return nil, err
	}

	s := &settings{cfg: cfg, mapPath: cfg.MapPath}
	if mf.mapPath != "" {
		s.mapPath = types.FilesystemPath(mf.mapPath)
	}
	if mf.mapFormat != "" {
		if s.mapFormat, err = importmap.ParseFormat(mf.mapFormat); err != nil {
			return nil, exitWith(types.ExitUsage, err)
		}
	}

	baseURL := firstNonEmpty(mf.mapBaseURL, cfg.MapBaseURL.String())
	if s.mapBaseURL, err = parseURLSetting("map base URL", baseURL); err != nil {
		return nil, err
	}
	referrer := firstNonEmpty(mf.referrer, cfg.Referrer.String())
	if s.referrer, err = parseURLSetting("referrer", referrer); err != nil {
		return nil, err
	}
	return s, nil
}

// parseURLSetting parses an absolute URL; an empty value yields nil.
func parseURLSetting(name, raw string) (*url.URL, error) {
	if raw == "" {
		return nil, nil
	}
	u, err := urlutil.ParseAbsolute(raw)
	if err != nil {
		return nil, exitWith(types.ExitUsage, newServiceError(issue.NewErrorContext().
			WithOperation("parse "+name).
			WithResource(raw).
			WithSuggestion("Use an absolute URL such as https://example.com/app/").
			Wrap(err).
			BuildError(), issue.InvalidBaseURLId, ""))
	}
	return u, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
