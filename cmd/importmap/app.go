// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"github.com/invowk/importmap/internal/config"
	"github.com/invowk/importmap/internal/issue"
	"github.com/invowk/importmap/pkg/importmap"
	"github.com/invowk/importmap/pkg/types"
	"github.com/invowk/importmap/pkg/urlutil"
)

// stdinPath as a map path reads the map from standard input.
const stdinPath types.FilesystemPath = "-"

type (
	// App wires CLI services and shared dependencies. Cobra handlers receive
	// an App and delegate configuration and map loading through its
	// interfaces.
	App struct {
		Config ConfigProvider
		Maps   MapLoader
		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer
		logger *log.Logger
		// verbose is settled once configuration is loaded.
		verbose     bool
		colorScheme config.ColorScheme
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Maps   MapLoader
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// MapLoader reads and normalizes an import map.
	MapLoader interface {
		Load(ctx context.Context, req MapRequest) (*LoadedMap, error)
	}

	// MapRequest names the map to load.
	MapRequest struct {
		// Path is a file path, or "-" for standard input.
		Path types.FilesystemPath
		// Format overrides detection from the file extension when set.
		Format importmap.Format
		// BaseURL overrides the map base URL. When nil it is the file:// URL
		// of Path (of the working directory for standard input).
		BaseURL *url.URL
	}

	// LoadedMap is a normalized map together with how it was obtained.
	LoadedMap struct {
		Map      *importmap.ImportMap
		Warnings []importmap.Warning
		Path     types.FilesystemPath
		BaseURL  *url.URL
	}

	fileMapLoader struct {
		stdin io.Reader
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Maps == nil {
		deps.Maps = &fileMapLoader{stdin: deps.Stdin}
	}

	return &App{
		Config:      deps.Config,
		Maps:        deps.Maps,
		stdin:       deps.Stdin,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
		logger:      newLogger(deps.Stderr, config.LogLevelWarn),
		colorScheme: config.ColorSchemeAuto,
	}, nil
}

// newLogger builds the CLI logger. Library packages never log; warnings and
// traces are logged here.
func newLogger(w io.Writer, level config.LogLevel) *log.Logger {
	lvl, err := log.ParseLevel(level.String())
	if err != nil {
		lvl = log.WarnLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "importmap",
		Level:  lvl,
	})
}

// Load implements MapLoader.
func (l *fileMapLoader) Load(ctx context.Context, req MapRequest) (*LoadedMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, base, err := l.read(req)
	if err != nil {
		return nil, err
	}
	if req.BaseURL != nil {
		base = req.BaseURL
	}

	format := req.Format
	if format == "" {
		format = importmap.FormatFromPath(req.Path.String())
	}

	source := req.Path.String()
	if req.Path == stdinPath {
		source = "<stdin>"
	}
	m, warnings, err := importmap.Parse(data, format, base, importmap.WithSource(source))
	if err != nil {
		return nil, err
	}
	return &LoadedMap{Map: m, Warnings: warnings, Path: req.Path, BaseURL: base}, nil
}

// read returns the map source and its default base URL.
func (l *fileMapLoader) read(req MapRequest) ([]byte, *url.URL, error) {
	if req.Path == stdinPath {
		data, err := io.ReadAll(l.stdin)
		if err != nil {
			return nil, nil, fmt.Errorf("read import map from stdin: %w", err)
		}
		wd, err := os.Getwd()
		if err != nil {
			return nil, nil, err
		}
		base, err := urlutil.FromFilePath(wd + string(filepath.Separator))
		return data, base, err
	}

	if err := req.Path.Validate(); err != nil {
		return nil, nil, err
	}
	abs, err := req.Path.Abs()
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(abs.String())
	if err != nil {
		return nil, nil, err
	}
	base, err := urlutil.FromFilePath(abs.String())
	return data, base, err
}

// loadMap loads the map for s and logs its warnings. Failures carry exit
// code 3 and an issue catalog entry.
func (a *App) loadMap(ctx context.Context, s *settings) (*LoadedMap, error) {
	lm, err := a.Maps.Load(ctx, MapRequest{Path: s.mapPath, Format: s.mapFormat, BaseURL: s.mapBaseURL})
	if err != nil {
		return nil, exitWith(types.ExitInvalidMap, mapLoadError(s.mapPath, err))
	}
	for _, w := range lm.Warnings {
		a.logger.Warn("import map warning", "path", w.Path, "msg", w.Message)
	}
	return lm, nil
}

func mapLoadError(path types.FilesystemPath, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return newServiceError(issue.NewErrorContext().
			WithOperation("load import map").
			WithResource(path.String()).
			WithSuggestion("Pass the map file with --map").
			WithSuggestion("Set map_path in config.cue or IMPORTMAP_MAP_PATH").
			Wrap(err).
			BuildError(), issue.MapNotFoundId, "")
	}
	return newServiceError(issue.NewErrorContext().
		WithOperation("parse import map").
		WithResource(path.String()).
		WithSuggestion("Run 'importmap check' to list every problem in the map").
		Wrap(err).
		BuildError(), issue.MapParseErrorId, "")
}

// referrerFor returns the URL specifiers are resolved from: the configured
// referrer, or the map base URL.
func (s *settings) referrerFor(lm *LoadedMap) *url.URL {
	if s.referrer != nil {
		return s.referrer
	}
	return lm.BaseURL
}

// issueStyle picks the glamour style for issue catalog rendering.
func (a *App) issueStyle() string {
	if !isTerminal(a.stderr) {
		return "notty"
	}
	if a.colorScheme == config.ColorSchemeLight {
		return "light"
	}
	return "dark"
}

// isTerminal reports whether w is a terminal file.
func isTerminal(w any) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
