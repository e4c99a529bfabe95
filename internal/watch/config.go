// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/invowk/importmap/pkg/types"
)

var (
	// ErrInvalidWatchConfig is the sentinel error wrapped by InvalidWatchConfigError.
	ErrInvalidWatchConfig = errors.New("invalid watch config")
	// ErrInvalidGlobPattern is returned for empty or malformed glob patterns.
	ErrInvalidGlobPattern = errors.New("invalid glob pattern")
	// ErrNothingToWatch is returned by New when neither Files nor Patterns are set.
	ErrNothingToWatch = errors.New("nothing to watch")
)

type (
	// GlobPattern is a doublestar pattern such as "maps/**/*.json",
	// matched against slash-separated paths relative to Config.BaseDir.
	GlobPattern string

	// Config holds the parameters for a Watcher.
	Config struct {
		// Files are watched individually. Their parent directories are
		// watched non-recursively so editors that save by rename are seen.
		Files []types.FilesystemPath

		// Patterns select further files under BaseDir. When set, the whole
		// BaseDir tree is watched.
		Patterns []GlobPattern

		// Ignore is merged with DefaultIgnores.
		Ignore []GlobPattern

		// Debounce is the quiet period after the last event before OnChange
		// runs. Zero or negative values fall back to 300ms.
		Debounce time.Duration

		// ClearScreen writes an ANSI clear sequence to Stdout before each
		// OnChange. Callers decide whether Stdout is a terminal.
		ClearScreen bool

		// BaseDir anchors Patterns and relative Files. Defaults to the
		// working directory.
		BaseDir types.FilesystemPath

		// OnChange receives the changed paths, relative to BaseDir where
		// possible. A nil callback is a no-op.
		OnChange func(ctx context.Context, changed []string) error

		// Stdout and Stderr default to os.Stdout and os.Stderr.
		Stdout io.Writer
		Stderr io.Writer
	}

	// InvalidWatchConfigError collects every invalid field of a Config.
	InvalidWatchConfigError struct {
		FieldErrors []error
	}
)

// Validate reports an empty or malformed pattern.
func (p GlobPattern) Validate() error {
	if p == "" {
		return fmt.Errorf("%w: must be non-empty", ErrInvalidGlobPattern)
	}
	if !doublestar.ValidatePattern(string(p)) {
		return fmt.Errorf("%w %q", ErrInvalidGlobPattern, p)
	}
	return nil
}

func (p GlobPattern) String() string { return string(p) }

// Validate checks every path and pattern. The zero Config is valid; New
// additionally requires something to watch.
func (c Config) Validate() error {
	var errs []error
	for _, f := range c.Files {
		if err := f.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("file: %w", err))
		}
	}
	for _, p := range c.Patterns {
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("watch pattern: %w", err))
		}
	}
	for _, p := range c.Ignore {
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("ignore pattern: %w", err))
		}
	}
	if c.BaseDir != "" {
		if err := c.BaseDir.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("base dir: %w", err))
		}
	}
	if len(errs) > 0 {
		return &InvalidWatchConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidWatchConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return "invalid watch config: " + e.FieldErrors[0].Error()
	}
	return fmt.Sprintf("invalid watch config: %d field errors: %v", len(e.FieldErrors), errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidWatchConfig and the field errors.
func (e *InvalidWatchConfigError) Unwrap() []error {
	return append([]error{ErrInvalidWatchConfig}, e.FieldErrors...)
}
