// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/invowk/importmap/pkg/types"
	"github.com/invowk/importmap/pkg/urlutil"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"

	// OutputText prints one "specifier -> URL" line per result.
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
	OutputTOML OutputFormat = "toml"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidOutputFormat is returned when an OutputFormat value is not recognized.
	ErrInvalidOutputFormat = errors.New("invalid output format")
	// ErrInvalidAbsoluteURL is returned when a configured URL is not absolute.
	ErrInvalidAbsoluteURL = errors.New("invalid absolute URL")
	// ErrInvalidDebounce is returned when watch.debounce is not a positive duration.
	ErrInvalidDebounce = errors.New("invalid debounce duration")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// LogLevel is the minimum level written to stderr.
	LogLevel string

	// OutputFormat selects how resolve and check print results.
	OutputFormat string

	// AbsoluteURL is a configured URL string. The zero value means "derive
	// it from the map file".
	AbsoluteURL string

	// DebounceDuration is a Go duration string such as "300ms".
	DebounceDuration string

	// InvalidValueError reports a configuration value outside its domain.
	// Unwrap returns the field-specific sentinel.
	InvalidValueError struct {
		Field    string
		Value    string
		Expected string
		sentinel error
	}

	// InvalidConfigError collects every field error of a Config.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// MapPath is the import map file used when --map is not given.
		MapPath types.FilesystemPath `json:"map_path" mapstructure:"map_path"`
		// MapBaseURL overrides the URL relative addresses are resolved against.
		MapBaseURL AbsoluteURL `json:"map_base_url" mapstructure:"map_base_url"`
		// Referrer is the default URL of the importing module.
		Referrer AbsoluteURL  `json:"referrer" mapstructure:"referrer"`
		LogLevel LogLevel     `json:"log_level" mapstructure:"log_level"`
		Output   OutputFormat `json:"output" mapstructure:"output"`
		UI       UIConfig     `json:"ui" mapstructure:"ui"`
		Watch    WatchConfig  `json:"watch" mapstructure:"watch"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose prints error chains and resolution traces.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// WatchConfig configures the watch command.
	WatchConfig struct {
		Debounce DebounceDuration `json:"debounce" mapstructure:"debounce"`
		// ClearScreen clears the terminal before each re-resolution when
		// stdout is a TTY.
		ClearScreen bool `json:"clear_screen" mapstructure:"clear_screen"`
	}
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		MapPath:  "importmap.json",
		LogLevel: LogLevelWarn,
		Output:   OutputText,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
		Watch: WatchConfig{
			Debounce: "300ms",
		},
	}
}

// IsValid returns whether every field of the Config is valid.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	collect := func(_ bool, fieldErrs []error) { errs = append(errs, fieldErrs...) }

	if err := c.MapPath.Validate(); err != nil {
		errs = append(errs, err)
	}
	collect(c.MapBaseURL.isValid("map_base_url"))
	collect(c.Referrer.isValid("referrer"))
	collect(c.LogLevel.IsValid())
	collect(c.Output.IsValid())
	collect(c.UI.ColorScheme.IsValid())
	collect(c.Watch.Debounce.IsValid())

	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return "invalid config: " + e.FieldErrors[0].Error()
	}
	return fmt.Sprintf("invalid config: %d field errors", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig and the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Error implements the error interface for InvalidValueError.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s %q (valid: %s)", e.Field, e.Value, e.Expected)
}

// Unwrap returns the field-specific sentinel for errors.Is() compatibility.
func (e *InvalidValueError) Unwrap() error { return e.sentinel }

func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is auto, dark or light.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidValueError{Field: "color scheme", Value: string(cs), Expected: "auto, dark, light", sentinel: ErrInvalidColorScheme}}
	}
}

func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is debug, info, warn or error.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidValueError{Field: "log level", Value: string(l), Expected: "debug, info, warn, error", sentinel: ErrInvalidLogLevel}}
	}
}

func (f OutputFormat) String() string { return string(f) }

// IsValid returns whether the OutputFormat is text, json, yaml or toml.
func (f OutputFormat) IsValid() (bool, []error) {
	switch f {
	case OutputText, OutputJSON, OutputYAML, OutputTOML:
		return true, nil
	default:
		return false, []error{&InvalidValueError{Field: "output format", Value: string(f), Expected: "text, json, yaml, toml", sentinel: ErrInvalidOutputFormat}}
	}
}

func (u AbsoluteURL) String() string { return string(u) }

// IsValid returns whether the URL is empty or parses as an absolute URL.
func (u AbsoluteURL) IsValid() (bool, []error) { return u.isValid("URL") }

func (u AbsoluteURL) isValid(field string) (bool, []error) {
	if u == "" {
		return true, nil
	}
	if _, err := urlutil.ParseAbsolute(string(u)); err != nil {
		return false, []error{&InvalidValueError{Field: field, Value: string(u), Expected: "an absolute URL", sentinel: ErrInvalidAbsoluteURL}}
	}
	return true, nil
}

func (d DebounceDuration) String() string { return string(d) }

// Duration parses the value. Callers should check IsValid first.
func (d DebounceDuration) Duration() (time.Duration, error) {
	return time.ParseDuration(string(d))
}

// IsValid returns whether the value is a positive Go duration.
func (d DebounceDuration) IsValid() (bool, []error) {
	if dur, err := d.Duration(); err != nil || dur <= 0 {
		return false, []error{&InvalidValueError{Field: "watch.debounce", Value: string(d), Expected: "a positive duration such as 300ms", sentinel: ErrInvalidDebounce}}
	}
	return true, nil
}
