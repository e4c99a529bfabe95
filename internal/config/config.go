// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/invowk/importmap/internal/issue"
	"github.com/invowk/importmap/pkg/cueutil"
	"github.com/invowk/importmap/pkg/types"
)

const (
	// AppName is the application name.
	AppName = "importmap"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes every environment override, e.g. IMPORTMAP_LOG_LEVEL.
	EnvPrefix = "IMPORTMAP"
)

//go:embed config_schema.cue
var configSchema string

// ErrConfigNotFound is returned when an explicitly requested config file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// ConfigDir returns the importmap configuration directory under
// os.UserConfigDir.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// ConfigFilePath returns the config file Load would read for opts. found is
// false when no file exists; path is then the user config location.
func ConfigFilePath(opts LoadOptions) (path types.FilesystemPath, found bool, err error) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath, fileExists(string(opts.ConfigFilePath)), nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", false, err
	}
	userPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if fileExists(userPath) {
		return types.FilesystemPath(userPath), true, nil
	}

	localPath := ConfigFileName + "." + ConfigFileExt
	if opts.BaseDir != "" {
		localPath = filepath.Join(string(opts.BaseDir), localPath)
	}
	if fileExists(localPath) {
		return types.FilesystemPath(localPath), true, nil
	}
	return types.FilesystemPath(userPath), false, nil
}

// LoadWithOptions loads defaults, then the config file, then IMPORTMAP_*
// environment overrides, and validates the result.
func LoadWithOptions(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, found, err := ConfigFilePath(opts)
	if err != nil {
		return nil, err
	}

	switch {
	case opts.ConfigFilePath != "" && !found:
		return nil, issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path.String()).
			WithSuggestion("Verify the file path is correct").
			WithSuggestion("Use 'importmap config init' to create a config file").
			Wrap(fmt.Errorf("%w: %s", ErrConfigNotFound, path)).
			BuildError()
	case found:
		if err := loadCUEIntoViper(v, path.String()); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path.String()).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'importmap config dump' to see every supported key").
				Wrap(err).
				BuildError()
		}
	default:
		path = ""
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if ok, errs := cfg.IsValid(); !ok {
		resource := path.String()
		if resource == "" {
			resource = EnvPrefix + "_* environment"
		}
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resource).
			WithSuggestion("Check the values of the IMPORTMAP_* environment variables").
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &LoadResult{Config: &cfg, Path: path}, nil
}

func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("map_path", defaults.MapPath)
	v.SetDefault("map_base_url", defaults.MapBaseURL)
	v.SetDefault("referrer", defaults.Referrer)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("output", defaults.Output)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
	v.SetDefault("watch.clear_screen", defaults.Watch.ClearScreen)
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath types.FilesystemPath) (string, error) {
	if configDirPath != "" {
		return string(configDirPath), nil
	}
	return ConfigDir()
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into
// Viper. It decodes to a map so that defaults and env overrides keep working.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	res, err := cueutil.ParseAndDecodeString[map[string]any](configSchema, data, "#Config",
		cueutil.WithFilename(path), cueutil.WithConcrete(true))
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(*res.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default config to dir (the user config
// directory when empty) and returns the file path. An existing file is kept
// unless force is set.
func CreateDefaultConfig(dir types.FilesystemPath, force bool) (types.FilesystemPath, error) {
	cfgDir, err := configDirWithOverride(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if !force && fileExists(cfgPath) {
		return types.FilesystemPath(cfgPath), nil
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return types.FilesystemPath(cfgPath), nil
}

// GenerateCUE generates a CUE representation of the configuration. Empty URL
// fields are written as comments.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// importmap configuration file\n")
	sb.WriteString("// Every key is optional. Environment variables IMPORTMAP_<KEY> override it.\n\n")

	fmt.Fprintf(&sb, "map_path: %q\n", cfg.MapPath)
	writeOptional(&sb, "map_base_url", cfg.MapBaseURL.String())
	writeOptional(&sb, "referrer", cfg.Referrer.String())
	fmt.Fprintf(&sb, "log_level: %q\n", cfg.LogLevel)
	fmt.Fprintf(&sb, "output: %q\n", cfg.Output)

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	sb.WriteString("\nwatch: {\n")
	fmt.Fprintf(&sb, "\tdebounce: %q\n", cfg.Watch.Debounce)
	fmt.Fprintf(&sb, "\tclear_screen: %v\n", cfg.Watch.ClearScreen)
	sb.WriteString("}\n")

	return sb.String()
}

func writeOptional(sb *strings.Builder, key, value string) {
	if value == "" {
		fmt.Fprintf(sb, "// %s: \"https://example.com/\"\n", key)
		return
	}
	fmt.Fprintf(sb, "%s: %q\n", key, value)
}
