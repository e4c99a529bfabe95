// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is read from config.cue in the user config directory
// (os.UserConfigDir()/importmap), falling back to ./config.cue. Values are
// validated against the embedded config_schema.cue and may be overridden by
// IMPORTMAP_* environment variables (IMPORTMAP_UI_VERBOSE for ui.verbose).
package config
