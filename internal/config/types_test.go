// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
	"time"
)

func TestColorScheme_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value ColorScheme
		want  bool
	}{
		{ColorSchemeAuto, true},
		{ColorSchemeDark, true},
		{ColorSchemeLight, true},
		{"", false},
		{"blue", false},
		{"AUTO", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.value), func(t *testing.T) {
			t.Parallel()

			ok, errs := tt.value.IsValid()
			if ok != tt.want {
				t.Fatalf("ColorScheme(%q).IsValid() = %v, want %v", tt.value, ok, tt.want)
			}
			if !ok && (len(errs) != 1 || !errors.Is(errs[0], ErrInvalidColorScheme)) {
				t.Errorf("errors = %v, want ErrInvalidColorScheme", errs)
			}
		})
	}
}

func TestLogLevelAndOutput_IsValid(t *testing.T) {
	t.Parallel()

	for _, l := range []LogLevel{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError} {
		if ok, _ := l.IsValid(); !ok {
			t.Errorf("LogLevel(%q) should be valid", l)
		}
	}
	if _, errs := LogLevel("trace").IsValid(); len(errs) != 1 || !errors.Is(errs[0], ErrInvalidLogLevel) {
		t.Errorf("trace: errors = %v", errs)
	}

	for _, f := range []OutputFormat{OutputText, OutputJSON, OutputYAML, OutputTOML} {
		if ok, _ := f.IsValid(); !ok {
			t.Errorf("OutputFormat(%q) should be valid", f)
		}
	}
	if _, errs := OutputFormat("xml").IsValid(); len(errs) != 1 || !errors.Is(errs[0], ErrInvalidOutputFormat) {
		t.Errorf("xml: errors = %v", errs)
	}
}

func TestAbsoluteURL_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value AbsoluteURL
		want  bool
	}{
		{"", true},
		{"https://example.com/", true},
		{"file:///srv/app/index.html", true},
		{"/app/", false},
		{"lodash", false},
	}
	for _, tt := range tests {
		if ok, _ := tt.value.IsValid(); ok != tt.want {
			t.Errorf("AbsoluteURL(%q).IsValid() = %v, want %v", tt.value, ok, tt.want)
		}
	}
}

func TestDebounceDuration(t *testing.T) {
	t.Parallel()

	d := DebounceDuration("250ms")
	if ok, errs := d.IsValid(); !ok {
		t.Fatalf("250ms should be valid: %v", errs)
	}
	if got, _ := d.Duration(); got != 250*time.Millisecond {
		t.Errorf("Duration() = %v", got)
	}

	for _, bad := range []DebounceDuration{"", "0s", "-1s", "soon"} {
		if _, errs := bad.IsValid(); len(errs) != 1 || !errors.Is(errs[0], ErrInvalidDebounce) {
			t.Errorf("DebounceDuration(%q): errors = %v", bad, errs)
		}
	}
}

func TestConfig_IsValid_CollectsFieldErrors(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.LogLevel = "loud"
	cfg.Output = "xml"
	cfg.Referrer = "relative.js"

	ok, errs := cfg.IsValid()
	if ok || len(errs) != 1 {
		t.Fatalf("IsValid() = %v, %v", ok, errs)
	}
	var cfgErr *InvalidConfigError
	if !errors.As(errs[0], &cfgErr) {
		t.Fatalf("error should be *InvalidConfigError, got %T", errs[0])
	}
	if len(cfgErr.FieldErrors) != 3 {
		t.Errorf("FieldErrors = %v, want 3", cfgErr.FieldErrors)
	}
	for _, sentinel := range []error{ErrInvalidConfig, ErrInvalidLogLevel, ErrInvalidOutputFormat, ErrInvalidAbsoluteURL} {
		if !errors.Is(errs[0], sentinel) {
			t.Errorf("error should wrap %v", sentinel)
		}
	}
	if got := cfgErr.Error(); got != "invalid config: 3 field errors" {
		t.Errorf("Error() = %q", got)
	}
}
