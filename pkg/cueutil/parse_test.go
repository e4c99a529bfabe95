// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"testing"
)

const testSchema = `
#Config: {
	name?:    string
	verbose?: bool
}
`

func TestCompile(t *testing.T) {
	t.Parallel()

	t.Run("valid CUE", func(t *testing.T) {
		t.Parallel()

		v, err := Compile([]byte(`imports: {"moment/": "/node_modules/moment/"}`), WithFilename("map.cue"))
		if err != nil {
			t.Fatalf("Compile returned error: %v", err)
		}
		if !v.Exists() {
			t.Fatal("compiled value should exist")
		}
	})

	t.Run("JSON is valid CUE", func(t *testing.T) {
		t.Parallel()

		if _, err := Compile([]byte(`{"imports": {"a": null}}`)); err != nil {
			t.Fatalf("Compile returned error for JSON input: %v", err)
		}
	})

	t.Run("syntax error is a ValidationError", func(t *testing.T) {
		t.Parallel()

		_, err := Compile([]byte(`imports: {`), WithFilename("broken.cue"))
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected *ValidationError, got %T", err)
		}
		if vErr.File != "broken.cue" {
			t.Errorf("File = %q, want %q", vErr.File, "broken.cue")
		}
	})

	t.Run("conflicting values fail validation", func(t *testing.T) {
		t.Parallel()

		_, err := Compile([]byte("a: \"x\"\na: \"y\"\n"))
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("size limit", func(t *testing.T) {
		t.Parallel()

		_, err := Compile([]byte(`a: "0123456789"`), WithMaxFileSize(4))
		if !errors.Is(err, ErrFileTooLarge) {
			t.Fatalf("expected ErrFileTooLarge, got %v", err)
		}
	})
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	t.Run("decodes into map", func(t *testing.T) {
		t.Parallel()

		result, err := ParseAndDecodeString[map[string]any](testSchema, []byte(`name: "x", verbose: true`), "#Config")
		if err != nil {
			t.Fatalf("ParseAndDecode returned error: %v", err)
		}
		got := *result.Value
		if got["name"] != "x" || got["verbose"] != true {
			t.Errorf("unexpected decoded value: %#v", got)
		}
	})

	t.Run("schema violation", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecodeString[map[string]any](testSchema, []byte(`verbose: "yes"`), "#Config", WithFilename("config.cue"))
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
		}
		if len(vErr.Issues) == 0 {
			t.Error("expected at least one issue")
		}
	})

	t.Run("closed definition rejects unknown fields", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecodeString[map[string]any](testSchema, []byte(`unknown: 1`), "#Config")
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("missing schema definition", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecodeString[map[string]any](testSchema, []byte(`name: "x"`), "#Missing")
		if err == nil {
			t.Fatal("expected error for missing schema definition")
		}
	})
}
