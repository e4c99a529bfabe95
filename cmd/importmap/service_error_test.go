// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/invowk/importmap/internal/issue"
)

func TestNewServiceError_PanicsOnNilErr(t *testing.T) {
	t.Parallel()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on nil Err, got none")
		}
		if msg, ok := r.(string); !ok || msg != "ServiceError: Err must not be nil" {
			t.Fatalf("unexpected panic value: %v", r)
		}
	}()

	newServiceError(nil, 0, "")
}

func TestServiceError_ErrorAndUnwrap(t *testing.T) {
	t.Parallel()

	underlying := errors.New("underlying error")
	svcErr := newServiceError(underlying, issue.MapNotFoundId, "")

	if svcErr.Error() != "underlying error" {
		t.Errorf("Error() = %q, want %q", svcErr.Error(), "underlying error")
	}
	if !errors.Is(svcErr, underlying) {
		t.Error("errors.Is should find underlying error via Unwrap")
	}
	if svcErr.IssueID != issue.MapNotFoundId {
		t.Errorf("IssueID = %d, want %d", svcErr.IssueID, issue.MapNotFoundId)
	}
}

func TestRenderServiceError(t *testing.T) {
	t.Parallel()

	t.Run("nil is a no-op", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		renderServiceError(&buf, nil, "notty", log.New(&buf))
		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})

	t.Run("styled message without issue", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		renderServiceError(&buf, newServiceError(errors.New("x"), 0, "styled\n"), "notty", log.New(&buf))
		if buf.String() != "styled\n" {
			t.Errorf("output = %q, want %q", buf.String(), "styled\n")
		}
	})

	t.Run("issue catalog entry", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		renderServiceError(&buf, newServiceError(errors.New("x"), issue.MapNotFoundId, ""), "notty", log.New(&buf))
		if !strings.Contains(strings.ToLower(buf.String()), "import map") {
			t.Errorf("rendered issue should mention the import map, got %q", buf.String())
		}
	})
}
