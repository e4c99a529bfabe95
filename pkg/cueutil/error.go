// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

var (
	// ErrValidation is the sentinel error wrapped by ValidationError.
	ErrValidation = errors.New("CUE validation failed")
	// ErrFileTooLarge is the sentinel error wrapped by FileTooLargeError.
	ErrFileTooLarge = errors.New("file too large")
)

type (
	// Issue is a single CUE error located at a JSON-path style field path.
	Issue struct {
		// Path is the field path (e.g. "scopes[\"/js\"]", "ui.verbose"); empty for
		// document-level errors such as syntax errors.
		Path string
		// Message is the CUE error message without the path prefix.
		Message string
	}

	// ValidationError reports every CUE error found in one file.
	// It wraps ErrValidation for errors.Is() compatibility.
	ValidationError struct {
		// File is the name passed via WithFilename (or "<input>").
		File string
		// Issues lists the individual errors in CUE's reporting order.
		Issues []Issue
		// Cause is set when the error did not come from CUE itself.
		Cause error
	}

	// FileTooLargeError is returned by CheckFileSize.
	FileTooLargeError struct {
		File string
		Size int64
		Max  int64
	}
)

// Error implements the error interface for ValidationError.
//
// Format: <file>: <path>: <message>, or a multi-line list when several issues exist.
func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.File, e.Cause)
	}
	lines := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Path != "" {
			lines = append(lines, issue.Path+": "+issue.Message)
		} else {
			lines = append(lines, issue.Message)
		}
	}
	if len(lines) == 1 {
		return fmt.Sprintf("%s: %s", e.File, lines[0])
	}
	return fmt.Sprintf("%s: validation failed:\n  %s", e.File, strings.Join(lines, "\n  "))
}

// Unwrap returns ErrValidation and the non-CUE cause, if any.
func (e *ValidationError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrValidation, e.Cause}
	}
	return []error{ErrValidation}
}

// Error implements the error interface for FileTooLargeError.
func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("%s: file size %d bytes exceeds maximum %d bytes", e.File, e.Size, e.Max)
}

// Unwrap returns ErrFileTooLarge for errors.Is() compatibility.
func (e *FileTooLargeError) Unwrap() error { return ErrFileTooLarge }

// FormatError converts a CUE error into a *ValidationError for file. A nil err
// returns nil; a non-CUE error is kept as the Cause.
func FormatError(err error, file string) error {
	if err == nil {
		return nil
	}

	cueErrs := cueerrors.Errors(err)
	if len(cueErrs) == 0 {
		return &ValidationError{File: file, Cause: err}
	}

	issues := make([]Issue, 0, len(cueErrs))
	for _, e := range cueErrs {
		path := formatPath(cueerrors.Path(e))
		msg := e.Error()

		// CUE sometimes repeats the path at the start of the message.
		if path != "" && strings.HasPrefix(msg, path) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, path), ":"))
		}
		issues = append(issues, Issue{Path: path, Message: msg})
	}
	return &ValidationError{File: file, Issues: issues}
}

// formatPath renders CUE's flat path elements in JSON-path notation:
// ["scopes", "0", "x"] becomes "scopes[0].x". Labels that are not plain
// identifiers (such as "moment/" or "/js") are rendered as quoted selectors.
func formatPath(path []string) string {
	var sb strings.Builder
	for i, part := range path {
		switch {
		case i > 0 && isIndex(part):
			sb.WriteString("[" + part + "]")
		case i > 0 && !isIdentifier(part):
			fmt.Fprintf(&sb, "[%q]", strings.Trim(part, `"`))
		default:
			if i > 0 {
				sb.WriteString(".")
			}
			sb.WriteString(part)
		}
	}
	return sb.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || c == '#' || c == '$':
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && '0' <= c && c <= '9':
		default:
			return false
		}
	}
	return true
}

// CheckFileSize returns a *FileTooLargeError when data exceeds maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, file string) error {
	if int64(len(data)) > maxSize {
		return &FileTooLargeError{File: file, Size: int64(len(data)), Max: maxSize}
	}
	return nil
}
