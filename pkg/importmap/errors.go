// SPDX-License-Identifier: MPL-2.0

package importmap

import (
	"errors"
	"fmt"
	"strings"
)

// Resolution failure reasons.
const (
	// ReasonUnmapped means no scope and no top-level entry matched a
	// non-URL specifier.
	ReasonUnmapped Reason = "unmapped"
	// ReasonBlocked means the deciding entry is null or an empty list.
	ReasonBlocked Reason = "blocked"
	// ReasonInvalidTarget means a prefix target joined with the specifier
	// remainder did not parse as a URL.
	ReasonInvalidTarget Reason = "invalid-target"
)

var (
	// ErrUnresolvable is the sentinel error wrapped by ResolutionError.
	ErrUnresolvable = errors.New("specifier is unresolvable")

	// ErrInvalidImportMap is the sentinel error wrapped by InvalidImportMapError.
	ErrInvalidImportMap = errors.New("invalid import map")

	// ErrInvalidFormat is returned for unknown import map source formats.
	ErrInvalidFormat = errors.New("invalid import map format")
)

type (
	// Reason classifies a resolution failure.
	Reason string

	// ResolutionError describes why a specifier could not be resolved.
	// It wraps ErrUnresolvable for errors.Is() compatibility.
	ResolutionError struct {
		Specifier string
		// BaseURL is the serialized referrer URL; empty when none was given.
		BaseURL string
		Reason  Reason
		// Scope is the prefix of the deciding scope; empty when the
		// top-level imports decided or nothing matched.
		Scope string
		// Key is the deciding specifier key; empty for ReasonUnmapped.
		Key string
	}

	// InvalidImportMapError is a fatal problem in an import map source.
	// It wraps ErrInvalidImportMap for errors.Is() compatibility.
	InvalidImportMapError struct {
		// Source names the input (file path or "<input>").
		Source string
		// Path locates the offending value (e.g. `scopes["/js"]`); empty for
		// document-level problems.
		Path   string
		Reason string
		Cause  error
	}
)

// String returns the reason identifier.
func (r Reason) String() string { return string(r) }

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "cannot resolve %q", e.Specifier)
	if e.BaseURL != "" {
		fmt.Fprintf(&sb, " from %s", e.BaseURL)
	}
	switch e.Reason {
	case ReasonBlocked:
		fmt.Fprintf(&sb, ": blocked by %s", e.location())
	case ReasonInvalidTarget:
		fmt.Fprintf(&sb, ": %s maps to an invalid URL", e.location())
	default:
		sb.WriteString(": no matching import map entry")
	}
	return sb.String()
}

// Unwrap returns ErrUnresolvable for errors.Is() compatibility.
func (e *ResolutionError) Unwrap() error { return ErrUnresolvable }

func (e *ResolutionError) location() string {
	if e.Scope != "" {
		return fmt.Sprintf("scopes[%q][%q]", e.Scope, e.Key)
	}
	return fmt.Sprintf("imports[%q]", e.Key)
}

// Error implements the error interface.
func (e *InvalidImportMapError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Source)
	if e.Path != "" {
		sb.WriteString(": " + e.Path)
	}
	sb.WriteString(": " + e.Reason)
	if e.Cause != nil {
		fmt.Fprintf(&sb, ": %v", e.Cause)
	}
	return sb.String()
}

// Unwrap returns ErrInvalidImportMap and the cause, if any.
func (e *InvalidImportMapError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrInvalidImportMap, e.Cause}
	}
	return []error{ErrInvalidImportMap}
}
