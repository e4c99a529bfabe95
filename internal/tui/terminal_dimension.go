// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidTerminalDimension is the sentinel error wrapped by InvalidTerminalDimensionError.
var ErrInvalidTerminalDimension = errors.New("invalid terminal dimension")

type (
	// TerminalDimension is a size in terminal columns. Zero means "follow
	// the terminal".
	TerminalDimension int

	// InvalidTerminalDimensionError is returned for negative dimensions.
	InvalidTerminalDimensionError struct {
		Value TerminalDimension
	}
)

func (d TerminalDimension) String() string { return strconv.Itoa(int(d)) }

// IsValid returns whether d is zero or positive.
func (d TerminalDimension) IsValid() (bool, []error) {
	if d < 0 {
		return false, []error{&InvalidTerminalDimensionError{Value: d}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidTerminalDimensionError) Error() string {
	return fmt.Sprintf("invalid terminal width %d: must be >= 0 (0 follows the terminal)", e.Value)
}

// Unwrap returns ErrInvalidTerminalDimension for errors.Is() compatibility.
func (e *InvalidTerminalDimensionError) Unwrap() error { return ErrInvalidTerminalDimension }
