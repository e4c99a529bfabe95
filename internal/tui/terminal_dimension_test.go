// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"errors"
	"testing"
)

func TestTerminalDimension_IsValid(t *testing.T) {
	t.Parallel()

	for _, d := range []TerminalDimension{0, 1, 80} {
		if ok, errs := d.IsValid(); !ok {
			t.Errorf("TerminalDimension(%d) should be valid: %v", d, errs)
		}
	}

	ok, errs := TerminalDimension(-3).IsValid()
	if ok || len(errs) != 1 {
		t.Fatalf("IsValid(-3) = %v, %v", ok, errs)
	}
	if !errors.Is(errs[0], ErrInvalidTerminalDimension) {
		t.Errorf("error should wrap ErrInvalidTerminalDimension: %v", errs[0])
	}
	var dimErr *InvalidTerminalDimensionError
	if !errors.As(errs[0], &dimErr) || dimErr.Value != -3 {
		t.Errorf("errors.As failed or wrong value: %v", errs[0])
	}
	if TerminalDimension(120).String() != "120" {
		t.Error("String() should print the decimal value")
	}
}
