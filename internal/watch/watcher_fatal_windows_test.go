// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"fmt"
	"syscall"
	"testing"
)

func TestIsFatalFsnotifyError(t *testing.T) {
	t.Parallel()

	for err, want := range map[error]bool{
		errnoTooManyOpenFiles:                       true,
		fmt.Errorf("watch: %w", errnoInvalidHandle): true,
		errnoNotEnoughMemory:                        true,
		syscall.Errno(5):                            false,
		fmt.Errorf("read event"):                    false,
	} {
		if got := isFatalFsnotifyError(err); got != want {
			t.Errorf("isFatalFsnotifyError(%v) = %v, want %v", err, got, want)
		}
	}
}
