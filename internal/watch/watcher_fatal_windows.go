// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"syscall"
)

// Win32 error codes.
const (
	errTooManyOpenFiles = syscall.Errno(4)
	errInvalidHandle    = syscall.Errno(6)
	errNotEnoughMemory  = syscall.Errno(8)
)

// isFatalFsnotifyError reports handle or buffer failures of ReadDirectoryChangesW.
func isFatalFsnotifyError(err error) bool {
	return errors.Is(err, errTooManyOpenFiles) ||
		errors.Is(err, errInvalidHandle) ||
		errors.Is(err, errNotEnoughMemory)
}
