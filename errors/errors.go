// Package errors defines the error kinds gofat32 can return, each backed by
// a POSIX errno code so callers that already branch on syscall.Errno (as a
// FUSE layer or a shell would) can keep doing so.
package errors

import (
	"fmt"
	"syscall"
)

// DriverError is the error type returned by every gofat32 operation that can
// fail. It wraps a syscall.Errno so callers can use errors.Is against the
// standard syscall constants.
type DriverError struct {
	// ErrnoCode is the POSIX error code closest in meaning to the failure.
	ErrnoCode syscall.Errno

	// PartitionIndex is the 0-indexed partition table slot that failed
	// validation. It is only meaningful for errors produced by
	// NewUnknownBootIndicatorError; callers should not rely on it otherwise.
	PartitionIndex int

	message string
}

// Error implements the error interface.
func (e *DriverError) Error() string {
	if e.message != "" {
		return e.message
	}
	return e.ErrnoCode.Error()
}

// Unwrap lets errors.Is(err, syscall.EIO) and similar checks work.
func (e *DriverError) Unwrap() error {
	return e.ErrnoCode
}

// NewDriverError creates a DriverError with a default message derived from
// the errno code.
func NewDriverError(code syscall.Errno) *DriverError {
	return &DriverError{ErrnoCode: code, message: code.Error(), PartitionIndex: -1}
}

// NewDriverErrorWithMessage creates a DriverError from an errno code with a
// custom message.
func NewDriverErrorWithMessage(code syscall.Errno, message string) *DriverError {
	return &DriverError{ErrnoCode: code, message: message, PartitionIndex: -1}
}

// NewUnknownBootIndicatorError reports that partition `index` (0-based) in
// the MBR partition table carries a boot indicator byte that is neither
// 0x00 nor 0x80.
func NewUnknownBootIndicatorError(index int) *DriverError {
	return &DriverError{
		ErrnoCode:      syscall.EINVAL,
		PartitionIndex: index,
		message:        fmt.Sprintf("partition %d has an unrecognized boot indicator", index),
	}
}

// ErrReadOnlyFileSystem is returned, unconditionally, by every mutating
// operation gofat32 exposes. It's a package-level value since it carries no
// call-specific information.
var ErrReadOnlyFileSystem = NewDriverErrorWithMessage(syscall.EROFS, "gofat32: read-only file system")

// IsNotFound reports whether err is a DriverError carrying ENOENT.
func IsNotFound(err error) bool {
	de, ok := err.(*DriverError)
	return ok && de.ErrnoCode == syscall.ENOENT
}

// IsInvalidInput reports whether err is a DriverError carrying EINVAL.
func IsInvalidInput(err error) bool {
	de, ok := err.(*DriverError)
	return ok && de.ErrnoCode == syscall.EINVAL
}
