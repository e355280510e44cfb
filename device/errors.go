package device

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// AllocationError reports a device allocation that could not be satisfied.
type AllocationError struct {
	What  string
	Bytes int64
	File  string
	Line  int
	Err   error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("%s:%d: allocation of %s (%d bytes) failed: %v",
		e.File, e.Line, e.What, e.Bytes, e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

// TransferError reports a host/device copy that could not complete.
type TransferError struct {
	What  string
	Bytes int64
	File  string
	Line  int
	Err   error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s:%d: transfer of %s (%d bytes) failed: %v",
		e.File, e.Line, e.What, e.Bytes, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// caller returns the file:line of the function that called the error constructor's caller.
func caller(skip int) (string, int) {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "???", 0
	}
	return filepath.Base(file), line
}

func newAllocationError(what string, bytes int64, err error) *AllocationError {
	file, line := caller(1)
	return &AllocationError{What: what, Bytes: bytes, File: file, Line: line, Err: err}
}

func newTransferError(what string, bytes int64, err error) *TransferError {
	file, line := caller(1)
	return &TransferError{What: what, Bytes: bytes, File: file, Line: line, Err: err}
}
