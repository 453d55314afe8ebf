package polling

import (
	"errors"
	"fmt"
)

// ErrCycleFailed is wrapped by every *CycleError.
var ErrCycleFailed = errors.New("polling: cycle failed")

// CycleError reports a cycle that produced no reading.
type CycleError struct {
	// Device is the identity of the device that failed.
	Device string

	// Attempts is the number of refresh attempts made.
	Attempts int

	// Err is the last underlying error.
	Err error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("polling: cycle for %s failed after %d attempt(s): %v", e.Device, e.Attempts, e.Err)
}

// Unwrap exposes both ErrCycleFailed and the underlying error to errors.Is/As.
func (e *CycleError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCycleFailed}
	}
	return []error{ErrCycleFailed, e.Err}
}
