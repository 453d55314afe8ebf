package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrInvalidAddress) {
//	    // configuration problem, exit
//	}
var (
	// ErrDeviceNotFound is returned when a device ID does not exist.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrInvalidAddress is returned when a hardware address does not match the vendor pattern.
	ErrInvalidAddress = errors.New("device: invalid address")

	// ErrInvalidName is returned when a device name is empty after cleanup.
	ErrInvalidName = errors.New("device: invalid name")

	// ErrDuplicateDevice is returned when two entries clean to the same identity.
	ErrDuplicateDevice = errors.New("device: duplicate identity")
)
