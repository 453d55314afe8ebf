package miflora

import "errors"

// Domain errors for sensor reads.
var (
	// ErrNoData is returned when a value is requested before the cache was filled.
	ErrNoData = errors.New("miflora: no cached data")

	// ErrInvalidData is returned when the sensor answers with an implausible block.
	ErrInvalidData = errors.New("miflora: invalid sensor data")

	// ErrTransport is returned when the Bluetooth round-trip itself fails.
	ErrTransport = errors.New("miflora: transport failure")

	// ErrUnknownParameter is returned for keys outside the catalog.
	ErrUnknownParameter = errors.New("miflora: unknown parameter")
)
