package miflora

import "context"

// Poller is a per-device handle that performs the transport-level read and
// caches the result. Implementations are driven from a single goroutine.
type Poller interface {
	// FillCache performs a fresh device round-trip and caches the values.
	FillCache(ctx context.Context) error

	// ClearCache discards any cached values.
	ClearCache()

	// ParameterValue returns the cached value for a catalog key.
	// Returns ErrNoData if the cache is empty.
	ParameterValue(key string) (float64, error)

	// FirmwareVersion returns the firmware reported by the last fill, or "".
	FirmwareVersion() string

	// Name reads the advertised device name.
	Name(ctx context.Context) (string, error)

	// Address returns the hardware address the poller talks to.
	Address() string
}

// PollerFactory creates the Poller for a hardware address.
type PollerFactory func(address string) Poller
