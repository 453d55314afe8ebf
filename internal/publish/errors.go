package publish

import "errors"

// Domain errors for the publish package.
var (
	// ErrUnknownFormat is returned for payload formats other than json and csv.
	ErrUnknownFormat = errors.New("publish: unknown payload format")

	// ErrQueued wraps a publish failure whose reading was stored in the outbox.
	ErrQueued = errors.New("publish: queued for retry")
)
