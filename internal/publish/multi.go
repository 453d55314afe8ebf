package publish

import (
	"context"
	"errors"

	"github.com/nerrad567/florabridge/internal/miflora"
	"github.com/nerrad567/florabridge/internal/polling"
)

// Multi publishes every reading to all of its sinks, in order.
// One failing sink does not stop the others.
type Multi []polling.Sink

// Publish implements polling.Sink. It returns the joined errors of all sinks.
func (m Multi) Publish(ctx context.Context, destination string, r *miflora.Reading) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, destination, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
