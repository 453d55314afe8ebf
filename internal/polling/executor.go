package polling

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/florabridge/internal/device"
	"github.com/nerrad567/florabridge/internal/miflora"
)

// DefaultMaxAttempts is the refresh attempt bound used when none is configured.
const DefaultMaxAttempts = 2

// Executor runs single read cycles.
//
// Thread Safety:
//   - Not safe for concurrent use. Device state is mutated without locks.
type Executor struct {
	maxAttempts int
	catalog     []miflora.Parameter
	logger      Logger
	recorder    Recorder
	now         func() time.Time
}

// NewExecutor creates an Executor. maxAttempts below 1 falls back to DefaultMaxAttempts.
func NewExecutor(maxAttempts int) *Executor {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Executor{
		maxAttempts: maxAttempts,
		catalog:     miflora.Catalog(),
		logger:      noopLogger{},
		recorder:    noopRecorder{},
		now:         time.Now,
	}
}

// SetLogger sets the logger for the executor.
func (e *Executor) SetLogger(logger Logger) {
	e.logger = logger
}

// SetRecorder sets the outcome recorder for the executor.
func (e *Executor) SetRecorder(recorder Recorder) {
	e.recorder = recorder
}

// MaxAttempts returns the per-cycle attempt bound.
func (e *Executor) MaxAttempts() int {
	return e.maxAttempts
}

// Execute runs one cycle for d.
//
// The poller cache is cleared first so a value from an earlier cycle is never
// reused. Attempts follow each other without delay. A cancelled context ends
// the attempt loop and the cycle counts as failed.
//
// Returns:
//   - *miflora.Reading: All catalog values, on success
//   - error: *CycleError wrapping ErrCycleFailed, on failure
func (e *Executor) Execute(ctx context.Context, d *device.Device) (*miflora.Reading, error) {
	p := d.Poller
	p.ClearCache()
	d.Stats.Attempted++

	e.logger.Info("retrieving data from sensor", "device", d.ID)

	attempts := 0
	var lastErr error
	for attempts < e.maxAttempts {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		attempts++

		lastErr = refresh(ctx, p)
		if lastErr == nil {
			break
		}

		p.ClearCache()
		if attempts < e.maxAttempts && ctx.Err() == nil {
			e.logger.Warn("retrying", "device", d.ID, "attempt", attempts, "error", lastErr)
		}
	}

	var values []miflora.Value
	if lastErr == nil {
		values, lastErr = e.extract(p)
	}
	if lastErr != nil {
		return nil, e.fail(d, attempts, lastErr)
	}

	d.Stats.Successful++
	if fw := p.FirmwareVersion(); fw != "" && d.Firmware == "" {
		d.Firmware = fw
	}

	reading := miflora.NewReading(d.ID, d.Name, d.LocationClean, d.Address, d.Firmware, e.now(), values)
	e.logger.Info("result", append([]any{"device", d.ID}, valueAttrs(reading)...)...)
	e.recorder.CycleCompleted(d.ID, reading)
	return reading, nil
}

// refresh performs one attempt: fill the cache and confirm it with the
// liveness parameter.
func refresh(ctx context.Context, p miflora.Poller) error {
	if err := p.FillCache(ctx); err != nil {
		return err
	}
	if _, err := p.ParameterValue(miflora.LivenessParameter); err != nil {
		return err
	}
	return nil
}

func (e *Executor) extract(p miflora.Poller) ([]miflora.Value, error) {
	values := make([]miflora.Value, 0, len(e.catalog))
	for _, param := range e.catalog {
		v, err := p.ParameterValue(param.Key)
		if err != nil {
			return nil, fmt.Errorf("extracting %s: %w", param.Key, err)
		}
		values = append(values, miflora.Value{Key: param.Key, Value: v})
	}
	return values, nil
}

func (e *Executor) fail(d *device.Device, attempts int, err error) error {
	d.Stats.Failed++
	e.logger.Error("failed to retrieve data from sensor",
		"device", d.ID,
		"address", d.Address,
		"success_rate", d.Stats.SuccessPercent(),
		"error", err,
	)
	e.recorder.CycleCompleted(d.ID, nil)
	return &CycleError{Device: d.ID, Attempts: attempts, Err: err}
}

func valueAttrs(r *miflora.Reading) []any {
	attrs := make([]any, 0, 2*len(r.Values))
	for _, v := range r.Values {
		attrs = append(attrs, v.Key, r.Formatted(v.Key))
	}
	return attrs
}
