package polling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/florabridge/internal/device"
	"github.com/nerrad567/florabridge/internal/miflora"
)

var errBusy = fmt.Errorf("%w: connect error: Device or resource busy", miflora.ErrTransport)

// fakePoller fails its first `failures` FillCache calls, then succeeds.
// A negative failures value fails forever.
type fakePoller struct {
	address  string
	failures int
	firmware string

	fills   int
	clears  int
	cached  bool
	missing string // catalog key that errors even with a full cache
}

func (f *fakePoller) FillCache(ctx context.Context) error {
	f.fills++
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.failures < 0 || f.fills <= f.failures {
		return errBusy
	}
	f.cached = true
	return nil
}

func (f *fakePoller) ClearCache() {
	f.clears++
	f.cached = false
}

func (f *fakePoller) ParameterValue(key string) (float64, error) {
	if !f.cached {
		return 0, miflora.ErrNoData
	}
	if key == f.missing {
		return 0, miflora.ErrUnknownParameter
	}
	values := map[string]float64{
		miflora.Light:        1234,
		miflora.Temperature:  21.5,
		miflora.Moisture:     35,
		miflora.Conductivity: 350,
		miflora.Battery:      98,
	}
	return values[key], nil
}

func (f *fakePoller) FirmwareVersion() string {
	if !f.cached {
		return ""
	}
	return f.firmware
}

func (f *fakePoller) Name(context.Context) (string, error) { return "Flower care", nil }
func (f *fakePoller) Address() string                      { return f.address }

// newDevice builds a single-device registry the way the daemon does.
func newDevice(t *testing.T, key string, poller *fakePoller) *device.Device {
	t.Helper()
	poller.address = "C4:7C:8D:11:22:33"
	r, err := device.Load(
		[]device.Entry{{Key: key, Address: poller.address}},
		func(string) miflora.Poller { return poller },
		300*time.Second,
	)
	if err != nil {
		t.Fatalf("device.Load() error = %v", err)
	}
	return r.Devices()[0]
}

type logLine struct {
	level string
	msg   string
	args  []any
}

// captureLogger records every log call.
type captureLogger struct {
	mu    sync.Mutex
	lines []logLine
}

func (c *captureLogger) add(level, msg string, args []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, logLine{level: level, msg: msg, args: args})
}

func (c *captureLogger) Debug(msg string, args ...any) { c.add("debug", msg, args) }
func (c *captureLogger) Info(msg string, args ...any)  { c.add("info", msg, args) }
func (c *captureLogger) Warn(msg string, args ...any)  { c.add("warn", msg, args) }
func (c *captureLogger) Error(msg string, args ...any) { c.add("error", msg, args) }

func (c *captureLogger) count(level string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		if l.level == level {
			n++
		}
	}
	return n
}

// attr returns the value of key in the i-th line at level.
func (c *captureLogger) attr(level string, i int, key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.lines {
		if l.level != level {
			continue
		}
		if i > 0 {
			i--
			continue
		}
		for j := 0; j+1 < len(l.args); j += 2 {
			if l.args[j] == key {
				return l.args[j+1]
			}
		}
		return nil
	}
	return nil
}

type publishCall struct {
	destination string
	reading     *miflora.Reading
}

// recordingSink records publishes and can be told to fail.
type recordingSink struct {
	calls []publishCall
	err   error
}

func (s *recordingSink) Publish(_ context.Context, destination string, r *miflora.Reading) error {
	s.calls = append(s.calls, publishCall{destination: destination, reading: r})
	return s.err
}

// countingRecorder counts Recorder callbacks.
type countingRecorder struct {
	succeeded, failed, publishFailed int
}

func (r *countingRecorder) CycleCompleted(_ string, reading *miflora.Reading) {
	if reading == nil {
		r.failed++
		return
	}
	r.succeeded++
}

func (r *countingRecorder) PublishFailed(string) { r.publishFailed++ }

func assertStats(t *testing.T, d *device.Device, want device.Stats) {
	t.Helper()
	if d.Stats != want {
		t.Errorf("stats = %+v, want %+v", d.Stats, want)
	}
	if !d.Stats.Consistent() {
		t.Errorf("stats %+v break attempted == successful + failed", d.Stats)
	}
}

func isCycleError(err error) bool {
	var ce *CycleError
	return errors.As(err, &ce) && errors.Is(err, ErrCycleFailed)
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
