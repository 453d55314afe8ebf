package miflora

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// GATT handles.
const (
	handleDeviceName = "0x03"
	handleMode       = "0x33"
	handleData       = "0x35"
	handleFirmware   = "0x38"
)

// modeChangeValue enables live data on newer firmware.
const modeChangeValue = "A01F"

const modeChangeMinFirmware = "2.6.6"

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// execRunner runs the command with os/exec.
func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput() //nolint:gosec // binary comes from operator config
}

// GatttoolOptions configures a GatttoolPoller.
type GatttoolOptions struct {
	// Adapter is the HCI interface, e.g. "hci0".
	Adapter string

	// Binary is the gatttool executable.
	Binary string

	// Timeout bounds each gatttool invocation. Zero means no extra bound.
	Timeout time.Duration

	// Runner overrides command execution. Intended for tests.
	Runner Runner
}

// GatttoolPoller is a Poller backed by the gatttool CLI.
//
// Thread Safety:
//   - Not safe for concurrent use; each device is polled from one goroutine.
type GatttoolPoller struct {
	address string
	opts    GatttoolOptions

	firmware string
	battery  int
	data     *sensorData
}

// NewGatttoolPoller creates a poller for the sensor at address.
func NewGatttoolPoller(address string, opts GatttoolOptions) *GatttoolPoller {
	if opts.Binary == "" {
		opts.Binary = "gatttool"
	}
	if opts.Adapter == "" {
		opts.Adapter = "hci0"
	}
	if opts.Runner == nil {
		opts.Runner = execRunner
	}
	return &GatttoolPoller{address: address, opts: opts}
}

// NewGatttoolFactory returns a PollerFactory producing GatttoolPollers.
func NewGatttoolFactory(opts GatttoolOptions) PollerFactory {
	return func(address string) Poller {
		return NewGatttoolPoller(address, opts)
	}
}

// Address implements Poller.
func (p *GatttoolPoller) Address() string {
	return p.address
}

// FirmwareVersion implements Poller.
func (p *GatttoolPoller) FirmwareVersion() string {
	return p.firmware
}

// ClearCache implements Poller.
func (p *GatttoolPoller) ClearCache() {
	p.data = nil
}

// FillCache implements Poller.
//
// It reads battery and firmware, switches the sensor into live mode when the
// firmware requires it, and reads the data block. On any failure the cache
// stays empty.
func (p *GatttoolPoller) FillCache(ctx context.Context) error {
	p.data = nil

	raw, err := p.read(ctx, handleFirmware)
	if err != nil {
		return err
	}
	battery, firmware, err := decodeFirmwareBattery(raw)
	if err != nil {
		return err
	}

	if versionAtLeast(firmware, modeChangeMinFirmware) {
		if err := p.write(ctx, handleMode, modeChangeValue); err != nil {
			return err
		}
	}

	raw, err = p.read(ctx, handleData)
	if err != nil {
		return err
	}
	data, err := decodeSensorData(raw)
	if err != nil {
		return err
	}

	p.battery = battery
	p.firmware = firmware
	p.data = &data
	return nil
}

// ParameterValue implements Poller.
func (p *GatttoolPoller) ParameterValue(key string) (float64, error) {
	if p.data == nil {
		return 0, ErrNoData
	}
	switch key {
	case Light:
		return float64(p.data.light), nil
	case Temperature:
		return p.data.temperature, nil
	case Moisture:
		return float64(p.data.moisture), nil
	case Conductivity:
		return float64(p.data.conductivity), nil
	case Battery:
		return float64(p.battery), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, key)
	}
}

// Name implements Poller.
func (p *GatttoolPoller) Name(ctx context.Context) (string, error) {
	raw, err := p.read(ctx, handleDeviceName)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(raw), "\x00"), nil
}

func (p *GatttoolPoller) read(ctx context.Context, handle string) ([]byte, error) {
	out, err := p.run(ctx, "--char-read", "-a", handle)
	if err != nil {
		return nil, err
	}
	return parseCharValue(out)
}

func (p *GatttoolPoller) write(ctx context.Context, handle, value string) error {
	out, err := p.run(ctx, "--char-write-req", "-a", handle, "-n", value)
	if err != nil {
		return err
	}
	if !strings.Contains(string(out), "written successfully") {
		return fmt.Errorf("%w: write %s: %s", ErrTransport, handle, firstLine(out))
	}
	return nil
}

func (p *GatttoolPoller) run(ctx context.Context, args ...string) ([]byte, error) {
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	full := append([]string{"--device=" + p.address, "-i", p.opts.Adapter}, args...)
	out, err := p.opts.Runner(ctx, p.opts.Binary, full...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s timed out after %s", ErrTransport, p.address, p.opts.Timeout)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %v: %s", ErrTransport, p.address, err, firstLine(out))
	}
	return out, nil
}
