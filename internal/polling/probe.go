package polling

import (
	"context"

	"github.com/nerrad567/florabridge/internal/device"
	"github.com/nerrad567/florabridge/internal/miflora"
)

// Probe performs the one-time startup connectivity check.
type Probe struct {
	logger Logger
}

// NewProbe creates a Probe.
func NewProbe() *Probe {
	return &Probe{logger: noopLogger{}}
}

// SetLogger sets the logger for the probe.
func (p *Probe) SetLogger(logger Logger) {
	p.logger = logger
}

// Run checks each device once, in order, and returns how many answered.
// Failures are logged; the device stays registered with unknown firmware.
// Run does not retry and never aborts early unless ctx is cancelled.
func (p *Probe) Run(ctx context.Context, devices []*device.Device) int {
	ok := 0
	for _, d := range devices {
		if ctx.Err() != nil {
			break
		}
		if p.probe(ctx, d) {
			ok++
		}
	}
	return ok
}

func (p *Probe) probe(ctx context.Context, d *device.Device) bool {
	poller := d.Poller

	err := poller.FillCache(ctx)
	if err == nil {
		_, err = poller.ParameterValue(miflora.LivenessParameter)
	}
	if err != nil {
		p.logger.Error("initial connection to sensor failed",
			"device", d.ID,
			"name", d.Name,
			"address", d.Address,
			"error", err,
		)
		return false
	}

	d.Firmware = poller.FirmwareVersion()

	deviceName, err := poller.Name(ctx)
	if err != nil {
		p.logger.Warn("could not read device name", "device", d.ID, "error", err)
	}

	p.logger.Info("initial connection to sensor successful",
		"device", d.ID,
		"name", d.Name,
		"device_name", deviceName,
		"address", d.Address,
		"firmware", d.Firmware,
	)
	return true
}
