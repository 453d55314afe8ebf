package device

import (
	"fmt"
	"time"

	"github.com/nerrad567/florabridge/internal/miflora"
)

// Device is one configured plant sensor.
type Device struct {
	// ID is the cleaned name, unique within the registry.
	ID string

	// Name is the display name as configured.
	Name string

	// Location is the configured location, "" if none.
	Location string

	// LocationClean is Location passed through CleanIdentifier.
	LocationClean string

	// Address is the hardware address. Immutable after load.
	Address string

	// Poller is owned exclusively by this device.
	Poller miflora.Poller

	// RefreshPeriod is the time between scheduled polls.
	RefreshPeriod time.Duration

	// Firmware is set by the startup probe or the first successful cycle.
	// Empty means unknown.
	Firmware string

	Stats Stats
}

// Stats are the per-device cycle counters. They only ever increase.
// After every completed cycle Attempted == Successful + Failed.
type Stats struct {
	Attempted  uint64
	Successful uint64
	Failed     uint64
}

// SuccessRate returns Successful/Attempted in [0, 1]. Zero before the first cycle.
func (s Stats) SuccessRate() float64 {
	if s.Attempted == 0 {
		return 0
	}
	return float64(s.Successful) / float64(s.Attempted)
}

// SuccessPercent formats the success rate as a whole percentage, e.g. "67%".
func (s Stats) SuccessPercent() string {
	if s.Attempted == 0 {
		return "0%"
	}
	// round half up, in integer arithmetic
	return fmt.Sprintf("%d%%", (s.Successful*200+s.Attempted)/(s.Attempted*2))
}

// Consistent reports whether the counters satisfy the cycle invariant.
func (s Stats) Consistent() bool {
	return s.Attempted == s.Successful+s.Failed
}

// DisplayLocation returns the cleaned location, or fallback if none is set.
func (d *Device) DisplayLocation(fallback string) string {
	if d.LocationClean == "" {
		return fallback
	}
	return d.LocationClean
}
