package device

import (
	"fmt"
	"time"

	"github.com/nerrad567/florabridge/internal/miflora"
)

// Entry is one configured sensor: a "name[@location]" key and an address.
type Entry struct {
	Key     string
	Address string
}

// Registry is the ordered, fixed set of configured devices.
type Registry struct {
	devices []*Device
	byID    map[string]*Device
}

// Load builds the registry from entries, preserving their order.
//
// Every address is validated before any poller is created, so a bad entry
// anywhere in the list fails the load without side effects.
//
// Parameters:
//   - entries: Sensor entries in configuration order
//   - factory: Creates the poller for each address
//   - period: Refresh period applied to every device
//
// Returns:
//   - *Registry: The populated registry
//   - error: ErrInvalidAddress, ErrInvalidName or ErrDuplicateDevice
func Load(entries []Entry, factory miflora.PollerFactory, period time.Duration) (*Registry, error) {
	r := &Registry{
		devices: make([]*Device, 0, len(entries)),
		byID:    make(map[string]*Device, len(entries)),
	}

	for _, e := range entries {
		if err := ValidateAddress(e.Address); err != nil {
			return nil, err
		}

		name, location := SplitName(e.Key)
		id := CleanIdentifier(name)
		if id == "" {
			return nil, fmt.Errorf("%w: %q cleans to an empty identifier", ErrInvalidName, e.Key)
		}
		if prev, exists := r.byID[id]; exists {
			return nil, fmt.Errorf("%w: %q and %q both map to %q", ErrDuplicateDevice, prev.Name, name, id)
		}

		d := &Device{
			ID:            id,
			Name:          name,
			Location:      location,
			LocationClean: CleanIdentifier(location),
			Address:       e.Address,
			RefreshPeriod: period,
		}
		r.devices = append(r.devices, d)
		r.byID[id] = d
	}

	// pollers are only created once the whole list is known to be valid
	for _, d := range r.devices {
		d.Poller = factory(d.Address)
	}

	return r, nil
}

// Devices returns the devices in configuration order.
// The slice is a copy; the devices are shared.
func (r *Registry) Devices() []*Device {
	out := make([]*Device, len(r.devices))
	copy(out, r.devices)
	return out
}

// Get returns the device with the given identity.
func (r *Registry) Get(id string) (*Device, error) {
	d, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	return d, nil
}

// Len returns the number of devices.
func (r *Registry) Len() int {
	return len(r.devices)
}
