package miflora

import (
	"time"

	"github.com/google/uuid"
)

// Value is one extracted catalog parameter.
type Value struct {
	Key   string
	Value float64
}

// Reading is the result of one successful cycle for one device.
// It is built by the polling core, handed to a sink and then discarded.
type Reading struct {
	// ID uniquely identifies this reading so consumers can drop duplicates.
	ID uuid.UUID

	// Device is the cleaned device identity.
	Device string

	// Name is the raw display name.
	Name string

	// Location is the cleaned location, empty if none was configured.
	Location string

	Address  string
	Firmware string

	Timestamp time.Time

	// Values holds one entry per catalog parameter, in catalog order.
	Values []Value
}

// NewReading creates a Reading with a fresh ID.
func NewReading(device, name, location, address, firmware string, ts time.Time, values []Value) *Reading {
	return &Reading{
		ID:        uuid.New(),
		Device:    device,
		Name:      name,
		Location:  location,
		Address:   address,
		Firmware:  firmware,
		Timestamp: ts,
		Values:    values,
	}
}

// Value returns the value stored for key.
func (r *Reading) Value(key string) (float64, bool) {
	for _, v := range r.Values {
		if v.Key == key {
			return v.Value, true
		}
	}
	return 0, false
}

// Formatted returns the value for key rendered with its catalog format.
// Returns "" for keys missing from the reading.
func (r *Reading) Formatted(key string) string {
	v, ok := r.Value(key)
	if !ok {
		return ""
	}
	p, ok := Lookup(key)
	if !ok {
		return ""
	}
	return p.FormatValue(v)
}
