package miflora

import (
	"fmt"
	"math"
)

// Parameter keys.
const (
	Light        = "light"
	Temperature  = "temperature"
	Moisture     = "moisture"
	Conductivity = "conductivity"
	Battery      = "battery"
)

// LivenessParameter is read after every refresh to confirm the sensor answered.
const LivenessParameter = Light

// Parameter describes one metric extracted from every reading.
type Parameter struct {
	// Key is the short identifier used in payloads ("light").
	Key string

	// Name is the CamelCase identifier used in generated item names.
	Name string

	// DisplayName is the human label.
	DisplayName string

	// Format is a printf verb, "%d" or "%.1f".
	Format string

	Unit string

	// DeviceClass is an optional semantic class ("temperature"); empty if none.
	DeviceClass string
}

var catalog = []Parameter{
	{Key: Light, Name: "LightIntensity", DisplayName: "Sunlight Intensity", Format: "%d", Unit: "lux", DeviceClass: "illuminance"},
	{Key: Temperature, Name: "AirTemperature", DisplayName: "Air Temperature", Format: "%.1f", Unit: "°C", DeviceClass: "temperature"},
	{Key: Moisture, Name: "SoilMoisture", DisplayName: "Soil Moisture", Format: "%d", Unit: "%", DeviceClass: "humidity"},
	{Key: Conductivity, Name: "SoilConductivity", DisplayName: "Soil Conductivity/Fertility", Format: "%d", Unit: "µS/cm"},
	{Key: Battery, Name: "Battery", DisplayName: "Sensor Battery Level", Format: "%d", Unit: "%", DeviceClass: "battery"},
}

// Catalog returns the parameter catalog in its fixed order.
// The returned slice is a copy.
func Catalog() []Parameter {
	out := make([]Parameter, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalog entry for key.
func Lookup(key string) (Parameter, bool) {
	for _, p := range catalog {
		if p.Key == key {
			return p, true
		}
	}
	return Parameter{}, false
}

// FormatValue renders v using the parameter's numeric format.
// Integer formats round to the nearest whole number.
func (p Parameter) FormatValue(v float64) string {
	if p.Format == "%d" {
		return fmt.Sprintf("%d", int64(math.Round(v)))
	}
	return fmt.Sprintf(p.Format, v)
}
