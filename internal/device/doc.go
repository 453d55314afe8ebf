// Package device holds the registry of configured plant sensors.
//
// The registry is built once at startup from the ordered sensor list in the
// configuration and never changes afterwards. Each entry becomes a Device that
// owns its Poller and accumulates reliability statistics.
//
// # Configuration entries
//
// Keys have the form "name[@location]", values are hardware addresses:
//
//	sensors:
//	  "Balcony Plant@Living Room": "C4:7C:8D:11:22:33"
//	  "Fern": "C4:7C:8D:44:55:66"
//
// Names and locations are normalized with CleanIdentifier so the cleaned name
// can serve as a map key, an MQTT topic level and an openHAB item name.
//
// # Errors
//
// Load fails with ErrInvalidAddress, ErrInvalidName or ErrDuplicateDevice.
// All three are fatal: the daemon exits before any polling starts.
//
// # Thread Safety
//
// The registry itself is immutable after Load. Device state (Firmware, Stats)
// is mutated only by the single polling goroutine and is not locked.
package device
