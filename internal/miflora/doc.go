// Package miflora reads Xiaomi Mi Flora plant sensors.
//
// It defines the fixed parameter catalog, the Poller abstraction the polling
// core drives, the Reading produced by a successful cycle, and GatttoolPoller,
// a Poller that talks to the sensor through BlueZ's gatttool CLI.
//
// # Sensor protocol
//
// A Mi Flora exposes three GATT handles of interest:
//
//	0x38  battery level (byte 0) and firmware version (bytes 2..6, ASCII)
//	0x33  mode register; firmware >= 2.6.6 needs A01F written before reading data
//	0x35  16 bytes of sensor data
//
// The data block is little endian:
//
//	bytes 0..1  temperature, int16, tenths of °C
//	bytes 3..6  light, uint32, lux
//	byte  7     moisture, %
//	bytes 8..9  conductivity, uint16, µS/cm
package miflora
