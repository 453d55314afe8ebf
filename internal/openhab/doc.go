// Package openhab renders openHAB item definitions for the configured sensors.
//
// The output is a ready-to-edit .items file: one group per catalog parameter,
// one group per sensor and one Number item per sensor and parameter, each
// bound to the sensor's MQTT topic through a JSONPATH transformation. Only the
// JSON payload format can be addressed this way.
package openhab
