// Package publish delivers readings to their destinations.
//
// Every adapter satisfies polling.Sink:
//
//   - MQTT publishes one message per reading on "<destination>/<device>",
//     encoded as a flat JSON object or a CSV line.
//   - Influx writes one point per reading, measurement "<destination>".
//   - Multi fans a reading out to several sinks and joins their errors.
//   - Outbox wraps another sink. Failed readings are stored in SQLite and
//     replayed, oldest first, before each later publish.
package publish
