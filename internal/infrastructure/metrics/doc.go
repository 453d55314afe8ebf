// Package metrics exposes polling statistics in the Prometheus text format.
//
// Recorder implements polling.Recorder and keeps its collectors on a private
// registry, so tests and multiple daemons never collide on the default one.
// Serve runs the HTTP endpoint until its context is cancelled.
package metrics
