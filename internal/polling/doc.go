// Package polling is the sensor polling core.
//
// Three pieces run on one goroutine, in this order:
//
//   - Probe: one connectivity check per device at startup. Records firmware,
//     logs failures and never aborts.
//   - Executor: one cycle for one device. Clears the poller cache, makes up to
//     MaxAttempts back-to-back refresh attempts, updates the device's Stats and
//     builds a Reading on success.
//   - Scheduler: loops over the registry in order, publishing each Reading to
//     a Sink, and sleeps between cycles.
//
// A failed cycle is not fatal. The device is tried again next period, for the
// lifetime of the process. Publish errors are logged and left to the sink
// (see publish.Outbox for a sink that stores and replays them).
//
// # Pacing
//
// With PacingCycle the scheduler sleeps once per cycle until the next period
// boundary, so slow cycles do not shift later ones. With PacingDevice it
// sleeps a full period after every device.
package polling
