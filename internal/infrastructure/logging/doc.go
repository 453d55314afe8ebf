// Package logging provides structured logging for florabridge.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - Console output for operators: "[2006-01-02 15:04:05] message key=value",
//     coloured by severity on a terminal, errors routed to stderr
//   - JSON output for log shipping, text output for development
//   - Default fields (service, version) on structured formats
//   - Level-based filtering (debug, info, warn, error)
//   - Optional forwarding of every info/warn/error line to a supervisor
//     status (see WithStatus), transliterated to ASCII
//
// # Configuration
//
//	logging:
//	  level: "info"       # debug, info, warn, error
//	  format: "console"   # console, json, text
//	  output: "stdout"    # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version).WithStatus(notifier)
//	logger.Info("sensor probed", "device", "Balcony-Plant", "firmware", "3.2.1")
//	logger.Error("publish failed", "error", err)
package logging
