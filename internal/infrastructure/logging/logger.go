package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/nerrad567/florabridge/internal/infrastructure/config"
)

// Logger wraps slog.Logger with florabridge-specific functionality.
//
// It provides structured logging with default fields and level-based filtering.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Logger struct {
	*slog.Logger
}

// New creates a new Logger with the specified configuration.
//
// It configures:
//   - Output format (console for operators, JSON for log shipping, text for development)
//   - Log level filtering
//   - Default fields (service name, version) for the structured formats
//   - Output destination
//
// The console format always sends error records to stderr; with output "stdout"
// everything else goes to stdout.
//
// Parameters:
//   - cfg: Logging configuration from config.yaml
//   - version: Application version for default field
//
// Returns:
//   - *Logger: Configured logger ready for use
func New(cfg config.LoggingConfig, version string) *Logger {
	var output *os.File
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}

	level := parseLevel(cfg.Level)

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = withDefaultAttrs(slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level}), version)
	case "text":
		handler = withDefaultAttrs(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level}), version)
	default:
		handler = NewConsoleHandler(output, os.Stderr, ConsoleOptions{
			Level: level,
			Color: isTerminal(output) && isTerminal(os.Stderr),
		})
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// withDefaultAttrs adds the service and version fields to every record.
func withDefaultAttrs(handler slog.Handler, version string) slog.Handler {
	return handler.WithAttrs([]slog.Attr{
		slog.String("service", "florabridge"),
		slog.String("version", version),
	})
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// parseLevel converts a string log level to slog.Level.
//
// Supported levels: debug, info, warn, error
// Defaults to info if unrecognised.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a new Logger with additional default attributes.
//
// Example:
//
//	devLogger := logger.With("device", d.ID)
//	devLogger.Info("probe ok") // Includes device=<id>
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// WithStatus returns a Logger that also forwards every info, warning and error
// record to the supervisor as a status line.
func (l *Logger) WithStatus(notifier StatusNotifier) *Logger {
	if notifier == nil {
		return l
	}
	return &Logger{
		Logger: slog.New(newStatusHandler(l.Handler(), notifier)),
	}
}

// Default creates a default logger for use before configuration is loaded.
// It writes console lines at info level.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "console",
		Output: "stdout",
	}, "dev")
}

// Discard returns a logger that drops everything. Intended for tests.
func Discard() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}
