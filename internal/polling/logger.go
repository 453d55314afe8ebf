package polling

import "github.com/nerrad567/florabridge/internal/miflora"

// Logger defines the logging interface used by the polling core.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Recorder receives cycle and publish outcomes, typically for metrics.
type Recorder interface {
	// CycleCompleted is called once per cycle. r is nil when the cycle failed.
	CycleCompleted(deviceID string, r *miflora.Reading)

	// PublishFailed is called when the sink rejects a reading.
	PublishFailed(deviceID string)
}

type noopRecorder struct{}

func (noopRecorder) CycleCompleted(string, *miflora.Reading) {}
func (noopRecorder) PublishFailed(string)                    {}
