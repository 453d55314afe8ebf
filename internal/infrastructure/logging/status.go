package logging

import (
	"context"
	"log/slog"

	"github.com/nerrad567/florabridge/internal/translit"
)

// statusTimeFormat matches the short syslog-style stamp shown by the supervisor.
const statusTimeFormat = "Jan _2 15:04:05"

// StatusNotifier receives one-line status updates for an external supervisor.
// Satisfied by *systemd.Notifier.
type StatusNotifier interface {
	Status(text string) error
}

// statusHandler forwards info and above to a StatusNotifier before passing the
// record on to the wrapped handler. Supervisor failures never block logging.
type statusHandler struct {
	next     slog.Handler
	notifier StatusNotifier

	// device is the "device" attribute bound via WithAttrs, if any.
	device string
}

func newStatusHandler(next slog.Handler, notifier StatusNotifier) *statusHandler {
	return &statusHandler{next: next, notifier: notifier}
}

// Enabled implements slog.Handler.
func (h *statusHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo || h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *statusHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelInfo {
		_ = h.notifier.Status(h.statusText(r)) //nolint:errcheck // Supervisor is best effort
	}
	if !h.next.Enabled(ctx, r.Level) {
		return nil
	}
	return h.next.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *statusHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cpy := *h
	cpy.next = h.next.WithAttrs(attrs)
	for _, a := range attrs {
		if a.Key == "device" {
			cpy.device = a.Value.String()
		}
	}
	return &cpy
}

// WithGroup implements slog.Handler.
func (h *statusHandler) WithGroup(name string) slog.Handler {
	cpy := *h
	cpy.next = h.next.WithGroup(name)
	return &cpy
}

// statusText renders "Oct 17 15:04:05 - message (device)." in ASCII.
func (h *statusHandler) statusText(r slog.Record) string {
	device := h.device
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "device" {
			device = a.Value.String()
			return false
		}
		return true
	})

	text := r.Time.Format(statusTimeFormat) + " - " + r.Message
	if device != "" {
		text += " (" + device + ")"
	}
	return translit.ASCII(text + ".")
}
