package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

// consoleTimeFormat is the timestamp prefix of every console line.
const consoleTimeFormat = "2006-01-02 15:04:05"

// ANSI colour sequences.
const (
	ansiReset     = "\x1b[0m"
	ansiGreen     = "\x1b[32m"
	ansiYellow    = "\x1b[33m"
	ansiRedBright = "\x1b[31;1m"
)

// ConsoleOptions configures a ConsoleHandler.
type ConsoleOptions struct {
	// Level is the minimum level written. Defaults to info.
	Level slog.Leveler

	// Color wraps the timestamp in ANSI colour by severity.
	Color bool
}

// ConsoleHandler writes one human-readable line per record:
//
//	[2006-01-02 15:04:05] message key=value key="quoted value"
//
// Error records go to the error writer, everything else to the standard writer.
type ConsoleHandler struct {
	out    io.Writer
	errOut io.Writer
	opts   ConsoleOptions

	// preformatted attributes from WithAttrs, and the WithGroup key prefix
	attrs  string
	prefix string

	mu *sync.Mutex
}

// NewConsoleHandler creates a ConsoleHandler.
func NewConsoleHandler(out, errOut io.Writer, opts ConsoleOptions) *ConsoleHandler {
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}
	return &ConsoleHandler{
		out:    out,
		errOut: errOut,
		opts:   opts,
		mu:     &sync.Mutex{},
	}
}

// Enabled implements slog.Handler.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

// Handle implements slog.Handler.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	stamp := "[" + r.Time.Format(consoleTimeFormat) + "] "
	if h.opts.Color {
		buf.WriteString(levelColor(r.Level))
		buf.WriteString(stamp)
		buf.WriteString(ansiReset)
	} else {
		buf.WriteString(stamp)
	}

	if r.Level < slog.LevelInfo {
		buf.WriteString("DEBUG ")
	}
	buf.WriteString(r.Message)
	buf.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&buf, h.prefix, a)
		return true
	})
	buf.WriteByte('\n')

	w := h.out
	if r.Level >= slog.LevelError {
		w = h.errOut
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := w.Write(buf.Bytes())
	return err
}

// WithAttrs implements slog.Handler.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var buf bytes.Buffer
	for _, a := range attrs {
		appendAttr(&buf, h.prefix, a)
	}
	cpy := *h
	cpy.attrs = h.attrs + buf.String()
	return &cpy
}

// WithGroup implements slog.Handler.
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	cpy := *h
	cpy.prefix = h.prefix + name + "."
	return &cpy
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return ansiRedBright
	case level >= slog.LevelWarn:
		return ansiYellow
	default:
		return ansiGreen
	}
}

// appendAttr writes " key=value", flattening groups.
func appendAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(buf, groupPrefix, ga)
		}
		return
	}

	buf.WriteByte(' ')
	buf.WriteString(prefix)
	buf.WriteString(a.Key)
	buf.WriteByte('=')
	buf.WriteString(quoteIfNeeded(valueString(a.Value)))
}

func valueString(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	if strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '"' || r == '=' || !unicode.IsPrint(r)
	}) >= 0 {
		return strconv.Quote(s)
	}
	return s
}
