package pdk

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// LogHandler is a slog.Handler writing records to the host log functions.
// Attributes are appended to the message as key=value pairs.
type LogHandler struct {
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

// HandlerOption configures a LogHandler.
type HandlerOption func(*LogHandler)

// WithLevel sets the minimum level. Lower records are dropped in the guest.
func WithLevel(level slog.Leveler) HandlerOption {
	return func(h *LogHandler) {
		h.level = level
	}
}

// NewLogHandler returns a handler that reports records at slog.LevelInfo and above.
func NewLogHandler(opts ...HandlerOption) *LogHandler {
	h := &LogHandler{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Logger returns a slog.Logger backed by a default LogHandler.
func Logger() *slog.Logger {
	return slog.New(NewLogHandler())
}

// Enabled reports whether the handler handles records at the given level.
func (h *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle renders the record and sends it to the host.
func (h *LogHandler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder
	b.WriteString(record.Message)

	for _, attr := range h.attrs {
		writeAttr(&b, "", attr)
	}

	prefix := strings.Join(h.groups, ".")
	record.Attrs(func(attr slog.Attr) bool {
		writeAttr(&b, prefix, attr)
		return true
	})

	Log(levelFor(record.Level), b.String())
	return nil
}

// WithAttrs returns a handler that appends attrs to every record.
func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	prefix := strings.Join(h.groups, ".")
	clone := h.clone()
	for _, attr := range attrs {
		if prefix != "" {
			attr.Key = prefix + "." + attr.Key
		}
		clone.attrs = append(clone.attrs, attr)
	}
	return clone
}

// WithGroup returns a handler that qualifies later attribute keys with name.
func (h *LogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *LogHandler) clone() *LogHandler {
	return &LogHandler{
		level:  h.level,
		attrs:  append([]slog.Attr(nil), h.attrs...),
		groups: append([]string(nil), h.groups...),
	}
}

func writeAttr(b *strings.Builder, prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}

	key := attr.Key
	if prefix != "" {
		key = prefix + "." + key
	}

	if attr.Value.Kind() == slog.KindGroup {
		for _, inner := range attr.Value.Group() {
			writeAttr(b, key, inner)
		}
		return
	}

	fmt.Fprintf(b, " %s=%v", key, attr.Value.Any())
}

// levelFor maps a slog level onto the nearest host severity.
func levelFor(level slog.Level) LogLevel {
	switch {
	case level >= slog.LevelError:
		return LogError
	case level >= slog.LevelWarn:
		return LogWarn
	case level >= slog.LevelInfo:
		return LogInfo
	default:
		return LogDebug
	}
}
