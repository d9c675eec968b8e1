// Package log provides structured logging (slog) for policy modules. Inside
// the sandbox, records are shipped to the host through the log_message
// import; native builds write them to stderr.
package log

import (
	"context"
	"log/slog"
	"slices"

	"github.com/warden-dev/policy-sdk-go/domain/entities"
)

// Handler implements slog.Handler and forwards records across the boundary.
type Handler struct {
	opts   handlerConfig
	attrs  []entities.LogAttr
	prefix string
}

// HandlerOption configures the Handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level     slog.Leveler
	addSource bool
}

// defaultHandlerConfig returns the default configuration.
func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level: slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
// Records below this level are filtered on the guest side.
func WithLevel(level slog.Leveler) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// NewHandler creates a new Handler with the given options.
func NewHandler(opts ...HandlerOption) *Handler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Handler{opts: cfg}
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level.Level()
}

// WithAttrs returns a Handler that includes the given attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = slices.Clip(slices.Clone(h.attrs))
	for _, attr := range attrs {
		clone.attrs = appendAttr(clone.attrs, h.prefix, attr)
	}
	return &clone
}

// WithGroup returns a Handler that qualifies later attributes with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// Handle ships the record to the host.
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	return emit(h.toRecord(record))
}

// toRecord flattens a slog.Record into its wire form.
func (h *Handler) toRecord(record slog.Record) entities.LogRecord {
	rec := entities.LogRecord{
		Time:    record.Time,
		Level:   record.Level.String(),
		Message: record.Message,
		Attrs:   slices.Clone(h.attrs),
	}
	if h.opts.addSource && record.PC != 0 {
		rec.Attrs = appendAttr(rec.Attrs, "", slog.Any(slog.SourceKey, record.Source()))
	}
	record.Attrs(func(attr slog.Attr) bool {
		rec.Attrs = appendAttr(rec.Attrs, h.prefix, attr)
		return true
	})
	return rec
}
