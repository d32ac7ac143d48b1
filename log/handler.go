// Package log forwards guest diagnostics to the host.
//
// Install wires a DiagnosticSink once per instance: it becomes the target of
// the default slog logger, of Mark and Measure, and of the panic guard that
// every export defers.
package log

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/reglet-dev/wasm-prover/domain/entities"
	"github.com/reglet-dev/wasm-prover/domain/ports"
)

// SinkHandler implements slog.Handler by rendering each record as one text
// line and passing it to a DiagnosticSink.
type SinkHandler struct {
	sink   ports.DiagnosticSink
	prefix string // pre-rendered attrs from WithAttrs
	group  string // dotted group path from WithGroup
	opts   handlerConfig
}

// HandlerOption configures the SinkHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level     slog.Level
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
func WithLevel(level slog.Level) HandlerOption {
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

// NewHandler creates a new SinkHandler with the given options.
func NewHandler(sink ports.DiagnosticSink, opts ...HandlerOption) *SinkHandler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &SinkHandler{sink: sink, opts: cfg}
}

// Enabled reports whether the handler handles records at the given level.
func (h *SinkHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level
}

// Handle renders the record as `message key=value ...` and sends it.
func (h *SinkHandler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder
	b.WriteString(record.Message)
	b.WriteString(h.prefix)

	record.Attrs(func(attr slog.Attr) bool {
		appendAttr(&b, h.group, attr)
		return true
	})

	if h.opts.addSource {
		if src := record.Source(); src != nil && src.File != "" {
			b.WriteString(" source=")
			b.WriteString(src.File)
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(src.Line))
		}
	}

	h.sink.Log(entities.SeverityFromLevel(record.Level), b.String())
	return nil
}

// WithAttrs returns a new SinkHandler that includes the given attributes.
func (h *SinkHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var b strings.Builder
	b.WriteString(h.prefix)
	for _, attr := range attrs {
		appendAttr(&b, h.group, attr)
	}
	newHandler := *h
	newHandler.prefix = b.String()
	return &newHandler
}

// WithGroup returns a new SinkHandler that qualifies later keys with name.
func (h *SinkHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	newHandler := *h
	newHandler.group = joinKey(h.group, name)
	return &newHandler
}
