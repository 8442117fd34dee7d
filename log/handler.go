// Package log provides structured logging (slog) routed through the host
// engine's log sink, and a zap-backed listener for host diagnostic events.
package log

import (
	"context"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/reglet-dev/zendext-sdk/domain/ports"
)

// HostLogHandler implements slog.Handler by writing one line per record to a
// ports.HostLogger, typically the SAPI log_message callback.
type HostLogHandler struct {
	opts   handlerConfig
	host   ports.HostLogger
	mu     *sync.Mutex
	prefix string
	attrs  []string
}

// HandlerOption configures the HostLogHandler.
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

// NewHandler creates a HostLogHandler writing to host.
func NewHandler(host ports.HostLogger, opts ...HandlerOption) *HostLogHandler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &HostLogHandler{opts: cfg, host: host, mu: &sync.Mutex{}}
}

// SetDefault installs a HostLogHandler as the slog default and returns the
// logger.
func SetDefault(host ports.HostLogger, opts ...HandlerOption) *slog.Logger {
	logger := slog.New(NewHandler(host, opts...))
	slog.SetDefault(logger)
	return logger
}

// Enabled reports whether the handler handles records at the given level.
func (h *HostLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level
}

// Handle formats the record as "LEVEL message key=value ..." and writes it
// with the syslog priority matching the level.
func (h *HostLogHandler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder
	b.WriteString(record.Level.String())
	b.WriteByte(' ')
	b.WriteString(record.Message)

	if h.opts.addSource && record.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{record.PC})
		frame, _ := frames.Next()
		b.WriteString(" source=")
		b.WriteString(frame.File)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(frame.Line))
	}
	for _, a := range h.attrs {
		b.WriteByte(' ')
		b.WriteString(a)
	}
	record.Attrs(func(attr slog.Attr) bool {
		appendAttr(&b, h.prefix, attr)
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	h.host.LogMessage(b.String(), syslogPriority(record.Level))
	return nil
}

// WithAttrs returns a new HostLogHandler that includes the given attributes.
func (h *HostLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandler := *h
	newHandler.attrs = append([]string(nil), h.attrs...)
	for _, attr := range attrs {
		var b strings.Builder
		appendAttr(&b, h.prefix, attr)
		if b.Len() > 0 {
			newHandler.attrs = append(newHandler.attrs, b.String()[1:])
		}
	}
	return &newHandler
}

// WithGroup returns a new HostLogHandler that qualifies later keys with name.
func (h *HostLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	newHandler := *h
	newHandler.prefix = h.prefix + name + "."
	return &newHandler
}

func syslogPriority(level slog.Level) int {
	switch {
	case level >= slog.LevelError:
		return ports.SyslogErr
	case level >= slog.LevelWarn:
		return ports.SyslogWarning
	case level >= slog.LevelInfo:
		return ports.SyslogInfo
	default:
		return ports.SyslogDebug
	}
}
