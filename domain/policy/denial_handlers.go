package policy

import "log/slog"

// DenialHandler is notified every time a policy refuses a request.
type DenialHandler interface {
	OnDenial(kind string, request interface{}, reason string)
}

var _ DenialHandler = (*LogDenialHandler)(nil)
var _ DenialHandler = (*NopDenialHandler)(nil)

// LogDenialHandler logs denials at warn level. A nil Logger means slog.Default().
type LogDenialHandler struct {
	Logger *slog.Logger
}

func (h *LogDenialHandler) OnDenial(kind string, request interface{}, reason string) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("permission denied", "kind", kind, "request", request, "reason", reason)
}

// NopDenialHandler does nothing.
type NopDenialHandler struct{}

func (h *NopDenialHandler) OnDenial(kind string, request interface{}, reason string) {}
