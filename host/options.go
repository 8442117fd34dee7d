package host

import (
	"log/slog"

	"github.com/reglet-dev/zendext-sdk/domain/ports"
	zwazero "github.com/reglet-dev/zendext-sdk/infrastructure/wazero"
	"github.com/tetratelabs/wazero"
)

// Option defines a functional option for configuring the Executor.
type Option func(*Executor)

// WithEngineOptions configures the host module shared with the engine.
func WithEngineOptions(opts ...zwazero.AdapterOption) Option {
	return func(e *Executor) {
		e.engineOpts = append(e.engineOpts, opts...)
	}
}

// WithRuntimeConfig replaces the default wazero runtime configuration.
func WithRuntimeConfig(cfg wazero.RuntimeConfig) Option {
	return func(e *Executor) {
		e.runtimeConfig = cfg
	}
}

// WithObserver adds an error observer, installed when the engine is loaded.
func WithObserver(listener ports.ErrorObserver) Option {
	return func(e *Executor) {
		e.listeners = append(e.listeners, listener)
	}
}

// WithLogger sets the logger for the executor and its allocator.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}
