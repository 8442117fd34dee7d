package hostfuncs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	sdkErrors "github.com/reglet-dev/zendext-sdk/domain/errors"
)

// Middleware wraps a CallHandler to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
type Middleware func(next CallHandler) CallHandler

// RegistryOption is a functional option for configuring a HandlerRegistry.
type RegistryOption func(*registryBuilder)

// PanicRecoveryMiddleware converts a panicking handler into an Error exception.
// Host allocator exhaustion is not recovered: the host does not return from it.
func PanicRecoveryMiddleware() Middleware {
	return func(next CallHandler) CallHandler {
		return func(ctx context.Context, args []any) (result any, err error) {
			defer func() {
				if r := recover(); r != nil {
					if allocErr, ok := r.(error); ok {
						var target *sdkErrors.AllocationError
						if errors.As(allocErr, &target) {
							panic(r)
						}
					}
					result, err = nil, NewPanicError(r)
				}
			}()
			return next(ctx, args)
		}
	}
}

// LoggingMiddleware logs every call at debug level and failures at warn.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next CallHandler) CallHandler {
		return func(ctx context.Context, args []any) (any, error) {
			name := "unknown"
			if cc, ok := ctx.(CallContext); ok {
				name = cc.FunctionName()
			}
			start := time.Now()
			result, err := next(ctx, args)
			if err != nil {
				logger.WarnContext(ctx, "function call failed", "function", name, "args", len(args), "error", err)
			} else {
				logger.DebugContext(ctx, "function call", "function", name, "args", len(args), "duration", time.Since(start))
			}
			return result, err
		}
	}
}
