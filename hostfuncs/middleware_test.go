package hostfuncs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/reglet-dev/zendext-sdk/alloc"
	sdkErrors "github.com/reglet-dev/zendext-sdk/domain/errors"
	"github.com/reglet-dev/zendext-sdk/exception"
	"github.com/reglet-dev/zendext-sdk/testing/hosttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPanicRecoveryMiddleware(t *testing.T) {
	panicHandler := func(ctx context.Context, args []any) (any, error) {
		panic("test panic")
	}

	wrapped := PanicRecoveryMiddleware()(panicHandler)

	resp, err := wrapped(context.Background(), nil)
	assert.Nil(t, resp)

	var exc *exception.Exception
	require.ErrorAs(t, err, &exc)
	assert.Equal(t, "Error", exc.Class().ClassName())
	assert.Contains(t, exc.Message(), "panic")
	assert.Contains(t, exc.Message(), "test panic")
}

func TestPanicRecoveryMiddleware_NoPanic(t *testing.T) {
	normalHandler := func(ctx context.Context, args []any) (any, error) {
		return "ok", nil
	}

	resp, err := PanicRecoveryMiddleware()(normalHandler)(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}

func TestPanicRecoveryMiddleware_AllocationFailurePropagates(t *testing.T) {
	oom := func(ctx context.Context, args []any) (any, error) {
		panic(&sdkErrors.AllocationError{Operation: "emalloc", Size: 64, Align: 8})
	}

	assert.Panics(t, func() {
		_, _ = PanicRecoveryMiddleware()(oom)(context.Background(), nil)
	})
}

func TestPanicRecovery_ThroughRegistry(t *testing.T) {
	engine := hosttest.NewEngine()
	a := alloc.New(engine)
	boom := buildFunction(t, a, "boom", func([]any) (any, error) {
		panic(errors.New("nil map write"))
	})

	reg, err := NewRegistry(WithMiddleware(PanicRecoveryMiddleware()), WithFunction(boom))
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), engine, "boom", nil)
	require.Error(t, err)

	raises := engine.Raises()
	require.Len(t, raises, 1)
	assert.Equal(t, "panic: nil map write", raises[0].Message)
}

func TestLoggingMiddleware(t *testing.T) {
	engine := hosttest.NewEngine()
	a := alloc.New(engine)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ok := buildFunction(t, a, "ok", echo)
	bad := buildFunction(t, a, "bad", func([]any) (any, error) { return nil, errors.New("denied") })
	reg, err := NewRegistry(WithMiddleware(LoggingMiddleware(logger)), WithFunction(ok, bad))
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), engine, "ok", nil)
	require.NoError(t, err)
	_, err = reg.Invoke(context.Background(), engine, "bad", nil)
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "function=ok")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "function=bad")
	assert.Contains(t, out, "denied")
}
