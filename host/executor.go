package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/reglet-dev/zendext-sdk/alloc"
	"github.com/reglet-dev/zendext-sdk/domain/ports"
	"github.com/reglet-dev/zendext-sdk/exception"
	zwazero "github.com/reglet-dev/zendext-sdk/infrastructure/wazero"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// EngineModuleName is the instance name given to the loaded engine.
const EngineModuleName = "engine"

var (
	// ErrEngineLoaded is returned when LoadEngine is called twice.
	ErrEngineLoaded = errors.New("engine already loaded")
	// ErrNoEngine is returned by Call before an engine is loaded.
	ErrNoEngine = errors.New("no engine loaded")
	// ErrClosed is returned once the executor has been closed.
	ErrClosed = errors.New("executor closed")
)

// Executor manages the lifecycle of one WASM host engine.
type Executor struct {
	runtimeConfig wazero.RuntimeConfig
	engineOpts    []zwazero.AdapterOption
	listeners     []ports.ErrorObserver
	logger        *slog.Logger

	runtime   wazero.Runtime
	engine    *zwazero.Engine
	observers *exception.ObserverRegistry

	mu     sync.Mutex
	mod    api.Module
	alloc  *alloc.Allocator
	closed bool
}

// NewExecutor creates the runtime and the "zendext" host module.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	e := &Executor{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	if e.runtimeConfig == nil {
		e.runtimeConfig = wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, e.runtimeConfig)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate WASI: %w", err)
	}

	engineOpts := append([]zwazero.AdapterOption{zwazero.WithLogger(e.logger)}, e.engineOpts...)
	engine, err := zwazero.NewEngine(ctx, rt, engineOpts...)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	e.runtime = rt
	e.engine = engine
	e.observers = exception.NewObserverRegistry(exception.WithLogger(e.logger))
	return e, nil
}

// LoadEngine instantiates the engine module and attaches it. Reactor modules
// have their _initialize export called first.
func (e *Executor) LoadEngine(ctx context.Context, wasmBytes []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if e.mod != nil {
		return ErrEngineLoaded
	}

	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return fmt.Errorf("failed to compile engine: %w", err)
	}
	mod, err := e.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(EngineModuleName))
	if err != nil {
		return fmt.Errorf("failed to instantiate engine: %w", err)
	}

	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			_ = mod.Close(ctx)
			return fmt.Errorf("failed to call _initialize: %w", err)
		}
	}
	if err := e.engine.Attach(mod); err != nil {
		_ = mod.Close(ctx)
		return err
	}

	e.mod = mod
	e.alloc = alloc.New(e.engine, alloc.WithLogger(e.logger))
	for _, l := range e.listeners {
		e.observers.Register(e.engine, l)
	}
	e.logger.Debug("engine loaded", "exports", len(compiled.ExportedFunctions()))
	return nil
}

// Engine returns the port adapter bound to the engine.
func (e *Executor) Engine() *zwazero.Engine {
	return e.engine
}

// Allocator returns the allocator over the engine's request heap, or nil
// before LoadEngine.
func (e *Executor) Allocator() *alloc.Allocator {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alloc
}

// Observers returns the executor's observer registry. Listeners registered
// here after LoadEngine see every later diagnostic event.
func (e *Executor) Observers() *exception.ObserverRegistry {
	return e.observers
}

// Call invokes an exported engine function.
func (e *Executor) Call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	e.mu.Lock()
	mod := e.mod
	e.mu.Unlock()
	if mod == nil {
		return nil, ErrNoEngine
	}

	f := mod.ExportedFunction(name)
	if f == nil {
		return nil, fmt.Errorf("export %q not found", name)
	}
	return f.Call(ctx, params...)
}

// Close releases the runtime and everything instantiated in it.
func (e *Executor) Close(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true
	e.mod = nil
	e.alloc = nil
	e.mu.Unlock()
	return e.runtime.Close(ctx)
}
