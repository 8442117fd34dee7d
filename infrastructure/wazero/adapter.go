package wazero

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/reglet-dev/zendext-sdk/domain/entities"
	sdkErrors "github.com/reglet-dev/zendext-sdk/domain/errors"
	"github.com/reglet-dev/zendext-sdk/domain/ports"
	"github.com/reglet-dev/zendext-sdk/internal/abi"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// DefaultModuleName is the host module the engine imports from.
const DefaultModuleName = "zendext"

const (
	exportMemory      = "memory"
	exportThrowEx     = "zend_throw_exception_ex"
	exportThrowObject = "zend_throw_exception_object"
	exportLookupClass = "zend_lookup_class"
	exportLogSeverity = "php_log_err_with_severity"
)

// AdapterConfig holds configuration for the wazero adapter.
type AdapterConfig struct {
	// ModuleName is the host module name (default: "zendext").
	ModuleName string

	// MaxStringSize bounds how far NUL-terminated strings are read from
	// engine memory. Default is abi.MaxCStringLength.
	MaxStringSize uint32

	// Classes maps class names to class entry addresses in engine memory.
	// Names missing here are resolved through zend_lookup_class.
	Classes map[string]entities.Ptr

	// LogSink receives sapi_log_message calls. Nil drops them.
	LogSink ports.HostLogger

	// CustomHandlers are extra functions exported from the host module.
	CustomHandlers []CustomHandler

	Logger *slog.Logger
}

// CustomHandler is an additional function the engine may import from the
// host module.
type CustomHandler struct {
	Name        string
	Handler     api.GoModuleFunc
	ParamTypes  []api.ValueType
	ResultTypes []api.ValueType
}

// AdapterOption configures the adapter.
type AdapterOption func(*AdapterConfig)

// WithModuleName sets the host module name.
func WithModuleName(name string) AdapterOption {
	return func(c *AdapterConfig) {
		c.ModuleName = name
	}
}

// WithMaxStringSize sets the longest string read from engine memory.
func WithMaxStringSize(size uint32) AdapterOption {
	return func(c *AdapterConfig) {
		c.MaxStringSize = size
	}
}

// WithClass registers the address of a class entry.
func WithClass(name string, ptr entities.Ptr) AdapterOption {
	return func(c *AdapterConfig) {
		if c.Classes == nil {
			c.Classes = make(map[string]entities.Ptr)
		}
		c.Classes[name] = ptr
	}
}

// WithLogSink forwards the engine's SAPI log lines to sink.
func WithLogSink(sink ports.HostLogger) AdapterOption {
	return func(c *AdapterConfig) {
		c.LogSink = sink
	}
}

// WithCustomHandler adds a function to the host module.
func WithCustomHandler(h CustomHandler) AdapterOption {
	return func(c *AdapterConfig) {
		c.CustomHandlers = append(c.CustomHandlers, h)
	}
}

// WithLogger sets the logger for adapter failures.
func WithLogger(logger *slog.Logger) AdapterOption {
	return func(c *AdapterConfig) {
		c.Logger = logger
	}
}

func defaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		ModuleName:    DefaultModuleName,
		MaxStringSize: abi.MaxCStringLength,
	}
}

// Engine is an engine module instantiated in wazero. Ports that cannot report
// failure (ThrowByClass, Efree, LogMessage) log it instead.
type Engine struct {
	cfg    AdapterConfig
	ctx    context.Context
	logger *slog.Logger

	mod      api.Module
	observer atomic.Pointer[ports.ErrorObserver]
	classes  sync.Map // map[string]entities.Ptr
}

var (
	_ ports.HostMemory        = (*Engine)(nil)
	_ ports.ExceptionHost     = (*Engine)(nil)
	_ ports.ErrorObserverHost = (*Engine)(nil)
	_ ports.HostLogger        = (*Engine)(nil)
)

// NewEngine instantiates the host module the engine imports from. Calls into
// the engine use ctx.
func NewEngine(ctx context.Context, runtime wazero.Runtime, opts ...AdapterOption) (*Engine, error) {
	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Engine{cfg: cfg, ctx: ctx, logger: cfg.Logger}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	for name, ptr := range cfg.Classes {
		e.classes.Store(name, ptr)
	}

	i32, i64 := api.ValueTypeI32, api.ValueTypeI64
	builder := runtime.NewHostModuleBuilder(cfg.ModuleName)
	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.handleErrorObserver), []api.ValueType{i32, i32, i32, i32}, nil).
		Export("error_observer")
	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.handleLogMessage), []api.ValueType{i64, i32}, nil).
		Export("sapi_log_message")

	for _, ch := range cfg.CustomHandlers {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(ch.Handler, ch.ParamTypes, ch.ResultTypes).
			Export(ch.Name)
	}

	if _, err := builder.Instantiate(ctx); err != nil {
		return nil, fmt.Errorf("wazero: instantiate host module %s: %w", cfg.ModuleName, err)
	}
	return e, nil
}

// Attach binds the instantiated engine module. It fails if a required export
// is missing.
func (e *Engine) Attach(mod api.Module) error {
	if mod.Memory() == nil {
		return missingExport(mod, exportMemory)
	}
	required := append(allocatorExports(), exportThrowEx, exportThrowObject)
	for _, name := range required {
		if mod.ExportedFunction(name) == nil {
			return missingExport(mod, name)
		}
	}
	e.mod = mod
	return nil
}

func missingExport(mod api.Module, name string) error {
	return &sdkErrors.ConfigError{
		Field: "exports",
		Err:   fmt.Errorf("engine module %q does not export %s", mod.Name(), name),
	}
}

// call invokes an engine export. A fresh api.Function is looked up per call
// so concurrent callers do not share call state.
func (e *Engine) call(name string, params ...uint64) ([]uint64, bool) {
	if e.mod == nil {
		e.logger.ErrorContext(e.ctx, "wazero: engine module not attached", "function", name)
		return nil, false
	}
	fn := e.mod.ExportedFunction(name)
	if fn == nil {
		return nil, false
	}
	results, err := fn.Call(e.ctx, params...)
	if err != nil {
		e.logger.ErrorContext(e.ctx, "wazero: engine call failed", "function", name, "error", err)
		return nil, false
	}
	return results, true
}

// Read implements ports.HostMemory.
func (e *Engine) Read(ptr entities.Ptr, length uint32) ([]byte, bool) {
	if e.mod == nil {
		return nil, false
	}
	return e.mod.Memory().Read(uint32(ptr), length)
}

// ByteAt implements ports.HostMemory.
func (e *Engine) ByteAt(ptr entities.Ptr) (byte, bool) {
	if e.mod == nil {
		return 0, false
	}
	return e.mod.Memory().ReadByte(uint32(ptr))
}

// stage copies src, up to its first NUL, into a fresh engine block with a
// terminator.
func (e *Engine) stage(src []byte) entities.Ptr {
	n := abi.NulIndex(src)
	if n < 0 {
		n = len(src)
	}
	ptr := e.emalloc(uint32(n + 1))
	if ptr.IsNull() {
		return ptr
	}
	buf := abi.AppendCString(make([]byte, 0, n+1), src[:n])
	if !e.mod.Memory().Write(uint32(ptr), buf) {
		e.logger.ErrorContext(e.ctx, "wazero: staging write out of range", "ptr", uint32(ptr), "size", n+1)
		e.efree(ptr)
		return entities.NullPtr
	}
	return ptr
}

// estrdupVia stages src and hands it to the engine's own estrdup, so the
// returned block carries the engine's bookkeeping.
func (e *Engine) estrdupVia(src []byte, dup func(entities.Ptr) entities.Ptr) entities.Ptr {
	tmp := e.stage(src)
	if tmp.IsNull() {
		return tmp
	}
	defer e.efree(tmp)
	return dup(tmp)
}

// ThrowByClass implements ports.ExceptionHost.
func (e *Engine) ThrowByClass(class ports.ClassRef, code int64, format string, message string) {
	classPtr, ok := e.resolveClass(class.ClassName())
	if !ok {
		e.logger.ErrorContext(e.ctx, "wazero: unknown exception class", "class", class.ClassName(), "message", message)
		return
	}

	formatPtr := e.stage([]byte(format))
	if formatPtr.IsNull() {
		return
	}
	defer e.efree(formatPtr)
	messagePtr := e.stage([]byte(message))
	if messagePtr.IsNull() {
		return
	}
	defer e.efree(messagePtr)

	e.call(exportThrowEx, uint64(classPtr), api.EncodeI64(code), uint64(formatPtr), uint64(messagePtr))
}

// ThrowObject implements ports.ExceptionHost.
func (e *Engine) ThrowObject(object entities.Object) {
	e.call(exportThrowObject, uint64(object.Handle))
}

func (e *Engine) resolveClass(name string) (entities.Ptr, bool) {
	if v, ok := e.classes.Load(name); ok {
		return v.(entities.Ptr), true
	}

	namePtr := e.stage([]byte(name))
	if namePtr.IsNull() {
		return entities.NullPtr, false
	}
	defer e.efree(namePtr)

	results, ok := e.call(exportLookupClass, uint64(namePtr))
	if !ok || len(results) == 0 || results[0] == 0 {
		return entities.NullPtr, false
	}
	ptr := entities.Ptr(api.DecodeU32(results[0]))
	e.classes.Store(name, ptr)
	return ptr, true
}

// RegisterErrorObserver implements ports.ErrorObserverHost. The engine's
// error_observer import calls dispatch from then on.
func (e *Engine) RegisterErrorObserver(dispatch ports.ErrorObserver) {
	e.observer.Store(&dispatch)
}

func (e *Engine) handleErrorObserver(ctx context.Context, mod api.Module, stack []uint64) {
	dispatch := e.observer.Load()
	if dispatch == nil {
		return
	}

	kind := entities.ErrorType(api.DecodeI32(stack[0]))
	line := api.DecodeU32(stack[2])
	mem := guestMemory{mem: mod.Memory(), limit: e.cfg.MaxStringSize}

	filePtr := entities.Ptr(api.DecodeU32(stack[1]))
	file, err := mem.cString(filePtr)
	if err != nil {
		e.logger.ErrorContext(ctx, "wazero: bad error_observer file", "error", err)
		return
	}
	msgPtr := entities.Ptr(api.DecodeU32(stack[3]))
	message, err := mem.cString(msgPtr)
	if err != nil {
		e.logger.ErrorContext(ctx, "wazero: bad error_observer message", "error", err)
		return
	}

	fileStr := entities.NewZendStr(bytes.Clone(file))
	msgStr := entities.NewZendStr(bytes.Clone(message))
	(*dispatch)(kind, fileStr, line, msgStr)

	e.writeBack(ctx, mod, filePtr, file, fileStr.Bytes())
	e.writeBack(ctx, mod, msgPtr, message, msgStr.Bytes())
}

// writeBack stores a listener's replacement over the engine's buffer at ptr.
// Only replacements no longer than the original and free of NUL bytes are
// written; the buffer belongs to the engine and error_observer cannot hand it
// a new one, so anything else is dropped.
func (e *Engine) writeBack(ctx context.Context, mod api.Module, ptr entities.Ptr, orig, val []byte) {
	if bytes.Equal(orig, val) {
		return
	}
	if len(val) > len(orig) || bytes.IndexByte(val, 0) >= 0 {
		e.logger.DebugContext(ctx, "wazero: observer replacement dropped", "ptr", uint32(ptr), "length", len(val), "capacity", len(orig))
		return
	}
	if !mod.Memory().Write(uint32(ptr), append(bytes.Clone(val), 0)) {
		e.logger.ErrorContext(ctx, "wazero: observer replacement out of range", "ptr", uint32(ptr))
	}
}

func (e *Engine) handleLogMessage(ctx context.Context, mod api.Module, stack []uint64) {
	if e.cfg.LogSink == nil {
		return
	}
	ptr, length := unpack(stack[0])
	data, ok := mod.Memory().Read(uint32(ptr), length)
	if !ok {
		e.logger.ErrorContext(ctx, "wazero: sapi_log_message out of range", "ptr", uint32(ptr), "length", length)
		return
	}
	e.cfg.LogSink.LogMessage(string(data), int(api.DecodeI32(stack[1])))
}

// unpack is abi.UnpackPtrLen without the panic on a malformed pair; the value
// comes from guest code.
func unpack(packed uint64) (entities.Ptr, uint32) {
	ptr := entities.Ptr(packed >> abi.PtrHighBits)
	length := uint32(packed)
	if ptr.IsNull() {
		return ptr, 0
	}
	return ptr, length
}

// LogMessage implements ports.HostLogger by calling the engine's
// php_log_err_with_severity. Without that export the line goes to the
// adapter logger.
func (e *Engine) LogMessage(message string, syslogType int) {
	if e.mod != nil && e.mod.ExportedFunction(exportLogSeverity) != nil {
		msgPtr := e.stage([]byte(message))
		if !msgPtr.IsNull() {
			defer e.efree(msgPtr)
			e.call(exportLogSeverity, uint64(msgPtr), api.EncodeI32(int32(syslogType)))
			return
		}
	}
	e.logger.LogAttrs(e.ctx, syslogLevel(syslogType), message)
}

func syslogLevel(syslogType int) slog.Level {
	switch {
	case syslogType <= ports.SyslogErr:
		return slog.LevelError
	case syslogType == ports.SyslogWarning:
		return slog.LevelWarn
	case syslogType == ports.SyslogDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// guestMemory reads bounded C strings from a module's memory.
type guestMemory struct {
	mem   api.Memory
	limit uint32
}

func (g guestMemory) cString(ptr entities.Ptr) ([]byte, error) {
	if ptr.IsNull() {
		return nil, errors.New("null string")
	}
	for n := uint32(0); n <= g.limit; n++ {
		c, ok := g.mem.ReadByte(uint32(ptr) + n)
		if !ok {
			return nil, fmt.Errorf("string at 0x%x runs past end of memory", uint32(ptr))
		}
		if c == 0 {
			data, _ := g.mem.Read(uint32(ptr), n)
			return bytes.Clone(data), nil
		}
	}
	return nil, fmt.Errorf("string at 0x%x exceeds %d bytes", uint32(ptr), g.limit)
}
