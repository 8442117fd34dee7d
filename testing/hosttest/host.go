// Package hosttest provides an in-memory host engine for testing extensions.
//
// Engine implements every port in domain/ports: a bump arena stands in for the
// request allocator, raised exceptions and host log lines are recorded, and
// EmitError drives the installed error observer the way the host does from its
// own error path.
package hosttest

import (
	"fmt"
	"sync"

	"github.com/reglet-dev/zendext-sdk/domain/entities"
	"github.com/reglet-dev/zendext-sdk/domain/ports"
)

// arenaBase is the first address handed out; low addresses stay unmapped so a
// null or near-null dereference is caught.
const arenaBase = 64

// Raise is one exception raised through the engine.
type Raise struct {
	Class   ports.ClassRef
	Code    int64
	Format  string
	Message string
	Object  *entities.Object
}

// LogLine is one line written through the host log primitive.
type LogLine struct {
	Message    string
	SyslogType int
}

// Engine is a fake host engine. It is safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	memory   []byte
	next     uint32
	blocks   map[entities.Ptr]uint32
	limit    uint32
	inUse    uint32
	freed    int
	allocs   []Site
	raises   []Raise
	logs     []LogLine
	observer ports.ErrorObserver
	installs int
}

// Site records where an allocation was requested. Only debug builds of the
// allocator report a file and line.
type Site struct {
	Ptr  entities.Ptr
	Size uint32
	File string
	Line uint32
}

// Option configures an Engine.
type Option func(*Engine)

// WithMemoryLimit makes Emalloc and Estrdup return null once the live bytes
// would exceed limit.
func WithMemoryLimit(limit uint32) Option {
	return func(e *Engine) {
		e.limit = limit
	}
}

// NewEngine creates an empty engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		memory: make([]byte, arenaBase),
		next:   arenaBase,
		blocks: make(map[entities.Ptr]uint32),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Read implements ports.HostMemory.
func (e *Engine) Read(ptr entities.Ptr, length uint32) ([]byte, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	end := uint64(ptr) + uint64(length)
	if ptr < arenaBase || end > uint64(len(e.memory)) {
		return nil, false
	}
	return e.memory[ptr:end], true
}

// ByteAt implements ports.HostMemory.
func (e *Engine) ByteAt(ptr entities.Ptr) (byte, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ptr < arenaBase || int(ptr) >= len(e.memory) {
		return 0, false
	}
	return e.memory[ptr], true
}

// Write copies data into host memory at ptr. Tests use it to simulate the host
// mutating memory it owns.
func (e *Engine) Write(ptr entities.Ptr, data []byte) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	end := uint64(ptr) + uint64(len(data))
	if ptr < arenaBase || end > uint64(len(e.memory)) {
		return false
	}
	copy(e.memory[ptr:end], data)
	return true
}

func (e *Engine) emalloc(size uint32, file string, line uint32) entities.Ptr {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.allocLocked(size, file, line)
}

func (e *Engine) allocLocked(size uint32, file string, line uint32) entities.Ptr {
	if e.limit > 0 && e.inUse+size > e.limit {
		return entities.NullPtr
	}
	ptr := entities.Ptr(e.next)
	// Blocks are 8-byte aligned and at least 8 bytes long.
	span := (size + entities.MaxAlign - 1) &^ (entities.MaxAlign - 1)
	if span == 0 {
		span = entities.MaxAlign
	}
	e.next += span
	e.memory = append(e.memory, make([]byte, span)...)
	e.blocks[ptr] = size
	e.inUse += size
	e.allocs = append(e.allocs, Site{Ptr: ptr, Size: size, File: file, Line: line})
	return ptr
}

func (e *Engine) efree(ptr entities.Ptr) {
	e.mu.Lock()
	defer e.mu.Unlock()
	size, ok := e.blocks[ptr]
	if !ok {
		panic(fmt.Sprintf("hosttest: efree of unknown or released pointer 0x%x", uint32(ptr)))
	}
	delete(e.blocks, ptr)
	e.inUse -= size
	e.freed++
}

func (e *Engine) estrdup(src []byte, file string, line uint32) entities.Ptr {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for n < len(src) && src[n] != 0 {
		n++
	}
	ptr := e.allocLocked(uint32(n+1), file, line)
	if ptr.IsNull() {
		return ptr
	}
	copy(e.memory[ptr:], src[:n])
	e.memory[uint32(ptr)+uint32(n)] = 0
	return ptr
}

// LiveBlocks returns the number of allocations not yet released.
func (e *Engine) LiveBlocks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.blocks)
}

// Freed returns the number of successful efree calls.
func (e *Engine) Freed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.freed
}

// Sites returns every allocation made so far, in order.
func (e *Engine) Sites() []Site {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Site(nil), e.allocs...)
}

// ThrowByClass implements ports.ExceptionHost.
func (e *Engine) ThrowByClass(class ports.ClassRef, code int64, format string, message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.raises = append(e.raises, Raise{Class: class, Code: code, Format: format, Message: message})
}

// ThrowObject implements ports.ExceptionHost.
func (e *Engine) ThrowObject(object entities.Object) {
	e.mu.Lock()
	defer e.mu.Unlock()
	obj := object
	e.raises = append(e.raises, Raise{Object: &obj})
}

// Raises returns every exception raised so far.
func (e *Engine) Raises() []Raise {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Raise(nil), e.raises...)
}

// RegisterErrorObserver implements ports.ErrorObserverHost. The host keeps a
// single dispatcher; a second registration replaces it, as the real engine does
// when an extension misbehaves.
func (e *Engine) RegisterErrorObserver(dispatch ports.ErrorObserver) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observer = dispatch
	e.installs++
}

// ObserverInstalls returns how many times a dispatcher was registered.
func (e *Engine) ObserverInstalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.installs
}

// EmitError raises a diagnostic event from the host side. It returns the file
// and message as left by the observers.
func (e *Engine) EmitError(kind entities.ErrorType, file string, line uint32, message string) (string, string) {
	e.mu.Lock()
	dispatch := e.observer
	e.mu.Unlock()

	f := entities.NewZendStr([]byte(file))
	m := entities.NewZendStr([]byte(message))
	if dispatch != nil {
		dispatch(kind, f, line, m)
	}
	return f.String(), m.String()
}

// LogMessage implements ports.HostLogger.
func (e *Engine) LogMessage(message string, syslogType int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logs = append(e.logs, LogLine{Message: message, SyslogType: syslogType})
}

// Logs returns every line written through LogMessage.
func (e *Engine) Logs() []LogLine {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]LogLine(nil), e.logs...)
}

var (
	_ ports.HostMemory        = (*Engine)(nil)
	_ ports.ExceptionHost     = (*Engine)(nil)
	_ ports.ErrorObserverHost = (*Engine)(nil)
	_ ports.HostLogger        = (*Engine)(nil)
)
