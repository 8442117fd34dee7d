package alloc

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/reglet-dev/zendext-sdk/domain/entities"
	sdkErrors "github.com/reglet-dev/zendext-sdk/domain/errors"
	"github.com/reglet-dev/zendext-sdk/domain/ports"
	"github.com/reglet-dev/zendext-sdk/internal/abi"
)

const (
	// Scratch pool limits to prevent memory bloat
	scratchMaxCap  = 64 * 1024
	scratchInitCap = 128
)

// scratch buffers hold the temporary NUL-terminated copy handed to estrdup.
var scratchPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, scratchInitCap)
		return &buf
	},
}

func getScratch() *[]byte {
	return scratchPool.Get().(*[]byte)
}

func putScratch(buf *[]byte) {
	if buf == nil || cap(*buf) > scratchMaxCap {
		return // reject oversized
	}
	clear((*buf)[:cap(*buf)])
	*buf = (*buf)[:0]
	scratchPool.Put(buf)
}

// Stats is a snapshot of the allocations made through one Allocator.
type Stats struct {
	// Live is the number of allocations not yet released.
	Live int64
	// Allocations is the total number of successful allocations.
	Allocations uint64
	// Bytes is the total number of bytes requested from the host, terminators
	// of duplicated strings included.
	Bytes uint64
}

// Allocator is the extension's view of the host allocator.
// It adds no locking of its own; the counters are atomics.
type Allocator struct {
	prims  Primitives
	logger *slog.Logger

	live        atomic.Int64
	allocations atomic.Uint64
	bytes       atomic.Uint64
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithLogger sets the logger used for allocation tracing at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Allocator) {
		a.logger = logger
	}
}

// New creates an Allocator over the host primitives.
func New(prims Primitives, opts ...Option) *Allocator {
	a := &Allocator{
		prims:  prims,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Memory returns the host address space the allocator hands out pointers into.
func (a *Allocator) Memory() ports.HostMemory {
	return a.prims
}

// Emalloc requests layout.Size bytes of request-bound memory from the host.
// The returned pointer satisfies layout.Align. Panics with an
// *errors.AllocationError if the host returns null or a misaligned block.
func (a *Allocator) Emalloc(layout entities.Layout) entities.Ptr {
	if _, err := entities.NewLayout(layout.Size, layout.Align); err != nil {
		panic(&sdkErrors.AllocationError{Operation: "emalloc", Size: layout.Size, Align: layout.Align, Reason: err.Error()})
	}

	ptr := hostEmalloc(a.prims, layout.Size)
	if ptr.IsNull() {
		panic(&sdkErrors.AllocationError{Operation: "emalloc", Size: layout.Size, Align: layout.Align, Reason: "host returned null"})
	}
	if !ptr.AlignedTo(layout.Align) {
		panic(&sdkErrors.AllocationError{Operation: "emalloc", Size: layout.Size, Align: layout.Align, Reason: "host returned misaligned block"})
	}

	a.live.Add(1)
	a.allocations.Add(1)
	a.bytes.Add(uint64(layout.Size))
	a.logger.Debug("emalloc", "size", layout.Size, "align", layout.Align, "ptr", uint32(ptr))
	return ptr
}

// Efree releases memory obtained from Emalloc or Estrdup on this allocator.
// The pointer must be non-null and owned by this allocator; this is not checked.
func (a *Allocator) Efree(ptr entities.Ptr) {
	hostEfree(a.prims, ptr)
	a.live.Add(-1)
	a.logger.Debug("efree", "ptr", uint32(ptr))
}

// Estrdup copies b into a NUL-terminated host string. b must not contain a NUL;
// if it does a *errors.StringConversionError is returned and the host is not
// called.
func (a *Allocator) Estrdup(b []byte) (entities.HostString, error) {
	if i := abi.NulIndex(b); i >= 0 {
		return entities.HostString{}, &sdkErrors.StringConversionError{Position: i}
	}

	buf := getScratch()
	defer putScratch(buf)
	*buf = abi.AppendCString(*buf, b)

	ptr := hostEstrdup(a.prims, *buf)
	if ptr.IsNull() {
		panic(&sdkErrors.AllocationError{Operation: "estrdup", Size: uint32(len(*buf)), Align: 1, Reason: "host returned null"})
	}

	a.live.Add(1)
	a.allocations.Add(1)
	a.bytes.Add(uint64(len(*buf)))
	return entities.HostStringAt(ptr), nil
}

// EstrdupString is Estrdup for Go strings.
func (a *Allocator) EstrdupString(s string) (entities.HostString, error) {
	return a.Estrdup([]byte(s))
}

// ReadString reads a host string back into Go memory, without the terminator.
func (a *Allocator) ReadString(s entities.HostString) ([]byte, error) {
	return abi.ReadCString(a.prims, s.Ptr())
}

// Stats returns a snapshot of the allocator counters.
func (a *Allocator) Stats() Stats {
	return Stats{
		Live:        a.live.Load(),
		Allocations: a.allocations.Load(),
		Bytes:       a.bytes.Load(),
	}
}
