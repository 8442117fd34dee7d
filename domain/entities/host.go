package entities

import (
	"fmt"
	"math/bits"
)

// Ptr is an address in host memory. The zero value is the host's null pointer.
type Ptr uint32

// NullPtr is the host null pointer.
const NullPtr Ptr = 0

// IsNull reports whether p is the host null pointer.
func (p Ptr) IsNull() bool {
	return p == NullPtr
}

// AlignedTo reports whether p is a multiple of align. A zero align is treated as 1.
func (p Ptr) AlignedTo(align uint32) bool {
	if align <= 1 {
		return true
	}
	return uint32(p)%align == 0
}

// MaxAlign is the alignment every host allocation is guaranteed to satisfy.
const MaxAlign uint32 = 8

// Layout describes a single allocation request. It is consumed by the allocator
// and never stored.
type Layout struct {
	Size  uint32
	Align uint32
}

// NewLayout validates size and alignment and returns a Layout.
// Align must be a power of two no larger than MaxAlign; zero means 1.
func NewLayout(size, align uint32) (Layout, error) {
	if align == 0 {
		align = 1
	}
	if bits.OnesCount32(align) != 1 {
		return Layout{}, fmt.Errorf("alignment %d is not a power of two", align)
	}
	if align > MaxAlign {
		return Layout{}, fmt.Errorf("alignment %d exceeds host maximum %d", align, MaxAlign)
	}
	return Layout{Size: size, Align: align}, nil
}

// LayoutOf returns a byte-aligned Layout for size bytes.
func LayoutOf(size uint32) Layout {
	return Layout{Size: size, Align: 1}
}

// HostString is the address of a NUL-terminated buffer allocated by the host
// allocator. It is owned by whichever record embeds it; the zero value is the
// null string.
type HostString struct {
	addr Ptr
}

// HostStringAt wraps a host address returned by the host's string duplication
// primitive.
func HostStringAt(addr Ptr) HostString {
	return HostString{addr: addr}
}

// Ptr returns the raw host address.
func (s HostString) Ptr() Ptr {
	return s.addr
}

// IsNull reports whether s is the null string.
func (s HostString) IsNull() bool {
	return s.addr.IsNull()
}

// ZendStr is a host string lent to extension code for the duration of a single
// host callback. Listeners may read or replace the contents but must not retain
// the pointer once the callback returns.
type ZendStr struct {
	val []byte
}

// NewZendStr wraps host-owned bytes.
func NewZendStr(val []byte) *ZendStr {
	return &ZendStr{val: val}
}

// Bytes returns the current contents without copying.
func (z *ZendStr) Bytes() []byte {
	if z == nil {
		return nil
	}
	return z.val
}

func (z *ZendStr) String() string {
	if z == nil {
		return ""
	}
	return string(z.val)
}

// Len returns the length in bytes.
func (z *ZendStr) Len() int {
	if z == nil {
		return 0
	}
	return len(z.val)
}

// Set replaces the contents. The host sees the new value after the callback.
func (z *ZendStr) Set(val []byte) {
	z.val = val
}

// Object is a handle to an already constructed host object, used when an
// exception carries state beyond message and code.
type Object struct {
	ClassName string
	Handle    uint32
}
