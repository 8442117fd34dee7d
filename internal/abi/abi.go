// Package abi provides the low-level helpers shared by every host adapter:
// C string framing, NUL scanning over host memory and pointer/length packing.
package abi

import (
	"bytes"
	"fmt"

	"github.com/reglet-dev/zendext-sdk/domain/entities"
	"github.com/reglet-dev/zendext-sdk/domain/ports"
)

// MaxCStringLength bounds how far ReadCString scans for a terminator.
// A host string longer than this is treated as unterminated.
const MaxCStringLength = 16 * 1024 * 1024 // 16 MB

// PtrHighBits is the shift of the pointer half of a packed pointer/length pair.
const PtrHighBits = 32

// NulIndex returns the index of the first NUL byte in b, or -1.
func NulIndex(b []byte) int {
	return bytes.IndexByte(b, 0)
}

// AppendCString appends b and a terminating NUL to dst.
// The caller has already checked b for embedded NULs.
func AppendCString(dst, b []byte) []byte {
	dst = append(dst, b...)
	return append(dst, 0)
}

// ReadCString reads a NUL-terminated string starting at ptr. The terminator is
// not included in the result. The returned slice is a copy.
func ReadCString(mem ports.HostMemory, ptr entities.Ptr) ([]byte, error) {
	if ptr.IsNull() {
		return nil, fmt.Errorf("abi: read of null host string")
	}
	for n := uint32(0); n < MaxCStringLength; n++ {
		c, ok := mem.ByteAt(ptr + entities.Ptr(n))
		if !ok {
			return nil, fmt.Errorf("abi: host string at 0x%x runs past end of memory after %d bytes", uint32(ptr), n)
		}
		if c != 0 {
			continue
		}
		if n == 0 {
			return []byte{}, nil
		}
		data, ok := mem.Read(ptr, n)
		if !ok {
			return nil, fmt.Errorf("abi: host string at 0x%x not readable", uint32(ptr))
		}
		out := make([]byte, n)
		copy(out, data)
		return out, nil
	}
	return nil, fmt.Errorf("abi: host string at 0x%x exceeds %d bytes", uint32(ptr), MaxCStringLength)
}

// PackPtrLen packs a pointer and length into a single uint64.
// Pointer is stored in the high 32 bits, length in the low 32 bits.
// Panics if ptr is 0 and length > 0, indicating an invalid state.
func PackPtrLen(ptr entities.Ptr, length uint32) uint64 {
	if ptr.IsNull() && length > 0 {
		panic(fmt.Sprintf("abi: invalid pack - null pointer (0x0) with non-zero length (%d)", length))
	}
	return (uint64(ptr) << PtrHighBits) | uint64(length)
}

// UnpackPtrLen unpacks a uint64 into its original pointer and length.
// Panics if ptr is 0 and length > 0, indicating an invalid packed value.
func UnpackPtrLen(packed uint64) (ptr entities.Ptr, length uint32) {
	ptr = entities.Ptr(packed >> PtrHighBits)
	length = uint32(packed)
	if ptr.IsNull() && length > 0 {
		panic(fmt.Sprintf("abi: invalid unpack - null pointer (0x0) with non-zero length (%d)", length))
	}
	return ptr, length
}
