package ports

import "github.com/reglet-dev/zendext-sdk/domain/entities"

// HostMemory gives read access to the host address space.
type HostMemory interface {
	// Read returns length bytes starting at ptr, or false if out of range.
	Read(ptr entities.Ptr, length uint32) ([]byte, bool)

	// ByteAt returns the byte at ptr, or false if out of range.
	ByteAt(ptr entities.Ptr) (byte, bool)
}

// ReleaseAllocator is the host allocator as exported by a release build of the
// engine.
type ReleaseAllocator interface {
	HostMemory

	// Emalloc allocates size bytes of request-bound memory. Returns NullPtr on
	// exhaustion.
	Emalloc(size uint32) entities.Ptr

	// Efree releases memory obtained from Emalloc or Estrdup.
	Efree(ptr entities.Ptr)

	// Estrdup copies the NUL-terminated string in src into host memory.
	// The host must not retain src after returning.
	Estrdup(src []byte) entities.Ptr
}

// DebugAllocator is the host allocator as exported by a debug build of the
// engine. Every primitive carries the allocation site for leak reports.
type DebugAllocator interface {
	HostMemory

	Emalloc(size uint32, file string, line uint32, origFile string, origLine uint32) entities.Ptr
	Efree(ptr entities.Ptr, file string, line uint32, origFile string, origLine uint32)
	Estrdup(src []byte, file string, line uint32, origFile string, origLine uint32) entities.Ptr
}
