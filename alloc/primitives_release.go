//go:build !hostdebug

package alloc

import (
	"github.com/reglet-dev/zendext-sdk/domain/entities"
	"github.com/reglet-dev/zendext-sdk/domain/ports"
)

// Primitives is the host allocator interface selected for this build.
type Primitives = ports.ReleaseAllocator

// DebugBuild reports whether the debug primitive set is compiled in.
const DebugBuild = false

func hostEmalloc(p Primitives, size uint32) entities.Ptr {
	return p.Emalloc(size)
}

func hostEfree(p Primitives, ptr entities.Ptr) {
	p.Efree(ptr)
}

func hostEstrdup(p Primitives, src []byte) entities.Ptr {
	return p.Estrdup(src)
}
