//go:build hostdebug

package alloc

import (
	"runtime"

	"github.com/reglet-dev/zendext-sdk/domain/entities"
	"github.com/reglet-dev/zendext-sdk/domain/ports"
)

// Primitives is the host allocator interface selected for this build.
type Primitives = ports.DebugAllocator

// DebugBuild reports whether the debug primitive set is compiled in.
const DebugBuild = true

// callSite returns the extension code location that asked for memory, skipping
// the allocator's own frames.
func callSite() (string, uint32) {
	_, file, line, ok := runtime.Caller(3)
	if !ok {
		return "", 0
	}
	return file, uint32(line)
}

func hostEmalloc(p Primitives, size uint32) entities.Ptr {
	file, line := callSite()
	return p.Emalloc(size, file, line, "", 0)
}

func hostEfree(p Primitives, ptr entities.Ptr) {
	file, line := callSite()
	p.Efree(ptr, file, line, "", 0)
}

func hostEstrdup(p Primitives, src []byte) entities.Ptr {
	file, line := callSite()
	return p.Estrdup(src, file, line, "", 0)
}
