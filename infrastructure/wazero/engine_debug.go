//go:build hostdebug

package wazero

import (
	"github.com/reglet-dev/zendext-sdk/domain/entities"
	"github.com/reglet-dev/zendext-sdk/domain/ports"
	"github.com/tetratelabs/wazero/api"
)

const (
	exportEmalloc = "_emalloc"
	exportEfree   = "_efree"
	exportEstrdup = "_estrdup"
)

func allocatorExports() []string {
	return []string{exportEmalloc, exportEfree, exportEstrdup}
}

// Allocation sites cross into the engine as line numbers only: staging the
// file name would itself need an allocation. File arguments are null.
func site(line, origLine uint32) []uint64 {
	return []uint64{0, api.EncodeU32(line), 0, api.EncodeU32(origLine)}
}

func (e *Engine) emallocAt(size, line, origLine uint32) entities.Ptr {
	results, ok := e.call(exportEmalloc, append([]uint64{api.EncodeU32(size)}, site(line, origLine)...)...)
	if !ok || len(results) == 0 {
		return entities.NullPtr
	}
	return entities.Ptr(api.DecodeU32(results[0]))
}

func (e *Engine) efreeAt(ptr entities.Ptr, line, origLine uint32) {
	e.call(exportEfree, append([]uint64{api.EncodeU32(uint32(ptr))}, site(line, origLine)...)...)
}

func (e *Engine) emalloc(size uint32) entities.Ptr { return e.emallocAt(size, 0, 0) }
func (e *Engine) efree(ptr entities.Ptr)           { e.efreeAt(ptr, 0, 0) }

// Emalloc implements ports.DebugAllocator.
func (e *Engine) Emalloc(size uint32, _ string, line uint32, _ string, origLine uint32) entities.Ptr {
	return e.emallocAt(size, line, origLine)
}

// Efree implements ports.DebugAllocator.
func (e *Engine) Efree(ptr entities.Ptr, _ string, line uint32, _ string, origLine uint32) {
	e.efreeAt(ptr, line, origLine)
}

// Estrdup implements ports.DebugAllocator.
func (e *Engine) Estrdup(src []byte, _ string, line uint32, _ string, origLine uint32) entities.Ptr {
	return e.estrdupVia(src, func(tmp entities.Ptr) entities.Ptr {
		results, ok := e.call(exportEstrdup, append([]uint64{api.EncodeU32(uint32(tmp))}, site(line, origLine)...)...)
		if !ok || len(results) == 0 {
			return entities.NullPtr
		}
		return entities.Ptr(api.DecodeU32(results[0]))
	})
}

var _ ports.DebugAllocator = (*Engine)(nil)
