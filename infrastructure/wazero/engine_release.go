//go:build !hostdebug

package wazero

import (
	"github.com/reglet-dev/zendext-sdk/domain/entities"
	"github.com/reglet-dev/zendext-sdk/domain/ports"
	"github.com/tetratelabs/wazero/api"
)

const (
	exportEmalloc = "emalloc"
	exportEfree   = "efree"
	exportEstrdup = "estrdup"
)

func allocatorExports() []string {
	return []string{exportEmalloc, exportEfree, exportEstrdup}
}

func (e *Engine) emalloc(size uint32) entities.Ptr {
	results, ok := e.call(exportEmalloc, api.EncodeU32(size))
	if !ok || len(results) == 0 {
		return entities.NullPtr
	}
	return entities.Ptr(api.DecodeU32(results[0]))
}

func (e *Engine) efree(ptr entities.Ptr) {
	e.call(exportEfree, api.EncodeU32(uint32(ptr)))
}

// Emalloc implements ports.ReleaseAllocator.
func (e *Engine) Emalloc(size uint32) entities.Ptr {
	return e.emalloc(size)
}

// Efree implements ports.ReleaseAllocator.
func (e *Engine) Efree(ptr entities.Ptr) {
	e.efree(ptr)
}

// Estrdup implements ports.ReleaseAllocator.
func (e *Engine) Estrdup(src []byte) entities.Ptr {
	return e.estrdupVia(src, func(tmp entities.Ptr) entities.Ptr {
		results, ok := e.call(exportEstrdup, api.EncodeU32(uint32(tmp)))
		if !ok || len(results) == 0 {
			return entities.NullPtr
		}
		return entities.Ptr(api.DecodeU32(results[0]))
	})
}

var _ ports.ReleaseAllocator = (*Engine)(nil)
