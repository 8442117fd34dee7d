//go:build hostdebug

package hosttest

import (
	"github.com/reglet-dev/zendext-sdk/domain/entities"
	"github.com/reglet-dev/zendext-sdk/domain/ports"
)

// Emalloc implements ports.DebugAllocator.
func (e *Engine) Emalloc(size uint32, file string, line uint32, _ string, _ uint32) entities.Ptr {
	return e.emalloc(size, file, line)
}

// Efree implements ports.DebugAllocator.
func (e *Engine) Efree(ptr entities.Ptr, _ string, _ uint32, _ string, _ uint32) {
	e.efree(ptr)
}

// Estrdup implements ports.DebugAllocator.
func (e *Engine) Estrdup(src []byte, file string, line uint32, _ string, _ uint32) entities.Ptr {
	return e.estrdup(src, file, line)
}

var _ ports.DebugAllocator = (*Engine)(nil)
