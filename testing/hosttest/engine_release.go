//go:build !hostdebug

package hosttest

import (
	"github.com/reglet-dev/zendext-sdk/domain/entities"
	"github.com/reglet-dev/zendext-sdk/domain/ports"
)

// Emalloc implements ports.ReleaseAllocator.
func (e *Engine) Emalloc(size uint32) entities.Ptr {
	return e.emalloc(size, "", 0)
}

// Efree implements ports.ReleaseAllocator.
func (e *Engine) Efree(ptr entities.Ptr) {
	e.efree(ptr)
}

// Estrdup implements ports.ReleaseAllocator.
func (e *Engine) Estrdup(src []byte) entities.Ptr {
	return e.estrdup(src, "", 0)
}

var _ ports.ReleaseAllocator = (*Engine)(nil)
