package builders

import (
	"errors"

	"github.com/reglet-dev/zendext-sdk/domain/entities"
	sdkErrors "github.com/reglet-dev/zendext-sdk/domain/errors"
)

// StringAllocator copies strings into host memory and releases them.
// *alloc.Allocator satisfies it.
type StringAllocator interface {
	Estrdup(b []byte) (entities.HostString, error)
	Efree(ptr entities.Ptr)
}

// seal makes a builder single-use.
type seal struct {
	used bool
}

func (s *seal) consumed() bool {
	return s.used
}

func (s *seal) consume() error {
	if s.used {
		return sdkErrors.ErrBuilderConsumed
	}
	s.used = true
	return nil
}

// hostStrings converts the string fields of one record and remembers what it
// allocated so a failed build can give it back.
type hostStrings struct {
	alloc StringAllocator
	owned []entities.Ptr
	err   error
}

func newHostStrings(a StringAllocator) *hostStrings {
	return &hostStrings{alloc: a}
}

// dup converts v. After the first failure every call is a no-op.
func (h *hostStrings) dup(field, v string) entities.HostString {
	if h.err != nil {
		return entities.HostString{}
	}
	s, err := h.alloc.Estrdup([]byte(v))
	if err != nil {
		var convErr *sdkErrors.StringConversionError
		if errors.As(err, &convErr) {
			h.err = &sdkErrors.StringConversionError{Field: field, Position: convErr.Position}
		} else {
			h.err = err
		}
		return entities.HostString{}
	}
	h.owned = append(h.owned, s.Ptr())
	return s
}

// optional converts v when set and leaves the null string otherwise.
func (h *hostStrings) optional(field string, v *string) entities.HostString {
	if v == nil {
		return entities.HostString{}
	}
	return h.dup(field, *v)
}

// adopt records a host string produced by a nested builder.
func (h *hostStrings) adopt(s entities.HostString) {
	if !s.IsNull() {
		h.owned = append(h.owned, s.Ptr())
	}
}

// rollback releases everything converted so far.
func (h *hostStrings) rollback() {
	for i := len(h.owned) - 1; i >= 0; i-- {
		h.alloc.Efree(h.owned[i])
	}
	h.owned = nil
}

// finish returns the first conversion error, rolling back if there was one.
func (h *hostStrings) finish() error {
	if h.err != nil {
		h.rollback()
		return h.err
	}
	return nil
}

func constraint(builder, field, reason string) error {
	return &sdkErrors.BuilderConstraintError{Builder: builder, Field: field, Reason: reason}
}
