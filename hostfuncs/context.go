package hostfuncs

import (
	"context"

	"github.com/reglet-dev/zendext-sdk/builders"
)

// CallContext is the context handed to middleware for one host call. It
// identifies the function being called and lets middleware share values for
// the duration of the call without nesting context.WithValue.
type CallContext interface {
	context.Context

	// FunctionName returns the name the host called.
	FunctionName() string

	// Entry returns the finished record of the called function.
	Entry() *builders.FunctionEntry

	// SetValue stores a call-scoped value.
	SetValue(key, value any)

	// GetValue retrieves a value stored with SetValue.
	GetValue(key any) (value any, ok bool)
}

type callContext struct {
	context.Context
	entry  *builders.FunctionEntry
	values map[any]any
}

// NewCallContext wraps ctx for a call to entry.
func NewCallContext(ctx context.Context, entry *builders.FunctionEntry) CallContext {
	return &callContext{Context: ctx, entry: entry, values: make(map[any]any)}
}

func (c *callContext) FunctionName() string {
	if c.entry == nil {
		return ""
	}
	return c.entry.GoName()
}

func (c *callContext) Entry() *builders.FunctionEntry {
	return c.entry
}

func (c *callContext) SetValue(key, value any) {
	c.values[key] = value
}

func (c *callContext) GetValue(key any) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// CallContextFrom returns ctx if it already is a CallContext and wraps it
// otherwise.
func CallContextFrom(ctx context.Context, entry *builders.FunctionEntry) CallContext {
	if cc, ok := ctx.(CallContext); ok {
		return cc
	}
	return NewCallContext(ctx, entry)
}
