package hostfuncs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/reglet-dev/zendext-sdk/builders"
	sdkErrors "github.com/reglet-dev/zendext-sdk/domain/errors"
	"github.com/reglet-dev/zendext-sdk/domain/ports"
	"github.com/reglet-dev/zendext-sdk/exception"
)

// HandlerRegistry is an immutable set of callable functions keyed by name,
// ignoring case as the host does. Lookups need no locking.
type HandlerRegistry struct {
	handlers map[string]registered
	names    []string
}

type registered struct {
	entry   *builders.FunctionEntry
	handler CallHandler
}

type registryBuilder struct {
	entries    []*builders.FunctionEntry
	middleware []Middleware
	errors     []error
}

// NewRegistry creates an immutable HandlerRegistry. It fails if two functions
// share a name or a function has no handler.
//
//	registry, err := hostfuncs.NewRegistry(
//	    hostfuncs.WithMiddleware(hostfuncs.PanicRecoveryMiddleware()),
//	    hostfuncs.WithModule(module),
//	)
func NewRegistry(opts ...RegistryOption) (*HandlerRegistry, error) {
	b := &registryBuilder{}
	for _, opt := range opts {
		opt(b)
	}
	if len(b.errors) > 0 {
		return nil, b.errors[0]
	}

	r := &HandlerRegistry{handlers: make(map[string]registered, len(b.entries))}
	for _, entry := range b.entries {
		key := strings.ToLower(entry.GoName())
		if _, exists := r.handlers[key]; exists {
			return nil, fmt.Errorf("duplicate function name: %q", entry.GoName())
		}

		wrapped := FromHandler(entry.Handler())
		for i := len(b.middleware) - 1; i >= 0; i-- {
			wrapped = b.middleware[i](wrapped)
		}
		r.handlers[key] = registered{entry: entry, handler: wrapped}
		r.names = append(r.names, entry.GoName())
	}
	sort.Strings(r.names)
	return r, nil
}

// WithFunction registers finished function records.
func WithFunction(entries ...*builders.FunctionEntry) RegistryOption {
	return func(b *registryBuilder) {
		for _, entry := range entries {
			if entry == nil {
				b.errors = append(b.errors, fmt.Errorf("nil function entry"))
				continue
			}
			if entry.Handler() == nil {
				b.errors = append(b.errors, fmt.Errorf("function %q has no handler", entry.GoName()))
				continue
			}
			b.entries = append(b.entries, entry)
		}
	}
}

// WithModule registers every function of a finished module.
func WithModule(module *builders.ModuleEntry) RegistryOption {
	return func(b *registryBuilder) {
		if module == nil {
			b.errors = append(b.errors, fmt.Errorf("nil module entry"))
			return
		}
		WithFunction(module.Functions()...)(b)
	}
}

// WithMiddleware adds middleware to the registry.
// Middleware executes in FIFO order (first added wraps first).
func WithMiddleware(mw ...Middleware) RegistryOption {
	return func(b *registryBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}

// Has reports whether a function named name is registered.
func (r *HandlerRegistry) Has(name string) bool {
	_, ok := r.handlers[strings.ToLower(name)]
	return ok
}

// Names returns the registered function names, sorted.
func (r *HandlerRegistry) Names() []string {
	return append([]string(nil), r.names...)
}

// Invoke calls the function named name with args. When the call fails an
// exception has already been raised in host and is returned as the error;
// the host must not use the result.
func (r *HandlerRegistry) Invoke(ctx context.Context, host ports.ExceptionHost, name string, args []any) (any, error) {
	reg, ok := r.handlers[strings.ToLower(name)]
	if !ok {
		return nil, raise(host, NewUndefinedFunctionError(name))
	}
	if exc := checkArity(reg.entry, len(args)); exc != nil {
		return nil, raise(host, exc)
	}

	result, err := reg.handler(CallContextFrom(ctx, reg.entry), args)
	if err != nil {
		return nil, raise(host, exception.FromError(err))
	}
	return result, nil
}

// Call invokes a single function record without a registry or middleware.
func Call(ctx context.Context, host ports.ExceptionHost, entry *builders.FunctionEntry, args []any) (any, error) {
	if entry.Handler() == nil {
		return nil, raise(host, exception.New("Cannot call abstract method "+entry.GoName()+"()", 0, builders.ErrorClass()))
	}
	if exc := checkArity(entry, len(args)); exc != nil {
		return nil, raise(host, exc)
	}
	result, err := FromHandler(entry.Handler())(CallContextFrom(ctx, entry), args)
	if err != nil {
		return nil, raise(host, exception.FromError(err))
	}
	return result, nil
}

func checkArity(entry *builders.FunctionEntry, given int) *exception.Exception {
	args := entry.Args()
	minArgs := int(entry.NumRequiredArgs())
	maxArgs := len(args)
	if maxArgs > 0 && args[maxArgs-1].Variadic() {
		maxArgs = -1
	}
	if given < minArgs || (maxArgs >= 0 && given > maxArgs) {
		return NewArgumentCountError(entry.GoName(), minArgs, maxArgs, given)
	}
	return nil
}

// raise throws exc in host. An exception that was already thrown, such as a
// package-level sentinel returned by a handler, is raised again through a
// clone. If the class is not instantiable a base Exception with the same
// message is raised instead.
func raise(host ports.ExceptionHost, exc *exception.Exception) error {
	err := exc.Throw(host)
	if errors.Is(err, sdkErrors.ErrExceptionConsumed) {
		exc = exc.Clone()
		err = exc.Throw(host)
	}
	if err != nil {
		fallback := exception.Default(exc.Message())
		_ = fallback.Throw(host)
		return fallback
	}
	return exc
}
