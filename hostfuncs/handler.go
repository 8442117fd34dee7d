package hostfuncs

import (
	"context"
	"fmt"

	"github.com/reglet-dev/zendext-sdk/builders"
)

// CallHandler is the form a function handler takes inside the registry.
type CallHandler func(ctx context.Context, args []any) (any, error)

// FromHandler lifts a record handler into a CallHandler.
func FromHandler(h builders.Handler) CallHandler {
	return func(_ context.Context, args []any) (any, error) {
		return h(args)
	}
}

// Func1 adapts a one-argument Go function into a handler. An argument of the
// wrong Go type raises a TypeError naming the function.
//
//	greet := hostfuncs.Func1("greet", func(name string) (string, error) {
//	    return "hello " + name, nil
//	})
func Func1[A, R any](name string, fn func(A) (R, error)) builders.Handler {
	return func(args []any) (any, error) {
		if len(args) != 1 {
			return nil, NewArgumentCountError(name, 1, 1, len(args))
		}
		a, ok := args[0].(A)
		if !ok {
			return nil, NewTypeError(name, 1, typeName[A](), args[0])
		}
		return fn(a)
	}
}

// Func2 adapts a two-argument Go function into a handler.
func Func2[A, B, R any](name string, fn func(A, B) (R, error)) builders.Handler {
	return func(args []any) (any, error) {
		if len(args) != 2 {
			return nil, NewArgumentCountError(name, 2, 2, len(args))
		}
		a, ok := args[0].(A)
		if !ok {
			return nil, NewTypeError(name, 1, typeName[A](), args[0])
		}
		b, ok := args[1].(B)
		if !ok {
			return nil, NewTypeError(name, 2, typeName[B](), args[1])
		}
		return fn(a, b)
	}
}

func typeName[T any]() string {
	var zero T
	return fmt.Sprintf("%T", any(zero))
}
