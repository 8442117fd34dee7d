package hostfuncs

import (
	"fmt"

	"github.com/reglet-dev/zendext-sdk/builders"
	"github.com/reglet-dev/zendext-sdk/exception"
)

// NewUndefinedFunctionError is raised when the host calls a name the registry
// does not know.
func NewUndefinedFunctionError(name string) *exception.Exception {
	return exception.New(fmt.Sprintf("Call to undefined function %s()", name), 0, builders.ErrorClass())
}

// NewArgumentCountError is raised when a call passes too few or too many
// arguments. maxArgs < 0 means the function is variadic.
func NewArgumentCountError(name string, minArgs, maxArgs, given int) *exception.Exception {
	var msg string
	switch {
	case minArgs == maxArgs:
		msg = fmt.Sprintf("%s() expects exactly %d argument%s, %d given", name, minArgs, plural(minArgs), given)
	case given < minArgs:
		msg = fmt.Sprintf("%s() expects at least %d argument%s, %d given", name, minArgs, plural(minArgs), given)
	default:
		msg = fmt.Sprintf("%s() expects at most %d argument%s, %d given", name, maxArgs, plural(maxArgs), given)
	}
	return exception.New(msg, 0, builders.ArgumentCountErrorClass())
}

// NewTypeError is raised when argument position (1-based) has the wrong Go type.
func NewTypeError(name string, position int, want string, got any) *exception.Exception {
	return exception.New(
		fmt.Sprintf("%s(): Argument #%d must be of type %s, %T given", name, position, want, got),
		0, builders.TypeErrorClass())
}

// NewPanicError converts a recovered panic value into an Error exception.
func NewPanicError(panicValue any) *exception.Exception {
	var msg string
	if err, ok := panicValue.(error); ok {
		msg = err.Error()
	} else if s, ok := panicValue.(string); ok {
		msg = s
	} else {
		msg = "panic recovered"
	}
	return exception.New("panic: "+msg, 0, builders.ErrorClass())
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
