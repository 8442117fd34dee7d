package exception

import (
	"errors"
	"sync/atomic"

	"github.com/reglet-dev/zendext-sdk/builders"
	"github.com/reglet-dev/zendext-sdk/domain/entities"
	sdkErrors "github.com/reglet-dev/zendext-sdk/domain/errors"
	"github.com/reglet-dev/zendext-sdk/domain/ports"
)

// messageFormat is the only format string handed to the host, so a message
// containing format verbs is never expanded.
const messageFormat = "%s"

// Exception describes one exception to raise in the host.
type Exception struct {
	message string
	code    int64
	class   ports.ClassRef
	object  *entities.Object
	cause   error
	thrown  atomic.Bool
}

// New creates an exception of class with code. A nil class means the base
// Exception class.
func New(message string, code int64, class ports.ClassRef) *Exception {
	if class == nil {
		class = builders.ExceptionClass()
	}
	return &Exception{message: message, code: code, class: class}
}

// Default creates a base Exception with code 0.
func Default(message string) *Exception {
	return New(message, 0, nil)
}

// FromError converts err into an exception. An *Exception anywhere in the
// chain is returned unchanged. Conversion failures become ValueError; anything
// else becomes a base Exception carrying err's message.
func FromError(err error) *Exception {
	if err == nil {
		return nil
	}

	var exc *Exception
	if errors.As(err, &exc) {
		return exc
	}

	class := builders.ExceptionClass()
	var convErr *sdkErrors.StringConversionError
	var constraintErr *sdkErrors.BuilderConstraintError
	if errors.As(err, &convErr) || errors.As(err, &constraintErr) {
		class = builders.ValueErrorClass()
	}

	return &Exception{message: err.Error(), class: class, cause: err}
}

// SetObject attaches a pre-built host object. When set, Throw raises the
// object and ignores the class, code and message.
func (e *Exception) SetObject(object entities.Object) *Exception {
	e.object = &object
	return e
}

// Clone returns an unthrown copy of e with the same message, code, class,
// object and cause. A thrown exception is consumed; raising the same
// descriptor again goes through a clone.
func (e *Exception) Clone() *Exception {
	c := &Exception{message: e.message, code: e.code, class: e.class, cause: e.cause}
	if e.object != nil {
		object := *e.object
		c.object = &object
	}
	return c
}

func (e *Exception) Error() string {
	return e.message
}

// Unwrap returns the Go error the exception was created from, if any.
func (e *Exception) Unwrap() error {
	return e.cause
}

// Message returns the message passed to the host verbatim.
func (e *Exception) Message() string { return e.message }

// Code returns the exception code.
func (e *Exception) Code() int64 { return e.code }

// Class returns the class the exception is raised as.
func (e *Exception) Class() ports.ClassRef { return e.class }

// Object returns the attached host object, or nil.
func (e *Exception) Object() *entities.Object { return e.object }

// Throw raises the exception in host. It fails with an
// *errors.InvalidExceptionError, without calling the host, when the class
// cannot be instantiated, and with ErrExceptionConsumed on a second call.
func (e *Exception) Throw(host ports.ExceptionHost) error {
	if e.object == nil {
		if flags := e.class.ClassFlags(); !flags.Instantiable() {
			return &sdkErrors.InvalidExceptionError{Class: e.class.ClassName(), Flags: flags}
		}
	}
	if !e.thrown.CompareAndSwap(false, true) {
		return sdkErrors.ErrExceptionConsumed
	}

	if e.object != nil {
		host.ThrowObject(*e.object)
		return nil
	}
	host.ThrowByClass(e.class, e.code, messageFormat, e.message)
	return nil
}

// ThrowMessage raises a new exception of class with code 0.
func ThrowMessage(host ports.ExceptionHost, class ports.ClassRef, message string) error {
	return New(message, 0, class).Throw(host)
}

// ThrowWithCode raises a new exception of class with code.
func ThrowWithCode(host ports.ExceptionHost, class ports.ClassRef, code int64, message string) error {
	return New(message, code, class).Throw(host)
}
