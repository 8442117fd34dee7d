package ports

import "github.com/reglet-dev/zendext-sdk/domain/entities"

// ClassRef identifies a host class entry.
type ClassRef interface {
	ClassName() string
	ClassFlags() entities.ClassFlags
}

// ExceptionHost exposes the host's exception raising primitives.
type ExceptionHost interface {
	// ThrowByClass raises a new exception of class with code. The host
	// formats message with format; callers always pass "%s".
	ThrowByClass(class ClassRef, code int64, format string, message string)

	// ThrowObject raises an already constructed exception object.
	ThrowObject(object entities.Object)
}
