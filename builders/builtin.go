package builders

import (
	"strings"
	"sync"

	"github.com/reglet-dev/zendext-sdk/domain/entities"
)

// Built-in class entries are owned by the host. Their name fields are null;
// the host resolves them by name.
var builtins = sync.OnceValue(func() map[string]*ClassEntry {
	throwable := &ClassEntry{goName: "Throwable", flags: entities.ClassInterface | entities.ClassLinked}
	exception := &ClassEntry{goName: "Exception", flags: entities.ClassLinked, interfaces: []*ClassEntry{throwable}}
	errorClass := &ClassEntry{goName: "Error", flags: entities.ClassLinked, interfaces: []*ClassEntry{throwable}}
	typeError := &ClassEntry{goName: "TypeError", flags: entities.ClassLinked, parent: errorClass}

	all := []*ClassEntry{
		throwable,
		exception,
		errorClass,
		typeError,
		{goName: "ErrorException", flags: entities.ClassLinked, parent: exception},
		{goName: "ValueError", flags: entities.ClassLinked, parent: errorClass},
		{goName: "ArgumentCountError", flags: entities.ClassLinked, parent: typeError},
		{goName: "CompileError", flags: entities.ClassLinked, parent: errorClass},
	}
	byName := make(map[string]*ClassEntry, len(all))
	for _, c := range all {
		byName[strings.ToLower(c.goName)] = c
	}
	return byName
})

// LookupClass returns the built-in class named name, ignoring case.
func LookupClass(name string) (*ClassEntry, bool) {
	c, ok := builtins()[strings.ToLower(name)]
	return c, ok
}

func builtin(name string) *ClassEntry {
	c, _ := LookupClass(name)
	return c
}

// ThrowableInterface returns the interface every throwable class implements.
func ThrowableInterface() *ClassEntry { return builtin("Throwable") }

// ExceptionClass returns the base exception class.
func ExceptionClass() *ClassEntry { return builtin("Exception") }

// ErrorClass returns the base class of engine errors.
func ErrorClass() *ClassEntry { return builtin("Error") }

// ErrorExceptionClass returns the class used to rethrow engine errors as exceptions.
func ErrorExceptionClass() *ClassEntry { return builtin("ErrorException") }

// TypeErrorClass returns the class raised for arguments of the wrong type.
func TypeErrorClass() *ClassEntry { return builtin("TypeError") }

// ValueErrorClass returns the class raised for arguments of the right type but an unacceptable value.
func ValueErrorClass() *ClassEntry { return builtin("ValueError") }

// ArgumentCountErrorClass returns the class raised when a function gets too few or too many arguments.
func ArgumentCountErrorClass() *ClassEntry { return builtin("ArgumentCountError") }

// CompileErrorClass returns the base class of compilation failures.
func CompileErrorClass() *ClassEntry { return builtin("CompileError") }
