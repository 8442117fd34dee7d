package builders

import (
	"strconv"
	"strings"

	"github.com/reglet-dev/zendext-sdk/domain/entities"
)

// Handler is the Go implementation behind a host function. Arguments arrive
// already converted from host values; the result is converted back by the
// caller. A non-nil error is turned into a host exception.
type Handler func(args []any) (any, error)

// MethodFlags carries the visibility and modifiers of a class method.
type MethodFlags uint32

const (
	MethodPublic     MethodFlags = 1 << 0
	MethodProtected  MethodFlags = 1 << 1
	MethodPrivate    MethodFlags = 1 << 2
	MethodStatic     MethodFlags = 1 << 4
	MethodFinal      MethodFlags = 1 << 5
	MethodAbstract   MethodFlags = 1 << 6
	MethodDeprecated MethodFlags = 1 << 11
)

// Arg describes one argument while a function is being built.
type Arg struct {
	Name     string
	Type     entities.DataType
	Nullable bool
	ByRef    bool
	Variadic bool
	// Default is the host source text of the default value, if any.
	Default *string
}

// ArgInfo is one finished argument record.
type ArgInfo struct {
	name         entities.HostString
	goName       string
	typ          entities.DataType
	nullable     bool
	byRef        bool
	variadic     bool
	defaultValue entities.HostString
}

// Name returns the argument name as a host string.
func (a ArgInfo) Name() entities.HostString { return a.name }

// GoName returns the argument name as declared.
func (a ArgInfo) GoName() string { return a.goName }

// Type returns the declared type.
func (a ArgInfo) Type() entities.DataType { return a.typ }

// Nullable reports whether null is accepted.
func (a ArgInfo) Nullable() bool { return a.nullable }

// ByRef reports whether the argument is passed by reference.
func (a ArgInfo) ByRef() bool { return a.byRef }

// Variadic reports whether the argument collects the remaining ones.
func (a ArgInfo) Variadic() bool { return a.variadic }

// DefaultValue returns the default value source, or the null string.
func (a ArgInfo) DefaultValue() entities.HostString { return a.defaultValue }

// FunctionEntry is the finished function record.
type FunctionEntry struct {
	name           entities.HostString
	goName         string
	handler        Handler
	args           []ArgInfo
	numRequired    uint32
	returnType     entities.DataType
	returnNullable bool
	flags          MethodFlags
}

// Name returns the function name as a host string.
func (f *FunctionEntry) Name() entities.HostString { return f.name }

// GoName returns the function name as declared.
func (f *FunctionEntry) GoName() string { return f.goName }

// Handler returns the implementation, or nil for abstract methods.
func (f *FunctionEntry) Handler() Handler { return f.handler }

// NumRequiredArgs returns how many leading arguments are required.
func (f *FunctionEntry) NumRequiredArgs() uint32 { return f.numRequired }

// ReturnType returns the declared return type.
func (f *FunctionEntry) ReturnType() entities.DataType { return f.returnType }

// ReturnNullable reports whether the function may return null.
func (f *FunctionEntry) ReturnNullable() bool { return f.returnNullable }

// Flags returns the method flags.
func (f *FunctionEntry) Flags() MethodFlags { return f.flags }

// Args returns a copy of the argument records.
func (f *FunctionEntry) Args() []ArgInfo {
	return append([]ArgInfo(nil), f.args...)
}

// Release frees the record's host strings. Only records that were never handed
// to the host may be released; the record is empty afterwards.
func (f *FunctionEntry) Release(alloc StringAllocator) {
	strs := newHostStrings(alloc)
	strs.adopt(f.name)
	for _, a := range f.args {
		strs.adopt(a.name)
		strs.adopt(a.defaultValue)
	}
	strs.rollback()
	f.name = entities.HostString{}
	f.args = nil
}

// FunctionBuilder builds a FunctionEntry.
type FunctionBuilder struct {
	seal
	alloc StringAllocator

	name           string
	handler        Handler
	required       []Arg
	optional       []Arg
	returnType     entities.DataType
	returnNullable bool
	flags          MethodFlags
}

// NewFunctionBuilder creates a builder for a function named name.
func NewFunctionBuilder(alloc StringAllocator, name string, handler Handler) *FunctionBuilder {
	return &FunctionBuilder{
		alloc:   alloc,
		name:    name,
		handler: handler,
		flags:   MethodPublic,
	}
}

// Arg appends a required argument.
func (b *FunctionBuilder) Arg(arg Arg) *FunctionBuilder {
	if !b.consumed() {
		b.required = append(b.required, arg)
	}
	return b
}

// OptionalArg appends an optional argument. Optional arguments always follow
// the required ones.
func (b *FunctionBuilder) OptionalArg(arg Arg) *FunctionBuilder {
	if !b.consumed() {
		b.optional = append(b.optional, arg)
	}
	return b
}

// Returns sets the declared return type.
func (b *FunctionBuilder) Returns(typ entities.DataType, nullable bool) *FunctionBuilder {
	if !b.consumed() {
		b.returnType = typ
		b.returnNullable = nullable
	}
	return b
}

// Flags sets the method flags. Plain functions keep MethodPublic.
func (b *FunctionBuilder) Flags(flags MethodFlags) *FunctionBuilder {
	if !b.consumed() {
		b.flags = flags
	}
	return b
}

// Build seals the builder and returns the finished function record.
func (b *FunctionBuilder) Build() (*FunctionEntry, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	if err := b.validate(); err != nil {
		return nil, err
	}

	strs := newHostStrings(b.alloc)
	entry := &FunctionEntry{
		name:           strs.dup("name", b.name),
		goName:         b.name,
		handler:        b.handler,
		numRequired:    uint32(len(b.required)),
		returnType:     b.returnType,
		returnNullable: b.returnNullable,
		flags:          b.flags,
	}
	all := append(append([]Arg(nil), b.required...), b.optional...)
	for i, a := range all {
		field := "args[" + strconv.Itoa(i) + "]"
		entry.args = append(entry.args, ArgInfo{
			name:         strs.dup(field, a.Name),
			goName:       a.Name,
			typ:          a.Type,
			nullable:     a.Nullable,
			byRef:        a.ByRef,
			variadic:     a.Variadic,
			defaultValue: strs.optional(field+".default", a.Default),
		})
	}
	if err := strs.finish(); err != nil {
		return nil, err
	}
	return entry, nil
}

func (b *FunctionBuilder) validate() error {
	if b.name == "" {
		return constraint("function", "name", "name is required")
	}
	if b.handler == nil && b.flags&MethodAbstract == 0 {
		return constraint("function", "handler", "only abstract methods may omit a handler")
	}
	if b.returnType == entities.TypeVoid && b.returnNullable {
		return constraint("function", "return", "void cannot be nullable")
	}
	vis := b.flags & (MethodPublic | MethodProtected | MethodPrivate)
	if vis&(vis-1) != 0 {
		return constraint("function", "flags", "more than one visibility")
	}
	if b.flags&MethodAbstract != 0 && b.flags&(MethodFinal|MethodPrivate) != 0 {
		return constraint("function", "flags", "abstract methods cannot be final or private")
	}

	seen := make(map[string]bool)
	all := append(append([]Arg(nil), b.required...), b.optional...)
	for i, a := range all {
		if a.Name == "" {
			return constraint("function", "args", "argument name is required")
		}
		if seen[a.Name] {
			return constraint("function", "args", "duplicate argument "+a.Name)
		}
		seen[a.Name] = true
		if a.Variadic && i != len(all)-1 {
			return constraint("function", "args", "variadic argument "+a.Name+" must be last")
		}
		if i < len(b.required) && a.Default != nil {
			return constraint("function", "args", "required argument "+a.Name+" has a default")
		}
		if a.Default != nil && strings.EqualFold(*a.Default, "null") && !a.Nullable {
			return constraint("function", "args", "argument "+a.Name+" defaults to null but is not nullable")
		}
	}
	return nil
}
