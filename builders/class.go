package builders

import (
	"strconv"
	"strings"

	"github.com/reglet-dev/zendext-sdk/domain/entities"
)

// CreateObjectFunc constructs the host object for a new instance of class.
type CreateObjectFunc func(class *ClassEntry) (entities.Object, error)

// Property describes a declared property while a class is being built.
type Property struct {
	Name  string
	Flags MethodFlags
	// Default is the host source text of the default value, if any.
	Default *string
}

// Constant describes a class constant while a class is being built.
type Constant struct {
	Name  string
	Value string
}

// PropertyInfo is one finished property record.
type PropertyInfo struct {
	name         entities.HostString
	goName       string
	flags        MethodFlags
	defaultValue entities.HostString
}

// Name returns the property name as a host string.
func (p PropertyInfo) Name() entities.HostString { return p.name }

// GoName returns the property name as declared.
func (p PropertyInfo) GoName() string { return p.goName }

// Flags returns the property visibility and modifiers.
func (p PropertyInfo) Flags() MethodFlags { return p.flags }

// DefaultValue returns the default value source, or the null string when there is none.
func (p PropertyInfo) DefaultValue() entities.HostString { return p.defaultValue }

// ConstantInfo is one finished constant record.
type ConstantInfo struct {
	name   entities.HostString
	goName string
	value  entities.HostString
}

// Name returns the constant name as a host string.
func (c ConstantInfo) Name() entities.HostString { return c.name }

// GoName returns the constant name as declared.
func (c ConstantInfo) GoName() string { return c.goName }

// Value returns the constant value source as a host string.
func (c ConstantInfo) Value() entities.HostString { return c.value }

// ClassEntry is the finished class record. It satisfies ports.ClassRef so it
// can be used as an exception target.
type ClassEntry struct {
	name         entities.HostString
	goName       string
	flags        entities.ClassFlags
	parent       *ClassEntry
	interfaces   []*ClassEntry
	methods      []*FunctionEntry
	properties   []PropertyInfo
	constants    []ConstantInfo
	createObject CreateObjectFunc
}

// Name returns the class name as a host string. It is null for built-in classes.
func (c *ClassEntry) Name() entities.HostString { return c.name }

// ClassName returns the class name as declared.
func (c *ClassEntry) ClassName() string { return c.goName }

// ClassFlags returns the final flag word, including any implied abstract flag.
func (c *ClassEntry) ClassFlags() entities.ClassFlags { return c.flags }

// Parent returns the parent class, or nil.
func (c *ClassEntry) Parent() *ClassEntry { return c.parent }

// CreateObject returns the object constructor, or nil for the default one.
func (c *ClassEntry) CreateObject() CreateObjectFunc { return c.createObject }

// Interfaces returns a copy of the directly implemented interfaces.
func (c *ClassEntry) Interfaces() []*ClassEntry { return append([]*ClassEntry(nil), c.interfaces...) }

// Methods returns a copy of the method records.
func (c *ClassEntry) Methods() []*FunctionEntry { return append([]*FunctionEntry(nil), c.methods...) }

// Properties returns a copy of the declared properties.
func (c *ClassEntry) Properties() []PropertyInfo { return append([]PropertyInfo(nil), c.properties...) }

// Constants returns a copy of the declared constants.
func (c *ClassEntry) Constants() []ConstantInfo { return append([]ConstantInfo(nil), c.constants...) }

// InstanceOf reports whether c is other, extends it, or implements it,
// directly or through a parent or inherited interface.
func (c *ClassEntry) InstanceOf(other *ClassEntry) bool {
	if c == nil || other == nil {
		return false
	}
	if strings.EqualFold(c.goName, other.goName) {
		return true
	}
	for _, iface := range c.interfaces {
		if iface.InstanceOf(other) {
			return true
		}
	}
	return c.parent.InstanceOf(other)
}

// ClassBuilder builds a ClassEntry.
//
//	class, err := builders.NewClassBuilder(allocator, "MyError").
//		Extends(builders.ExceptionClass()).
//		Build()
type ClassBuilder struct {
	seal
	alloc StringAllocator

	name         string
	flags        entities.ClassFlags
	parent       *ClassEntry
	interfaces   []*ClassEntry
	methods      []*FunctionEntry
	properties   []Property
	constants    []Constant
	createObject CreateObjectFunc
}

// NewClassBuilder creates a builder for a plain, concrete class.
func NewClassBuilder(alloc StringAllocator, name string) *ClassBuilder {
	return &ClassBuilder{alloc: alloc, name: name}
}

// Extends sets the parent class.
func (b *ClassBuilder) Extends(parent *ClassEntry) *ClassBuilder {
	if !b.consumed() {
		b.parent = parent
	}
	return b
}

// Implements adds interfaces.
func (b *ClassBuilder) Implements(ifaces ...*ClassEntry) *ClassBuilder {
	if !b.consumed() {
		b.interfaces = append(b.interfaces, ifaces...)
	}
	return b
}

// Flags replaces the class flags.
func (b *ClassBuilder) Flags(flags entities.ClassFlags) *ClassBuilder {
	if !b.consumed() {
		b.flags = flags
	}
	return b
}

// Method adds a method built with a FunctionBuilder.
func (b *ClassBuilder) Method(fn *FunctionEntry) *ClassBuilder {
	if !b.consumed() {
		b.methods = append(b.methods, fn)
	}
	return b
}

// Property declares a property.
func (b *ClassBuilder) Property(p Property) *ClassBuilder {
	if !b.consumed() {
		b.properties = append(b.properties, p)
	}
	return b
}

// Constant declares a class constant.
func (b *ClassBuilder) Constant(name, value string) *ClassBuilder {
	if !b.consumed() {
		b.constants = append(b.constants, Constant{Name: name, Value: value})
	}
	return b
}

// CreateObjectFunction sets the object constructor.
func (b *ClassBuilder) CreateObjectFunction(f CreateObjectFunc) *ClassBuilder {
	if !b.consumed() {
		b.createObject = f
	}
	return b
}

// Build seals the builder and returns the finished class record.
func (b *ClassBuilder) Build() (*ClassEntry, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}

	flags, err := b.validate()
	if err != nil {
		return nil, err
	}

	strs := newHostStrings(b.alloc)
	entry := &ClassEntry{
		name:         strs.dup("name", b.name),
		goName:       b.name,
		flags:        flags,
		parent:       b.parent,
		interfaces:   append([]*ClassEntry(nil), b.interfaces...),
		methods:      append([]*FunctionEntry(nil), b.methods...),
		createObject: b.createObject,
	}
	for i, p := range b.properties {
		field := "properties[" + strconv.Itoa(i) + "]"
		entry.properties = append(entry.properties, PropertyInfo{
			name:         strs.dup(field, p.Name),
			goName:       p.Name,
			flags:        p.Flags,
			defaultValue: strs.optional(field+".default", p.Default),
		})
	}
	for i, c := range b.constants {
		field := "constants[" + strconv.Itoa(i) + "]"
		entry.constants = append(entry.constants, ConstantInfo{
			name:   strs.dup(field, c.Name),
			goName: c.Name,
			value:  strs.dup(field+".value", c.Value),
		})
	}
	if err := strs.finish(); err != nil {
		return nil, err
	}
	return entry, nil
}

// validate checks the cross-field constraints and returns the final flags.
func (b *ClassBuilder) validate() (entities.ClassFlags, error) {
	flags := b.flags
	if b.name == "" {
		return 0, constraint("class", "name", "name is required")
	}
	if flags&entities.ClassFinal != 0 {
		if flags&entities.ClassInterface != 0 {
			return 0, constraint("class", "flags", "an interface cannot be final")
		}
		if flags&entities.ClassExplicitAbstract != 0 {
			return 0, constraint("class", "flags", "an abstract class cannot be final")
		}
	}

	if p := b.parent; p != nil {
		if strings.EqualFold(p.goName, b.name) || p.InstanceOf(&ClassEntry{goName: b.name}) {
			return 0, constraint("class", "extends", "a class cannot extend itself")
		}
		if p.flags&entities.ClassFinal != 0 {
			return 0, constraint("class", "extends", "cannot extend final class "+p.goName)
		}
		if p.flags&(entities.ClassInterface|entities.ClassTrait) != 0 {
			return 0, constraint("class", "extends", "cannot extend "+p.goName+", it is not a class")
		}
	}
	for _, iface := range b.interfaces {
		if iface == nil {
			return 0, constraint("class", "implements", "nil interface")
		}
		if iface.flags&entities.ClassInterface == 0 {
			return 0, constraint("class", "implements", iface.goName+" is not an interface")
		}
	}

	seen := make(map[string]bool)
	for _, m := range b.methods {
		if m == nil {
			return 0, constraint("class", "methods", "nil method")
		}
		key := strings.ToLower(m.goName)
		if seen[key] {
			return 0, constraint("class", "methods", "duplicate method "+m.goName)
		}
		seen[key] = true
		if m.flags&MethodAbstract != 0 && flags&(entities.ClassInterface|entities.ClassExplicitAbstract) == 0 {
			if flags&entities.ClassFinal != 0 {
				return 0, constraint("class", "methods", "final class declares abstract method "+m.goName)
			}
			flags |= entities.ClassImplicitAbstract
		}
	}
	seen = make(map[string]bool)
	for _, p := range b.properties {
		if p.Name == "" || seen[p.Name] {
			return 0, constraint("class", "properties", "missing or duplicate property name "+p.Name)
		}
		seen[p.Name] = true
	}
	seen = make(map[string]bool)
	for _, c := range b.constants {
		if c.Name == "" || seen[c.Name] {
			return 0, constraint("class", "constants", "missing or duplicate constant name "+c.Name)
		}
		seen[c.Name] = true
	}

	if b.createObject != nil && !flags.Instantiable() {
		return 0, constraint("class", "create_object", "class "+b.name+" cannot be instantiated")
	}
	return flags, nil
}
