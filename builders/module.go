package builders

import (
	"strconv"
	"strings"

	"github.com/reglet-dev/zendext-sdk/domain/entities"
)

// ModuleAPINo is the host API number a module is built against.
const ModuleAPINo = 20230831

// DefaultBuildID is the build id of a release, thread-unsafe host build.
const DefaultBuildID = "API20230831,NTS"

// ModuleStartupFunc runs once when the host loads the module.
type ModuleStartupFunc func(moduleType int, moduleNumber int) error

// ModuleShutdownFunc runs once when the host unloads the module.
type ModuleShutdownFunc func(moduleType int, moduleNumber int) error

// RequestStartupFunc runs at the start of every request.
type RequestStartupFunc func(moduleType int, moduleNumber int) error

// RequestShutdownFunc runs at the end of every request.
type RequestShutdownFunc func(moduleType int, moduleNumber int) error

// InfoFunc contributes the module's section to phpinfo().
type InfoFunc func(module *ModuleEntry) []InfoRow

// InfoRow is one key/value line in a phpinfo() table.
type InfoRow struct {
	Key   string
	Value string
}

// ModuleEntry is the finished module record.
type ModuleEntry struct {
	name            entities.HostString
	goName          string
	version         entities.HostString
	goVersion       string
	buildID         entities.HostString
	apiNo           uint32
	debug           bool
	functions       []*FunctionEntry
	classes         []*ClassEntry
	startup         ModuleStartupFunc
	shutdown        ModuleShutdownFunc
	requestStartup  RequestStartupFunc
	requestShutdown RequestShutdownFunc
	info            InfoFunc
}

// Name returns the module name as a host string.
func (m *ModuleEntry) Name() entities.HostString { return m.name }

// GoName returns the module name as given to the builder.
func (m *ModuleEntry) GoName() string { return m.goName }

// Version returns the module version as a host string.
func (m *ModuleEntry) Version() entities.HostString { return m.version }

// GoVersion returns the module version as given to the builder.
func (m *ModuleEntry) GoVersion() string { return m.goVersion }

// BuildID returns the build id the host checks at load time.
func (m *ModuleEntry) BuildID() entities.HostString { return m.buildID }

// APINo returns the module API number.
func (m *ModuleEntry) APINo() uint32 { return m.apiNo }

// Debug reports whether the module targets a debug host.
func (m *ModuleEntry) Debug() bool { return m.debug }

// Startup returns the module startup callback, or nil.
func (m *ModuleEntry) Startup() ModuleStartupFunc { return m.startup }

// Shutdown returns the module shutdown callback, or nil.
func (m *ModuleEntry) Shutdown() ModuleShutdownFunc { return m.shutdown }

// RequestStartup returns the per-request startup callback, or nil.
func (m *ModuleEntry) RequestStartup() RequestStartupFunc { return m.requestStartup }

// RequestShutdown returns the per-request shutdown callback, or nil.
func (m *ModuleEntry) RequestShutdown() RequestShutdownFunc { return m.requestShutdown }

// Info returns the phpinfo callback, or nil.
func (m *ModuleEntry) Info() InfoFunc { return m.info }

// Functions returns a copy of the module functions.
func (m *ModuleEntry) Functions() []*FunctionEntry { return append([]*FunctionEntry(nil), m.functions...) }

// Classes returns a copy of the module classes.
func (m *ModuleEntry) Classes() []*ClassEntry { return append([]*ClassEntry(nil), m.classes...) }

// Function returns the function registered under name, ignoring case.
func (m *ModuleEntry) Function(name string) (*FunctionEntry, bool) {
	for _, fn := range m.functions {
		if strings.EqualFold(fn.goName, name) {
			return fn, true
		}
	}
	return nil, false
}

// ModuleBuilder builds a ModuleEntry.
//
//	module, err := builders.NewModuleBuilder(allocator, "hello", "0.1.0").
//		Function(greet).
//		Build()
type ModuleBuilder struct {
	seal
	alloc StringAllocator

	name    string
	version string
	buildID string
	debug   bool

	functions       []*FunctionEntry
	classes         []*ClassEntry
	startup         ModuleStartupFunc
	shutdown        ModuleShutdownFunc
	requestStartup  RequestStartupFunc
	requestShutdown RequestShutdownFunc
	info            InfoFunc
}

// NewModuleBuilder creates a builder for a module with the default build id.
func NewModuleBuilder(alloc StringAllocator, name, version string) *ModuleBuilder {
	return &ModuleBuilder{
		alloc:   alloc,
		name:    name,
		version: version,
		buildID: DefaultBuildID,
	}
}

// Function registers functions.
func (b *ModuleBuilder) Function(fns ...*FunctionEntry) *ModuleBuilder {
	if !b.consumed() {
		b.functions = append(b.functions, fns...)
	}
	return b
}

// Class registers classes.
func (b *ModuleBuilder) Class(classes ...*ClassEntry) *ModuleBuilder {
	if !b.consumed() {
		b.classes = append(b.classes, classes...)
	}
	return b
}

// StartupFunction sets the module startup callback.
func (b *ModuleBuilder) StartupFunction(f ModuleStartupFunc) *ModuleBuilder {
	if !b.consumed() {
		b.startup = f
	}
	return b
}

// ShutdownFunction sets the module shutdown callback.
func (b *ModuleBuilder) ShutdownFunction(f ModuleShutdownFunc) *ModuleBuilder {
	if !b.consumed() {
		b.shutdown = f
	}
	return b
}

// RequestStartupFunction sets the per-request startup callback.
func (b *ModuleBuilder) RequestStartupFunction(f RequestStartupFunc) *ModuleBuilder {
	if !b.consumed() {
		b.requestStartup = f
	}
	return b
}

// RequestShutdownFunction sets the per-request shutdown callback.
func (b *ModuleBuilder) RequestShutdownFunction(f RequestShutdownFunc) *ModuleBuilder {
	if !b.consumed() {
		b.requestShutdown = f
	}
	return b
}

// InfoFunction sets the phpinfo() callback.
func (b *ModuleBuilder) InfoFunction(f InfoFunc) *ModuleBuilder {
	if !b.consumed() {
		b.info = f
	}
	return b
}

// BuildID overrides the build id the host checks on load.
func (b *ModuleBuilder) BuildID(id string) *ModuleBuilder {
	if !b.consumed() {
		b.buildID = id
	}
	return b
}

// Debug marks the module as built against a debug host.
func (b *ModuleBuilder) Debug(debug bool) *ModuleBuilder {
	if !b.consumed() {
		b.debug = debug
	}
	return b
}

// Build seals the builder and returns the finished module record.
func (b *ModuleBuilder) Build() (*ModuleEntry, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	if err := b.validate(); err != nil {
		return nil, err
	}

	strs := newHostStrings(b.alloc)
	entry := &ModuleEntry{
		name:            strs.dup("name", b.name),
		goName:          b.name,
		version:         strs.dup("version", b.version),
		goVersion:       b.version,
		buildID:         strs.dup("build_id", b.buildID),
		apiNo:           ModuleAPINo,
		debug:           b.debug,
		functions:       append([]*FunctionEntry(nil), b.functions...),
		classes:         append([]*ClassEntry(nil), b.classes...),
		startup:         b.startup,
		shutdown:        b.shutdown,
		requestStartup:  b.requestStartup,
		requestShutdown: b.requestShutdown,
		info:            b.info,
	}
	if err := strs.finish(); err != nil {
		return nil, err
	}
	return entry, nil
}

func (b *ModuleBuilder) validate() error {
	if b.name == "" {
		return constraint("module", "name", "name is required")
	}
	if b.buildID == "" {
		return constraint("module", "build_id", "build id is required")
	}

	seen := make(map[string]bool)
	for i, fn := range b.functions {
		if fn == nil {
			return constraint("module", "functions", "nil function entry at index "+strconv.Itoa(i))
		}
		key := strings.ToLower(fn.goName)
		if seen[key] {
			return constraint("module", "functions", "duplicate function "+fn.goName)
		}
		seen[key] = true
	}
	seen = make(map[string]bool)
	for i, c := range b.classes {
		if c == nil {
			return constraint("module", "classes", "nil class entry at index "+strconv.Itoa(i))
		}
		key := strings.ToLower(c.goName)
		if seen[key] {
			return constraint("module", "classes", "duplicate class "+c.goName)
		}
		seen[key] = true
	}
	return nil
}
