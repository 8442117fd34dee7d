package manifest

import (
	"errors"
	"fmt"
	"strings"

	sdk "github.com/reglet-dev/zendext-sdk"
	"github.com/reglet-dev/zendext-sdk/builders"
	"github.com/reglet-dev/zendext-sdk/domain/entities"
	sdkErrors "github.com/reglet-dev/zendext-sdk/domain/errors"
	"github.com/reglet-dev/zendext-sdk/domain/policy"
	"github.com/reglet-dev/zendext-sdk/domain/ports"
)

// Handlers binds manifest function names to Go implementations. Names are
// matched case-insensitively.
type Handlers map[string]builders.Handler

func (h Handlers) lookup(name string) (builders.Handler, bool) {
	if fn, ok := h[name]; ok {
		return fn, true
	}
	for k, fn := range h {
		if strings.EqualFold(k, name) {
			return fn, true
		}
	}
	return nil, false
}

// Extension holds the builders configured from a manifest. Callers add the
// lifecycle callbacks and SAPI functions, then build.
type Extension struct {
	Module *builders.ModuleBuilder
	Ini    *builders.IniBuilder
	// Sapi is nil when the manifest has no sapi section. When present its INI
	// entries are already attached.
	Sapi      *builders.SapiBuilder
	Functions []*builders.FunctionEntry
	Config    sdk.Config
}

type applyConfig struct {
	policy  ports.IniPolicy
	buildID string
	debug   bool
}

// ApplyOption configures Apply.
type ApplyOption func(*applyConfig)

// WithIniPolicy overrides the policy built from the manifest's ini_allow list.
func WithIniPolicy(p ports.IniPolicy) ApplyOption {
	return func(c *applyConfig) {
		c.policy = p
	}
}

// WithBuildID sets the module build id.
func WithBuildID(id string) ApplyOption {
	return func(c *applyConfig) {
		c.buildID = id
	}
}

// WithDebug marks the module as built for a debug host.
func WithDebug(debug bool) ApplyOption {
	return func(c *applyConfig) {
		c.debug = debug
	}
}

// Apply configures builders from m. Function records are built immediately,
// so every declared function needs a handler. INI entries are checked against
// the policy: the manifest's ini_allow list, or allow-all when it is empty.
//
// Policy, handler and type checks run before the first host string is allocated.
func Apply(alloc builders.StringAllocator, m *entities.ExtensionManifest, handlers Handlers, opts ...ApplyOption) (*Extension, error) {
	if m == nil {
		return nil, &sdkErrors.ConfigError{Err: errors.New("manifest is nil")}
	}

	cfg := applyConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.policy == nil {
		if len(m.IniAllow) > 0 {
			cfg.policy = policy.NewIniPolicy(m.IniAllow)
		} else {
			cfg.policy = policy.AllowAll()
		}
	}

	if err := checkIni(m.Ini, cfg.policy); err != nil {
		return nil, err
	}
	fbs, err := functionBuilders(alloc, m.Functions, handlers)
	if err != nil {
		return nil, err
	}

	ext := &Extension{
		Module: builders.NewModuleBuilder(alloc, m.Name, m.Version).Debug(cfg.debug),
		Ini:    builders.NewIniBuilder(alloc),
		Config: sdk.Config(m.Config),
	}
	if cfg.buildID != "" {
		ext.Module.BuildID(cfg.buildID)
	}

	for i, fb := range fbs {
		fn, err := fb.Build()
		if err != nil {
			for _, built := range ext.Functions {
				built.Release(alloc)
			}
			return nil, &sdkErrors.ConfigError{Field: fmt.Sprintf("functions[%d]", i), Err: err}
		}
		ext.Functions = append(ext.Functions, fn)
	}
	ext.Module.Function(ext.Functions...)

	for _, entry := range m.Ini {
		if entry.Quoted {
			ext.Ini.Quoted(entry.Name, entry.Value)
		} else {
			ext.Ini.Unquoted(entry.Name, entry.Value)
		}
	}

	if s := m.Sapi; s != nil {
		ext.Sapi = builders.NewSapiBuilder(alloc, s.Name, s.PrettyName).
			PhpIniIgnore(s.IniIgnore).
			PhpIniIgnoreCwd(s.IniIgnoreCwd).
			PhpinfoAsText(s.PhpinfoAsText).
			IniEntries(ext.Ini)
		if s.IniPathOverride != "" {
			ext.Sapi.PhpIniPathOverride(s.IniPathOverride)
		}
		if s.ExecutableLocation != "" {
			ext.Sapi.ExecutableLocation(s.ExecutableLocation)
		}
	}

	return ext, nil
}

func checkIni(entries []entities.IniEntry, p ports.IniPolicy) error {
	for i, entry := range entries {
		if !p.AllowIni(entry.Name) {
			return &sdkErrors.ConfigError{
				Field: fmt.Sprintf("ini[%d].name", i),
				Err:   fmt.Errorf("directive %q is not allowed", entry.Name),
			}
		}
	}
	return nil
}

func functionBuilders(alloc builders.StringAllocator, fns []entities.FunctionManifest, handlers Handlers) ([]*builders.FunctionBuilder, error) {
	out := make([]*builders.FunctionBuilder, 0, len(fns))
	for i, fn := range fns {
		handler, ok := handlers.lookup(fn.Name)
		if !ok {
			return nil, &sdkErrors.ConfigError{
				Field: fmt.Sprintf("functions[%d].name", i),
				Err:   fmt.Errorf("no handler bound for %s", fn.Name),
			}
		}

		fb := builders.NewFunctionBuilder(alloc, fn.Name, handler)
		if fn.Returns != "" {
			typ, err := dataType(fmt.Sprintf("functions[%d].returns", i), fn.Returns)
			if err != nil {
				return nil, err
			}
			fb.Returns(typ, fn.Nullable)
		}
		if fn.Deprecated {
			fb.Flags(builders.MethodPublic | builders.MethodDeprecated)
		}

		for j, a := range fn.Args {
			arg := builders.Arg{
				Name:     a.Name,
				Nullable: a.Nullable,
				ByRef:    a.ByRef,
				Variadic: a.Variadic,
			}
			if a.Type != "" {
				typ, err := dataType(fmt.Sprintf("functions[%d].args[%d].type", i, j), a.Type)
				if err != nil {
					return nil, err
				}
				arg.Type = typ
			}
			if a.Default != "" {
				def := a.Default
				arg.Default = &def
			}
			if a.Optional {
				fb.OptionalArg(arg)
			} else {
				fb.Arg(arg)
			}
		}
		out = append(out, fb)
	}
	return out, nil
}

func dataType(field, name string) (entities.DataType, error) {
	typ, ok := entities.ParseDataType(name)
	if !ok {
		return entities.TypeMixed, &sdkErrors.ConfigError{Field: field, Err: fmt.Errorf("unknown type %q", name)}
	}
	return typ, nil
}
