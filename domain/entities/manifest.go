package entities

// ExtensionManifest is the declarative description of an extension module,
// usually loaded from extension.yaml next to the extension sources.
type ExtensionManifest struct {
	Name        string             `yaml:"name" json:"name" validate:"required" jsonschema:"required,minLength=1"`
	Version     string             `yaml:"version" json:"version" validate:"required" jsonschema:"required,minLength=1"`
	Description string             `yaml:"description,omitempty" json:"description,omitempty"`
	Functions   []FunctionManifest `yaml:"functions,omitempty" json:"functions,omitempty" validate:"dive"`
	Ini         []IniEntry         `yaml:"ini,omitempty" json:"ini,omitempty" validate:"dive"`
	IniAllow    []string           `yaml:"ini_allow,omitempty" json:"ini_allow,omitempty"`
	Sapi        *SapiManifest      `yaml:"sapi,omitempty" json:"sapi,omitempty"`
	Config      map[string]any     `yaml:"config,omitempty" json:"config,omitempty"`
}

// FunctionManifest declares a function exported by the module. Handlers are
// bound in Go by name.
type FunctionManifest struct {
	Name       string        `yaml:"name" json:"name" validate:"required" jsonschema:"required,minLength=1"`
	Returns    string        `yaml:"returns,omitempty" json:"returns,omitempty" validate:"omitempty,oneof=mixed null bool int float string array object callable iterable void"`
	Nullable   bool          `yaml:"nullable,omitempty" json:"nullable,omitempty"`
	Args       []ArgManifest `yaml:"args,omitempty" json:"args,omitempty" validate:"dive"`
	Deprecated bool          `yaml:"deprecated,omitempty" json:"deprecated,omitempty"`
}

// ArgManifest declares a single function argument.
type ArgManifest struct {
	Name     string `yaml:"name" json:"name" validate:"required" jsonschema:"required,minLength=1"`
	Type     string `yaml:"type,omitempty" json:"type,omitempty" validate:"omitempty,oneof=mixed null bool int float string array object callable iterable"`
	Optional bool   `yaml:"optional,omitempty" json:"optional,omitempty"`
	Default  string `yaml:"default,omitempty" json:"default,omitempty"`
	ByRef    bool   `yaml:"by_ref,omitempty" json:"by_ref,omitempty"`
	Nullable bool   `yaml:"nullable,omitempty" json:"nullable,omitempty"`
	Variadic bool   `yaml:"variadic,omitempty" json:"variadic,omitempty"`
}

// IniEntry is a single configuration directive.
type IniEntry struct {
	Name   string `yaml:"name" json:"name" validate:"required" jsonschema:"required,minLength=1"`
	Value  string `yaml:"value" json:"value"`
	Quoted bool   `yaml:"quoted,omitempty" json:"quoted,omitempty"`
}

// SapiManifest carries the request-dispatcher settings of an embedding.
type SapiManifest struct {
	Name               string `yaml:"name" json:"name" validate:"required" jsonschema:"required,minLength=1"`
	PrettyName         string `yaml:"pretty_name" json:"pretty_name" validate:"required" jsonschema:"required,minLength=1"`
	IniPathOverride    string `yaml:"ini_path_override,omitempty" json:"ini_path_override,omitempty"`
	IniIgnore          bool   `yaml:"ini_ignore,omitempty" json:"ini_ignore,omitempty"`
	IniIgnoreCwd       bool   `yaml:"ini_ignore_cwd,omitempty" json:"ini_ignore_cwd,omitempty"`
	ExecutableLocation string `yaml:"executable_location,omitempty" json:"executable_location,omitempty"`
	PhpinfoAsText      bool   `yaml:"phpinfo_as_text,omitempty" json:"phpinfo_as_text,omitempty"`
}
