package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	sdk "github.com/reglet-dev/zendext-sdk"
	"github.com/reglet-dev/zendext-sdk/alloc"
	"github.com/reglet-dev/zendext-sdk/application/manifest"
	"github.com/reglet-dev/zendext-sdk/application/schema"
	"github.com/reglet-dev/zendext-sdk/application/template"
	"github.com/reglet-dev/zendext-sdk/application/validation"
	"github.com/reglet-dev/zendext-sdk/builders"
	"github.com/reglet-dev/zendext-sdk/domain/entities"
	sdkErrors "github.com/reglet-dev/zendext-sdk/domain/errors"
	"github.com/reglet-dev/zendext-sdk/domain/policy"
	"github.com/reglet-dev/zendext-sdk/testing/hosttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloTemplate = `
name: hello
version: "{{.config.version}}"
functions:
  - name: hello_greet
    returns: string
    args:
      - name: who
        type: string
      - name: punctuation
        type: string
        optional: true
        default: "'!'"
  - name: hello_legacy
    deprecated: true
ini:
  - name: hello.greeting
    value: Hi
  - name: hello.log_path
    value: /var/log/hello log
    quoted: true
ini_allow:
  - hello.*
sapi:
  name: hello-cli
  pretty_name: Hello CLI
  ini_ignore: true
  phpinfo_as_text: true
config:
  cache:
    ttl: 60
`

func greet(args []any) (any, error) { return "hi", nil }

func newLoader(t *testing.T) *manifest.Loader {
	t.Helper()
	registry, err := schema.NewManifestRegistry()
	require.NoError(t, err)
	return manifest.NewLoader(
		manifest.WithTemplateEngine(template.NewGoTemplateEngine()),
		manifest.WithValidator(validation.NewSchemaValidator(registry)),
	)
}

func TestLoader_Load(t *testing.T) {
	m, err := newLoader(t).Load([]byte(helloTemplate), map[string]interface{}{"version": "1.2.3"})
	require.NoError(t, err)

	assert.Equal(t, "hello", m.Name)
	assert.Equal(t, "1.2.3", m.Version)
	assert.Len(t, m.Functions, 2)
	assert.Equal(t, "Hello CLI", m.Sapi.PrettyName)
}

func TestLoader_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extension.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: hello\nversion: \"1\"\n"), 0o600))

	m, err := manifest.NewLoader().LoadFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", m.Name)

	_, err = manifest.NewLoader().LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	var cfgErr *sdkErrors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoader_Failures(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		vars  map[string]interface{}
		field string
	}{
		{"missing template variable", helloTemplate, map[string]interface{}{}, ""},
		{"schema violation", "name: hello\nversion: \"1\"\ncolour: blue\n", nil, "."},
		{"struct validation", "name: hello\nversion: \"1\"\nfunctions:\n  - name: f\n    returns: text\n", nil, "functions[0].returns"},
	}

	loader := newLoader(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Load([]byte(tt.doc), tt.vars)
			var cfgErr *sdkErrors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestLoader_WithoutParser(t *testing.T) {
	_, err := manifest.NewLoader(manifest.WithParser(nil)).Load([]byte("name: x"), nil)
	assert.Error(t, err)
}

func loadHello(t *testing.T) *entities.ExtensionManifest {
	t.Helper()
	m, err := newLoader(t).Load([]byte(helloTemplate), map[string]interface{}{"version": "1.0.0"})
	require.NoError(t, err)
	return m
}

func TestApply(t *testing.T) {
	engine := hosttest.NewEngine()
	a := alloc.New(engine)

	ext, err := manifest.Apply(a, loadHello(t), manifest.Handlers{
		"hello_greet":  greet,
		"HELLO_LEGACY": greet,
	}, manifest.WithBuildID("API20230831,NTS"))
	require.NoError(t, err)

	require.Len(t, ext.Functions, 2)
	fn := ext.Functions[0]
	assert.Equal(t, "hello_greet", fn.GoName())
	assert.Equal(t, entities.TypeString, fn.ReturnType())
	assert.Equal(t, uint32(1), fn.NumRequiredArgs())
	def, err := a.ReadString(fn.Args()[1].DefaultValue())
	require.NoError(t, err)
	assert.Equal(t, "'!'", string(def))
	assert.NotZero(t, ext.Functions[1].Flags()&builders.MethodDeprecated)

	assert.Equal(t, "hello.greeting=Hi\nhello.log_path=\"/var/log/hello log\"\n", ext.Ini.String())
	assert.Equal(t, 60, mustInt(t, ext.Config, "cache.ttl"))

	require.NotNil(t, ext.Sapi)
	sapi, err := ext.Sapi.Build()
	require.NoError(t, err)
	assert.True(t, sapi.PhpIniIgnore())
	assert.True(t, sapi.PhpinfoAsText())
	iniText, err := a.ReadString(sapi.IniEntries())
	require.NoError(t, err)
	assert.Contains(t, string(iniText), "hello.greeting=Hi")

	module, err := ext.Module.Build()
	require.NoError(t, err)
	buildID, err := a.ReadString(module.BuildID())
	require.NoError(t, err)
	assert.Equal(t, "API20230831,NTS", string(buildID))
	_, ok := module.Function("hello_legacy")
	assert.True(t, ok)
}

func TestApply_DeniedIniKey(t *testing.T) {
	engine := hosttest.NewEngine()
	a := alloc.New(engine)
	m := loadHello(t)
	m.Ini = append(m.Ini, entities.IniEntry{Name: "disable_functions", Value: "exec"})

	_, err := manifest.Apply(a, m, manifest.Handlers{"hello_greet": greet, "hello_legacy": greet})

	var cfgErr *sdkErrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "ini[2].name", cfgErr.Field)
	assert.Zero(t, engine.LiveBlocks())
}

func TestApply_FunctionBuildFailureReleasesStrings(t *testing.T) {
	tests := []struct {
		name string
		bad  entities.FunctionManifest
	}{
		{"required argument with default", entities.FunctionManifest{
			Name: "bad_fn",
			Args: []entities.ArgManifest{{Name: "y", Default: "1"}},
		}},
		{"default with embedded NUL", entities.FunctionManifest{
			Name: "bad_fn",
			Args: []entities.ArgManifest{{Name: "y", Optional: true, Default: "a\x00b"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := hosttest.NewEngine()
			a := alloc.New(engine)
			m := &entities.ExtensionManifest{
				Name:    "hello",
				Version: "1",
				Functions: []entities.FunctionManifest{
					{Name: "ok_fn", Args: []entities.ArgManifest{{Name: "x"}}},
					tt.bad,
				},
			}

			ext, err := manifest.Apply(a, m, manifest.Handlers{"ok_fn": greet, "bad_fn": greet})

			var cfgErr *sdkErrors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, "functions[1]", cfgErr.Field)
			assert.Nil(t, ext)
			assert.Zero(t, engine.LiveBlocks())
		})
	}
}

func TestApply_PolicyOverride(t *testing.T) {
	a := alloc.New(hosttest.NewEngine())
	m := loadHello(t)

	_, err := manifest.Apply(a, m, manifest.Handlers{"hello_greet": greet, "hello_legacy": greet},
		manifest.WithIniPolicy(policy.NewIniPolicy([]string{"hello.greeting"}, policy.WithDenialHandler(&policy.NopDenialHandler{}))))

	var cfgErr *sdkErrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "ini[1].name", cfgErr.Field)
}

func TestApply_MissingHandler(t *testing.T) {
	engine := hosttest.NewEngine()
	a := alloc.New(engine)

	_, err := manifest.Apply(a, loadHello(t), manifest.Handlers{"hello_greet": greet})

	var cfgErr *sdkErrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "functions[1].name", cfgErr.Field)
	assert.Zero(t, engine.LiveBlocks())
}

func TestApply_NoSapiSection(t *testing.T) {
	a := alloc.New(hosttest.NewEngine())
	m := &entities.ExtensionManifest{Name: "bare", Version: "1"}

	ext, err := manifest.Apply(a, m, nil)
	require.NoError(t, err)
	assert.Nil(t, ext.Sapi)
	assert.Empty(t, ext.Functions)

	ini, err := ext.Ini.Finish()
	require.NoError(t, err)
	assert.True(t, ini.IsNull())
}

func TestApply_NilManifest(t *testing.T) {
	_, err := manifest.Apply(alloc.New(hosttest.NewEngine()), nil, nil)
	assert.Error(t, err)
}

func mustInt(t *testing.T, cfg sdk.Config, key string) int {
	t.Helper()
	v, err := sdk.MustGetInt(cfg, key)
	require.NoError(t, err)
	return v
}
