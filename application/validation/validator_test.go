package validation_test

import (
	"testing"

	"github.com/reglet-dev/zendext-sdk/application/schema"
	"github.com/reglet-dev/zendext-sdk/application/validation"
	sdkErrors "github.com/reglet-dev/zendext-sdk/domain/errors"
	"github.com/reglet-dev/zendext-sdk/infrastructure/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRegistry struct {
	schemas map[string]string
	lookups int
}

func (m *mockRegistry) Register(name string, model interface{}) error { return nil }
func (m *mockRegistry) List() []string                                { return nil }

func (m *mockRegistry) GetSchema(name string) (string, bool) {
	m.lookups++
	s, ok := m.schemas[name]
	return s, ok
}

func manifestValidator(t *testing.T) *validation.SchemaValidator {
	t.Helper()
	registry, err := schema.NewManifestRegistry()
	require.NoError(t, err)
	return validation.NewSchemaValidator(registry)
}

func document(t *testing.T, yamlDoc string) any {
	t.Helper()
	doc, err := parser.ParseDocument([]byte(yamlDoc))
	require.NoError(t, err)
	return doc
}

func TestSchemaValidator_ValidManifest(t *testing.T) {
	v := manifestValidator(t)

	res, err := v.Validate(schema.KindManifest, document(t, `
name: hello
version: "0.1.0"
functions:
  - name: hello_greet
    args:
      - name: who
        type: string
ini:
  - name: hello.greeting
    value: Hi
config:
  cache:
    ttl: 60
`))
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestSchemaValidator_InvalidManifest(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		field   string
		message string
	}{
		{"missing name", "version: \"1\"\n", ".", "name"},
		{"unknown property", "name: a\nversion: \"1\"\ncolor: blue\n", ".", "color"},
		{"wrong type", "name: a\nversion: 1.5\n", "version", "string"},
		{"nested argument", "name: a\nversion: \"1\"\nfunctions:\n  - name: f\n    args:\n      - type: int\n", "functions[0].args[0]", "name"},
	}

	v := manifestValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.Validate(schema.KindManifest, document(t, tt.doc))
			require.NoError(t, err)
			assert.False(t, res.Valid)
			require.NotEmpty(t, res.Errors)
			assert.Equal(t, tt.field, res.Errors[0].Field)
			assert.Contains(t, res.Errors[0].Message, tt.message)
		})
	}
}

func TestSchemaValidator_UnknownKind(t *testing.T) {
	v := validation.NewSchemaValidator(&mockRegistry{})

	_, err := v.Validate("env", map[string]any{})
	var schemaErr *sdkErrors.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, err.Error(), "no schema registered for env")
}

func TestSchemaValidator_BrokenSchema(t *testing.T) {
	v := validation.NewSchemaValidator(&mockRegistry{schemas: map[string]string{"bad": `{"type": 12}`}})

	_, err := v.Validate("bad", map[string]any{})
	var schemaErr *sdkErrors.SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestSchemaValidator_CachesCompiledSchema(t *testing.T) {
	registry := &mockRegistry{schemas: map[string]string{
		"ini": `{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`,
	}}
	v := validation.NewSchemaValidator(registry)

	for i := 0; i < 3; i++ {
		res, err := v.Validate("ini", map[string]any{"name": "memory_limit"})
		require.NoError(t, err)
		assert.True(t, res.Valid)
	}
	assert.Equal(t, 1, registry.lookups)

	res, err := v.Validate("ini", map[string]any{})
	require.NoError(t, err)
	assert.False(t, res.Valid)
}

func TestSchemaValidator_Numbers(t *testing.T) {
	v := validation.NewSchemaValidator(&mockRegistry{schemas: map[string]string{
		"limits": `{"type": "object", "properties": {
			"ttl": {"type": "integer", "minimum": 1},
			"size": {"type": "integer"},
			"ratio": {"type": "number"}
		}}`,
	}})

	res, err := v.Validate("limits", map[string]any{"ttl": 60, "size": uint64(1) << 62, "ratio": 0.5})
	require.NoError(t, err)
	assert.True(t, res.Valid, "%+v", res.Errors)

	res, err = v.Validate("limits", map[string]any{"ttl": 1.5})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, "ttl", res.Errors[0].Field)
}
