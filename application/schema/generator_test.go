package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw []byte) map[string]interface{} {
	t.Helper()
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return decoded
}

func TestGenerateSchema_SimpleStruct(t *testing.T) {
	type CacheConfig struct {
		Dir string `json:"dir"`
		TTL int    `json:"ttl,omitempty"`
	}

	schema, err := GenerateSchema(CacheConfig{})
	require.NoError(t, err)

	decoded := decode(t, schema)
	properties, ok := decoded["properties"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, properties, "dir")
	assert.Contains(t, properties, "ttl")
	assert.Equal(t, []interface{}{"dir"}, decoded["required"])
	assert.Equal(t, false, decoded["additionalProperties"])
	assert.NotContains(t, decoded, "$id")
}

func TestGenerateSchema_NestedStruct(t *testing.T) {
	type Backend struct {
		Name string `json:"name"`
	}
	type CacheConfig struct {
		Backend Backend `json:"backend"`
	}

	schema, err := GenerateSchema(CacheConfig{})
	require.NoError(t, err)

	decoded := decode(t, schema)
	defs, ok := decoded["$defs"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, defs, "Backend")
}

func TestManifestSchema(t *testing.T) {
	schema, err := ManifestSchema()
	require.NoError(t, err)

	decoded := decode(t, schema)
	properties, ok := decoded["properties"].(map[string]interface{})
	require.True(t, ok)
	for _, key := range []string{"name", "version", "functions", "ini", "ini_allow", "sapi", "config"} {
		assert.Contains(t, properties, key)
	}

	required, ok := decoded["required"].([]interface{})
	require.True(t, ok)
	assert.ElementsMatch(t, []interface{}{"name", "version"}, required)

	defs, ok := decoded["$defs"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, defs, "FunctionManifest")
	assert.Contains(t, defs, "SapiManifest")
}
