package schema_test

import (
	"testing"

	"github.com/reglet-dev/zendext-sdk/application/schema"
	sdkErrors "github.com/reglet-dev/zendext-sdk/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cacheConfig struct {
	Dir string `json:"dir"`
}

func TestRegistry_Register(t *testing.T) {
	r := schema.NewRegistry()

	require.NoError(t, r.Register("cache", cacheConfig{}))
	require.NoError(t, r.Register("another", cacheConfig{}))

	s, ok := r.GetSchema("cache")
	require.True(t, ok)
	assert.Contains(t, s, `"dir"`)

	_, ok = r.GetSchema("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"another", "cache"}, r.List())
}

func TestRegistry_StrictMode(t *testing.T) {
	r := schema.NewRegistry()
	require.NoError(t, r.Register("cache", cacheConfig{}))

	err := r.Register("cache", cacheConfig{})
	var schemaErr *sdkErrors.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "cache", schemaErr.Type)

	lenient := schema.NewRegistry(schema.WithStrictMode(false))
	require.NoError(t, lenient.Register("cache", cacheConfig{}))
	assert.NoError(t, lenient.Register("cache", cacheConfig{}))
}

func TestNewManifestRegistry(t *testing.T) {
	r, err := schema.NewManifestRegistry()
	require.NoError(t, err)

	assert.Equal(t, []string{schema.KindManifest}, r.List())
	s, ok := r.GetSchema(schema.KindManifest)
	require.True(t, ok)
	assert.Contains(t, s, "pretty_name")
}
