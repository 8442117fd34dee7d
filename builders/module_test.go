package builders_test

import (
	"fmt"
	"testing"

	"github.com/reglet-dev/zendext-sdk/builders"
	sdkErrors "github.com/reglet-dev/zendext-sdk/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moduleStartup(int, int) error { return nil }

func TestModuleBuilder_Build(t *testing.T) {
	a, _ := newAllocator(t)

	fn, err := builders.NewFunctionBuilder(a, "hello_greet", greet).Build()
	require.NoError(t, err)

	module, err := builders.NewModuleBuilder(a, "hello", "0.1.0").
		Function(fn).
		StartupFunction(moduleStartup).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "hello", module.GoName())
	assert.Equal(t, uint32(builders.ModuleAPINo), module.APINo())
	assert.Equal(t, funcPtr(moduleStartup), funcPtr(module.Startup()))
	assert.Nil(t, module.Shutdown())
	assert.Nil(t, module.Info())

	got, ok := module.Function("HELLO_GREET")
	require.True(t, ok)
	assert.Same(t, fn, got)

	buildID, err := a.ReadString(module.BuildID())
	require.NoError(t, err)
	assert.Equal(t, builders.DefaultBuildID, string(buildID))

	version, err := a.ReadString(module.Version())
	require.NoError(t, err)
	assert.Equal(t, "0.1.0", string(version))
}

func TestModuleBuilder_IdenticalSettersIdenticalRecords(t *testing.T) {
	build := func() string {
		a, _ := newAllocator(t)
		m, err := builders.NewModuleBuilder(a, "hello", "0.1.0").
			StartupFunction(moduleStartup).
			BuildID("API20230831,TS").
			Build()
		require.NoError(t, err)
		return fmt.Sprintf("%+v", *m)
	}
	assert.Equal(t, build(), build())
}

func TestModuleBuilder_Constraints(t *testing.T) {
	a, engine := newAllocator(t)

	f1, err := builders.NewFunctionBuilder(a, "dup", greet).Build()
	require.NoError(t, err)
	f2, err := builders.NewFunctionBuilder(a, "DUP", greet).Build()
	require.NoError(t, err)
	live := engine.LiveBlocks()

	tests := []struct {
		name  string
		b     *builders.ModuleBuilder
		field string
	}{
		{"empty name", builders.NewModuleBuilder(a, "", "1.0"), "name"},
		{"empty build id", builders.NewModuleBuilder(a, "m", "1.0").BuildID(""), "build_id"},
		{"duplicate function", builders.NewModuleBuilder(a, "m", "1.0").Function(f1, f2), "functions"},
		{"nil function", builders.NewModuleBuilder(a, "m", "1.0").Function(nil), "functions"},
		{"nil class", builders.NewModuleBuilder(a, "m", "1.0").Class(nil), "classes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			var constraintErr *sdkErrors.BuilderConstraintError
			require.ErrorAs(t, err, &constraintErr)
			assert.Equal(t, "module", constraintErr.Builder)
			assert.Equal(t, tt.field, constraintErr.Field)
		})
	}
	assert.Equal(t, live, engine.LiveBlocks())
}

func TestModuleBuilder_NulInVersion(t *testing.T) {
	a, engine := newAllocator(t)

	_, err := builders.NewModuleBuilder(a, "hello", "0.1\x00").Build()
	var convErr *sdkErrors.StringConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "version", convErr.Field)
	assert.Zero(t, engine.LiveBlocks())
}
