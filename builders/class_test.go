package builders_test

import (
	"testing"

	"github.com/reglet-dev/zendext-sdk/builders"
	"github.com/reglet-dev/zendext-sdk/domain/entities"
	sdkErrors "github.com/reglet-dev/zendext-sdk/domain/errors"
	"github.com/reglet-dev/zendext-sdk/domain/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.ClassRef = (*builders.ClassEntry)(nil)

func newObject(class *builders.ClassEntry) (entities.Object, error) {
	return entities.Object{ClassName: class.ClassName(), Handle: 1}, nil
}

func TestClassBuilder_Build(t *testing.T) {
	a, _ := newAllocator(t)

	method, err := builders.NewFunctionBuilder(a, "getDetail", greet).Build()
	require.NoError(t, err)

	class, err := builders.NewClassBuilder(a, "DetailedException").
		Extends(builders.ExceptionClass()).
		Method(method).
		Property(builders.Property{Name: "detail", Flags: builders.MethodProtected, Default: strPtr("''")}).
		Constant("KIND", "'detail'").
		CreateObjectFunction(newObject).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "DetailedException", class.ClassName())
	assert.Same(t, builders.ExceptionClass(), class.Parent())
	assert.True(t, class.InstanceOf(builders.ThrowableInterface()))
	assert.False(t, class.InstanceOf(builders.ErrorClass()))
	require.Len(t, class.Methods(), 1)
	require.Len(t, class.Properties(), 1)
	require.Len(t, class.Constants(), 1)

	value, err := a.ReadString(class.Constants()[0].Value())
	require.NoError(t, err)
	assert.Equal(t, "'detail'", string(value))

	obj, err := class.CreateObject()(class)
	require.NoError(t, err)
	assert.Equal(t, "DetailedException", obj.ClassName)
}

func TestClassBuilder_AbstractMethodMakesClassAbstract(t *testing.T) {
	a, _ := newAllocator(t)

	method, err := builders.NewFunctionBuilder(a, "run", nil).
		Flags(builders.MethodPublic | builders.MethodAbstract).
		Build()
	require.NoError(t, err)

	class, err := builders.NewClassBuilder(a, "Task").Method(method).Build()
	require.NoError(t, err)
	assert.True(t, class.ClassFlags().Contains(entities.ClassImplicitAbstract))
	assert.False(t, class.ClassFlags().Instantiable())
}

func TestClassBuilder_Constraints(t *testing.T) {
	a, _ := newAllocator(t)

	finalBase, err := builders.NewClassBuilder(a, "Sealed").Flags(entities.ClassFinal).Build()
	require.NoError(t, err)
	m1, err := builders.NewFunctionBuilder(a, "run", greet).Build()
	require.NoError(t, err)
	m2, err := builders.NewFunctionBuilder(a, "RUN", greet).Build()
	require.NoError(t, err)

	tests := []struct {
		name  string
		build func(b *builders.ClassBuilder) *builders.ClassBuilder
		field string
	}{
		{
			name: "final interface",
			build: func(b *builders.ClassBuilder) *builders.ClassBuilder {
				return b.Flags(entities.ClassInterface | entities.ClassFinal)
			},
			field: "flags",
		},
		{
			name: "final abstract",
			build: func(b *builders.ClassBuilder) *builders.ClassBuilder {
				return b.Flags(entities.ClassExplicitAbstract | entities.ClassFinal)
			},
			field: "flags",
		},
		{
			name: "interface with constructor",
			build: func(b *builders.ClassBuilder) *builders.ClassBuilder {
				return b.Flags(entities.ClassInterface).CreateObjectFunction(newObject)
			},
			field: "create_object",
		},
		{
			name: "abstract with constructor",
			build: func(b *builders.ClassBuilder) *builders.ClassBuilder {
				return b.Flags(entities.ClassExplicitAbstract).CreateObjectFunction(newObject)
			},
			field: "create_object",
		},
		{
			name: "trait with constructor",
			build: func(b *builders.ClassBuilder) *builders.ClassBuilder {
				return b.Flags(entities.ClassTrait).CreateObjectFunction(newObject)
			},
			field: "create_object",
		},
		{
			name: "extends final",
			build: func(b *builders.ClassBuilder) *builders.ClassBuilder {
				return b.Extends(finalBase)
			},
			field: "extends",
		},
		{
			name: "extends interface",
			build: func(b *builders.ClassBuilder) *builders.ClassBuilder {
				return b.Extends(builders.ThrowableInterface())
			},
			field: "extends",
		},
		{
			name: "implements class",
			build: func(b *builders.ClassBuilder) *builders.ClassBuilder {
				return b.Implements(builders.ExceptionClass())
			},
			field: "implements",
		},
		{
			name: "duplicate method ignoring case",
			build: func(b *builders.ClassBuilder) *builders.ClassBuilder {
				return b.Method(m1).Method(m2)
			},
			field: "methods",
		},
		{
			name: "duplicate constant",
			build: func(b *builders.ClassBuilder) *builders.ClassBuilder {
				return b.Constant("A", "1").Constant("A", "2")
			},
			field: "constants",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, err := tt.build(builders.NewClassBuilder(a, "Widget")).Build()
			assert.Nil(t, class)

			var constraintErr *sdkErrors.BuilderConstraintError
			require.ErrorAs(t, err, &constraintErr)
			assert.Equal(t, "class", constraintErr.Builder)
			assert.Equal(t, tt.field, constraintErr.Field)
		})
	}
}

func TestClassBuilder_CannotExtendItself(t *testing.T) {
	a, _ := newAllocator(t)

	base, err := builders.NewClassBuilder(a, "Widget").Build()
	require.NoError(t, err)

	_, err = builders.NewClassBuilder(a, "widget").Extends(base).Build()
	var constraintErr *sdkErrors.BuilderConstraintError
	require.ErrorAs(t, err, &constraintErr)
	assert.Equal(t, "extends", constraintErr.Field)
}

func TestBuiltinClasses(t *testing.T) {
	tests := []struct {
		class    *builders.ClassEntry
		name     string
		throwErr bool
	}{
		{builders.ExceptionClass(), "Exception", false},
		{builders.ErrorExceptionClass(), "ErrorException", false},
		{builders.TypeErrorClass(), "TypeError", false},
		{builders.ValueErrorClass(), "ValueError", false},
		{builders.ArgumentCountErrorClass(), "ArgumentCountError", false},
		{builders.CompileErrorClass(), "CompileError", false},
		{builders.ThrowableInterface(), "Throwable", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.class)
			assert.Equal(t, tt.name, tt.class.ClassName())
			assert.True(t, tt.class.InstanceOf(builders.ThrowableInterface()))
			assert.Equal(t, tt.throwErr, !tt.class.ClassFlags().Instantiable())
			assert.True(t, tt.class.Name().IsNull(), "built-ins are host owned")
		})
	}

	looked, ok := builders.LookupClass("typeerror")
	require.True(t, ok)
	assert.Same(t, builders.TypeErrorClass(), looked)
	assert.True(t, builders.ArgumentCountErrorClass().InstanceOf(builders.TypeErrorClass()))

	_, ok = builders.LookupClass("NoSuchClass")
	assert.False(t, ok)
}

func TestClassBuilder_NulRollsBack(t *testing.T) {
	tests := []struct {
		name      string
		className string
		build     func(b *builders.ClassBuilder) *builders.ClassBuilder
		field     string
	}{
		{"class name", "De\x00tail", func(b *builders.ClassBuilder) *builders.ClassBuilder {
			return b.Constant("KIND", "'detail'")
		}, "name"},
		{"property name", "Detail", func(b *builders.ClassBuilder) *builders.ClassBuilder {
			return b.Property(builders.Property{Name: "ok"}).Property(builders.Property{Name: "b\x00d"})
		}, "properties[1]"},
		{"property default", "Detail", func(b *builders.ClassBuilder) *builders.ClassBuilder {
			return b.Property(builders.Property{Name: "ok", Default: strPtr("a\x00")})
		}, "properties[0].default"},
		{"constant value", "Detail", func(b *builders.ClassBuilder) *builders.ClassBuilder {
			return b.Property(builders.Property{Name: "ok", Default: strPtr("1")}).Constant("KIND", "de\x00tail")
		}, "constants[0].value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, engine := newAllocator(t)

			class, err := tt.build(builders.NewClassBuilder(a, tt.className)).Build()

			var convErr *sdkErrors.StringConversionError
			require.ErrorAs(t, err, &convErr)
			assert.Equal(t, tt.field, convErr.Field)
			assert.Nil(t, class)
			assert.Zero(t, engine.LiveBlocks())
		})
	}
}
