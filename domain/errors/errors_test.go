package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/reglet-dev/zendext-sdk/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocationError(t *testing.T) {
	err := &AllocationError{Operation: "emalloc", Size: 64, Align: 8}
	assert.Equal(t, "host emalloc of 64 bytes (align 8) failed", err.Error())

	err.Reason = "null pointer"
	assert.Equal(t, "host emalloc of 64 bytes (align 8) failed: null pointer", err.Error())

	detail := err.ToErrorDetail()
	assert.Equal(t, "allocation", detail.Type)
	assert.False(t, detail.Recoverable)
}

func TestInvalidExceptionError(t *testing.T) {
	err := &InvalidExceptionError{Class: "Throwable", Flags: entities.ClassInterface}

	assert.Equal(t, "cannot throw Throwable: class flags interface do not allow instantiation", err.Error())

	var target *InvalidExceptionError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &target))
	assert.Equal(t, entities.ClassInterface, target.Flags)
	assert.True(t, err.ToErrorDetail().Recoverable)
}

func TestStringConversionError(t *testing.T) {
	err := &StringConversionError{Field: "name", Position: 3}
	assert.Equal(t, "field name: embedded NUL at byte 3", err.Error())

	err = &StringConversionError{Position: 0}
	assert.Equal(t, "embedded NUL at byte 0", err.Error())
}

func TestBuilderConstraintError(t *testing.T) {
	err := &BuilderConstraintError{Builder: "class", Field: "create_object", Reason: "interfaces cannot be instantiated"}
	assert.Equal(t, "class builder: create_object: interfaces cannot be instantiated", err.Error())

	err = &BuilderConstraintError{Builder: "module", Reason: "name is required"}
	assert.Equal(t, "module builder: name is required", err.Error())
	assert.Equal(t, "builder", err.ToErrorDetail().Type)
}

func TestConfigError(t *testing.T) {
	baseErr := fmt.Errorf("must be non-empty")
	err := &ConfigError{Field: "name", Err: baseErr}

	assert.Equal(t, "config validation failed for field 'name': must be non-empty", err.Error())
	assert.True(t, errors.Is(err, baseErr))
}

func TestSchemaError(t *testing.T) {
	baseErr := fmt.Errorf("bad schema")
	err := &SchemaError{Type: "ExtensionManifest", Err: baseErr}

	assert.Equal(t, "schema error for type ExtensionManifest: bad schema", err.Error())
	assert.True(t, errors.Is(err, baseErr))
}

func TestToErrorDetail(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, ToErrorDetail(nil))
	})

	t.Run("detailed error", func(t *testing.T) {
		detail := ToErrorDetail(fmt.Errorf("finish: %w", &StringConversionError{Field: "pretty_name", Position: 2}))
		require.NotNil(t, detail)
		assert.Equal(t, "string_conversion", detail.Type)
		assert.Equal(t, "pretty_name", detail.Code)
	})

	t.Run("entity passthrough", func(t *testing.T) {
		in := entities.NewErrorDetail("builder", "boom")
		assert.Same(t, in, ToErrorDetail(in))
	})

	t.Run("generic", func(t *testing.T) {
		detail := ToErrorDetail(errors.New("plain"))
		assert.Equal(t, "internal", detail.Type)
		assert.Equal(t, "plain", detail.Message)
	})
}
