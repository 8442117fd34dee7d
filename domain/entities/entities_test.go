package entities_test

import (
	"testing"

	"github.com/reglet-dev/zendext-sdk/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLayout(t *testing.T) {
	tests := []struct {
		name    string
		size    uint32
		align   uint32
		want    entities.Layout
		wantErr string
	}{
		{"zero align means byte aligned", 16, 0, entities.Layout{Size: 16, Align: 1}, ""},
		{"max align", 24, entities.MaxAlign, entities.Layout{Size: 24, Align: 8}, ""},
		{"zero size", 0, 4, entities.Layout{Size: 0, Align: 4}, ""},
		{"not a power of two", 8, 6, entities.Layout{}, "not a power of two"},
		{"over max", 8, 16, entities.Layout{}, "exceeds host maximum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := entities.NewLayout(tt.size, tt.align)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPtr_AlignedTo(t *testing.T) {
	assert.True(t, entities.Ptr(64).AlignedTo(8))
	assert.False(t, entities.Ptr(66).AlignedTo(4))
	assert.True(t, entities.Ptr(67).AlignedTo(0))
	assert.True(t, entities.NullPtr.IsNull())
	assert.True(t, entities.HostString{}.IsNull())
	assert.Equal(t, entities.Ptr(96), entities.HostStringAt(96).Ptr())
}

func TestZendStr(t *testing.T) {
	var nilStr *entities.ZendStr
	assert.Equal(t, "", nilStr.String())
	assert.Equal(t, 0, nilStr.Len())
	assert.Nil(t, nilStr.Bytes())

	z := entities.NewZendStr([]byte("warning"))
	z.Set([]byte("notice!"))
	assert.Equal(t, "notice!", z.String())
	assert.Equal(t, 7, z.Len())
}

func TestClassFlags(t *testing.T) {
	assert.Equal(t, "none", entities.ClassFlags(0).String())
	assert.Equal(t, "final|readonly", (entities.ClassFinal | entities.ClassReadonly).String())

	assert.True(t, entities.ClassFinal.Instantiable())
	assert.False(t, entities.ClassInterface.Instantiable())
	assert.False(t, entities.ClassImplicitAbstract.Instantiable())
	assert.True(t, entities.ClassExplicitAbstract.IsAbstract())
	assert.True(t, (entities.ClassFinal | entities.ClassEnum).Contains(entities.ClassEnum))
	assert.False(t, entities.ClassFinal.Contains(entities.ClassFinal|entities.ClassEnum))
}

func TestErrorType(t *testing.T) {
	assert.Equal(t, "E_WARNING", entities.EWarning.String())
	assert.Equal(t, "E_ALL", entities.EAll.String())
	assert.Equal(t, "E_UNKNOWN", (entities.EWarning | entities.ENotice).String())

	assert.True(t, entities.EUserError.IsFatal())
	assert.True(t, entities.EParse.IsFatal())
	assert.False(t, entities.EDeprecated.IsFatal())
}

func TestParseDataType(t *testing.T) {
	for _, name := range []string{"mixed", "int", "float", "string", "void"} {
		typ, ok := entities.ParseDataType(name)
		require.True(t, ok, name)
		assert.Equal(t, name, typ.String())
	}

	typ, ok := entities.ParseDataType("integer")
	assert.False(t, ok)
	assert.Equal(t, entities.TypeMixed, typ)
	assert.Equal(t, "unknown", entities.DataType(200).String())
}
