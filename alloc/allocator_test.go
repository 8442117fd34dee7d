package alloc_test

import (
	"testing"

	"github.com/reglet-dev/zendext-sdk/alloc"
	"github.com/reglet-dev/zendext-sdk/domain/entities"
	sdkErrors "github.com/reglet-dev/zendext-sdk/domain/errors"
	"github.com/reglet-dev/zendext-sdk/testing/hosttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmallocEfree(t *testing.T) {
	engine := hosttest.NewEngine()
	a := alloc.New(engine)

	ptr := a.Emalloc(entities.Layout{Size: 24, Align: 8})
	require.False(t, ptr.IsNull())
	assert.True(t, ptr.AlignedTo(8))
	assert.Equal(t, 1, engine.LiveBlocks())

	stats := a.Stats()
	assert.Equal(t, int64(1), stats.Live)
	assert.Equal(t, uint64(24), stats.Bytes)

	a.Efree(ptr)
	assert.Equal(t, 0, engine.LiveBlocks())
	assert.Equal(t, int64(0), a.Stats().Live)
}

func TestStats_CountsEstrdup(t *testing.T) {
	a := alloc.New(hosttest.NewEngine())

	a.Emalloc(entities.LayoutOf(10))
	s, err := a.EstrdupString("hello")
	require.NoError(t, err)

	stats := a.Stats()
	assert.Equal(t, uint64(2), stats.Allocations)
	assert.Equal(t, int64(2), stats.Live)
	assert.Equal(t, uint64(16), stats.Bytes, "ten bytes plus hello and its terminator")

	a.Efree(s.Ptr())
	assert.Equal(t, uint64(16), a.Stats().Bytes)
}

func TestEmalloc_HostExhausted(t *testing.T) {
	engine := hosttest.NewEngine(hosttest.WithMemoryLimit(16))
	a := alloc.New(engine)

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected allocator to panic")
		allocErr, ok := r.(*sdkErrors.AllocationError)
		require.True(t, ok, "panic value %T", r)
		assert.Equal(t, "emalloc", allocErr.Operation)
		assert.Equal(t, uint32(32), allocErr.Size)
	}()
	a.Emalloc(entities.LayoutOf(32))
}

func TestEmalloc_RejectsUnsupportedAlignment(t *testing.T) {
	a := alloc.New(hosttest.NewEngine())

	for _, align := range []uint32{3, 16, 64} {
		assert.Panics(t, func() {
			a.Emalloc(entities.Layout{Size: 8, Align: align})
		}, "align %d", align)
	}
}

func TestEstrdup_RoundTrip(t *testing.T) {
	engine := hosttest.NewEngine()
	a := alloc.New(engine)

	inputs := [][]byte{
		[]byte("ext_php"),
		[]byte(""),
		[]byte("memory_limit=128M\n"),
		{0xff, 0xfe, 'x'},
		[]byte("ünïcödé"),
	}

	for _, in := range inputs {
		s, err := a.Estrdup(in)
		require.NoError(t, err)
		require.False(t, s.IsNull())

		raw, ok := engine.Read(s.Ptr(), uint32(len(in)+1))
		require.True(t, ok)
		assert.Equal(t, byte(0), raw[len(in)], "terminator for %q", in)

		back, err := a.ReadString(s)
		require.NoError(t, err)
		assert.Equal(t, string(in), string(back))
	}
	assert.Equal(t, len(inputs), engine.LiveBlocks())
}

func TestEstrdup_EmbeddedNul(t *testing.T) {
	engine := hosttest.NewEngine()
	a := alloc.New(engine)

	_, err := a.Estrdup([]byte("bad\x00name"))
	require.Error(t, err)

	var convErr *sdkErrors.StringConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, 3, convErr.Position)
	assert.Empty(t, engine.Sites(), "host must not be called")
}

func TestEstrdup_ScratchIsNotRetained(t *testing.T) {
	engine := hosttest.NewEngine()
	a := alloc.New(engine)

	first, err := a.EstrdupString("a-long-first-string")
	require.NoError(t, err)
	second, err := a.EstrdupString("b")
	require.NoError(t, err)

	got, err := a.ReadString(first)
	require.NoError(t, err)
	assert.Equal(t, "a-long-first-string", string(got))

	got, err = a.ReadString(second)
	require.NoError(t, err)
	assert.Equal(t, "b", string(got))
}

func TestEstrdup_HostExhausted(t *testing.T) {
	a := alloc.New(hosttest.NewEngine(hosttest.WithMemoryLimit(4)))
	assert.Panics(t, func() {
		_, _ = a.EstrdupString("too long for the arena")
	})
}

func TestAllocationSites(t *testing.T) {
	engine := hosttest.NewEngine()
	a := alloc.New(engine)

	a.Emalloc(entities.LayoutOf(4))
	sites := engine.Sites()
	require.Len(t, sites, 1)

	if alloc.DebugBuild {
		assert.Contains(t, sites[0].File, "allocator_test.go")
		assert.NotZero(t, sites[0].Line)
	} else {
		assert.Empty(t, sites[0].File)
	}
}
