package abi

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/wasm-prover/domain/errors"
)

func TestAllocator_AllocateFree(t *testing.T) {
	a := NewAllocator()

	addr, err := a.Allocate(1024)
	require.NoError(t, err)
	require.NotZero(t, addr)

	count, bytes := a.Stats()
	assert.Equal(t, 1, count)
	assert.Equal(t, uint64(1024), bytes)

	size, ok := a.SizeOf(addr)
	assert.True(t, ok)
	assert.Equal(t, uint64(1024), size)

	require.NoError(t, a.Free(addr, 1024))

	count, bytes = a.Stats()
	assert.Equal(t, 0, count)
	assert.Zero(t, bytes)
}

func TestAllocator_Alignment(t *testing.T) {
	a := NewAllocator()
	for _, size := range []uint64{1, 3, 7, 8, 9, 31, 4097} {
		addr, err := a.Allocate(size)
		require.NoError(t, err)
		assert.Zero(t, addr%8, "size %d not 8-aligned", size)
	}
}

func TestAllocator_ZeroSizeSentinel(t *testing.T) {
	a := NewAllocator()

	first, err := a.Allocate(0)
	require.NoError(t, err)
	second, err := a.Allocate(0)
	require.NoError(t, err)

	assert.NotZero(t, first)
	assert.Equal(t, first, second)

	count, _ := a.Stats()
	assert.Zero(t, count, "sentinel must not be tracked")

	assert.NoError(t, a.Free(first, 0))
	assert.NoError(t, a.Free(first, 8))
}

func TestAllocator_FreeNoOps(t *testing.T) {
	a := NewAllocator()
	assert.NoError(t, a.Free(0, 0))
	assert.NoError(t, a.Free(0, 64))

	addr, err := a.Allocate(64)
	require.NoError(t, err)
	assert.NoError(t, a.Free(addr, 0))

	count, _ := a.Stats()
	assert.Equal(t, 1, count, "free with size 0 must not release the region")
}

func TestAllocator_ReuseAfterFree(t *testing.T) {
	a := NewAllocator()

	addr, err := a.Allocate(256)
	require.NoError(t, err)
	view, err := View(addr, 256)
	require.NoError(t, err)
	view[0] = 0xff
	require.NoError(t, a.Free(addr, 256))

	again, err := a.Allocate(256)
	require.NoError(t, err)
	assert.Equal(t, addr, again, "same-size allocation should reuse the freed region")

	view, err = View(again, 256)
	require.NoError(t, err)
	assert.Zero(t, view[0], "reused region must be zeroed")
}

func TestAllocator_NoReuseWhenRetentionDisabled(t *testing.T) {
	a := NewAllocator(WithMaxRetainedBytes(0))

	addr, err := a.Allocate(128)
	require.NoError(t, err)
	require.NoError(t, a.Free(addr, 128))

	assert.Empty(t, a.freeLists[128])
}

func TestAllocator_InvalidFree(t *testing.T) {
	a := NewAllocator()

	addr, err := a.Allocate(32)
	require.NoError(t, err)

	t.Run("size mismatch", func(t *testing.T) {
		err := a.Free(addr, 16)
		require.Error(t, err)
		assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseAllocate, Kind: errors.KindInvalidInput})

		count, _ := a.Stats()
		assert.Equal(t, 1, count, "mismatched free must leave the region live")
	})

	t.Run("double free", func(t *testing.T) {
		require.NoError(t, a.Free(addr, 32))
		err := a.Free(addr, 32)
		assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseAllocate, Kind: errors.KindInvalidInput})
	})

	t.Run("unknown address", func(t *testing.T) {
		err := a.Free(addr+1, 32)
		assert.ErrorContains(t, err, "unknown address")
	})
}

func TestAllocator_Limit(t *testing.T) {
	a := NewAllocator(WithMaxTotalAllocations(1024))

	addr, err := a.Allocate(512)
	require.NoError(t, err)

	_, err = a.Allocate(600)
	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseAllocate, Kind: errors.KindAllocation})
	assert.True(t, errors.IsFatal(err))

	require.NoError(t, a.Free(addr, 512))
	_, err = a.Allocate(1024)
	assert.NoError(t, err)
}

func TestAllocator_OversizedRequest(t *testing.T) {
	a := NewAllocator()
	_, err := a.Allocate(^uint64(0))
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
}

func TestAllocator_ZeroLimitIgnored(t *testing.T) {
	a := NewAllocator(WithMaxTotalAllocations(0))
	assert.Equal(t, uint64(DefaultMaxTotalAllocations), a.maxTotal)
}

func TestAllocator_Reset(t *testing.T) {
	a := NewAllocator()
	for i := 0; i < 4; i++ {
		_, err := a.Allocate(64)
		require.NoError(t, err)
	}
	a.Reset()

	count, bytes := a.Stats()
	assert.Zero(t, count)
	assert.Zero(t, bytes)
}

func TestAllocator_Concurrency(t *testing.T) {
	a := NewAllocator()

	var wg sync.WaitGroup
	iterations := 100

	wg.Add(iterations)
	for i := 0; i < iterations; i++ {
		go func(i int) {
			defer wg.Done()
			size := uint64(16 + i%4*8)
			addr, err := a.Allocate(size)
			if !assert.NoError(t, err) {
				return
			}
			assert.NoError(t, a.Free(addr, size))
		}(i)
	}
	wg.Wait()

	count, _ := a.Stats()
	assert.Equal(t, 0, count, "expected 0 allocations after concurrent operations")
}

func BenchmarkAllocator_AllocateFree(b *testing.B) {
	a := NewAllocator()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		addr, err := a.Allocate(4096)
		if err != nil {
			b.Fatal(err)
		}
		if err := a.Free(addr, 4096); err != nil {
			b.Fatal(err)
		}
	}
}
