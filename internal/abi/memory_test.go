package abi

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/wasm-prover/domain/errors"
)

// writeRegion allocates a region holding data and returns its address.
func writeRegion(t *testing.T, a *Allocator, data []byte) uintptr {
	t.Helper()
	addr, err := a.Allocate(uint64(len(data)))
	require.NoError(t, err)
	view, err := View(addr, uint64(len(data)))
	require.NoError(t, err)
	copy(view, data)
	return addr
}

func TestText_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"ascii", `{"name":"is_prime"}`},
		{"multibyte", "prüfung ✓ 証明"},
		{"emoji", "🦀🐹"},
		{"empty", ""},
	}

	a := NewAllocator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := writeRegion(t, a, []byte(tt.text))
			got, err := Text(addr, uint64(len(tt.text)))
			require.NoError(t, err)
			assert.Equal(t, tt.text, got)
		})
	}
}

func TestText_InvalidUTF8(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"lone continuation", []byte{0x80}},
		{"truncated sequence", []byte{'o', 'k', 0xe2, 0x82}},
		{"overlong encoding", []byte{0xc0, 0xaf}},
		{"surrogate half", []byte{0xed, 0xa0, 0x80}},
	}

	a := NewAllocator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := writeRegion(t, a, tt.data)
			_, err := Text(addr, uint64(len(tt.data)))
			require.Error(t, err)
			assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindInvalidUTF8})
			assert.True(t, errors.IsFatal(err))
		})
	}
}

func TestView_ZeroLengthNeverDereferences(t *testing.T) {
	view, err := View(0, 0)
	require.NoError(t, err)
	assert.Empty(t, view)

	view, err = View(0xdeadbeef, 0)
	require.NoError(t, err)
	assert.Empty(t, view)
}

func TestView_NullWithLength(t *testing.T) {
	_, err := View(0, 16)
	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindNilPointer})
}

func TestView_LengthTooLarge(t *testing.T) {
	_, err := View(8, math.MaxUint64)
	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindOverflow})
}

func TestView_SharesMemory(t *testing.T) {
	a := NewAllocator()
	addr := writeRegion(t, a, []byte("abcd"))

	first, err := View(addr, 4)
	require.NoError(t, err)
	first[0] = 'z'

	second, err := View(addr, 4)
	require.NoError(t, err)
	assert.Equal(t, "zbcd", string(second))
}

func TestUint64s(t *testing.T) {
	a := NewAllocator()
	want := []uint64{0, 1, 100, math.MaxUint64, 1 << 63}

	buf := make([]byte, len(want)*8)
	for i, w := range want {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	addr := writeRegion(t, a, buf)

	got, err := Uint64s(addr, uint64(len(want)))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	empty, err := Uint64s(0, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUint64s_CountOverflow(t *testing.T) {
	_, err := Uint64s(8, math.MaxUint64/4)
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
}

func TestRegionFromWire(t *testing.T) {
	r, err := RegionFromWire(64, 12)
	require.NoError(t, err)
	assert.Equal(t, Region{Addr: 64, Len: 12}, r)

	_, err = RegionFromWire(0, 12)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindNilPointer})

	r, err = RegionFromWire(0, 0)
	require.NoError(t, err)
	b, err := r.Bytes()
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestSizeFromWire(t *testing.T) {
	n, err := SizeFromWire(4096)
	require.NoError(t, err)
	assert.Equal(t, 4096, n)

	_, err = SizeFromWire(math.MaxUint64)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindOverflow})
}
