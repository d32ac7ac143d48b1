package abi

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
	"unsafe"

	"github.com/reglet-dev/wasm-prover/domain/entities"
	"github.com/reglet-dev/wasm-prover/domain/errors"
)

const maxAddr = uint64(^uintptr(0))

// Region is a buffer reference that arrived from the host: a start address
// in linear memory and a byte length.
type Region struct {
	Addr uintptr
	Len  uint64
}

// RegionFromWire narrows a boundary (ptr, len) pair into a Region.
func RegionFromWire(ptr, length uint64) (Region, error) {
	addr, err := AddrFromWire(ptr)
	if err != nil {
		return Region{}, err
	}
	if addr == 0 && length > 0 {
		return Region{}, errors.NilPointer(errors.PhaseDecode, length)
	}
	return Region{Addr: addr, Len: length}, nil
}

// Bytes returns a view of the region. See View.
func (r Region) Bytes() ([]byte, error) {
	return View(r.Addr, r.Len)
}

// Text returns the region decoded as UTF-8. See Text.
func (r Region) Text() (string, error) {
	return Text(r.Addr, r.Len)
}

// AddrFromWire narrows a boundary address to uintptr.
func AddrFromWire(v uint64) (uintptr, error) {
	if v > maxAddr {
		return 0, errors.Overflow(errors.PhaseDecode, v, "uintptr")
	}
	return uintptr(v), nil
}

// SizeFromWire narrows a boundary length to int.
func SizeFromWire(v uint64) (int, error) {
	if v > math.MaxInt {
		return 0, errors.Overflow(errors.PhaseDecode, v, "int")
	}
	return int(v), nil
}

// View returns the n bytes starting at addr without copying.
//
// This is the only place an address becomes a slice. The caller guarantees
// the region is valid linear memory that is neither mutated nor reused
// until the view is dropped; none of that can be checked here.
func View(addr uintptr, n uint64) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}
	if addr == 0 {
		return nil, errors.NilPointer(errors.PhaseDecode, n)
	}
	size, err := SizeFromWire(n)
	if err != nil {
		return nil, err
	}
	if n-1 > maxAddr-uint64(addr) {
		return nil, errors.New(errors.PhaseDecode, errors.KindOverflow).
			Value(n).
			Detail("region at %#x with length %d wraps the address space", addr, n).
			Build()
	}
	//nolint:gosec // G103: Valid unsafe.Pointer use for linear memory access
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

// Text returns the n bytes at addr as a string, copying them out of linear
// memory. Bytes that are not well-formed UTF-8 are a boundary violation.
func Text(addr uintptr, n uint64) (string, error) {
	b, err := View(addr, n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.InvalidUTF8(errors.PhaseDecode, b)
	}
	return string(b), nil
}

// Uint64s reads count little-endian u64 words starting at addr.
func Uint64s(addr uintptr, count uint64) ([]uint64, error) {
	if count > math.MaxUint64/entities.ArgWidth {
		return nil, errors.Overflow(errors.PhaseDecode, count, "argument byte length")
	}
	b, err := View(addr, count*entities.ArgWidth)
	if err != nil {
		return nil, err
	}
	words := make([]uint64, count)
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(b[i*entities.ArgWidth:])
	}
	return words, nil
}

// AddrToWire widens a native address for the boundary.
func AddrToWire(addr uintptr) uint64 {
	return uint64(addr)
}
