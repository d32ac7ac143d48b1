//go:build wasip1

package wasm

import (
	"unsafe"

	"github.com/reglet-dev/wasm-prover/internal/abi"
)

// stringToWire returns the address and length of s for a host import.
// The caller keeps s alive until the import returns.
func stringToWire(s string) (uint64, uint64) {
	if len(s) == 0 {
		return 0, 0
	}
	//nolint:gosec // G103: Valid unsafe.Pointer use for linear memory access
	return abi.AddrToWire(uintptr(unsafe.Pointer(unsafe.StringData(s)))), uint64(len(s))
}

// bytesToWire is stringToWire for a byte slice.
func bytesToWire(b []byte) (uint64, uint64) {
	if len(b) == 0 {
		return 0, 0
	}
	//nolint:gosec // G103: Valid unsafe.Pointer use for linear memory access
	return abi.AddrToWire(uintptr(unsafe.Pointer(unsafe.SliceData(b)))), uint64(len(b))
}
