//go:build wasip1

package abi

import (
	"log/slog"
)

// allocate reserves size bytes for the host to write into and returns the
// address. A refused allocation is fatal: the error is logged and the call
// aborts.
//
//go:wasmexport allocate
func allocate(size uint64) uint64 {
	addr, err := defaultAllocator.Allocate(size)
	if err != nil {
		slog.Error("allocate failed", "size", size, "error", err)
		panic(err)
	}
	return AddrToWire(addr)
}

// free releases a region previously returned by allocate or delivered with
// a result. A bad free is reported as a warning and otherwise ignored.
//
//go:wasmexport free
func free(addr, size uint64) {
	native, err := AddrFromWire(addr)
	if err == nil {
		err = defaultAllocator.Free(native, size)
	}
	if err != nil {
		slog.Warn("free rejected", "addr", addr, "size", size, "error", err)
	}
}
