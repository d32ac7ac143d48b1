//go:build wasip1

// Package wasm provides infrastructure adapters that interface with the WASM host environment.
package wasm

// Emit one UTF-8 log line at the given severity.
//
//go:wasmimport host log
//nolint:revive // intentional snake_case to match WASM import convention
func host_log(severity uint32, ptr, length uint64)

// Record a named timing mark.
//
//go:wasmimport host mark
func host_mark(ptr, length uint64)

// Record the span between two marks.
//
//go:wasmimport host measure
func host_measure(namePtr, nameLen, startPtr, startLen, endPtr, endLen uint64)

// Hand a result region to the host; ownership moves with it.
//
//go:wasmimport host deliver_result
func host_deliver_result(token, ptr, length uint64)

// Ask the host to fill a region with random bytes.
//
//go:wasmimport host fill_entropy
func host_fill_entropy(ptr, length uint64)
