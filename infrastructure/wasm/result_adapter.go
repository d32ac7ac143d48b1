//go:build wasip1

package wasm

import (
	"github.com/reglet-dev/wasm-prover/domain/entities"
	"github.com/reglet-dev/wasm-prover/domain/ports"
	"github.com/reglet-dev/wasm-prover/internal/abi"
)

// Compile-time interface compliance check
var _ ports.ResultSink = (*HostResultSink)(nil)

// HostResultSink implements ports.ResultSink over the deliver_result import.
type HostResultSink struct{}

// NewHostResultSink creates a new HostResultSink.
func NewHostResultSink() *HostResultSink {
	return &HostResultSink{}
}

// Deliver hands the region to the host, which frees it once read.
func (s *HostResultSink) Deliver(token entities.CallToken, addr uintptr, length uint64) {
	host_deliver_result(uint64(token), abi.AddrToWire(addr), length)
}
