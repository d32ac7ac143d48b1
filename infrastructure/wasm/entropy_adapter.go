//go:build wasip1

package wasm

import (
	"runtime"

	"github.com/reglet-dev/wasm-prover/domain/ports"
)

// Compile-time interface compliance check
var _ ports.EntropySource = (*HostEntropy)(nil)

// HostEntropy implements ports.EntropySource over the fill_entropy import.
// The import has no failure channel; the entropy bridge detects a host that
// left the buffer untouched.
type HostEntropy struct{}

// NewHostEntropy creates a new HostEntropy.
func NewHostEntropy() *HostEntropy {
	return &HostEntropy{}
}

// Fill asks the host to write len(buf) random bytes into buf.
func (e *HostEntropy) Fill(buf []byte) error {
	ptr, n := bytesToWire(buf)
	if n == 0 {
		return nil
	}
	host_fill_entropy(ptr, n)
	runtime.KeepAlive(buf)
	return nil
}
