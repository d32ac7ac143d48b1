//go:build wasip1

package wasm

import (
	"runtime"

	"github.com/reglet-dev/wasm-prover/domain/entities"
	"github.com/reglet-dev/wasm-prover/domain/ports"
)

// Compile-time interface compliance check
var _ ports.DiagnosticSink = (*HostSink)(nil)

// HostSink implements ports.DiagnosticSink over the log, mark and measure
// host imports.
type HostSink struct{}

// NewHostSink creates a new HostSink.
func NewHostSink() *HostSink {
	return &HostSink{}
}

// Log sends one line to the host.
func (s *HostSink) Log(severity entities.Severity, message string) {
	ptr, n := stringToWire(message)
	host_log(uint32(severity), ptr, n)
	runtime.KeepAlive(message)
}

// Mark records a named point in time.
func (s *HostSink) Mark(name string) {
	ptr, n := stringToWire(name)
	host_mark(ptr, n)
	runtime.KeepAlive(name)
}

// Measure records the span between two marks.
func (s *HostSink) Measure(name, startMark, endMark string) {
	np, nl := stringToWire(name)
	sp, sl := stringToWire(startMark)
	ep, el := stringToWire(endMark)
	host_measure(np, nl, sp, sl, ep, el)
	runtime.KeepAlive(name)
	runtime.KeepAlive(startMark)
	runtime.KeepAlive(endMark)
}
