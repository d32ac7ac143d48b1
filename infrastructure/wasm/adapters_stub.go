//go:build !wasip1

// Package wasm provides infrastructure adapters that interface with the WASM host environment.
package wasm

import (
	"fmt"
	"os"

	"github.com/reglet-dev/wasm-prover/domain/entities"
	"github.com/reglet-dev/wasm-prover/domain/errors"
)

// HostSink stub for native builds. Lines go to stderr.
type HostSink struct{}

func NewHostSink() *HostSink {
	return &HostSink{}
}

func (s *HostSink) Log(severity entities.Severity, message string) {
	fmt.Fprintf(os.Stderr, "[HOST-STUB] %s %s\n", severity, message)
}

func (s *HostSink) Mark(string) {}

func (s *HostSink) Measure(string, string, string) {}

// HostResultSink stub for native builds.
type HostResultSink struct{}

func NewHostResultSink() *HostResultSink {
	return &HostResultSink{}
}

func (s *HostResultSink) Deliver(entities.CallToken, uintptr, uint64) {
	panic("WASM result sink not available in native build")
}

// HostEntropy stub for native builds.
type HostEntropy struct{}

func NewHostEntropy() *HostEntropy {
	return &HostEntropy{}
}

func (e *HostEntropy) Fill([]byte) error {
	return errors.Unsupported(errors.PhaseEntropy, "host entropy not available in native build")
}
