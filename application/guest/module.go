package guest

import (
	"github.com/reglet-dev/wasm-prover/application/protocol"
	"github.com/reglet-dev/wasm-prover/domain/entities"
	"github.com/reglet-dev/wasm-prover/domain/ports"
	"github.com/reglet-dev/wasm-prover/entropy"
	"github.com/reglet-dev/wasm-prover/internal/abi"
)

// Module owns the ports one guest instance calls through.
type Module struct {
	prover  ports.Prover
	results ports.ResultSink
	alloc   ports.Allocator
	entropy ports.EntropySource
	cfg     entities.ProofConfig
}

// Option configures a Module.
type Option func(*Module)

// WithAllocator sets the allocator result regions are drawn from.
// Defaults to abi.Default(), the allocator behind the allocate export.
func WithAllocator(a ports.Allocator) Option {
	return func(m *Module) {
		if a != nil {
			m.alloc = a
		}
	}
}

// WithEntropy sets the source the self-test draws from.
// Defaults to entropy.Default().
func WithEntropy(src ports.EntropySource) Option {
	return func(m *Module) {
		if src != nil {
			m.entropy = src
		}
	}
}

// WithProofConfig replaces the proof configuration used by prove, verify,
// and self-test. Production builds keep entities.SecureProofConfig.
func WithProofConfig(cfg entities.ProofConfig) Option {
	return func(m *Module) {
		m.cfg = cfg
	}
}

// New creates a Module that proves with prover and delivers through results.
func New(prover ports.Prover, results ports.ResultSink, opts ...Option) *Module {
	if prover == nil {
		panic("guest: nil prover")
	}
	if results == nil {
		panic("guest: nil result sink")
	}
	m := &Module{
		prover:  prover,
		results: results,
		alloc:   abi.Default(),
		entropy: entropy.Default(),
		cfg:     entities.SecureProofConfig(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ProofConfig returns the configuration prove and verify run under.
func (m *Module) ProofConfig() entities.ProofConfig {
	return m.cfg
}

func (m *Module) deps() protocol.Deps {
	return protocol.Deps{Allocator: m.alloc, Results: m.results}
}
