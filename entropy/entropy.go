// Package entropy supplies the guest's cryptographic randomness.
//
// The guest has no random source of its own. Every request is delegated to
// the host through an installed EntropySource; without one, or when the
// host hands back nothing but zeros, the request fails instead of yielding
// predictable bytes.
package entropy

import (
	stdErrors "errors"
	"sync/atomic"

	"github.com/reglet-dev/wasm-prover/domain/errors"
	"github.com/reglet-dev/wasm-prover/domain/ports"
)

// MinCheckedLen is the shortest draw for which an all-zero result is
// treated as a broken source rather than an unlucky draw. Shorter requests
// are drawn at this length and truncated, so an untouched buffer is always
// caught.
const MinCheckedLen = 32

var (
	// ErrUnsupported is returned when no entropy source is installed.
	ErrUnsupported = errors.Unsupported(errors.PhaseEntropy, "no entropy source installed")

	// ErrDegenerate is returned when the source filled a buffer with zeros.
	ErrDegenerate = errors.New(errors.PhaseEntropy, errors.KindDegenerate).
			Detail("entropy source returned only zero bytes").
			Build()
)

// Bridge routes entropy requests to a source.
type Bridge struct {
	source atomic.Pointer[sourceHolder]
}

type sourceHolder struct {
	src ports.EntropySource
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithSource installs src at construction.
func WithSource(src ports.EntropySource) Option {
	return func(b *Bridge) {
		if src != nil {
			b.source.Store(&sourceHolder{src: src})
		}
	}
}

// NewBridge creates a Bridge with the given options applied.
func NewBridge(opts ...Option) *Bridge {
	b := &Bridge{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Install replaces the bridge's source.
func (b *Bridge) Install(src ports.EntropySource) {
	if src == nil {
		b.source.Store(nil)
		return
	}
	b.source.Store(&sourceHolder{src: src})
}

// Fill writes len(buf) bytes of host entropy into buf. The buffer is
// zeroed before the source sees it, and a draw that comes back all zero is
// rejected, so a source that silently writes nothing never yields
// predictable bytes.
func (b *Bridge) Fill(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	h := b.source.Load()
	if h == nil {
		return ErrUnsupported
	}

	draw := buf
	if len(buf) < MinCheckedLen {
		draw = make([]byte, MinCheckedLen)
	}
	clear(draw)
	if err := h.src.Fill(draw); err != nil {
		clear(buf)
		return errors.New(errors.PhaseEntropy, errors.KindCollaborator).
			Detail("entropy source failed").
			Cause(err).
			Build()
	}
	if allZero(draw) {
		clear(buf)
		return ErrDegenerate
	}
	copy(buf, draw)
	return nil
}

func allZero(buf []byte) bool {
	for _, c := range buf {
		if c != 0 {
			return false
		}
	}
	return true
}

var defaultBridge = NewBridge()

// Default returns the process-wide bridge used by the guest exports.
func Default() *Bridge {
	return defaultBridge
}

// Install installs src on the default bridge.
func Install(src ports.EntropySource) {
	defaultBridge.Install(src)
}

// Fill fills buf from the default bridge.
func Fill(buf []byte) error {
	return defaultBridge.Fill(buf)
}

// IsUnavailable reports whether err means no usable entropy was produced.
func IsUnavailable(err error) bool {
	return stdErrors.Is(err, ErrUnsupported) || stdErrors.Is(err, ErrDegenerate)
}
