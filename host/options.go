package host

import (
	"crypto/rand"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/reglet-dev/wasm-prover/domain/entities"
)

const (
	// DefaultCallTimeout bounds a single export call. Proving under the
	// secure configuration grinds a 26-bit proof of work, so this is generous.
	DefaultCallTimeout = 5 * time.Minute

	// DefaultMemoryLimitPages caps guest memory at 1 GiB (64 KiB pages).
	DefaultMemoryLimitPages = 16384

	// MaxEntropyRequest is the largest fill_entropy request served.
	MaxEntropyRequest = 1 << 20
)

type runnerConfig struct {
	logger           *zap.Logger
	entropy          io.Reader
	timeline         *Timeline
	callTimeout      time.Duration
	memoryLimitPages uint32
	guestSeverity    entities.Severity
}

func defaultRunnerConfig() runnerConfig {
	return runnerConfig{
		logger:           zap.NewNop(),
		entropy:          rand.Reader,
		callTimeout:      DefaultCallTimeout,
		memoryLimitPages: DefaultMemoryLimitPages,
		guestSeverity:    entities.SeverityTrace,
	}
}

// Option defines a functional option for configuring the Runner.
type Option func(*runnerConfig)

// WithLogger sets the logger guest log lines and host diagnostics go to.
func WithLogger(logger *zap.Logger) Option {
	return func(c *runnerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEntropySource sets the reader fill_entropy draws from.
// Defaults to crypto/rand.
func WithEntropySource(r io.Reader) Option {
	return func(c *runnerConfig) {
		if r != nil {
			c.entropy = r
		}
	}
}

// WithTimeline records guest marks and measures into t.
func WithTimeline(t *Timeline) Option {
	return func(c *runnerConfig) {
		c.timeline = t
	}
}

// WithCallTimeout bounds each export call. An expired call closes the
// instance it ran on. Zero disables the timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(c *runnerConfig) {
		c.callTimeout = d
	}
}

// WithMemoryLimitPages caps the guest's linear memory. Zero is ignored.
func WithMemoryLimitPages(pages uint32) Option {
	return func(c *runnerConfig) {
		if pages > 0 {
			c.memoryLimitPages = pages
		}
	}
}

// WithGuestSeverity drops guest log lines less severe than s. The default
// keeps everything down to trace. Invalid severities are ignored.
func WithGuestSeverity(s entities.Severity) Option {
	return func(c *runnerConfig) {
		if s.Valid() {
			c.guestSeverity = s
		}
	}
}

// keeps reports whether a guest line at sev passes the severity filter.
// Unknown severities always pass so that they are noticed.
func (c runnerConfig) keeps(sev entities.Severity) bool {
	return !sev.Valid() || !c.guestSeverity.MoreSevereThan(sev)
}
