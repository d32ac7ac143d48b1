// Package testutil provides test fakes for the boundary ports.
package testutil

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/wasm-prover/domain/entities"
	"github.com/reglet-dev/wasm-prover/domain/ports"
	"github.com/reglet-dev/wasm-prover/internal/abi"
)

// LogLine is one line recorded by MemorySink.
type LogLine struct {
	Message  string
	Severity entities.Severity
}

// MeasureRecord is one measure recorded by MemorySink.
type MeasureRecord struct {
	Name  string
	Start string
	End   string
}

// MemorySink is a DiagnosticSink that keeps everything in memory.
type MemorySink struct {
	Lines    []LogLine
	Marks    []string
	Measures []MeasureRecord
	mu       sync.Mutex
}

var _ ports.DiagnosticSink = (*MemorySink)(nil)

// Log implements ports.DiagnosticSink.
func (s *MemorySink) Log(severity entities.Severity, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Lines = append(s.Lines, LogLine{Severity: severity, Message: message})
}

// Mark implements ports.DiagnosticSink.
func (s *MemorySink) Mark(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Marks = append(s.Marks, name)
}

// Measure implements ports.DiagnosticSink.
func (s *MemorySink) Measure(name, start, end string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Measures = append(s.Measures, MeasureRecord{Name: name, Start: start, End: end})
}

// LinesAt returns the messages logged at severity.
func (s *MemorySink) LinesAt(severity entities.Severity) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, l := range s.Lines {
		if l.Severity == severity {
			out = append(out, l.Message)
		}
	}
	return out
}

// Contains reports whether any logged message contains substr.
func (s *MemorySink) Contains(substr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.Lines {
		if strings.Contains(l.Message, substr) {
			return true
		}
	}
	return false
}

// Reset drops everything recorded so far.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Lines = nil
	s.Marks = nil
	s.Measures = nil
}

// Delivery is one result handed to a RecordingResultSink.
type Delivery struct {
	Data  []byte
	Token entities.CallToken
	Addr  uintptr
	Len   uint64
}

// RecordingResultSink is a ResultSink that copies each delivered region out
// of memory and, when Allocator is set, frees it the way a host would.
type RecordingResultSink struct {
	Allocator  ports.Allocator
	Deliveries []Delivery
	mu         sync.Mutex
}

var _ ports.ResultSink = (*RecordingResultSink)(nil)

// Deliver implements ports.ResultSink.
func (s *RecordingResultSink) Deliver(token entities.CallToken, addr uintptr, length uint64) {
	view, err := abi.View(addr, length)
	if err != nil {
		panic(err)
	}
	data := make([]byte, len(view))
	copy(data, view)

	s.mu.Lock()
	s.Deliveries = append(s.Deliveries, Delivery{Token: token, Addr: addr, Len: length, Data: data})
	s.mu.Unlock()

	if s.Allocator != nil {
		if err := s.Allocator.Free(addr, length); err != nil {
			panic(err)
		}
	}
}

// For returns every delivery made for token.
func (s *RecordingResultSink) For(token entities.CallToken) []Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Delivery
	for _, d := range s.Deliveries {
		if d.Token == token {
			out = append(out, d)
		}
	}
	return out
}

// Last returns the most recent delivery.
func (s *RecordingResultSink) Last(t *testing.T) Delivery {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.Deliveries, "no result was delivered")
	return s.Deliveries[len(s.Deliveries)-1]
}

// PatternEntropy fills buffers with a deterministic non-zero byte pattern.
type PatternEntropy struct {
	Seed byte
}

// Fill implements ports.EntropySource.
func (p PatternEntropy) Fill(buf []byte) error {
	for i := range buf {
		buf[i] = p.Seed + byte(i*31+7)
	}
	return nil
}

// ZeroEntropy leaves buffers untouched and reports success, like a host
// that never wired a random source.
type ZeroEntropy struct{}

// Fill implements ports.EntropySource.
func (ZeroEntropy) Fill([]byte) error { return nil }

// FailingEntropy returns Err from every Fill.
type FailingEntropy struct {
	Err error
}

// Fill implements ports.EntropySource.
func (f FailingEntropy) Fill([]byte) error { return f.Err }

// WriteRegion allocates a region through a, copies data into it, and returns
// the wire-form address and length the host would pass to an export.
func WriteRegion(t *testing.T, a ports.Allocator, data []byte) (uint64, uint64) {
	t.Helper()
	addr, err := a.Allocate(uint64(len(data)))
	require.NoError(t, err)
	view, err := abi.View(addr, uint64(len(data)))
	require.NoError(t, err)
	copy(view, data)
	return abi.AddrToWire(addr), uint64(len(data))
}
