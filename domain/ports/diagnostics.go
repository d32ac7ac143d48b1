package ports

import "github.com/reglet-dev/wasm-prover/domain/entities"

// DiagnosticSink receives log lines, timing marks, and measures.
// Every method is fire-and-forget: the guest never learns whether the host
// recorded anything.
type DiagnosticSink interface {
	// Log emits one text line at the given severity.
	Log(severity entities.Severity, message string)

	// Mark records a named point in time.
	Mark(name string)

	// Measure records the span between two previously marked points.
	Measure(name, startMark, endMark string)
}
