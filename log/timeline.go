package log

import (
	"github.com/reglet-dev/wasm-prover/domain/entities"
)

// Timeline marks the phases of one call so the host can rebuild where the
// time went. Marks are named `<op>#<token>:<phase>:start` and `...:end`, and
// each finished phase is measured under `<op>#<token>:<phase>`.
type Timeline struct {
	prefix string
}

// NewTimeline returns a timeline for one call.
func NewTimeline(op entities.Operation, token entities.CallToken) *Timeline {
	return &Timeline{prefix: string(op) + "#" + token.String()}
}

// Start marks the beginning of phase and returns a function that marks its
// end and records the measure.
func (t *Timeline) Start(phase string) func() {
	name := t.prefix + ":" + phase
	start := name + ":start"
	Mark(start)
	return func() {
		end := name + ":end"
		Mark(end)
		Measure(name, start, end)
	}
}
