// Package protocol runs one host call through decode, process, encode and
// delivery, and guarantees the host receives exactly one result for it.
package protocol

import "fmt"

// State is where a call is in its lifecycle.
type State int

const (
	// Received: the export was entered with a token and raw regions.
	Received State = iota
	// Decoded: inputs were read out of linear memory.
	Decoded
	// Processed: the collaborator produced a response.
	Processed
	// Failed: the call could not complete; an error response replaces the
	// value.
	Failed
	// Encoded: the response was serialized into a fresh region.
	Encoded
	// Delivered: the region was handed to the host.
	Delivered
)

var stateNames = [...]string{
	Received:  "received",
	Decoded:   "decoded",
	Processed: "processed",
	Failed:    "failed",
	Encoded:   "encoded",
	Delivered: "delivered",
}

// String implements fmt.Stringer.
func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var transitions = map[State][]State{
	Received:  {Decoded, Failed},
	Decoded:   {Processed, Failed},
	Processed: {Encoded, Failed},
	Failed:    {Encoded},
	Encoded:   {Delivered},
}

// CanTransition reports whether a call in state from may move to to.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}
