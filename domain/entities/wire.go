package entities

import (
	"encoding/json"
	"strconv"
)

// CallToken is the host-chosen correlation value threaded through a call.
// The guest never interprets it; it only hands it back with the result.
type CallToken uint64

// String renders the token in decimal, which is how it appears in marks.
func (t CallToken) String() string {
	return strconv.FormatUint(uint64(t), 10)
}

// Artifact is an opaque UTF-8 JSON payload (program, trace, or proof).
// Only the collaborator understands its structure.
type Artifact = json.RawMessage

// Operation names an exported entry point.
type Operation string

const (
	OpExecute  Operation = "execute"
	OpProve    Operation = "prove"
	OpVerify   Operation = "verify"
	OpSelfTest Operation = "self_test"
)

// ArgWidth is the byte width of one integer argument on the wire.
const ArgWidth = 8
