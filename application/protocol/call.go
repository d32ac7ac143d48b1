package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/wasm-prover/domain/entities"
	"github.com/reglet-dev/wasm-prover/domain/errors"
	"github.com/reglet-dev/wasm-prover/domain/ports"
	"github.com/reglet-dev/wasm-prover/internal/abi"
	"github.com/reglet-dev/wasm-prover/log"
)

// Deps are the ports a call needs to hand its result back.
type Deps struct {
	Allocator ports.Allocator
	Results   ports.ResultSink
}

// Call is one in-flight host call.
type Call struct {
	timeline *log.Timeline
	err      error
	Token    entities.CallToken
	Op       entities.Operation
	state    State
}

func newCall(token entities.CallToken, op entities.Operation) *Call {
	return &Call{
		Token:    token,
		Op:       op,
		state:    Received,
		timeline: log.NewTimeline(op, token),
	}
}

// State returns the call's current state.
func (c *Call) State() State {
	return c.state
}

// Err returns the error that moved the call to Failed, if any.
func (c *Call) Err() error {
	return c.err
}

func (c *Call) advance(to State) {
	if !CanTransition(c.state, to) {
		panic(fmt.Sprintf("protocol: %s#%s cannot move from %s to %s", c.Op, c.Token, c.state, to))
	}
	c.state = to
}

// fail records err and returns the error response to deliver in place of
// a value. A boundary violation aborts the call instead.
func (c *Call) fail(err error) entities.Response {
	c.advance(Failed)
	c.err = err
	if errors.IsFatal(err) {
		log.Abort(string(c.Op), err)
	}
	slog.Warn("call failed", "op", c.Op, "token", c.Token, "error", err)
	return entities.ResponseError(errors.ToErrorDetail(err))
}

// Invoke runs one call: decode reads the inputs out of linear memory and
// process hands them to the collaborator. Exactly one result is delivered
// for token unless a boundary violation aborts the call.
//
// Errors from decode or process become an error response. Errors that mark
// a broken boundary contract (see errors.IsFatal) are logged and abort the
// call with a panic; nothing is delivered for it.
func Invoke[In any](
	ctx context.Context,
	deps Deps,
	token entities.CallToken,
	op entities.Operation,
	decode func() (In, error),
	process func(context.Context, In) (entities.Response, error),
) *Call {
	c := newCall(token, op)
	resp := run(ctx, c, decode, process)
	c.deliver(deps, c.encode(resp))
	return c
}

func run[In any](
	ctx context.Context,
	c *Call,
	decode func() (In, error),
	process func(context.Context, In) (entities.Response, error),
) entities.Response {
	done := c.timeline.Start("decode")
	in, err := decode()
	done()
	if err != nil {
		return c.fail(err)
	}
	c.advance(Decoded)

	done = c.timeline.Start(string(c.Op))
	resp, err := process(ctx, in)
	done()
	if err != nil {
		return c.fail(err)
	}
	c.advance(Processed)
	return resp
}

// encode serializes resp. A value that is not valid JSON is replaced by an
// encode error so the host still gets a well-formed envelope.
func (c *Call) encode(resp entities.Response) []byte {
	done := c.timeline.Start("encode")
	defer done()

	data, err := json.Marshal(resp)
	if err != nil {
		encodeErr := errors.New(errors.PhaseEncode, errors.KindInvalidData).
			Op(string(c.Op)).
			Detail("response value is not valid JSON").
			Cause(err).
			Build()
		// A value that failed to encode has already passed Processed.
		if c.state == Processed {
			resp = c.fail(encodeErr)
		} else {
			resp = entities.ResponseError(errors.ToErrorDetail(encodeErr))
		}
		data, err = json.Marshal(resp)
		if err != nil {
			log.Abort(string(c.Op), err)
		}
	}
	c.advance(Encoded)
	return data
}

// deliver copies data into a fresh region and hands it to the host.
func (c *Call) deliver(deps Deps, data []byte) {
	done := c.timeline.Start("deliver")
	defer done()

	size := uint64(len(data))
	addr, err := deps.Allocator.Allocate(size)
	if err != nil {
		log.Abort(string(c.Op), err)
	}
	view, err := abi.View(addr, size)
	if err != nil {
		log.Abort(string(c.Op), err)
	}
	copy(view, data)

	deps.Results.Deliver(c.Token, addr, size)
	c.advance(Delivered)
	slog.Debug("call delivered", "op", c.Op, "token", c.Token, "bytes", size)
}
