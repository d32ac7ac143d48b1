package host

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"math"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/reglet-dev/wasm-prover/domain/entities"
	"github.com/reglet-dev/wasm-prover/domain/errors"
)

// pendingCall collects what the guest delivered for one token. Every
// delivered region is kept so that all of them are freed, but only the
// first one's bytes are read.
type pendingCall struct {
	data    []byte
	regions []region
}

// Instance is one guest instance. Calls on an Instance are serialised; the
// guest is not reentrant.
type Instance struct {
	runner    *Runner
	module    api.Module
	pending   map[entities.CallToken]*pendingCall
	name      string
	nextToken uint64
	mu        sync.Mutex // held for the duration of a call
	pmu       sync.Mutex // guards pending; taken from host imports
}

func newInstance(r *Runner, name string) *Instance {
	return &Instance{
		runner:  r,
		name:    name,
		pending: make(map[entities.CallToken]*pendingCall),
	}
}

// Name returns the module name the instance was created under.
func (i *Instance) Name() string {
	return i.name
}

// Closed reports whether the instance can no longer be called, for example
// because a call trapped or ran past its timeout.
func (i *Instance) Closed() bool {
	return i.module == nil || i.module.IsClosed()
}

// Close tears the instance down.
func (i *Instance) Close(ctx context.Context) error {
	i.runner.forget(i.name)
	if i.module == nil {
		return nil
	}
	return i.module.Close(ctx)
}

// Execute runs program on args and returns the delivered envelope.
func (i *Instance) Execute(ctx context.Context, program []byte, args []uint64) (entities.Response, error) {
	words := make([]byte, len(args)*entities.ArgWidth)
	for n, a := range args {
		binary.LittleEndian.PutUint64(words[n*entities.ArgWidth:], a)
	}
	return i.call(ctx, entities.OpExecute,
		[]input{{data: program}, {data: words, count: uint64(len(args)), counted: true}})
}

// Prove proves trace.
func (i *Instance) Prove(ctx context.Context, trace []byte) (entities.Response, error) {
	return i.call(ctx, entities.OpProve, []input{{data: trace}})
}

// Verify checks proof, with or without the Pedersen preprocessed tables.
func (i *Instance) Verify(ctx context.Context, proof []byte, withPedersen bool) (entities.Response, error) {
	var flag uint32
	if withPedersen {
		flag = 1
	}
	return i.call(ctx, entities.OpVerify, []input{{data: proof}}, api.EncodeU32(flag))
}

// SelfTest runs the guest's built-in end to end check.
func (i *Instance) SelfTest(ctx context.Context) (entities.Response, error) {
	return i.call(ctx, entities.OpSelfTest, nil)
}

// input is one buffer staged in guest memory. The export receives its
// address followed by its byte length, or by count when counted is set.
type input struct {
	data    []byte
	count   uint64
	counted bool
}

type region struct {
	ptr    uint64
	length uint64
}

func (i *Instance) call(ctx context.Context, op entities.Operation, inputs []input, trailing ...uint64) (entities.Response, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.Closed() {
		return entities.Response{}, errors.New(errors.PhaseHost, errors.KindNotInitialized).
			Op(string(op)).
			Detail("instance %s is closed", i.name).
			Build()
	}
	fn := i.module.ExportedFunction(string(op))
	if fn == nil {
		return entities.Response{}, errors.New(errors.PhaseHost, errors.KindNotFound).
			Op(string(op)).
			Detail("guest does not export %q", op).
			Build()
	}

	if timeout := i.runner.cfg.callTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	i.nextToken++
	token := entities.CallToken(i.nextToken)
	i.expect(token)
	defer i.forgetToken(token)

	params := []uint64{uint64(token)}
	var staged []region
	defer func() {
		for _, r := range staged {
			i.free(ctx, r)
		}
	}()
	for _, in := range inputs {
		r, err := i.stage(ctx, in.data)
		if err != nil {
			i.abort(ctx)
			return entities.Response{}, errors.New(errors.PhaseHost, errors.KindAllocation).
				Op(string(op)).Cause(err).Detail("staging input").Build()
		}
		staged = append(staged, r)
		n := r.length
		if in.counted {
			n = in.count
		}
		params = append(params, r.ptr, n)
	}
	params = append(params, trailing...)

	logger := i.runner.cfg.logger.With(zap.String("guest", i.name), zap.String("op", string(op)), zap.Stringer("token", token))
	if _, err := fn.Call(ctx, params...); err != nil {
		i.abort(ctx)
		logger.Error("guest call aborted; instance closed", zap.Error(err))
		return entities.Response{}, errors.New(errors.PhaseHost, errors.KindInternal).
			Op(string(op)).Cause(err).Detail("guest call aborted").Build()
	}

	pc := i.take(token)
	if pc == nil || len(pc.regions) == 0 {
		return entities.Response{}, errors.New(errors.PhaseHost, errors.KindNotFound).
			Op(string(op)).Detail("no result delivered for token %s", token).Build()
	}
	staged = append(staged, pc.regions...)
	if n := len(pc.regions); n > 1 {
		return entities.Response{}, errors.New(errors.PhaseHost, errors.KindInvalidData).
			Op(string(op)).Detail("%d results delivered for token %s", n, token).Build()
	}

	var resp entities.Response
	if err := json.Unmarshal(pc.data, &resp); err != nil {
		return entities.Response{}, errors.InvalidData(errors.PhaseHost, string(op), err)
	}
	logger.Debug("guest call complete", zap.Bool("ok", resp.OK), zap.Int("bytes", len(pc.data)))
	return resp, nil
}

// abort closes a guest whose call trapped. A trapped Go guest has unwound
// mid-panic and does not exit, so the runtime would otherwise keep serving
// it. Staged regions are not freed afterwards since Closed reports true.
func (i *Instance) abort(ctx context.Context) {
	i.runner.forget(i.name)
	if i.module == nil || i.module.IsClosed() {
		return
	}
	if err := i.module.Close(context.WithoutCancel(ctx)); err != nil {
		i.runner.cfg.logger.Warn("closing aborted guest", zap.String("guest", i.name), zap.Error(err))
	}
}

// stage allocates len(data) bytes through the guest's allocate export and
// copies data in.
func (i *Instance) stage(ctx context.Context, data []byte) (region, error) {
	allocate := i.module.ExportedFunction("allocate")
	if allocate == nil {
		return region{}, errors.New(errors.PhaseHost, errors.KindNotFound).Detail("guest does not export 'allocate'").Build()
	}
	results, err := allocate.Call(ctx, uint64(len(data)))
	if err != nil {
		return region{}, err
	}
	if len(results) == 0 {
		return region{}, errors.New(errors.PhaseHost, errors.KindInternal).Detail("allocate returned no results").Build()
	}
	ptr := results[0]
	if len(data) > 0 {
		if ptr > math.MaxUint32 || !i.module.Memory().Write(uint32(ptr), data) { //nolint:gosec // G115: checked
			return region{}, errors.New(errors.PhaseHost, errors.KindInternal).
				Detail("failed to write %d bytes at %#x", len(data), ptr).Build()
		}
	}
	return region{ptr: ptr, length: uint64(len(data))}, nil
}

// free returns a region to the guest. Nothing is freed on a closed
// instance; its memory is already gone.
func (i *Instance) free(ctx context.Context, r region) {
	if i.Closed() {
		return
	}
	free := i.module.ExportedFunction("free")
	if free == nil {
		return
	}
	if _, err := free.Call(ctx, r.ptr, r.length); err != nil {
		i.runner.cfg.logger.Warn("guest free failed", zap.String("guest", i.name), zap.Error(err))
	}
}

func (i *Instance) expect(token entities.CallToken) {
	i.pmu.Lock()
	defer i.pmu.Unlock()
	i.pending[token] = &pendingCall{}
}

func (i *Instance) take(token entities.CallToken) *pendingCall {
	i.pmu.Lock()
	defer i.pmu.Unlock()
	return i.pending[token]
}

func (i *Instance) forgetToken(token entities.CallToken) {
	i.pmu.Lock()
	defer i.pmu.Unlock()
	delete(i.pending, token)
}

// deliver records a result for token. Results for tokens that are not in
// flight are dropped.
func (i *Instance) deliver(token entities.CallToken, ptr, length uint64, data []byte) {
	i.pmu.Lock()
	defer i.pmu.Unlock()

	pc, ok := i.pending[token]
	if !ok {
		i.runner.cfg.logger.Warn("result for unknown token", zap.String("guest", i.name), zap.Stringer("token", token))
		return
	}
	if len(pc.regions) == 0 {
		pc.data = data
	}
	pc.regions = append(pc.regions, region{ptr: ptr, length: length})
}
