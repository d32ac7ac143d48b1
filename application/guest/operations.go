package guest

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/reglet-dev/wasm-prover/application/protocol"
	"github.com/reglet-dev/wasm-prover/domain/entities"
	"github.com/reglet-dev/wasm-prover/domain/errors"
	"github.com/reglet-dev/wasm-prover/internal/abi"
	"github.com/reglet-dev/wasm-prover/log"
)

type executeInput struct {
	program entities.Artifact
	args    []uint64
}

// Execute runs the program at (programPtr, programLen) on the argsCount
// little-endian words at argsPtr and delivers {"ok":true,"value":<trace>}.
func (m *Module) Execute(token, programPtr, programLen, argsPtr, argsCount uint64) *protocol.Call {
	defer log.Guard(string(entities.OpExecute))

	decode := func() (executeInput, error) {
		program, err := readArtifact(entities.OpExecute, programPtr, programLen)
		if err != nil {
			return executeInput{}, err
		}
		args, err := readArgs(argsPtr, argsCount)
		if err != nil {
			return executeInput{}, err
		}
		return executeInput{program: program, args: args}, nil
	}

	process := func(ctx context.Context, in executeInput) (entities.Response, error) {
		trace, err := m.prover.Execute(ctx, in.program, in.args)
		if err != nil {
			return entities.Response{}, errors.Collaborator(string(entities.OpExecute), err)
		}
		return entities.ResponseValue(trace), nil
	}

	return protocol.Invoke(context.Background(), m.deps(), entities.CallToken(token), entities.OpExecute, decode, process)
}

// Prove proves the trace at (tracePtr, traceLen) under the module's fixed
// proof configuration and delivers {"ok":true,"value":<proof>}.
func (m *Module) Prove(token, tracePtr, traceLen uint64) *protocol.Call {
	defer log.Guard(string(entities.OpProve))

	decode := func() (entities.Artifact, error) {
		return readArtifact(entities.OpProve, tracePtr, traceLen)
	}

	process := func(ctx context.Context, trace entities.Artifact) (entities.Response, error) {
		proof, err := m.prover.Prove(ctx, trace, m.cfg)
		if err != nil {
			return entities.Response{}, errors.Collaborator(string(entities.OpProve), err)
		}
		return entities.ResponseValue(proof), nil
	}

	return protocol.Invoke(context.Background(), m.deps(), entities.CallToken(token), entities.OpProve, decode, process)
}

// Verify checks the proof at (proofPtr, proofLen) and delivers {"ok":bool}.
// A non-zero withPedersen selects the canonical preprocessed tables.
//
// A proof that is not JSON, or that the prover cannot check at all, is
// rejected with {"ok":false}; it is not an error.
func (m *Module) Verify(token, proofPtr, proofLen uint64, withPedersen uint32) *protocol.Call {
	defer log.Guard(string(entities.OpVerify))

	decode := func() (string, error) {
		region, err := abi.RegionFromWire(proofPtr, proofLen)
		if err != nil {
			return "", err
		}
		return region.Text()
	}

	variant := entities.VariantFor(withPedersen != 0)
	process := func(ctx context.Context, text string) (entities.Response, error) {
		if !json.Valid([]byte(text)) {
			slog.Debug("proof rejected", "reason", "not JSON", "bytes", len(text))
			return entities.ResponseVerdict(false), nil
		}
		ok, err := m.prover.Verify(ctx, entities.Artifact(text), m.cfg, variant)
		if err != nil {
			slog.Debug("proof rejected", "reason", err)
			return entities.ResponseVerdict(false), nil
		}
		return entities.ResponseVerdict(ok), nil
	}

	return protocol.Invoke(context.Background(), m.deps(), entities.CallToken(token), entities.OpVerify, decode, process)
}

// readArtifact copies a JSON document out of linear memory. Bytes that
// are not UTF-8 abort the call; UTF-8 that is not JSON is delivered as an
// invalid_data error.
func readArtifact(op entities.Operation, ptr, length uint64) (entities.Artifact, error) {
	region, err := abi.RegionFromWire(ptr, length)
	if err != nil {
		return nil, err
	}
	text, err := region.Text()
	if err != nil {
		return nil, err
	}
	var doc entities.Artifact
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, errors.InvalidData(errors.PhaseDecode, string(op), err)
	}
	return doc, nil
}

func readArgs(ptr, count uint64) ([]uint64, error) {
	addr, err := abi.AddrFromWire(ptr)
	if err != nil {
		return nil, err
	}
	return abi.Uint64s(addr, count)
}
