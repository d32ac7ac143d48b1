package stackvm

import (
	"context"
	"log/slog"
	"math/bits"

	"github.com/reglet-dev/wasm-prover/domain/entities"
)

// Proof is the prove artifact.
type Proof struct {
	Variant       entities.PreprocessedVariant `json:"preprocessed"`
	ProgramDigest string                       `json:"program_digest"`
	Root          string                       `json:"root"`
	Program       entities.Program             `json:"program"`
	PublicInput   []uint64                     `json:"public_input"`
	PublicOutput  []uint64                     `json:"public_output"`
	Queries       []QueryPair                  `json:"queries"`
	First         Opening                      `json:"first"`
	Last          Opening                      `json:"last"`
	Config        entities.ProofConfig         `json:"config"`
	TraceLen      uint64                       `json:"trace_len"`
	PowNonce      uint64                       `json:"pow_nonce"`
}

// Opening reveals one committed row with its authentication path.
type Opening struct {
	Path  []string `json:"path"`
	Row   Row      `json:"row"`
	Index uint64   `json:"index"`
}

// QueryPair opens two consecutive rows.
type QueryPair struct {
	Current Opening `json:"current"`
	Next    Opening `json:"next"`
}

// Verify checks proof against cfg using the requested preprocessed variant.
// A proof that decodes but fails any check yields false with a nil error.
func (p *Prover) Verify(ctx context.Context, proof entities.Artifact, cfg entities.ProofConfig, variant entities.PreprocessedVariant) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, newError(ErrInvalidProof, err, "verification cancelled")
	}

	var pr Proof
	if err := decodeStrict(proof, &pr); err != nil {
		return false, newError(ErrInvalidProof, err, "proof is not a valid document")
	}

	if err := p.verifyProof(&pr, cfg, variant); err != nil {
		slog.Debug("proof rejected", "reason", err)
		return false, nil
	}
	return true, nil
}

func (p *Prover) verifyProof(pr *Proof, cfg entities.ProofConfig, variant entities.PreprocessedVariant) error {
	if pr.Config != cfg {
		return newError(ErrInvalidProof, nil, "proof config %s, verifier requires %s", pr.Config, cfg)
	}
	if !variant.Covers(pr.Variant) {
		return newError(ErrInvalidProof, nil, "preprocessed variant %q not covered by %q", pr.Variant, variant)
	}
	if err := checkProgram(p.validate, &pr.Program, p.maxStack); err != nil {
		return err
	}
	digest, err := programDigest(&pr.Program)
	if err != nil || digest != pr.ProgramDigest {
		return newError(ErrInvalidProof, err, "program digest mismatch")
	}
	if pr.TraceLen == 0 || pr.TraceLen > p.maxCycles {
		return newError(ErrInvalidProof, nil, "trace length %d outside 1..%d", pr.TraceLen, p.maxCycles)
	}

	n := paddedLen(pr.TraceLen, cfg.Fri.LogBlowupFactor)
	depth := bits.Len64(n) - 1
	root, err := parseDigest(pr.Root)
	if err != nil {
		return newError(ErrInvalidProof, err, "bad root")
	}

	ch := transcript(cfg, pr.Variant, pr.ProgramDigest, pr.PublicInput, pr.PublicOutput, pr.TraceLen, root)
	if !ch.CheckPow(pr.PowNonce, cfg.PowBits) {
		return newError(ErrInvalidProof, nil, "proof of work does not meet %d bits", cfg.PowBits)
	}
	ch.AbsorbUint64(pr.PowNonce)

	opened := func(o Opening, index uint64) error {
		if o.Index != index {
			return newError(ErrInvalidProof, nil, "opening at %d, expected %d", o.Index, index)
		}
		path := make([]Digest, len(o.Path))
		for i, s := range o.Path {
			if path[i], err = parseDigest(s); err != nil {
				return newError(ErrInvalidProof, err, "bad path node")
			}
		}
		if !verifyPath(root, index, encodeRow(o.Row), path, depth) {
			return newError(ErrInvalidProof, nil, "row %d does not open to the root", index)
		}
		return nil
	}

	if err := opened(pr.First, 0); err != nil {
		return err
	}
	if !pr.First.Row.Equal(initialRow()) {
		return newError(ErrInvalidProof, nil, "first row is not the initial state")
	}

	if err := opened(pr.Last, pr.TraceLen-1); err != nil {
		return err
	}
	last := pr.Last.Row
	if last.PC >= uint64(len(pr.Program.Instructions)) || pr.Program.Instructions[last.PC].Op != entities.OpHalt {
		return newError(ErrInvalidProof, nil, "last row is not at halt")
	}
	if last.Out != uint64(len(pr.PublicOutput)) {
		return newError(ErrInvalidProof, nil, "last row wrote %d outputs, proof claims %d", last.Out, len(pr.PublicOutput))
	}

	if uint64(len(pr.Queries)) != uint64(cfg.Fri.NQueries) {
		return newError(ErrInvalidProof, nil, "proof has %d queries, want %d", len(pr.Queries), cfg.Fri.NQueries)
	}
	emit := checkOutput(pr.PublicOutput)
	for q, pair := range pr.Queries {
		i := ch.DrawUint64() % (n - 1)
		if err := opened(pair.Current, i); err != nil {
			return err
		}
		if err := opened(pair.Next, i+1); err != nil {
			return err
		}

		cur := pair.Current.Row
		if cur.PC >= uint64(len(pr.Program.Instructions)) {
			return newError(ErrInvalidProof, nil, "query %d: pc %d outside program", q, cur.PC)
		}
		next, err := step(pr.Program.Instructions[cur.PC], cur, pr.PublicInput, p.maxStack, emit)
		if err != nil {
			return newError(ErrInvalidProof, err, "query %d: row %d does not execute", q, i)
		}
		if !next.Equal(pair.Next.Row) {
			return newError(ErrInvalidProof, nil, "query %d: row %d does not follow from row %d", q, i+1, i)
		}
	}
	return nil
}
