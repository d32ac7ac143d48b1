package stackvm

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/reglet-dev/wasm-prover/domain/entities"
	"github.com/reglet-dev/wasm-prover/domain/ports"
)

const (
	// DefaultMaxCycles bounds the rows a single execution may record.
	DefaultMaxCycles = 1 << 20
	// DefaultMaxStack bounds the stack depth.
	DefaultMaxStack = 1024

	channelLabel = "wasm-prover/stackvm/v1"

	// cancellation is polled every this many cycles or nonces
	pollInterval = 1 << 12
)

// Compile-time interface compliance check
var _ ports.Prover = (*Prover)(nil)

// Prover implements ports.Prover for stack machine programs.
type Prover struct {
	validate  *validator.Validate
	maxCycles uint64
	maxStack  uint64
}

// Option configures a Prover.
type Option func(*Prover)

// WithMaxCycles sets the execution cycle limit. Zero is ignored.
func WithMaxCycles(n uint64) Option {
	return func(p *Prover) {
		if n > 0 {
			p.maxCycles = n
		}
	}
}

// WithMaxStack sets the stack depth limit. Zero is ignored.
func WithMaxStack(n uint64) Option {
	return func(p *Prover) {
		if n > 0 {
			p.maxStack = n
		}
	}
}

// New creates a Prover with the given options applied.
func New(opts ...Option) *Prover {
	p := &Prover{
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		maxCycles: DefaultMaxCycles,
		maxStack:  DefaultMaxStack,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Execute runs program on the public input args and returns its trace.
// Each argument is lifted into the field before the program sees it.
func (p *Prover) Execute(ctx context.Context, program entities.Artifact, args []uint64) (entities.Artifact, error) {
	var prog entities.Program
	if err := decodeStrict(program, &prog); err != nil {
		return nil, newError(ErrInvalidProgram, err, "program is not a valid document")
	}
	if err := checkProgram(p.validate, &prog, p.maxStack); err != nil {
		return nil, err
	}
	digest, err := programDigest(&prog)
	if err != nil {
		return nil, newError(ErrInvalidProgram, err, "hashing program")
	}

	input := make([]uint64, len(args))
	for i, a := range args {
		input[i] = lift(a)
	}
	output := []uint64{}
	emit := func(_, v uint64) error {
		output = append(output, v)
		return nil
	}

	var rows []Row
	row := Row{Stack: []uint64{}}
	n := uint64(len(prog.Instructions))
	for {
		if uint64(len(rows)) >= p.maxCycles {
			return nil, newError(ErrExecution, nil, "program %q exceeded %d cycles", prog.Name, p.maxCycles)
		}
		if len(rows)%pollInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, newError(ErrExecution, err, "execution cancelled")
			}
		}
		if row.PC >= n {
			return nil, newError(ErrExecution, nil, "pc %d ran past the end of the program without halt", row.PC)
		}

		rows = append(rows, row)
		ins := prog.Instructions[row.PC]
		if ins.Op == entities.OpHalt {
			break
		}
		if row, err = step(ins, row, input, p.maxStack, emit); err != nil {
			return nil, err
		}
	}

	slog.Debug("program executed", "program", prog.Name, "cycles", len(rows), "outputs", len(output))

	return json.Marshal(Trace{
		Program:       prog,
		ProgramDigest: digest,
		PublicInput:   input,
		PublicOutput:  output,
		Rows:          rows,
	})
}

// Prove commits to trace and opens the rows the transcript selects.
// Proofs always use the preprocessed variant without Pedersen tables.
func (p *Prover) Prove(ctx context.Context, trace entities.Artifact, cfg entities.ProofConfig) (entities.Artifact, error) {
	if err := p.validate.Struct(cfg); err != nil {
		return nil, newError(ErrProofGeneration, err, "invalid proof configuration")
	}

	var tr Trace
	if err := decodeStrict(trace, &tr); err != nil {
		return nil, newError(ErrInvalidTrace, err, "trace is not a valid document")
	}
	if err := p.checkTrace(&tr); err != nil {
		return nil, err
	}

	traceLen := uint64(len(tr.Rows))
	n := paddedLen(traceLen, cfg.Fri.LogBlowupFactor)
	padded := padRows(tr.Rows, n)
	leaves := make([][]byte, n)
	for i, r := range padded {
		leaves[i] = encodeRow(r)
	}
	tree, err := NewMerkleTree(leaves)
	if err != nil {
		return nil, newError(ErrProofGeneration, err, "committing trace")
	}

	variant := entities.PreprocessedCanonicalWithoutPedersen
	ch := transcript(cfg, variant, tr.ProgramDigest, tr.PublicInput, tr.PublicOutput, traceLen, tree.Root())

	nonce, err := grind(ctx, ch, cfg.PowBits)
	if err != nil {
		return nil, err
	}
	ch.AbsorbUint64(nonce)

	open := func(i uint64) Opening {
		path, _ := tree.Path(i)
		hexPath := make([]string, len(path))
		for j, d := range path {
			hexPath[j] = d.Hex()
		}
		return Opening{Index: i, Row: padded[i], Path: hexPath}
	}

	queries := make([]QueryPair, cfg.Fri.NQueries)
	for q := range queries {
		i := ch.DrawUint64() % (n - 1)
		queries[q] = QueryPair{Current: open(i), Next: open(i + 1)}
	}

	slog.Debug("proof generated", "program", tr.Program.Name, "rows", traceLen, "domain", n, "nonce", nonce)

	return json.Marshal(Proof{
		Config:        cfg,
		Variant:       variant,
		Program:       tr.Program,
		ProgramDigest: tr.ProgramDigest,
		PublicInput:   tr.PublicInput,
		PublicOutput:  tr.PublicOutput,
		TraceLen:      traceLen,
		Root:          tree.Root().Hex(),
		PowNonce:      nonce,
		First:         open(0),
		Last:          open(traceLen - 1),
		Queries:       queries,
	})
}

// checkTrace replays every row against the program.
func (p *Prover) checkTrace(tr *Trace) error {
	if err := checkProgram(p.validate, &tr.Program, p.maxStack); err != nil {
		return err
	}
	digest, err := programDigest(&tr.Program)
	if err != nil || digest != tr.ProgramDigest {
		return newError(ErrInvalidTrace, err, "program digest does not match program")
	}
	if len(tr.Rows) == 0 || uint64(len(tr.Rows)) > p.maxCycles {
		return newError(ErrInvalidTrace, nil, "trace has %d rows, want 1..%d", len(tr.Rows), p.maxCycles)
	}
	if !tr.Rows[0].Equal(initialRow()) {
		return newError(ErrInvalidTrace, nil, "trace does not start from the initial state")
	}

	emit := checkOutput(tr.PublicOutput)
	last := len(tr.Rows) - 1
	for i, row := range tr.Rows {
		if row.PC >= uint64(len(tr.Program.Instructions)) {
			return newError(ErrInvalidTrace, nil, "row %d: pc %d outside program", i, row.PC)
		}
		ins := tr.Program.Instructions[row.PC]
		if i == last {
			if ins.Op != entities.OpHalt {
				return newError(ErrInvalidTrace, nil, "trace ends on %s, not halt", ins.Op)
			}
			break
		}
		next, err := step(ins, row, tr.PublicInput, p.maxStack, emit)
		if err != nil {
			return newError(ErrInvalidTrace, err, "row %d does not execute", i)
		}
		if !next.Equal(tr.Rows[i+1]) {
			return newError(ErrInvalidTrace, nil, "row %d does not follow from row %d", i+1, i)
		}
	}
	if tr.Rows[last].Out != uint64(len(tr.PublicOutput)) {
		return newError(ErrInvalidTrace, nil, "trace writes %d outputs, claims %d", tr.Rows[last].Out, len(tr.PublicOutput))
	}
	return nil
}

func initialRow() Row {
	return Row{Stack: []uint64{}}
}

// checkOutput returns an emit function that accepts a write only when it
// matches the claimed public output.
func checkOutput(output []uint64) func(index, v uint64) error {
	return func(index, v uint64) error {
		if index >= uint64(len(output)) || output[index] != v {
			return newError(ErrInvalidTrace, nil, "write %d of %d does not match public output", index, v)
		}
		return nil
	}
}

// transcript binds everything the verifier knows before the queries.
func transcript(cfg entities.ProofConfig, variant entities.PreprocessedVariant, digest string, input, output []uint64, traceLen uint64, root Digest) *Channel {
	ch := NewChannel(channelLabel)
	cfgBytes, _ := json.Marshal(cfg)
	ch.Absorb(cfgBytes)
	ch.Absorb([]byte(variant))
	ch.Absorb([]byte(digest))
	ch.AbsorbUint64(uint64(len(input)))
	for _, v := range input {
		ch.AbsorbUint64(v)
	}
	ch.AbsorbUint64(uint64(len(output)))
	for _, v := range output {
		ch.AbsorbUint64(v)
	}
	ch.AbsorbUint64(traceLen)
	ch.Absorb(root[:])
	return ch
}

// grind finds the smallest nonce meeting powBits.
func grind(ctx context.Context, ch *Channel, powBits uint32) (uint64, error) {
	for nonce := uint64(0); ; nonce++ {
		if ch.CheckPow(nonce, powBits) {
			return nonce, nil
		}
		if nonce%pollInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, newError(ErrProofGeneration, err, "proof of work cancelled")
			}
		}
	}
}
