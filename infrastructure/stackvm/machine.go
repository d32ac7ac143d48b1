package stackvm

import (
	"slices"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/reglet-dev/wasm-prover/domain/entities"
)

// Row is the machine state recorded before one instruction executes.
// Stack words are canonical field values, bottom first.
type Row struct {
	Stack []uint64 `json:"stack"`
	Clk   uint64   `json:"clk"`
	PC    uint64   `json:"pc"`
	In    uint64   `json:"in"`  // public input words consumed
	Out   uint64   `json:"out"` // public output words produced
}

// Equal reports whether two rows hold the same state.
func (r Row) Equal(o Row) bool {
	return r.Clk == o.Clk && r.PC == o.PC && r.In == o.In && r.Out == o.Out &&
		slices.Equal(r.Stack, o.Stack)
}

func (r Row) clone() Row {
	r.Stack = append(make([]uint64, 0, len(r.Stack)+1), r.Stack...)
	return r
}

// lift maps an integer into the field.
func lift(v uint64) uint64 {
	return field.New(v).Value()
}

func fieldOp(op entities.Opcode, a, b uint64) uint64 {
	x, y := field.New(a), field.New(b)
	switch op {
	case entities.OpAdd:
		return x.Add(y).Value()
	case entities.OpSub:
		return x.Sub(y).Value()
	default:
		return x.Mul(y).Value()
	}
}

func boolWord(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// step applies ins to row and returns the next row. input is the public
// input. emit is called with every word written; the VM records it, the
// verifier checks it against the claimed output.
//
// halt leaves the row unchanged, so a halted machine steps to itself.
func step(ins entities.Instruction, row Row, input []uint64, maxStack uint64, emit func(index, v uint64) error) (Row, error) {
	if ins.Op == entities.OpHalt {
		return row.clone(), nil
	}

	next := row.clone()
	next.Clk++
	next.PC++

	need := func(n uint64) error {
		if uint64(len(next.Stack)) < n {
			return newError(ErrExecution, nil, "pc %d: %s needs %d stack words, have %d", row.PC, ins.Op, n, len(next.Stack))
		}
		return nil
	}
	pop := func() uint64 {
		v := next.Stack[len(next.Stack)-1]
		next.Stack = next.Stack[:len(next.Stack)-1]
		return v
	}
	push := func(v uint64) error {
		if uint64(len(next.Stack)) >= maxStack {
			return newError(ErrExecution, nil, "pc %d: stack overflow at %d words", row.PC, maxStack)
		}
		next.Stack = append(next.Stack, v)
		return nil
	}

	switch ins.Op {
	case entities.OpPush:
		if err := push(lift(ins.Arg)); err != nil {
			return Row{}, err
		}
	case entities.OpPop:
		if err := need(1); err != nil {
			return Row{}, err
		}
		pop()
	case entities.OpDup:
		if err := need(ins.Arg + 1); err != nil {
			return Row{}, err
		}
		if err := push(next.Stack[uint64(len(next.Stack))-1-ins.Arg]); err != nil {
			return Row{}, err
		}
	case entities.OpSwap:
		if err := need(2); err != nil {
			return Row{}, err
		}
		n := len(next.Stack)
		next.Stack[n-1], next.Stack[n-2] = next.Stack[n-2], next.Stack[n-1]
	case entities.OpAdd, entities.OpSub, entities.OpMul, entities.OpMod, entities.OpEq, entities.OpLt:
		if err := need(2); err != nil {
			return Row{}, err
		}
		b := pop()
		a := pop()
		var v uint64
		switch ins.Op {
		case entities.OpMod:
			if b == 0 {
				return Row{}, newError(ErrExecution, nil, "pc %d: mod by zero", row.PC)
			}
			v = a % b
		case entities.OpEq:
			v = boolWord(a == b)
		case entities.OpLt:
			v = boolWord(a < b)
		default:
			v = fieldOp(ins.Op, a, b)
		}
		next.Stack = append(next.Stack, v)
	case entities.OpJmp:
		next.PC = ins.Arg
	case entities.OpJz, entities.OpJnz:
		if err := need(1); err != nil {
			return Row{}, err
		}
		c := pop()
		if (c == 0) == (ins.Op == entities.OpJz) {
			next.PC = ins.Arg
		}
	case entities.OpRead:
		if row.In >= uint64(len(input)) {
			return Row{}, newError(ErrExecution, nil, "pc %d: public input exhausted after %d words", row.PC, len(input))
		}
		if err := push(input[row.In]); err != nil {
			return Row{}, err
		}
		next.In++
	case entities.OpWrite:
		if err := need(1); err != nil {
			return Row{}, err
		}
		if err := emit(row.Out, pop()); err != nil {
			return Row{}, err
		}
		next.Out++
	default:
		return Row{}, newError(ErrExecution, nil, "pc %d: unknown opcode %q", row.PC, ins.Op)
	}
	return next, nil
}
