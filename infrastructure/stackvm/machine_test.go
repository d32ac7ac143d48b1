package stackvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/reglet-dev/wasm-prover/domain/entities"
)

func noWrites(_, _ uint64) error { return nil }

func TestStep(t *testing.T) {
	tests := []struct {
		name      string
		ins       entities.Instruction
		stack     []uint64
		wantStack []uint64
		wantPC    uint64
	}{
		{"push", entities.Instruction{Op: entities.OpPush, Arg: 5}, []uint64{}, []uint64{5}, 1},
		{"pop", entities.Instruction{Op: entities.OpPop}, []uint64{1, 2}, []uint64{1}, 1},
		{"dup top", entities.Instruction{Op: entities.OpDup}, []uint64{1, 2}, []uint64{1, 2, 2}, 1},
		{"dup deep", entities.Instruction{Op: entities.OpDup, Arg: 2}, []uint64{7, 8, 9}, []uint64{7, 8, 9, 7}, 1},
		{"swap", entities.Instruction{Op: entities.OpSwap}, []uint64{1, 2}, []uint64{2, 1}, 1},
		{"add", entities.Instruction{Op: entities.OpAdd}, []uint64{40, 2}, []uint64{42}, 1},
		{"add wraps", entities.Instruction{Op: entities.OpAdd}, []uint64{field.P - 1, 2}, []uint64{1}, 1},
		{"sub", entities.Instruction{Op: entities.OpSub}, []uint64{10, 3}, []uint64{7}, 1},
		{"sub wraps", entities.Instruction{Op: entities.OpSub}, []uint64{0, 1}, []uint64{field.P - 1}, 1},
		{"mul", entities.Instruction{Op: entities.OpMul}, []uint64{6, 7}, []uint64{42}, 1},
		{"mod", entities.Instruction{Op: entities.OpMod}, []uint64{7, 2}, []uint64{1}, 1},
		{"eq true", entities.Instruction{Op: entities.OpEq}, []uint64{3, 3}, []uint64{1}, 1},
		{"eq false", entities.Instruction{Op: entities.OpEq}, []uint64{3, 4}, []uint64{0}, 1},
		{"lt second below top", entities.Instruction{Op: entities.OpLt}, []uint64{7, 9}, []uint64{1}, 1},
		{"lt not", entities.Instruction{Op: entities.OpLt}, []uint64{9, 7}, []uint64{0}, 1},
		{"jmp", entities.Instruction{Op: entities.OpJmp, Arg: 9}, []uint64{1}, []uint64{1}, 9},
		{"jz taken", entities.Instruction{Op: entities.OpJz, Arg: 4}, []uint64{0}, []uint64{}, 4},
		{"jz not taken", entities.Instruction{Op: entities.OpJz, Arg: 4}, []uint64{5}, []uint64{}, 1},
		{"jnz taken", entities.Instruction{Op: entities.OpJnz, Arg: 4}, []uint64{5}, []uint64{}, 4},
		{"jnz not taken", entities.Instruction{Op: entities.OpJnz, Arg: 4}, []uint64{0}, []uint64{}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := Row{Stack: tt.stack}
			next, err := step(tt.ins, row, nil, DefaultMaxStack, noWrites)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStack, next.Stack)
			assert.Equal(t, tt.wantPC, next.PC)
			assert.Equal(t, uint64(1), next.Clk)
		})
	}
}

func TestStep_DoesNotAliasInput(t *testing.T) {
	row := Row{Stack: []uint64{1, 2}}
	_, err := step(entities.Instruction{Op: entities.OpSwap}, row, nil, DefaultMaxStack, noWrites)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, row.Stack)
}

func TestStep_ReadWrite(t *testing.T) {
	var written []uint64
	emit := func(index, v uint64) error {
		assert.Equal(t, uint64(len(written)), index)
		written = append(written, v)
		return nil
	}

	row := Row{Stack: []uint64{}}
	row, err := step(entities.Instruction{Op: entities.OpRead}, row, []uint64{100}, DefaultMaxStack, emit)
	require.NoError(t, err)
	assert.Equal(t, []uint64{100}, row.Stack)
	assert.Equal(t, uint64(1), row.In)

	row, err = step(entities.Instruction{Op: entities.OpWrite}, row, []uint64{100}, DefaultMaxStack, emit)
	require.NoError(t, err)
	assert.Empty(t, row.Stack)
	assert.Equal(t, uint64(1), row.Out)
	assert.Equal(t, []uint64{100}, written)
}

func TestStep_HaltIsFixedPoint(t *testing.T) {
	row := Row{Stack: []uint64{1}, Clk: 5, PC: 3, In: 1, Out: 2}
	next, err := step(entities.Instruction{Op: entities.OpHalt}, row, nil, DefaultMaxStack, noWrites)
	require.NoError(t, err)
	assert.True(t, row.Equal(next))
}

func TestStep_Faults(t *testing.T) {
	tests := []struct {
		name  string
		ins   entities.Instruction
		stack []uint64
		input []uint64
		max   uint64
		want  string
	}{
		{"pop empty", entities.Instruction{Op: entities.OpPop}, nil, nil, DefaultMaxStack, "needs 1 stack words"},
		{"add underflow", entities.Instruction{Op: entities.OpAdd}, []uint64{1}, nil, DefaultMaxStack, "needs 2 stack words"},
		{"dup too deep", entities.Instruction{Op: entities.OpDup, Arg: 3}, []uint64{1, 2}, nil, DefaultMaxStack, "needs 4 stack words"},
		{"mod zero", entities.Instruction{Op: entities.OpMod}, []uint64{1, 0}, nil, DefaultMaxStack, "mod by zero"},
		{"read exhausted", entities.Instruction{Op: entities.OpRead}, nil, nil, DefaultMaxStack, "public input exhausted"},
		{"push overflow", entities.Instruction{Op: entities.OpPush, Arg: 1}, []uint64{1, 2}, nil, 2, "stack overflow"},
		{"unknown", entities.Instruction{Op: "nop"}, nil, nil, DefaultMaxStack, "unknown opcode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := step(tt.ins, Row{Stack: tt.stack}, tt.input, tt.max, noWrites)
			require.Error(t, err)
			assert.ErrorIs(t, err, &VMError{Code: ErrExecution})
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPaddedLen(t *testing.T) {
	tests := []struct {
		rows   uint64
		blowup uint32
		want   uint64
	}{
		{1, 0, 2},
		{2, 0, 2},
		{3, 0, 4},
		{4, 1, 8},
		{5, 1, 16},
		{40, 1, 128},
		{64, 2, 256},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, paddedLen(tt.rows, tt.blowup), "rows=%d blowup=%d", tt.rows, tt.blowup)
	}
}

func TestPadRows(t *testing.T) {
	rows := []Row{{Stack: []uint64{}}, {Clk: 1, PC: 1, Stack: []uint64{4}}}
	padded := padRows(rows, 4)
	require.Len(t, padded, 4)
	assert.True(t, padded[3].Equal(rows[1]))
}

func TestEncodeRow_Distinguishes(t *testing.T) {
	a := encodeRow(Row{Stack: []uint64{1}, PC: 2})
	b := encodeRow(Row{Stack: []uint64{2}, PC: 1})
	c := encodeRow(Row{Stack: []uint64{1, 0}, PC: 2})
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}
