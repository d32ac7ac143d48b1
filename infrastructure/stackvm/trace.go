package stackvm

import (
	"encoding/binary"
	"math/bits"

	"github.com/reglet-dev/wasm-prover/domain/entities"
)

// Trace is the execute artifact.
type Trace struct {
	Program       entities.Program `json:"program"`
	ProgramDigest string           `json:"program_digest"`
	PublicInput   []uint64         `json:"public_input"`
	PublicOutput  []uint64         `json:"public_output"`
	Rows          []Row            `json:"rows"`
}

// encodeRow is the canonical byte form of a row used for Merkle leaves.
func encodeRow(r Row) []byte {
	buf := make([]byte, 0, 8*(5+len(r.Stack)))
	buf = binary.LittleEndian.AppendUint64(buf, r.Clk)
	buf = binary.LittleEndian.AppendUint64(buf, r.PC)
	buf = binary.LittleEndian.AppendUint64(buf, r.In)
	buf = binary.LittleEndian.AppendUint64(buf, r.Out)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(r.Stack)))
	for _, w := range r.Stack {
		buf = binary.LittleEndian.AppendUint64(buf, w)
	}
	return buf
}

// paddedLen is the committed domain size for a trace of rows rows: the next
// power of two (at least 2) scaled by the blowup factor.
func paddedLen(rows uint64, logBlowup uint32) uint64 {
	n := uint64(2)
	if rows > 2 {
		n = 1 << bits.Len64(rows-1)
	}
	return n << logBlowup
}

// padRows extends rows to n by repeating the final (halted) row.
func padRows(rows []Row, n uint64) []Row {
	out := make([]Row, n)
	copy(out, rows)
	last := rows[len(rows)-1]
	for i := uint64(len(rows)); i < n; i++ {
		out[i] = last
	}
	return out
}
