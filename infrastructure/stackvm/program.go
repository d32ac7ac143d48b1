package stackvm

import (
	"bytes"
	"encoding/hex"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/blake2s"

	"github.com/reglet-dev/wasm-prover/domain/entities"
)

// decodeStrict unmarshals data into v, rejecting unknown fields and
// trailing data.
func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return &json.SyntaxError{Offset: dec.InputOffset()}
	}
	return nil
}

// checkProgram validates struct tags and the rules tags cannot express:
// jump targets in range, dup depth within the stack limit, and no stray
// immediates on opcodes that take none.
func checkProgram(v *validator.Validate, p *entities.Program, maxStack uint64) error {
	if err := v.Struct(p); err != nil {
		return newError(ErrInvalidProgram, err, "program %q failed validation", p.Name)
	}

	n := uint64(len(p.Instructions))
	for i, ins := range p.Instructions {
		switch ins.Op {
		case entities.OpJmp, entities.OpJz, entities.OpJnz:
			if ins.Arg >= n {
				return newError(ErrInvalidProgram, nil, "instruction %d: jump target %d outside program of %d instructions", i, ins.Arg, n)
			}
		case entities.OpDup:
			if ins.Arg >= maxStack {
				return newError(ErrInvalidProgram, nil, "instruction %d: dup depth %d exceeds stack limit %d", i, ins.Arg, maxStack)
			}
		case entities.OpPush:
		default:
			if ins.Arg != 0 {
				return newError(ErrInvalidProgram, nil, "instruction %d: %s takes no argument", i, ins.Op)
			}
		}
	}
	return nil
}

// programDigest is the hex Blake2s-256 of the program's canonical JSON.
func programDigest(p *entities.Program) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	sum := blake2s.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
