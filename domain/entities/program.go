package entities

// Opcode names one stack-machine instruction.
type Opcode string

const (
	OpPush  Opcode = "push"
	OpPop   Opcode = "pop"
	OpDup   Opcode = "dup"
	OpSwap  Opcode = "swap"
	OpAdd   Opcode = "add"
	OpSub   Opcode = "sub"
	OpMul   Opcode = "mul"
	OpMod   Opcode = "mod"
	OpEq    Opcode = "eq"
	OpLt    Opcode = "lt"
	OpJmp   Opcode = "jmp"
	OpJz    Opcode = "jz"
	OpJnz   Opcode = "jnz"
	OpRead  Opcode = "read"
	OpWrite Opcode = "write"
	OpHalt  Opcode = "halt"
)

// Opcodes lists every opcode in the order used by the instruction encoding.
var Opcodes = []Opcode{
	OpPush, OpPop, OpDup, OpSwap, OpAdd, OpSub, OpMul, OpMod,
	OpEq, OpLt, OpJmp, OpJz, OpJnz, OpRead, OpWrite, OpHalt,
}

// TakesArg reports whether the opcode carries an immediate argument.
func (o Opcode) TakesArg() bool {
	switch o {
	case OpPush, OpDup, OpJmp, OpJz, OpJnz:
		return true
	default:
		return false
	}
}

// Valid reports whether o is a known opcode.
func (o Opcode) Valid() bool {
	for _, op := range Opcodes {
		if op == o {
			return true
		}
	}
	return false
}

// Instruction is one program step.
type Instruction struct {
	Op  Opcode `json:"op" yaml:"op" validate:"required,oneof=push pop dup swap add sub mul mod eq lt jmp jz jnz read write halt" jsonschema:"enum=push,enum=pop,enum=dup,enum=swap,enum=add,enum=sub,enum=mul,enum=mod,enum=eq,enum=lt,enum=jmp,enum=jz,enum=jnz,enum=read,enum=write,enum=halt"`
	Arg uint64 `json:"arg,omitempty" yaml:"arg,omitempty" jsonschema:"minimum=0,description=Immediate operand for push dup jmp jz and jnz"`
}

// Program is the document passed to execute.
//
// Public input is supplied separately as execute's integer arguments and is
// consumed in order by read.
type Program struct {
	Name         string        `json:"name" yaml:"name" validate:"required,max=128" jsonschema:"minLength=1,maxLength=128"`
	Instructions []Instruction `json:"instructions" yaml:"instructions" validate:"required,min=1,max=65536,dive" jsonschema:"minItems=1,maxItems=65536"`
}
