package cpu

// AluOp is an ALU operation type.
type AluOp int

//go:generate go tool stringer -linecomment -type=AluOp
const (
	ALU_OP_ADD = AluOp(0) // add
	ALU_OP_MUL = AluOp(1) // mul
	ALU_OP_CMP = AluOp(2) // cmp
)

// alu performs the requested ALU action on two registers.
// ADD and MUL write their result to reg_a; CMP only sets the EQUAL flag.
func (cpu *Cpu) alu(op AluOp, reg_a, reg_b int) (err error) {
	a, err := cpu.Register.Get(reg_a)
	if err != nil {
		return
	}
	b, err := cpu.Register.Get(reg_b)
	if err != nil {
		return
	}

	switch op {
	case ALU_OP_ADD:
		err = cpu.Register.Set(reg_a, a+b)
	case ALU_OP_MUL:
		err = cpu.Register.Set(reg_a, a*b)
	case ALU_OP_CMP:
		cpu.Equal = flagOf(a == b)
	default:
		err = ErrAluUnsupported
	}

	return
}
