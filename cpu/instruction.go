package cpu

// Instruction handlers. Each handler consumes its own operands, and is
// solely responsible for moving the PC past its instruction, unless it
// branches.

func (cpu *Cpu) opHlt() (err error) {
	cpu.Running = false
	cpu.Pc += OP_HLT.Width()
	return
}

func (cpu *Cpu) opLdi() (err error) {
	reg, value, err := cpu.operands()
	if err != nil {
		return
	}

	err = cpu.Register.Set(reg, byte(value))
	if err != nil {
		return
	}

	cpu.Pc += OP_LDI.Width()
	return
}

func (cpu *Cpu) opPrn() (err error) {
	value, err := cpu.operandRegister()
	if err != nil {
		return
	}

	if cpu.Output != nil {
		err = cpu.Output.Print(value)
		if err != nil {
			return
		}
	}

	cpu.Pc += OP_PRN.Width()
	return
}

// aluOp runs a two register ALU instruction.
func (cpu *Cpu) aluOp(op AluOp, width int) (err error) {
	reg_a, reg_b, err := cpu.operands()
	if err != nil {
		return
	}

	err = cpu.alu(op, reg_a, reg_b)
	if err != nil {
		return
	}

	cpu.Pc += width
	return
}

func (cpu *Cpu) opAdd() error {
	return cpu.aluOp(ALU_OP_ADD, OP_ADD.Width())
}

func (cpu *Cpu) opMul() error {
	return cpu.aluOp(ALU_OP_MUL, OP_MUL.Width())
}

func (cpu *Cpu) opCmp() error {
	return cpu.aluOp(ALU_OP_CMP, OP_CMP.Width())
}

func (cpu *Cpu) opPush() (err error) {
	value, err := cpu.operandRegister()
	if err != nil {
		return
	}

	err = cpu.push(value)
	if err != nil {
		return
	}

	cpu.Pc += OP_PUSH.Width()
	return
}

func (cpu *Cpu) opPop() (err error) {
	reg, err := cpu.operand(1)
	if err != nil {
		return
	}

	value, err := cpu.Memory.Read(int(cpu.Sp()))
	if err != nil {
		return
	}

	err = cpu.Register.Set(int(reg), value)
	if err != nil {
		return
	}

	// POP SP leaves SP at the popped value plus one.
	cpu.Register[REGISTER_SP]++

	cpu.Pc += OP_POP.Width()
	return
}

func (cpu *Cpu) opCall() (err error) {
	reg, err := cpu.operand(1)
	if err != nil {
		return
	}

	// The register is checked before the stack is touched.
	_, err = cpu.Register.Get(int(reg))
	if err != nil {
		return
	}

	// Return address is the instruction after the 2 byte CALL.
	err = cpu.push(byte(cpu.Pc + OP_CALL.Width()))
	if err != nil {
		return
	}

	// CALL SP jumps to the decremented SP.
	target := cpu.Register[reg]

	cpu.Pc = int(target)
	return
}

func (cpu *Cpu) opRet() (err error) {
	target, err := cpu.pop()
	if err != nil {
		return
	}

	cpu.Pc = int(target)
	return
}

func (cpu *Cpu) opJmp() (err error) {
	target, err := cpu.operandRegister()
	if err != nil {
		return
	}

	cpu.Pc = int(target)
	return
}

// jumpIf branches to the register operand when taken, otherwise steps over
// the instruction.
func (cpu *Cpu) jumpIf(taken bool, width int) (err error) {
	target, err := cpu.operandRegister()
	if err != nil {
		return
	}

	if taken {
		cpu.Pc = int(target)
	} else {
		cpu.Pc += width
	}

	return
}

func (cpu *Cpu) opJeq() error {
	return cpu.jumpIf(cpu.Equal.IsTrue(), OP_JEQ.Width())
}

func (cpu *Cpu) opJne() error {
	return cpu.jumpIf(!cpu.Equal.IsTrue(), OP_JNE.Width())
}
