package cpu

// push decrements SP and stores the value at the new top of stack.
func (cpu *Cpu) push(value byte) (err error) {
	sp := cpu.Register[REGISTER_SP] - 1
	cpu.Register[REGISTER_SP] = sp

	return cpu.Memory.Write(int(sp), value)
}

// pop loads the value at the top of stack and increments SP.
func (cpu *Cpu) pop() (value byte, err error) {
	sp := cpu.Register[REGISTER_SP]

	value, err = cpu.Memory.Read(int(sp))
	if err != nil {
		return
	}

	cpu.Register[REGISTER_SP] = sp + 1
	return
}

// Sp returns the stack pointer.
func (cpu *Cpu) Sp() byte {
	return cpu.Register[REGISTER_SP]
}

// StackDepth returns the number of bytes pushed since Reset.
func (cpu *Cpu) StackDepth() int {
	return int(byte(STACK_TOP - cpu.Sp()))
}

// Peek returns the value at the top of the stack.
func (cpu *Cpu) Peek() (value byte, ok bool) {
	if cpu.StackDepth() == 0 {
		return
	}

	return cpu.Memory[cpu.Sp()], true
}
