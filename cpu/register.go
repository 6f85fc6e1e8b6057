package cpu

const (
	REGISTER_COUNT = 8    // General purpose registers.
	REGISTER_SP    = 7    // Register used as the stack pointer.
	STACK_TOP      = 0xff // Initial stack pointer, the empty stack.
)

// Registers is the register bank. Values wrap modulo 256.
type Registers [REGISTER_COUNT]byte

// Get returns the value of a register.
func (reg *Registers) Get(index int) (value byte, err error) {
	if index < 0 || index >= len(reg) {
		err = ErrOutOfBounds{What: "register", Index: index, Limit: len(reg)}
		return
	}

	value = reg[index]
	return
}

// Set writes the value of a register.
func (reg *Registers) Set(index int, value byte) (err error) {
	if index < 0 || index >= len(reg) {
		err = ErrOutOfBounds{What: "register", Index: index, Limit: len(reg)}
		return
	}

	reg[index] = value
	return
}

// Reset clears the registers and empties the stack.
func (reg *Registers) Reset() {
	clear(reg[:])
	reg[REGISTER_SP] = STACK_TOP
}
