package cpu

const (
	MEMORY_SIZE = 256 // Bytes of addressable memory.
)

// Memory is the flat LS-8 address space. It holds the loaded program and
// the stack.
type Memory [MEMORY_SIZE]byte

// Read returns the byte at an address.
func (mem *Memory) Read(addr int) (value byte, err error) {
	if addr < 0 || addr >= len(mem) {
		err = ErrOutOfBounds{What: "address", Index: addr, Limit: len(mem)}
		return
	}

	value = mem[addr]
	return
}

// Write stores a byte at an address.
func (mem *Memory) Write(addr int, value byte) (err error) {
	if addr < 0 || addr >= len(mem) {
		err = ErrOutOfBounds{What: "address", Index: addr, Limit: len(mem)}
		return
	}

	mem[addr] = value
	return
}

// Reset zero fills the memory.
func (mem *Memory) Reset() {
	clear(mem[:])
}
