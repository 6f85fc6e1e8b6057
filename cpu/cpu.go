package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"strings"

	"github.com/ezrec/ls8/io"
)

// Printer is the output collaborator of the PRN instruction.
type Printer io.Printer

var _cpu_defines = map[string]string{
	"MEMORY_SIZE": fmt.Sprintf("%d", MEMORY_SIZE),
	"REGISTERS":   fmt.Sprintf("%d", REGISTER_COUNT),
	"STACK_TOP":   fmt.Sprintf("0x%x", STACK_TOP),
}

// handler executes one instruction, and advances or overwrites the PC.
type handler func(cpu *Cpu) error

// Cpu is the simulation context for the LS-8 processor.
type Cpu struct {
	Verbose bool    // Set to enable verbose logging.
	Output  Printer // Receives PRN values. If nil, values are dropped.

	Pc       int       // Address of the next instruction to fetch.
	Register Registers // Register bank; R7 is the stack pointer.
	Memory   Memory    // Program and stack memory.
	Equal    Flag      // Result of the last CMP.
	Running  bool      // Cleared by HLT and by any fatal error.

	Ticks int // Instructions executed since Reset.

	dispatch [256]handler // Opcode to instruction handler.
}

// NewCpu creates a new, reset, CPU.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}

	cpu.dispatch[OP_HLT] = (*Cpu).opHlt
	cpu.dispatch[OP_LDI] = (*Cpu).opLdi
	cpu.dispatch[OP_PRN] = (*Cpu).opPrn
	cpu.dispatch[OP_ADD] = (*Cpu).opAdd
	cpu.dispatch[OP_MUL] = (*Cpu).opMul
	cpu.dispatch[OP_CMP] = (*Cpu).opCmp
	cpu.dispatch[OP_PUSH] = (*Cpu).opPush
	cpu.dispatch[OP_POP] = (*Cpu).opPop
	cpu.dispatch[OP_CALL] = (*Cpu).opCall
	cpu.dispatch[OP_RET] = (*Cpu).opRet
	cpu.dispatch[OP_JMP] = (*Cpu).opJmp
	cpu.dispatch[OP_JEQ] = (*Cpu).opJeq
	cpu.dispatch[OP_JNE] = (*Cpu).opJne

	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Zero fills memory and registers.
// - Empties the stack (SP = 0xff).
// - Clears the EQUAL flag, PC and tick counter.
// - Leaves the CPU halted.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Memory.Reset()
	cpu.Register.Reset()
	cpu.Pc = 0
	cpu.Equal = FLAG_UNSET
	cpu.Running = false
	cpu.Ticks = 0
}

// Load places a program into memory, starting at address 0.
func (cpu *Cpu) Load(program []byte) (err error) {
	if len(program) > len(cpu.Memory) {
		err = errors.Join(ErrLoad, ErrProgramSize(len(program)))
		return
	}

	copy(cpu.Memory[:], program)

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes", len(program))
	}

	return
}

// Start puts the CPU in the running state.
func (cpu *Cpu) Start() {
	cpu.Running = true
}

// Halted returns true once HLT executed, or a fatal error occurred.
func (cpu *Cpu) Halted() bool {
	return !cpu.Running
}

// Run starts the CPU and executes instructions until halted.
func (cpu *Cpu) Run() (err error) {
	cpu.Start()

	for cpu.Running {
		err = cpu.Tick()
		if err != nil {
			return
		}
	}

	return
}

// String returns the current CPU state as a trace line:
// PC, the three bytes at PC, then R0 to R7.
func (cpu *Cpu) String() string {
	var text strings.Builder

	fmt.Fprintf(&text, "TRACE: %02X |", cpu.Pc)
	for n := range 3 {
		value, err := cpu.Memory.Read(cpu.Pc + n)
		if err != nil {
			text.WriteString(" --")
		} else {
			fmt.Fprintf(&text, " %02X", value)
		}
	}
	text.WriteString(" |")

	for _, value := range cpu.Register {
		fmt.Fprintf(&text, " %02X", value)
	}

	return text.String()
}

// Tick executes a single instruction cycle: fetch, dispatch, execute.
// Any error is fatal, and halts the CPU.
func (cpu *Cpu) Tick() (err error) {
	if !cpu.Running {
		err = ErrHalted
		return
	}

	defer func() {
		if err != nil {
			cpu.Running = false
		}
	}()

	value, err := cpu.Memory.Read(cpu.Pc)
	if err != nil {
		return
	}

	op := Opcode(value)
	execute := cpu.dispatch[op]
	if execute == nil {
		err = ErrUnknownOpcode{Opcode: value, Pc: cpu.Pc}
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: %v", cpu)
	}

	pc := cpu.Pc
	err = execute(cpu)
	if err != nil {
		err = errors.Join(ErrOpcode{Opcode: op, Pc: pc}, err)
		return
	}

	cpu.Ticks++

	return
}

// operand returns the n'th operand byte of the current instruction.
func (cpu *Cpu) operand(n int) (value byte, err error) {
	return cpu.Memory.Read(cpu.Pc + n)
}

// operands returns the two operand bytes of the current instruction.
func (cpu *Cpu) operands() (a, b int, err error) {
	value_a, err := cpu.operand(1)
	if err != nil {
		return
	}
	value_b, err := cpu.operand(2)
	if err != nil {
		return
	}

	a = int(value_a)
	b = int(value_b)
	return
}

// operandRegister returns the value of the register named by the first operand.
func (cpu *Cpu) operandRegister() (value byte, err error) {
	index, err := cpu.operand(1)
	if err != nil {
		return
	}

	return cpu.Register.Get(int(index))
}
