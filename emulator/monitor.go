package emulator

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/ezrec/ls8/cpu"
)

// Breakpoint stops a monitor 'continue' before the instruction at Addr.
type Breakpoint struct {
	Addr int
}

// Monitor is an interactive command interpreter for stepping through a
// program running in the emulator.
type Monitor struct {
	*Emulator
	Output io.Writer // Monitor responses.

	Breakpoints []Breakpoint
}

// NewMonitor creates a monitor for an emulator.
func NewMonitor(emu *Emulator, output io.Writer) *Monitor {
	return &Monitor{
		Emulator: emu,
		Output:   output,
	}
}

const monitorHelp = `step [n]          execute n instructions (default 1)
continue          run until halt or breakpoint
regs              show registers
mem [addr [n]]    dump n bytes of memory (default 16)
list [addr [n]]   disassemble n instructions (default 8)
break addr        set a breakpoint
delete addr       remove a breakpoint
reset             reload the program
quit              leave the monitor`

// Exec executes one monitor command line.
func (mon *Monitor) Exec(line string) (quit bool, err error) {
	words := strings.Fields(line)
	if len(words) == 0 {
		return
	}

	args := words[1:]

	switch words[0] {
	case "q", "quit":
		quit = true
	case "h", "help", "?":
		mon.printf("%v\n", monitorHelp)
		mon.Instructions()
	case "s", "step":
		var count int
		count, err = argument(args, 0, 1)
		if err != nil {
			return
		}
		err = mon.Step(count)
	case "c", "continue":
		err = mon.Continue()
	case "r", "regs":
		mon.Regs()
	case "m", "mem":
		var addr, count int
		addr, err = argument(args, 0, 0)
		if err != nil {
			return
		}
		if addr < 0 {
			err = ErrMonitorArgument
			return
		}
		count, err = argument(args, 1, 16)
		if err != nil {
			return
		}
		mon.Dump(addr, count)
	case "l", "list":
		var addr, count int
		addr, err = argument(args, 0, mon.Cpu.Pc)
		if err != nil {
			return
		}
		count, err = argument(args, 1, 8)
		if err != nil {
			return
		}
		mon.List(addr, count)
	case "b", "break":
		var addr int
		addr, err = requiredArgument(args)
		if err != nil {
			return
		}
		mon.SetBreakpoint(addr)
	case "d", "delete":
		var addr int
		addr, err = requiredArgument(args)
		if err != nil {
			return
		}
		mon.DeleteBreakpoint(addr)
	case "reset":
		err = mon.Emulator.Reset()
	default:
		err = ErrMonitorCommand
	}

	return
}

func (mon *Monitor) printf(format string, args ...any) {
	fmt.Fprintf(mon.Output, format, args...)
}

// argument parses the n'th argument as a number, or returns the default.
func argument(args []string, n int, def int) (value int, err error) {
	if n >= len(args) {
		value = def
		return
	}

	v64, err := strconv.ParseInt(args[n], 0, 0)
	if err != nil {
		err = errors.Join(ErrMonitorArgument, err)
		return
	}

	value = int(v64)
	return
}

// requiredArgument parses the one and only argument.
func requiredArgument(args []string) (value int, err error) {
	if len(args) != 1 {
		err = ErrMonitorArgument
		return
	}

	return argument(args, 0, 0)
}

// Step executes up to count instructions, showing the state after each.
func (mon *Monitor) Step(count int) (err error) {
	for range count {
		var done bool
		done, err = mon.Emulator.Tick()
		if err != nil {
			return
		}
		mon.printf("%v\n", mon.Cpu)
		if done {
			mon.printf("halted\n")
			return
		}
	}

	return
}

// Continue runs until the program halts, or the PC reaches a breakpoint.
func (mon *Monitor) Continue() (err error) {
	for first := true; ; first = false {
		if !first && mon.IsBreakpoint(mon.Cpu.Pc) {
			mon.printf("break at 0x%02x\n", mon.Cpu.Pc)
			return
		}

		var done bool
		done, err = mon.Emulator.Tick()
		if err != nil {
			return
		}
		if done {
			mon.printf("halted after %d instructions\n", mon.Cpu.Ticks)
			return
		}
	}
}

// Regs shows the registers, the EQUAL flag and the top of stack.
func (mon *Monitor) Regs() {
	c := mon.Cpu

	mon.printf("%v\n", c)

	top := "--"
	if value, ok := c.Peek(); ok {
		top = fmt.Sprintf("%02X", value)
	}

	mon.printf("pc: %02X equal: %v sp: %02X top: %v depth: %d ticks: %d\n",
		c.Pc, c.Equal, c.Sp(), top, c.StackDepth(), c.Ticks)
}

// Dump shows count bytes of memory from addr, 16 bytes per line.
func (mon *Monitor) Dump(addr int, count int) {
	end := min(addr+count, cpu.MEMORY_SIZE)
	for row := addr; row < end; row += 16 {
		var text strings.Builder
		fmt.Fprintf(&text, "%02X:", row)
		for n := row; n < row+16 && n < end; n++ {
			value, err := mon.Cpu.Memory.Read(n)
			if err != nil {
				break
			}
			fmt.Fprintf(&text, " %02X", value)
		}
		mon.printf("%v\n", text.String())
	}
}

// List disassembles count instructions, starting with the first
// instruction at or after addr.
func (mon *Monitor) List(addr int, count int) {
	if count <= 0 {
		return
	}

	for at, text := range cpu.Disassemble(mon.Cpu.Memory[:]) {
		if at < addr {
			continue
		}

		mark := " "
		switch {
		case at == mon.Cpu.Pc:
			mark = ">"
		case mon.IsBreakpoint(at):
			mark = "*"
		}

		var note string
		if at == mon.Cpu.Pc {
			note = mon.annotate(at)
		}

		mon.printf("%v %02X: %v%v\n", mark, at, text, note)

		count--
		if count == 0 {
			return
		}
	}
}

// annotate describes the operands of a valid instruction at addr, using the
// current register values: ALU inputs, or the target of a PC write.
func (mon *Monitor) annotate(addr int) (note string) {
	c := mon.Cpu

	op := cpu.Opcode(c.Memory[addr])
	if !op.Valid() || addr+op.Width() > len(c.Memory) {
		return
	}

	switch {
	case op.IsAlu():
		a, err := c.Register.Get(int(c.Memory[addr+1]))
		if err != nil {
			return
		}
		b, err := c.Register.Get(int(c.Memory[addr+2]))
		if err != nil {
			return
		}
		note = fmt.Sprintf(" ; %02X %02X", a, b)
	case op.SetsPc():
		var target byte
		if op == cpu.OP_RET {
			target = c.Memory[c.Sp()]
		} else {
			var err error
			target, err = c.Register.Get(int(c.Memory[addr+1]))
			if err != nil {
				return
			}
		}
		note = fmt.Sprintf(" ; -> %02X", target)
		if (op == cpu.OP_JEQ && !c.Equal.IsTrue()) || (op == cpu.OP_JNE && c.Equal.IsTrue()) {
			note += " not taken"
		}
	}

	return
}

// Instructions shows the instruction set.
func (mon *Monitor) Instructions() {
	var names []string
	for op := range cpu.Opcodes() {
		names = append(names, op.String())
	}
	mon.printf("instructions: %v\n", strings.Join(names, " "))
}

// SetBreakpoint adds a breakpoint, if not already present.
func (mon *Monitor) SetBreakpoint(addr int) {
	if mon.IsBreakpoint(addr) {
		return
	}

	mon.Breakpoints = append(mon.Breakpoints, Breakpoint{Addr: addr})
}

// DeleteBreakpoint removes a breakpoint.
func (mon *Monitor) DeleteBreakpoint(addr int) {
	mon.Breakpoints = slices.DeleteFunc(mon.Breakpoints, func(bp Breakpoint) bool {
		return bp.Addr == addr
	})
}

// IsBreakpoint returns true if there is a breakpoint at the address.
func (mon *Monitor) IsBreakpoint(addr int) bool {
	return slices.Contains(mon.Breakpoints, Breakpoint{Addr: addr})
}
