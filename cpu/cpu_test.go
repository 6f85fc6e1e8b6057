package cpu

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/ls8/io"
)

// runBytes loads and runs a program image, recording PRN output.
func runBytes(t *testing.T, program []byte) (cpu *Cpu, output *io.Recorder, err error) {
	assert := assert.New(t)

	cpu = NewCpu()
	output = &io.Recorder{}
	cpu.Output = output

	assert.NoError(cpu.Load(program))

	err = cpu.Run()
	return
}

// assemble assembles source lines, failing the test on error.
func assemble(t *testing.T, program ...string) []byte {
	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}
	return prog.Bytes()
}

func TestCpu_New(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	assert.Equal(0, cpu.Pc)
	assert.Equal(byte(STACK_TOP), cpu.Register[REGISTER_SP])
	assert.Equal(FLAG_UNSET, cpu.Equal)
	assert.True(cpu.Halted())
	assert.Equal(0, cpu.Ticks)
	for n := range REGISTER_SP {
		assert.Equal(byte(0), cpu.Register[n])
	}
	for _, value := range cpu.Memory {
		assert.Equal(byte(0), value)
	}
}

func TestCpu_Dispatch(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	for n := range 256 {
		op := Opcode(n)
		assert.Equal(op.Valid(), cpu.dispatch[op] != nil, op.String())
	}
}

func TestCpu_Print8(t *testing.T) {
	assert := assert.New(t)

	program := []byte{
		byte(OP_LDI), 0, 8,
		byte(OP_PRN), 0,
		byte(OP_HLT),
	}

	cpu, output, err := runBytes(t, program)
	assert.NoError(err)
	assert.Equal([]byte{8}, output.Values)
	assert.True(cpu.Halted())
	assert.Equal(3, cpu.Ticks)
	assert.Equal(6, cpu.Pc)
}

func TestCpu_Mult(t *testing.T) {
	assert := assert.New(t)

	program := []byte{
		byte(OP_LDI), 0, 10,
		byte(OP_LDI), 1, 20,
		byte(OP_MUL), 0, 1,
		byte(OP_PRN), 0,
		byte(OP_HLT),
	}

	_, output, err := runBytes(t, program)
	assert.NoError(err)
	assert.Equal([]byte{200}, output.Values)
}

func TestCpu_UnknownOpcode(t *testing.T) {
	assert := assert.New(t)

	for _, first := range []byte{0x00, 0xff, 0b1000_0000} {
		cpu, output, err := runBytes(t, []byte{first, byte(OP_PRN), 0})
		assert.Error(err)
		assert.True(errors.Is(err, ErrUnknownOpcode{}))

		var unknown ErrUnknownOpcode
		assert.True(errors.As(err, &unknown))
		assert.Equal(first, unknown.Opcode)
		assert.Equal(0, unknown.Pc)

		assert.Equal(0, len(output.Values))
		assert.True(cpu.Halted())
		assert.Equal(0, cpu.Ticks)
	}
}

func TestCpu_PcAdvance(t *testing.T) {
	assert := assert.New(t)

	program := []byte{
		byte(OP_LDI), 0, 1,
		byte(OP_PRN), 0,
		byte(OP_ADD), 0, 0,
		byte(OP_MUL), 0, 0,
		byte(OP_CMP), 0, 0,
		byte(OP_PUSH), 0,
		byte(OP_POP), 1,
		byte(OP_HLT),
	}

	cpu := NewCpu()
	assert.NoError(cpu.Load(program))
	cpu.Start()

	steps := 0
	for !cpu.Halted() {
		pc := cpu.Pc
		op := Opcode(cpu.Memory[pc])
		assert.NoError(cpu.Tick())
		assert.Equal(pc+op.Width(), cpu.Pc, op.String())
		steps++
	}

	assert.Equal(8, steps)
	assert.Equal(8, cpu.Ticks)
	assert.Equal(len(program), cpu.Pc)
}

func TestCpu_LdiPrn(t *testing.T) {
	assert := assert.New(t)

	for value := range 256 {
		for reg := range REGISTER_COUNT {
			program := []byte{
				byte(OP_LDI), byte(reg), byte(value),
				byte(OP_PRN), byte(reg),
				byte(OP_HLT),
			}
			_, output, err := runBytes(t, program)
			assert.NoError(err)
			assert.Equal([]byte{byte(value)}, output.Values)
		}
	}
}

func TestCpu_PushPop(t *testing.T) {
	assert := assert.New(t)

	program := []byte{
		byte(OP_LDI), 0, 42,
		byte(OP_PUSH), 0,
		byte(OP_LDI), 0, 0,
		byte(OP_POP), 0,
		byte(OP_PRN), 0,
		byte(OP_HLT),
	}

	cpu := NewCpu()
	assert.NoError(cpu.Load(program))
	cpu.Start()

	assert.NoError(cpu.Tick()) // LDI
	sp := cpu.Sp()
	assert.NoError(cpu.Tick()) // PUSH
	assert.Equal(sp-1, cpu.Sp())
	assert.Equal(byte(42), cpu.Memory[cpu.Sp()])
	assert.Equal(1, cpu.StackDepth())
	top, ok := cpu.Peek()
	assert.True(ok)
	assert.Equal(byte(42), top)

	assert.NoError(cpu.Tick()) // LDI
	assert.Equal(byte(0), cpu.Register[0])
	assert.NoError(cpu.Tick()) // POP
	assert.Equal(byte(42), cpu.Register[0])
	assert.Equal(sp, cpu.Sp())
	assert.Equal(0, cpu.StackDepth())
	_, ok = cpu.Peek()
	assert.False(ok)
}

func TestCpu_PushPopSp(t *testing.T) {
	assert := assert.New(t)

	// POP SP: SP receives the popped value, then is incremented.
	program := []byte{
		byte(OP_LDI), 0, 0x40,
		byte(OP_PUSH), 0,
		byte(OP_POP), REGISTER_SP,
		byte(OP_HLT),
	}

	cpu, _, err := runBytes(t, program)
	assert.NoError(err)
	assert.Equal(byte(0x41), cpu.Sp())
}

func TestCpu_StackWrap(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Register[REGISTER_SP] = 0

	assert.NoError(cpu.push(0x5a))
	assert.Equal(byte(0xff), cpu.Sp())
	assert.Equal(byte(0x5a), cpu.Memory[0xff])

	value, err := cpu.pop()
	assert.NoError(err)
	assert.Equal(byte(0x5a), value)
	assert.Equal(byte(0), cpu.Sp())
}

func TestCpu_CallRet(t *testing.T) {
	assert := assert.New(t)

	program := []byte{
		byte(OP_LDI), 1, 8, // 0
		byte(OP_CALL), 1, // 3
		byte(OP_PRN), 0, // 5
		byte(OP_HLT),        // 7
		byte(OP_LDI), 0, 99, // 8
		byte(OP_RET),        // 11
	}

	cpu := NewCpu()
	output := &io.Recorder{}
	cpu.Output = output
	assert.NoError(cpu.Load(program))
	cpu.Start()

	assert.NoError(cpu.Tick()) // LDI
	call_pc := cpu.Pc
	assert.NoError(cpu.Tick()) // CALL
	assert.Equal(8, cpu.Pc)
	assert.Equal(byte(STACK_TOP-1), cpu.Sp())
	assert.Equal(byte(call_pc+2), cpu.Memory[cpu.Sp()])

	assert.NoError(cpu.Tick()) // LDI
	assert.NoError(cpu.Tick()) // RET
	assert.Equal(call_pc+2, cpu.Pc)
	assert.Equal(byte(STACK_TOP), cpu.Sp())

	assert.NoError(cpu.Run())
	assert.Equal([]byte{99}, output.Values)
}

func TestCpu_CallBadRegister(t *testing.T) {
	assert := assert.New(t)

	cpu, _, err := runBytes(t, []byte{byte(OP_CALL), 9})
	assert.True(errors.Is(err, ErrOutOfBounds{}), err)
	assert.True(cpu.Halted())
	assert.Equal(0, cpu.Pc)
	assert.Equal(byte(STACK_TOP), cpu.Sp())
	assert.Equal(0, cpu.StackDepth())
	assert.Equal(byte(0), cpu.Memory[STACK_TOP-1])
}

func TestCpu_CallSp(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	assert.NoError(cpu.Load([]byte{byte(OP_CALL), REGISTER_SP}))
	cpu.Start()

	assert.NoError(cpu.Tick())
	assert.Equal(STACK_TOP-1, cpu.Pc)
	assert.Equal(byte(2), cpu.Memory[STACK_TOP-1])
}

func TestCpu_Wrap(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		op     Opcode
		a, b   byte
		result byte
	}){
		{"add", OP_ADD, 200, 100, 44},
		{"add_nowrap", OP_ADD, 1, 2, 3},
		{"add_ff", OP_ADD, 0xff, 1, 0},
		{"mul", OP_MUL, 10, 20, 200},
		{"mul_wrap", OP_MUL, 20, 20, 144},
		{"mul_zero", OP_MUL, 0xff, 0, 0},
	}

	for _, entry := range table {
		program := []byte{
			byte(OP_LDI), 0, entry.a,
			byte(OP_LDI), 1, entry.b,
			byte(entry.op), 0, 1,
			byte(OP_PRN), 0,
			byte(OP_HLT),
		}
		cpu, output, err := runBytes(t, program)
		assert.NoError(err, entry.name)
		assert.Equal([]byte{entry.result}, output.Values, entry.name)
		assert.Equal(entry.b, cpu.Register[1], entry.name)
	}
}

func TestCpu_Branch(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		a, b   int
		jump   string
		flag   Flag
		output []byte
	}){
		{"jeq_taken", 5, 5, "JEQ", FLAG_TRUE, []byte{2}},
		{"jeq_not_taken", 5, 6, "JEQ", FLAG_FALSE, []byte{1}},
		{"jne_taken", 5, 6, "JNE", FLAG_FALSE, []byte{2}},
		{"jne_not_taken", 5, 5, "JNE", FLAG_TRUE, []byte{1}},
	}

	for _, entry := range table {
		program := assemble(t,
			"LDI R0, "+strconv.Itoa(entry.a),
			"LDI R1, "+strconv.Itoa(entry.b),
			"LDI R2, target",
			"CMP R0, R1",
			entry.jump+" R2",
			"LDI R3, 1",
			"PRN R3",
			"HLT",
			"target:",
			"LDI R3, 2",
			"PRN R3",
			"HLT",
		)

		cpu, output, err := runBytes(t, program)
		assert.NoError(err, entry.name)
		assert.Equal(entry.flag, cpu.Equal, entry.name)
		assert.Equal(entry.output, output.Values, entry.name)
	}
}

func TestCpu_BranchUnset(t *testing.T) {
	assert := assert.New(t)

	// No CMP: the flag reads as not-equal.
	table := [](struct {
		jump   string
		output []byte
	}){
		{"JEQ", []byte{1}},
		{"JNE", []byte{2}},
	}

	for _, entry := range table {
		program := assemble(t,
			"LDI R2, target",
			entry.jump+" R2",
			"LDI R3, 1",
			"PRN R3",
			"HLT",
			"target: LDI R3, 2",
			"PRN R3",
			"HLT",
		)

		cpu, output, err := runBytes(t, program)
		assert.NoError(err, entry.jump)
		assert.Equal(FLAG_UNSET, cpu.Equal, entry.jump)
		assert.Equal(entry.output, output.Values, entry.jump)
	}
}

func TestCpu_FlagPersists(t *testing.T) {
	assert := assert.New(t)

	program := assemble(t,
		"LDI R0, 7",
		"LDI R1, 7",
		"CMP R0, R1",
		"LDI R0, 8", // does not touch EQUAL
		"ADD R0, R1",
		"PUSH R0",
		"POP R0",
		"HLT",
	)

	cpu, _, err := runBytes(t, program)
	assert.NoError(err)
	assert.Equal(FLAG_TRUE, cpu.Equal)
	assert.Equal(byte(15), cpu.Register[0])
}

func TestCpu_Jmp(t *testing.T) {
	assert := assert.New(t)

	program := assemble(t,
		"LDI R0, skip",
		"JMP R0",
		".db 0", // never executed
		"skip: LDI R1, 3",
		"PRN R1",
		"HLT",
	)

	_, output, err := runBytes(t, program)
	assert.NoError(err)
	assert.Equal([]byte{3}, output.Values)
}

func TestCpu_Loop(t *testing.T) {
	assert := assert.New(t)

	// Count down from 3 to 1.
	program := assemble(t,
		"LDI R0, 3",
		"LDI R1, 0xff", // -1
		"LDI R2, 0",
		"LDI R3, loop",
		"LDI R4, done",
		"loop:",
		"PRN R0",
		"ADD R0, R1",
		"CMP R0, R2",
		"JEQ R4",
		"JMP R3",
		"done: HLT",
	)

	_, output, err := runBytes(t, program)
	assert.NoError(err)
	assert.Equal([]byte{3, 2, 1}, output.Values)
}

func TestCpu_OutOfBounds(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []byte
		op      Opcode
	}){
		{"ldi_register", []byte{byte(OP_LDI), 8, 1}, OP_LDI},
		{"prn_register", []byte{byte(OP_PRN), 0xff}, OP_PRN},
		{"add_register_b", []byte{byte(OP_ADD), 0, 9}, OP_ADD},
		{"push_register", []byte{byte(OP_PUSH), 8}, OP_PUSH},
		{"pop_register", []byte{byte(OP_POP), 8}, OP_POP},
		{"jmp_register", []byte{byte(OP_JMP), 8}, OP_JMP},
		{"jne_register", []byte{byte(OP_JNE), 8}, OP_JNE},
	}

	for _, entry := range table {
		cpu, _, err := runBytes(t, entry.program)
		assert.True(errors.Is(err, ErrOutOfBounds{}), entry.name)
		assert.True(errors.Is(err, ErrOpcode{}), entry.name)

		var at ErrOpcode
		assert.True(errors.As(err, &at), entry.name)
		assert.Equal(entry.op, at.Opcode, entry.name)
		assert.Equal(0, at.Pc, entry.name)

		var oob ErrOutOfBounds
		assert.True(errors.As(err, &oob), entry.name)
		assert.Equal("register", oob.What, entry.name)
		assert.Equal(REGISTER_COUNT, oob.Limit, entry.name)

		assert.True(cpu.Halted(), entry.name)
	}
}

func TestCpu_RunOffMemory(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Memory[0xff] = byte(OP_PRN)
	cpu.Pc = 0xff
	cpu.Start()

	err := cpu.Tick()
	assert.True(errors.Is(err, ErrOutOfBounds{}))

	var oob ErrOutOfBounds
	assert.True(errors.As(err, &oob))
	assert.Equal("address", oob.What)
	assert.Equal(MEMORY_SIZE, oob.Index)
	assert.True(cpu.Halted())

	// Fetch past the end of memory.
	cpu.Pc = MEMORY_SIZE
	cpu.Start()
	err = cpu.Tick()
	assert.True(errors.Is(err, ErrOutOfBounds{}))
	assert.False(errors.Is(err, ErrOpcode{}))
}

func TestCpu_Halted(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	err := cpu.Tick()
	assert.True(errors.Is(err, ErrHalted))

	cpu.Memory[0] = byte(OP_HLT)
	assert.NoError(cpu.Run())
	assert.True(cpu.Halted())
	assert.Equal(1, cpu.Pc)

	err = cpu.Tick()
	assert.True(errors.Is(err, ErrHalted))
	assert.Equal(1, cpu.Ticks)
}

func TestCpu_Load(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	assert.NoError(cpu.Load(make([]byte, MEMORY_SIZE)))

	cpu.Memory[0] = 0x12
	err := cpu.Load(make([]byte, MEMORY_SIZE+1))
	assert.True(errors.Is(err, ErrLoad))

	var size ErrProgramSize
	assert.True(errors.As(err, &size))
	assert.Equal(ErrProgramSize(MEMORY_SIZE+1), size)

	// Untouched on failure.
	assert.Equal(byte(0x12), cpu.Memory[0])
}

func TestCpu_Reset(t *testing.T) {
	assert := assert.New(t)

	cpu, _, err := runBytes(t, assemble(t,
		"LDI R0, 1",
		"LDI R1, 1",
		"CMP R0, R1",
		"PUSH R0",
		"HLT",
	))
	assert.NoError(err)
	assert.NotEqual(0, cpu.Ticks)

	cpu.Reset()
	assert.Equal(0, cpu.Pc)
	assert.Equal(0, cpu.Ticks)
	assert.Equal(FLAG_UNSET, cpu.Equal)
	assert.Equal(byte(STACK_TOP), cpu.Sp())
	assert.Equal(byte(0), cpu.Register[0])
	assert.Equal(byte(0), cpu.Memory[0])
	assert.True(cpu.Halted())
}

func TestCpu_NilOutput(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	assert.NoError(cpu.Load([]byte{byte(OP_PRN), 0, byte(OP_HLT)}))
	assert.NoError(cpu.Run())
	assert.Equal(3, cpu.Pc)
}

type failPrinter struct{}

func (failPrinter) Print(value byte) error {
	return errors.New("printer jammed")
}

func TestCpu_OutputError(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Output = failPrinter{}
	assert.NoError(cpu.Load([]byte{byte(OP_PRN), 0, byte(OP_HLT)}))

	err := cpu.Run()
	assert.Error(err)
	assert.True(errors.Is(err, ErrOpcode{}))
	assert.Equal(0, cpu.Pc)
	assert.True(cpu.Halted())
}

func TestCpu_String(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	assert.NoError(cpu.Load([]byte{byte(OP_LDI), 0, 8}))
	assert.Equal("TRACE: 00 | 82 00 08 | 00 00 00 00 00 00 00 FF", cpu.String())

	cpu.Pc = 0xfe
	assert.Equal("TRACE: FE | 00 00 -- | 00 00 00 00 00 00 00 FF", cpu.String())
}

func TestCpu_Defines(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	defines := map[string]string{}
	for name, value := range cpu.Defines() {
		defines[name] = value
	}

	assert.Equal("256", defines["MEMORY_SIZE"])
	assert.Equal("8", defines["REGISTERS"])
	assert.Equal("0xff", defines["STACK_TOP"])
}
