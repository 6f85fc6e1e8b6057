package cpu

import (
	"iter"
	"slices"
	"strings"
)

// Opcode is an LS-8 instruction byte.
type Opcode byte

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_HLT  = Opcode(0b0000_0001) // HLT
	OP_RET  = Opcode(0b0001_0001) // RET
	OP_PUSH = Opcode(0b0100_0101) // PUSH
	OP_POP  = Opcode(0b0100_0110) // POP
	OP_PRN  = Opcode(0b0100_0111) // PRN
	OP_CALL = Opcode(0b0101_0000) // CALL
	OP_JMP  = Opcode(0b0101_0100) // JMP
	OP_JEQ  = Opcode(0b0101_0101) // JEQ
	OP_JNE  = Opcode(0b0101_0110) // JNE
	OP_LDI  = Opcode(0b1000_0010) // LDI
	OP_ADD  = Opcode(0b1010_0000) // ADD
	OP_MUL  = Opcode(0b1010_0010) // MUL
	OP_CMP  = Opcode(0b1010_0111) // CMP
)

// Opcode encoding fields.
const (
	OPCODE_OPERANDS_SHIFT = 6           // Operand count in bits 7..6.
	OPCODE_ALU            = 0b0010_0000 // Set for ALU instructions.
	OPCODE_SETS_PC        = 0b0001_0000 // Set for instructions that may write the PC.
)

// opcodes is the closed instruction set, in encoding order.
var opcodes = []Opcode{
	OP_HLT, OP_RET,
	OP_PUSH, OP_POP, OP_PRN,
	OP_CALL, OP_JMP, OP_JEQ, OP_JNE,
	OP_LDI,
	OP_ADD, OP_MUL, OP_CMP,
}

// Opcodes returns the instruction set.
func Opcodes() iter.Seq[Opcode] {
	return slices.Values(opcodes)
}

// ParseOpcode returns the opcode of a mnemonic, ignoring case.
func ParseOpcode(name string) (op Opcode, ok bool) {
	name = strings.ToUpper(name)
	for op = range Opcodes() {
		if op.String() == name {
			ok = true
			return
		}
	}

	op = 0
	return
}

// Valid returns true if the opcode is part of the instruction set.
func (op Opcode) Valid() bool {
	return slices.Contains(opcodes, op)
}

// Operands returns the number of operand bytes following the opcode.
func (op Opcode) Operands() int {
	return int(op >> OPCODE_OPERANDS_SHIFT)
}

// Width returns the instruction length in bytes.
func (op Opcode) Width() int {
	return 1 + op.Operands()
}

// IsAlu returns true for instructions executed by the ALU.
func (op Opcode) IsAlu() bool {
	return (op & OPCODE_ALU) != 0
}

// SetsPc returns true for instructions that may overwrite the PC.
func (op Opcode) SetsPc() bool {
	return (op & OPCODE_SETS_PC) != 0
}
