// Package cpu implements the processor and assembler for the LS-8 system.
//
// The CPU consists of a program counter (PC), eight 8-bit registers (R0-R7,
// where R7 is the stack pointer), an ALU, a 256 byte memory holding both the
// program and a downward growing stack, and an EQUAL comparison flag.
// Instructions are one to three bytes long; the two upper bits of an opcode
// give its operand count.
//
// The assembler provides a small assembly language for the LS-8 instruction
// set, supporting labels, equates, raw data and compile-time expression
// evaluation. ParseBinary reads the textual .ls8 image format.
package cpu
