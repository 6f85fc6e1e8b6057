// Package io provides the output devices for the LS-8 emulator.
// The CPU emits every PRN value to a Printer; Tape writes the values to a
// byte stream, Recorder keeps them in memory.
package io

// Printer defines the interface for the output collaborator of the CPU.
type Printer interface {
	// Print makes a register value observable.
	Print(value byte) error
}
