package cpu

import (
	"github.com/ezrec/ls8/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalted         = translate.Error("cpu halted")
	ErrAluUnsupported = translate.Error("unsupported alu operation")
	ErrLoad           = translate.Error("program load failed")

	// Assembler errors
	ErrEquateSyntax       = translate.Error(".equ syntax")
	ErrEquateDuplicate    = translate.Error(".equ duplicated")
	ErrOrgBackwards       = translate.Error(".org before current address")
	ErrLabelDuplicate     = translate.Error("label duplicated")
	ErrLabelInvalid       = translate.Error("label invalid")
	ErrOpcodeExtraArgs    = translate.Error("excessive arguments")
	ErrOpcodeValueMissing = translate.Error("value missing")
	ErrRegisterInvalid    = translate.Error("register invalid")
	ErrInstructionInvalid = translate.Error("instruction invalid")
)

// ErrOutOfBounds is a memory address or register index outside of its range.
type ErrOutOfBounds struct {
	What  string // "address" or "register"
	Index int
	Limit int
}

func (err ErrOutOfBounds) Error() string {
	return f("%v %d out of bounds 0..%d", err.What, err.Index, err.Limit-1)
}

func (err ErrOutOfBounds) Is(target error) (ok bool) {
	_, ok = target.(ErrOutOfBounds)
	return
}

// ErrUnknownOpcode is a fetched byte with no instruction handler.
type ErrUnknownOpcode struct {
	Opcode byte
	Pc     int
}

func (err ErrUnknownOpcode) Error() string {
	return f("unknown opcode 0x%02x (0b%08b) at pc 0x%02x", err.Opcode, err.Opcode, err.Pc)
}

func (err ErrUnknownOpcode) Is(target error) (ok bool) {
	_, ok = target.(ErrUnknownOpcode)
	return
}

// ErrOpcode locates the instruction that failed.
type ErrOpcode struct {
	Opcode Opcode
	Pc     int
}

func (err ErrOpcode) Error() string {
	return f("%v at pc 0x%02x", err.Opcode.String(), err.Pc)
}

func (err ErrOpcode) Is(target error) (ok bool) {
	_, ok = target.(ErrOpcode)
	return
}

// ErrProgramSize is a program that does not fit in memory.
type ErrProgramSize int

func (err ErrProgramSize) Error() string {
	return f("program of %d bytes exceeds %d bytes of memory", int(err), MEMORY_SIZE)
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("%v is not a character", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrValueRange int

func (err ErrValueRange) Error() string {
	return f("%d does not fit in a byte", int(err))
}
