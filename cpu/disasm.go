package cpu

import (
	"fmt"
	"iter"
	"strings"
)

// registerName returns the assembler name of a register operand.
func registerName(index byte) string {
	if int(index) >= REGISTER_COUNT {
		return fmt.Sprintf("%d", index)
	}
	return fmt.Sprintf("R%d", index)
}

// Format returns the assembly language representation of an instruction
// and its operand bytes.
func Format(op Opcode, operands []byte) string {
	words := []string{op.String()}

	for n, value := range operands {
		if op == OP_LDI && n == 1 {
			words = append(words, fmt.Sprintf("%d", value))
		} else {
			words = append(words, registerName(value))
		}
	}

	if len(words) == 1 {
		return words[0]
	}

	return words[0] + " " + strings.Join(words[1:], ", ")
}

// Disassemble iterates over the instructions of a memory image, yielding
// the address and assembly text of each. Bytes that are not a complete
// instruction are yielded as .db data.
func Disassemble(image []byte) iter.Seq2[int, string] {
	return func(yield func(addr int, text string) bool) {
		for addr := 0; addr < len(image); {
			op := Opcode(image[addr])
			width := op.Width()

			if !op.Valid() || addr+width > len(image) {
				if !yield(addr, fmt.Sprintf(".db 0x%02x", image[addr])) {
					return
				}
				addr++
				continue
			}

			if !yield(addr, Format(op, image[addr+1:addr+width])) {
				return
			}
			addr += width
		}
	}
}
