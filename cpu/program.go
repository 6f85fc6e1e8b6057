package cpu

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strings"
)

// Statement represents a line of source with its address and generated bytes.
type Statement struct {
	LineNo    int
	Address   int
	Words     []string
	Bytes     []byte
	LinkLabel string // Label whose address patches Bytes[LinkIndex].
	LinkIndex int
}

// Program is a listing of statements, laid out from address 0.
type Program struct {
	Statements []Statement
}

type Debug struct {
	*Statement
	Index int
}

// Debug returns the statement that generated the byte at an address.
func (prog *Program) Debug(addr int) (dbg Debug) {
	for n, st := range prog.Statements {
		if addr >= st.Address && addr < st.Address+len(st.Bytes) {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     addr - st.Address,
			}
			break
		}
	}

	return
}

// Size returns the number of bytes in the memory image.
func (prog *Program) Size() int {
	if len(prog.Statements) == 0 {
		return 0
	}

	last := prog.Statements[len(prog.Statements)-1]

	return last.Address + len(last.Bytes)
}

// Bytes returns the memory image, loaded at address 0.
// Gaps between statements are zero filled.
func (prog *Program) Bytes() (image []byte) {
	image = make([]byte, prog.Size())
	for addr, value := range prog.Image() {
		image[addr] = value
	}

	return
}

// Image iterates over the address and value of every generated byte.
func (prog *Program) Image() iter.Seq2[int, byte] {
	return func(yield func(addr int, value byte) bool) {
		for _, st := range prog.Statements {
			for n, value := range st.Bytes {
				if !yield(st.Address+n, value) {
					return
				}
			}
		}
	}
}

// WriteTo writes the program in the .ls8 text format: one binary byte per
// line, with the source of each statement as a trailing comment.
func (prog *Program) WriteTo(w io.Writer) (n int64, err error) {
	out := bufio.NewWriter(w)

	var written int
	line := func(text string) {
		if err != nil {
			return
		}
		written, err = fmt.Fprintln(out, text)
		n += int64(written)
	}

	addr := 0
	for _, st := range prog.Statements {
		for ; addr < st.Address; addr++ {
			line(fmt.Sprintf("%08b", 0))
		}
		for index, value := range st.Bytes {
			text := fmt.Sprintf("%08b", value)
			if index == 0 && len(st.Words) > 0 {
				text += " # " + strings.Join(st.Words, " ")
			}
			line(text)
			addr++
		}
	}

	if err != nil {
		return
	}

	err = out.Flush()
	return
}
