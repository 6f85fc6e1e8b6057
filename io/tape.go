package io

import (
	"fmt"
	"io"
	"iter"
	"maps"
)

// Tape writes each printed value as a decimal line to an io.Writer.
type Tape struct {
	Output io.Writer

	Count int // Values written since the last Rewind.
}

var _ Printer = (*Tape)(nil)

// Defines returns an iter of defines for the tape.
func (tc *Tape) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{})
}

// Rewind resets the output counter. The written output is not recalled.
func (tc *Tape) Rewind() {
	tc.Count = 0
}

// Print writes the value in decimal, followed by a newline.
func (tc *Tape) Print(value byte) (err error) {
	if tc.Output == nil {
		err = ErrTapeMissing
		return
	}

	_, err = fmt.Fprintf(tc.Output, "%d\n", value)
	if err != nil {
		return
	}

	tc.Count++

	return
}
