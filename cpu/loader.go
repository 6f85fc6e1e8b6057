package cpu

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// ParseBinary parses the .ls8 text format into a Program.
//
// A line whose leading 8 characters are binary digits is one byte of the
// image; anything after them may be a '#' comment. Blank, comment and other
// non-binary lines are skipped.
func ParseBinary(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	prog = &Program{}

	var lineno int
	var addr int
	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		value, ok := parseBinaryByte(text)
		if !ok {
			continue
		}

		var words []string
		_, comment, found := strings.Cut(text[8:], "#")
		if found {
			words = strings.Fields(comment)
		}

		prog.Statements = append(prog.Statements, Statement{
			LineNo:  lineno,
			Address: addr,
			Words:   words,
			Bytes:   []byte{value},
		})
		addr++
	}

	err = scanner.Err()
	if err != nil {
		prog = nil
		err = errors.Join(ErrLoad, err)
		return
	}

	if addr > MEMORY_SIZE {
		prog = nil
		err = errors.Join(ErrLoad, ErrProgramSize(addr))
		return
	}

	return
}

// parseBinaryByte parses the leading 8 binary digits of a line.
func parseBinaryByte(line string) (value byte, ok bool) {
	if len(line) < 8 {
		return
	}

	for _, ch := range line[:8] {
		value <<= 1
		switch ch {
		case '0':
		case '1':
			value |= 1
		default:
			value = 0
			return
		}
	}

	ok = true
	return
}
