package io

import (
	"fmt"
	"strings"
)

// Recorder keeps every printed value in memory.
type Recorder struct {
	Values []byte
}

var _ Printer = (*Recorder)(nil)

// Print appends the value to the recording.
func (rc *Recorder) Print(value byte) error {
	rc.Values = append(rc.Values, value)
	return nil
}

// Rewind discards the recording.
func (rc *Recorder) Rewind() {
	if len(rc.Values) > 0 {
		rc.Values = rc.Values[:0]
	}
}

// String returns the recorded values, space separated.
func (rc *Recorder) String() string {
	words := make([]string, len(rc.Values))
	for n, value := range rc.Values {
		words[n] = fmt.Sprintf("%d", value)
	}
	return strings.Join(words, " ")
}
