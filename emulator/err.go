package emulator

import (
	"github.com/ezrec/ls8/translate"
)

var f = translate.From

var (
	// Monitor errors
	ErrMonitorCommand  = translate.Error("unknown command")
	ErrMonitorArgument = translate.Error("bad argument")
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d %v", err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
