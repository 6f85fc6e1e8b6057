package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/chzyer/readline"

	"github.com/ezrec/ls8/emulator"
)

// runMonitor runs the interactive monitor on the terminal until 'quit'
// or end of input.
func runMonitor(emu *emulator.Emulator) (err error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "ls8> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return
	}
	defer rl.Close()

	mon := emulator.NewMonitor(emu, rl.Stdout())
	mon.Regs()

	for {
		var line string
		line, err = rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			err = nil
			return
		}
		if err != nil {
			return
		}

		quit, cmd_err := mon.Exec(line)
		if cmd_err != nil {
			fmt.Fprintf(rl.Stderr(), "%v\n", cmd_err)
		}
		if quit {
			return
		}
	}
}
