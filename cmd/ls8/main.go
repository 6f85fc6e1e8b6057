// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"strings"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/emulator"
	"github.com/ezrec/ls8/translate"
)

// defineFlag collects repeated -D NAME=VALUE assembler predefines.
type defineFlag map[string]string

func (df defineFlag) String() string {
	var words []string
	for name, value := range df {
		words = append(words, name+"="+value)
	}
	return strings.Join(words, ",")
}

func (df defineFlag) Set(text string) error {
	name, value, ok := strings.Cut(text, "=")
	if !ok || len(name) == 0 {
		return translate.Error("define %q is not NAME=VALUE", text)
	}
	df[name] = value
	return nil
}

// loadProgram reads a program, either by assembling source or by parsing
// a .ls8 image.
func loadProgram(emu *emulator.Emulator, compile string, image string, defines defineFlag, verbose bool) (prog *cpu.Program, err error) {
	name := image
	if len(compile) != 0 {
		name = compile
	}

	inf, err := os.Open(name)
	if err != nil {
		err = errors.Join(cpu.ErrLoad, err)
		return
	}
	defer inf.Close()

	if len(compile) == 0 {
		return cpu.ParseBinary(inf)
	}

	asm := &cpu.Assembler{Verbose: verbose}
	for name, value := range emu.Defines() {
		asm.Predefine(name, value)
	}
	for name, value := range defines {
		asm.Predefine(name, value)
	}

	return asm.Parse(inf)
}

func main() {
	var compile string
	var save bool
	var output string
	var verbose bool
	var monitor bool
	defines := defineFlag{}

	flag.StringVar(&compile, "c", "", ".asm file to compile")
	flag.BoolVar(&save, "s", false, "Save the .ls8 image to output, do not execute")
	flag.StringVar(&output, "o", "-", "PRN output")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&monitor, "m", false, "Interactive monitor")
	flag.Var(defines, "D", "Assembler predefine NAME=VALUE (repeatable)")

	flag.Parse()

	var image string
	switch {
	case flag.NArg() == 1 && len(compile) == 0:
		image = flag.Arg(0)
	case flag.NArg() == 0 && len(compile) != 0:
		// pass
	default:
		log.Fatalf("usage: %v [-c file.asm | file.ls8]", os.Args[0])
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	prog, err := loadProgram(emu, compile, image, defines, verbose)
	if err != nil {
		log.Fatalf("%v%v: %v", image, compile, err)
	}

	var ouf io.Writer = os.Stdout
	if output != "-" {
		file, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer file.Close()
		ouf = file
	}

	if save {
		_, err = prog.WriteTo(ouf)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		return
	}

	emu.Program = prog
	emu.Tape.Output = ouf

	err = emu.Reset()
	if err != nil {
		log.Fatal(err)
	}

	if monitor {
		err = runMonitor(emu)
	} else {
		err = emu.Run()
	}
	if err != nil {
		log.Fatal(err)
	}
}
