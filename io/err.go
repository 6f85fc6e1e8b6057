package io

import (
	"github.com/ezrec/ls8/translate"
)

var (
	// Printer errors
	ErrTapeMissing = translate.Error("tape has no output")
)
