package cpu

// Flag is the tri-state EQUAL comparison flag.
type Flag int

//go:generate go tool stringer -linecomment -type=Flag
const (
	FLAG_UNSET = Flag(0) // unset
	FLAG_TRUE  = Flag(1) // true
	FLAG_FALSE = Flag(2) // false
)

// IsTrue returns true only after a CMP of equal values.
// An unset flag reads as false, like a cleared flag bit.
func (fl Flag) IsTrue() bool {
	return fl == FLAG_TRUE
}

// flagOf converts a comparison result to a flag.
func flagOf(equal bool) Flag {
	if equal {
		return FLAG_TRUE
	}
	return FLAG_FALSE
}
