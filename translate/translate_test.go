package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("pc 0x03", From("pc 0x%02x", 3))
	assert.Equal("halted", From("halted"))
}

func TestError(t *testing.T) {
	assert := assert.New(t)

	err := Error("opcode %d", 255)
	assert.EqualError(err, "opcode 255")
}
