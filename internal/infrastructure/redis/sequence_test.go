package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSequence(t *testing.T) {
	assert.Equal(t, "JE-000042", formatSequence("JE", 42))
	assert.Equal(t, "JE-1234567", formatSequence("JE", 1234567), "no trunca al superar seis dígitos")
}
