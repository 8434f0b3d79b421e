package pppos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMagicNeverSticksAtZero(t *testing.T) {
	for i := 0; i < 1000; i++ {
		magic_randomize()
		_ = magic()
	}
	assert.NotZero(t, magic_state)
}

func TestMagicVaries(t *testing.T) {
	var seen = map[uint32]bool{}
	for i := 0; i < 64; i++ {
		seen[magic()] = true
	}
	assert.Greater(t, len(seen), 32)
}
