package pppos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestACCMDefaults(t *testing.T) {
	// Both maps start minimal: just escape and flag.  An inbound
	// map that already covered the control characters would eat
	// the raw 0x00 of every uncompressed protocol field.
	var in accm
	accm_reset_in(&in)
	var out accm
	accm_reset_out(&out)

	for _, m := range []*accm{&in, &out} {
		assert.True(t, escape_p(m, PPP_ESCAPE))
		assert.True(t, escape_p(m, PPP_FLAG))
		for c := 0; c < 0x20; c++ {
			assert.False(t, escape_p(m, byte(c)))
		}
		assert.False(t, escape_p(m, 0xff))

		// 0x7d and 0x7e share the 16th byte, mask 0x60.
		assert.Equal(t, byte(0x60), m[15])
	}
}

func TestACCMSetClear(t *testing.T) {
	var m accm
	accm_set(&m, 0x11)
	assert.True(t, escape_p(&m, 0x11))
	accm_clear(&m, 0x11)
	assert.False(t, escape_p(&m, 0x11))
}

func TestACCMLoadWord(t *testing.T) {
	var m accm
	accm_reset_out(&m)
	accm_load_word(&m, 0x000a0000) // XON, XOFF

	assert.True(t, escape_p(&m, 0x11))
	assert.True(t, escape_p(&m, 0x13))
	assert.False(t, escape_p(&m, 0x12))

	// Escape and flag survive any negotiated map.
	accm_load_word(&m, 0)
	assert.True(t, escape_p(&m, PPP_ESCAPE))
	assert.True(t, escape_p(&m, PPP_FLAG))
}
