package pppos

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeBasicFrame(t *testing.T) {
	// Payload 01 02 03 as IP, no compression, line not idle: no
	// opening flag, full header, FCS over FF 03 00 21 01 02 03.
	var wire = encode_frame(t, []byte{0x01, 0x02, 0x03}, PPP_IP, false, false, false)

	assert.Equal(t, []byte{
		0xff, 0x03, 0x00, 0x21, 0x01, 0x02, 0x03, 0xb7, 0xc6, 0x7e,
	}, wire)
}

func TestEncodeIdleLeadingFlag(t *testing.T) {
	// Empty LCP frame after an idle gap: opening flag first.
	var wire = encode_frame(t, nil, PPP_LCP, false, false, true)

	assert.Equal(t, []byte{
		0x7e, 0xff, 0x03, 0xc0, 0x21, 0x49, 0x2c, 0x7e,
	}, wire)
}

func TestEncodeAccompPcomp(t *testing.T) {
	// ACFC drops FF 03; PFC shrinks an odd protocol <= 0xff to one
	// octet.
	var wire = encode_frame(t, []byte{0xaa}, PPP_IP, true, true, false)

	var fcs = fcs_calc([]byte{0x21, 0xaa})
	assert.Equal(t, []byte{0x21, 0xaa, byte(^fcs), byte(^fcs >> 8), 0x7e}, wire)
}

func TestEncodePcompLeavesWideProtocolAlone(t *testing.T) {
	// PFC never applies to protocols above 0xff.
	var wire = encode_frame(t, nil, PPP_LCP, true, true, false)

	assert.Equal(t, byte(0xc0), wire[0])
	assert.Equal(t, byte(0x21), wire[1])
}

func TestEncodeEscaping(t *testing.T) {
	// Flag, escape, and mapped control characters all leave as
	// 7D followed by the octet XOR 0x20.
	var wire = encode_frame(t, []byte{0x7e, 0x7d, 0x11}, PPP_IP, true, true, false)

	var want = []byte{
		0x21,
		0x7d, 0x5e,
		0x7d, 0x5d,
		0x7d, 0x31,
	}
	assert.Equal(t, want, wire[:len(want)])

	// Nothing before the closing delimiter may be a raw flag.
	var body = wire[:len(wire)-1]
	assert.NotContains(t, body, byte(0x7e))
}

func TestEncodeFCSBytesEscaped(t *testing.T) {
	// A frame whose FCS octets themselves need escaping.  Payload
	// chosen so one complemented FCS octet is 0x7e.
	var pcb, sio, _ = test_link(t)
	freeze_jiffies(t, 1000)
	pcb.last_xmit = 1000

	var found = false
	for b := 0; b < 256 && !found; b++ {
		var data = []byte{0xff, 0x03, 0x00, 0x21, byte(b)}
		var fcs = fcs_calc(data)
		if byte(^fcs) == PPP_FLAG || byte(^fcs>>8) == PPP_FLAG {
			found = true
			var pb = pbuf_take(pcb.pool, []byte{byte(b)})
			require.NoError(t, pppos_netif_output(pcb, pb, PPP_IP))
			var wire = sio.buf.Bytes()
			// Exactly one raw flag: the closing delimiter.
			assert.Equal(t, 1, bytes.Count(wire, []byte{0x7e}))
			assert.Equal(t, byte(0x7e), wire[len(wire)-1])
		}
	}
	require.True(t, found, "no payload byte yields a flag-valued FCS octet")
}

func TestEncodeIdleTimerAdvances(t *testing.T) {
	var pcb, sio, _ = test_link(t)
	var set = freeze_jiffies(t, 1000)

	// First frame after connect: last_xmit is zero, so it opens
	// with a flag.
	var pb = pbuf_take(pcb.pool, []byte{0x01})
	require.NoError(t, pppos_netif_output(pcb, pb, PPP_IP))
	assert.Equal(t, byte(0x7e), sio.buf.Bytes()[0])

	// Immediately after, no flag.
	sio.buf.Reset()
	pb = pbuf_take(pcb.pool, []byte{0x01})
	require.NoError(t, pppos_netif_output(pcb, pb, PPP_IP))
	assert.NotEqual(t, byte(0x7e), sio.buf.Bytes()[0])

	// Once the line has idled past the threshold, the flag is back.
	set(1000 + PPP_MAXIDLEFLAG)
	sio.buf.Reset()
	pb = pbuf_take(pcb.pool, []byte{0x01})
	require.NoError(t, pppos_netif_output(pcb, pb, PPP_IP))
	assert.Equal(t, byte(0x7e), sio.buf.Bytes()[0])
}

func TestEncodeShortWrite(t *testing.T) {
	var pcb, sio, _ = test_link(t)
	freeze_jiffies(t, 1000)
	pcb.last_xmit = 1000

	sio.short_after = 3
	var pb = pbuf_take(pcb.pool, []byte{0x01, 0x02, 0x03})
	var err = pppos_netif_output(pcb, pb, PPP_IP)

	assert.ErrorIs(t, err, ErrDevice)
	assert.Equal(t, uint32(1), pcb.stats.ioerr)
	assert.Equal(t, uint32(1), pcb.stats.drop)
	assert.Equal(t, uint32(1), pcb.nif.out_discards)
	assert.Equal(t, uint32(0), pcb.stats.tx_packets)

	// The failure forces a resynchronizing flag on the next frame.
	assert.Equal(t, uint32(0), pcb.last_xmit)
	sio.short_after = -1
	sio.buf.Reset()
	pb = pbuf_take(pcb.pool, []byte{0x01})
	require.NoError(t, pppos_netif_output(pcb, pb, PPP_IP))
	assert.Equal(t, byte(0x7e), sio.buf.Bytes()[0])
}

func TestEncodeAllocFailure(t *testing.T) {
	var pcb, _, _ = test_link(t)
	freeze_jiffies(t, 1000)

	// Exhaust the link's pool; the payload comes from its own.
	for pbuf_alloc(pcb.pool) != nil {
	}
	var side = pbuf_pool_new(0)
	var pb = pbuf_take(side, []byte{0x01})

	var err = pppos_netif_output(pcb, pb, PPP_IP)
	assert.ErrorIs(t, err, ErrMem)
	assert.Equal(t, uint32(1), pcb.stats.memerr)
	assert.Equal(t, uint32(1), pcb.nif.out_discards)
	assert.Equal(t, 0, side.in_use, "payload must be released on failure")
}

func TestOutputAppendHeadroom(t *testing.T) {
	// A segment with one free octet never takes half an escape
	// pair; the appender moves to a fresh segment first.
	var pool = pbuf_pool_new(0)
	var nb = pbuf_alloc(pool)
	nb.payload = nb.payload[:cap(nb.payload)-1]
	var oc = out_chain{head: nb, tail: nb}

	var m accm
	accm_reset_out(&m)
	require.NoError(t, pppos_output_append(&oc, nil, 0x7e, &m, nil))

	assert.Equal(t, 2, pbuf_clen(oc.head))
	assert.Equal(t, []byte{0x7d, 0x5e}, oc.tail.payload)
}

func TestOutputAppendExhaustedPool(t *testing.T) {
	var pool = pbuf_pool_new(1)
	var nb = pbuf_alloc(pool)
	nb.payload = nb.payload[:cap(nb.payload)-1]
	var oc = out_chain{head: nb, tail: nb}

	var err = pppos_output_append(&oc, nil, 0x42, nil, nil)
	assert.ErrorIs(t, err, ErrMem)

	// A threaded-through earlier error short-circuits.
	assert.ErrorIs(t, pppos_output_append(&oc, ErrDevice, 0x42, nil, nil), ErrDevice)
}

func TestPpposWriteControlFrame(t *testing.T) {
	// pppos_write frames a pre-built header verbatim: no accomp,
	// no pcomp, no VJ.
	var pcb, sio, _ = test_link(t)
	freeze_jiffies(t, 1000)
	pcb.last_xmit = 1000
	pppos_set_accomp(pcb, true) // Must be ignored on this path.

	var pb = pbuf_take(pcb.pool, []byte{0xff, 0x03, 0xc0, 0x21})
	require.NoError(t, pppos_write(pcb, pb))

	assert.Equal(t, []byte{0xff, 0x03, 0xc0, 0x21, 0x49, 0x2c, 0x7e}, sio.buf.Bytes())
}
