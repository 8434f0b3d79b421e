package pppos

/*
 * Shared scaffolding for the framer tests: a capturing serial double,
 * links wired to collect dispatched frames, and a frozen jiffy clock.
 */

import (
	"bytes"
	"testing"
)

/* Serial double.  Captures writes; optionally goes short after a
 * set number of bytes to exercise the sink's failure path. */

type capture_sio struct {
	buf         bytes.Buffer
	short_after int /* -1 = never */
}

func new_capture_sio() *capture_sio {
	return &capture_sio{short_after: -1}
}

func (s *capture_sio) sio_write(data []byte) int {
	if s.short_after >= 0 {
		var n = min(len(data), s.short_after)
		s.short_after -= n
		s.buf.Write(data[:n])
		return n
	}
	s.buf.Write(data)
	return len(data)
}

/* A link whose dispatched frames are collected into a slice.  The
 * returned frames include the two-byte protocol prefix. */

func test_link(t *testing.T) (*pppos_pcb, *capture_sio, *[][]byte) {
	t.Helper()

	var frames [][]byte
	var nif = &netif{
		name: "test",
		input: func(nif *netif, pb *pbuf, ctx any) {
			frames = append(frames, pbuf_bytes(pb))
			pbuf_free(pb)
		},
	}
	var sio = new_capture_sio()
	var pcb = pppos_create(nif, sio, nil, nil)
	pppos_connect(pcb)
	return pcb, sio, &frames
}

/* Freeze the coarse clock for a test.  Returns a setter. */

func freeze_jiffies(t *testing.T, at uint32) func(uint32) {
	t.Helper()

	var now = at
	var saved = sys_jiffies
	sys_jiffies = func() uint32 { return now }
	t.Cleanup(func() { sys_jiffies = saved })
	return func(v uint32) { now = v }
}

/* Encode one frame through a fresh link and return the wire bytes. */

func encode_frame(t *testing.T, payload []byte, protocol uint16, accomp bool, pcomp bool, idle bool) []byte {
	t.Helper()

	var pcb, sio, _ = test_link(t)
	freeze_jiffies(t, 1000)
	if !idle {
		pcb.last_xmit = 1000
	}
	pppos_set_accomp(pcb, accomp)
	pppos_set_pcomp(pcb, pcomp)
	pppos_set_xmit_accm(pcb, 0xffffffff)

	var pb = pbuf_take(pcb.pool, payload)
	if pb == nil {
		t.Fatal("pbuf_take failed")
	}
	if err := pppos_netif_output(pcb, pb, protocol); err != nil {
		t.Fatalf("pppos_netif_output: %v", err)
	}
	return sio.buf.Bytes()
}
