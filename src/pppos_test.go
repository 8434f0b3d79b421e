package pppos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRejectsMissingPieces(t *testing.T) {
	var nif = &netif{name: "x"}
	assert.Nil(t, pppos_create(nil, new_capture_sio(), nil, nil))
	assert.Nil(t, pppos_create(nif, nil, nil, nil))
	assert.NotNil(t, pppos_create(nif, new_capture_sio(), nil, nil))
}

func TestConnectNotifiesAndResets(t *testing.T) {
	var events []link_event
	var nif = &netif{name: "x"}
	var pcb = pppos_create(nif, new_capture_sio(), func(ctx any, ev link_event) {
		events = append(events, ev)
		assert.Equal(t, "myctx", ctx)
	}, "myctx")

	pppos_connect(pcb)
	assert.Equal(t, []link_event{PPPOS_EV_LINK_STARTED}, events)
	assert.Equal(t, PDIDLE, pcb.in_state)
	assert.True(t, escape_p(&pcb.in_accm, PPP_ESCAPE))
	assert.True(t, escape_p(&pcb.in_accm, PPP_FLAG))
	assert.False(t, escape_p(&pcb.in_accm, 0x13))

	pppos_disconnect(pcb)
	assert.Equal(t, []link_event{PPPOS_EV_LINK_STARTED, PPPOS_EV_LINK_ENDED}, events)
}

func TestReconnectReclaimsPartialFrame(t *testing.T) {
	var pcb, _, frames = test_link(t)

	// Park the decoder mid-frame.
	pppos_input(pcb, []byte{0x7e, 0xff, 0x03, 0x00, 0x21, 0x01, 0x02})
	require.NotNil(t, pcb.in_head)
	var held = pcb.pool.in_use
	assert.Positive(t, held)

	// Disconnect leaves the chain alone; the RX context may still
	// be feeding bytes.
	pppos_disconnect(pcb)
	assert.NotNil(t, pcb.in_head)

	// Connect reclaims it and starts clean.
	pppos_connect(pcb)
	assert.Nil(t, pcb.in_head)
	assert.Nil(t, pcb.in_tail)
	assert.Equal(t, 0, pcb.pool.in_use)

	pppos_input(pcb, []byte{0x7e, 0xff, 0x03, 0x00, 0x21, 0x01, 0x02, 0x03, 0xb7, 0xc6, 0x7e})
	require.Len(t, *frames, 1)
}

func TestFreeReclaimsPartialFrame(t *testing.T) {
	var pcb, _, _ = test_link(t)

	pppos_input(pcb, []byte{0x7e, 0xff, 0x03, 0x00, 0x21, 0x01})
	require.NotNil(t, pcb.in_head)

	pppos_free(pcb)
	assert.Nil(t, pcb.in_head)
	assert.Equal(t, 0, pcb.pool.in_use)
	assert.Nil(t, pcb.serial)
}

func TestCommandDispatch(t *testing.T) {
	var events []link_event
	var nif = &netif{name: "x"}
	var pcb = pppos_create(nif, new_capture_sio(), func(ctx any, ev link_event) {
		events = append(events, ev)
	}, nil)

	pppos_command(pcb, PPPOS_CMD_CONNECT)
	pppos_command(pcb, PPPOS_CMD_DISCONNECT)
	pppos_command(pcb, PPPOS_CMD_FREE)

	assert.Equal(t, []link_event{PPPOS_EV_LINK_STARTED, PPPOS_EV_LINK_ENDED}, events)
	assert.Nil(t, pcb.serial)
}

func TestOutputWhenClosed(t *testing.T) {
	var nif = &netif{name: "x"}
	var pcb = pppos_create(nif, new_capture_sio(), nil, nil)

	// Never connected.
	var pool = pbuf_pool_new(0)
	var pb = pbuf_take(pool, []byte{1})
	assert.ErrorIs(t, pppos_netif_output(pcb, pb, PPP_IP), ErrClosed)
	pb = pbuf_take(pool, []byte{1})
	assert.ErrorIs(t, pppos_write(pcb, pb), ErrClosed)
	assert.Equal(t, 0, pool.in_use)
	assert.Equal(t, uint32(2), nif.out_discards)
}

func TestAccmUpdateMidStream(t *testing.T) {
	// The control plane can widen the inbound map between input
	// calls; the snapshot keeps each call self-consistent.
	var pcb, _, frames = test_link(t)

	pppos_input(pcb, []byte{0x7e, 0xff, 0x03, 0x00, 0x21, 0x01, 0x02, 0x03, 0xb7, 0xc6, 0x7e})
	require.Len(t, *frames, 1)

	// Map XON/XOFF in and the same wire bytes still decode, because
	// the sender never emitted a raw 0x11 or 0x13.
	pppos_set_recv_accm(pcb, 0x000a0000)
	pppos_input(pcb, []byte{0xff, 0x03, 0x00, 0x21, 0x01, 0x02, 0x03, 0xb7, 0xc6, 0x7e})
	require.Len(t, *frames, 2)
}
