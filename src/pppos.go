package pppos

/*------------------------------------------------------------------
 *
 * Purpose:   	PPPoS link context and lifecycle.
 *
 * Description: One pppos_pcb per serial link.  The control plane
 *		drives it through pppos_connect / pppos_disconnect /
 *		pppos_free (or the pppos_command dispatcher); the
 *		serial driver feeds received octets into pppos_input;
 *		the upper layers transmit through pppos_netif_output
 *		(data plane) and pppos_write (control plane).
 *
 *		Completed inbound frames leave through an injected
 *		upper_dispatcher.  The direct dispatcher hands the
 *		frame to the upper layer synchronously on the receive
 *		context; the queued one (see inq.go) marshals it onto
 *		a consumer thread together with the link it came from.
 *
 *---------------------------------------------------------------*/

import (
	"sync"
	"time"
)

/*
 * Receive state machine states.
 */

type in_state_e int

const (
	PDIDLE      in_state_e = iota /* Idle state - waiting. */
	PDSTART                       /* Process start flag. */
	PDADDRESS                     /* Process address field. */
	PDCONTROL                     /* Process control field. */
	PDPROTOCOL1                   /* Process protocol field 1. */
	PDPROTOCOL2                   /* Process protocol field 2. */
	PDDATA                        /* Process data byte. */
)

/*
 * Commands the upper PPP issues through the link-command callback.
 */

type link_command int

const (
	PPPOS_CMD_CONNECT link_command = iota
	PPPOS_CMD_DISCONNECT
	PPPOS_CMD_FREE
)

/*
 * Link status events reported to the upper layer.
 */

type link_event int

const (
	PPPOS_EV_LINK_STARTED link_event = iota
	PPPOS_EV_LINK_ENDED
)

/*
 * Serial driver contract.  An opaque handle with one operation.
 * A short write is an error; the sink treats it as a hard failure.
 */

type sio_port interface {
	sio_write(data []byte) int
}

/*
 * How completed inbound frames reach the upper layer.  The chain
 * starts with the two-byte protocol identifier.
 */

type upper_dispatcher interface {
	dispatch(pcb *pppos_pcb, pb *pbuf) error
}

type status_fn func(ctx any, ev link_event)

type input_fn func(nif *netif, pb *pbuf, ctx any)

/*
 * Network interface attachment point.  Carries the upper-layer frame
 * sink and the interface-level packet/octet accounting.
 */

type netif struct {
	name  string
	input input_fn

	in_packets   uint32
	in_octets    uint32
	in_discards  uint32
	out_packets  uint32
	out_octets   uint32
	out_discards uint32
}

/*
 * Per-link error and traffic counters.  Errors are counters plus a
 * dropped frame, never a retry.
 */

type link_stats struct {
	rx_packets uint32
	rx_bytes   uint32
	tx_packets uint32
	tx_bytes   uint32
	drop       uint32 /* Frames discarded, any reason. */
	lenerr     uint32 /* Flag arrived mid-header. */
	chkerr     uint32 /* FCS residue mismatch. */
	memerr     uint32 /* Segment pool exhausted. */
	proterr    uint32 /* Codec rejected a packet. */
	ioerr      uint32 /* Serial short write. */
}

/*
 * The link context.
 */

type pppos_pcb struct {
	nif       *netif
	serial    sio_port
	status_cb status_fn
	ctx       any
	pool      *pbuf_pool
	disp      upper_dispatcher

	/* Negotiated behavior, set by the control plane. */
	pcomp      bool /* One-byte protocol field when it fits. */
	accomp     bool /* Suppress address/control on transmit. */
	vj_enabled bool
	vj         vj_codec

	open      bool
	last_xmit uint32 /* Jiffy of most recent transmit. */

	/* The maps are written by the control plane while the receive
	 * and transmit contexts read them, so reads snapshot under the
	 * lock once per call rather than once per byte. */
	accm_mu  sync.Mutex
	in_accm  accm
	out_accm accm

	/* Receive reassembly, touched only by the RX context. */
	in_state    in_state_e
	in_escaped  bool
	in_fcs      uint16
	in_protocol uint16
	in_head     *pbuf
	in_tail     *pbuf

	stats link_stats
}

/* Coarse monotonic millisecond counter.  Overridable for tests. */

var sys_jiffies = func() uint32 {
	return uint32(time.Now().UnixNano() / int64(time.Millisecond))
}

/*-------------------------------------------------------------------
 *
 * Name:        pppos_create
 *
 * Purpose:     Create a PPPoS link context over a serial handle.
 *		Inbound frames are handed to the upper layer directly
 *		on the receive context.
 *
 * Inputs:	nif		- Upper-layer attachment.
 *		serial		- Serial driver handle.
 *		status_cb	- Link started/ended notifications.
 *		ctx		- Opaque value passed back in callbacks.
 *
 * Returns:	The link context, or nil if nif or serial is missing.
 *
 *--------------------------------------------------------------------*/

func pppos_create(nif *netif, serial sio_port, status_cb status_fn, ctx any) *pppos_pcb {
	return pppos_create_disp(nif, serial, status_cb, ctx, direct_dispatcher{})
}

/*-------------------------------------------------------------------
 *
 * Name:        pppos_create_disp
 *
 * Purpose:     Same, with an explicit dispatcher.  Use an inq-backed
 *		dispatcher when the upper layer runs on its own thread.
 *
 *--------------------------------------------------------------------*/

func pppos_create_disp(nif *netif, serial sio_port, status_cb status_fn, ctx any, disp upper_dispatcher) *pppos_pcb {
	if nif == nil || serial == nil || disp == nil {
		return nil
	}
	var pcb = &pppos_pcb{
		nif:       nif,
		serial:    serial,
		status_cb: status_cb,
		ctx:       ctx,
		pool:      pbuf_pool_new(PBUF_POOL_SIZE),
		disp:      disp,
		vj:        &vj_null{},
	}
	accm_reset_in(&pcb.in_accm)
	accm_reset_out(&pcb.out_accm)
	return pcb
}

/*-------------------------------------------------------------------
 *
 * Name:        pppos_command
 *
 * Purpose:     Link-command callback registered into the upper PPP.
 *
 *--------------------------------------------------------------------*/

func pppos_command(pcb *pppos_pcb, cmd link_command) {
	switch cmd {
	case PPPOS_CMD_CONNECT:
		pppos_connect(pcb)
	case PPPOS_CMD_DISCONNECT:
		pppos_disconnect(pcb)
	case PPPOS_CMD_FREE:
		pppos_free(pcb)
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        pppos_connect
 *
 * Purpose:     (Re)start the link.  Reclaims any leftover partial
 *		frame, resets the decoder and both character maps,
 *		reinitializes the VJ codec, and tells the upper layer
 *		the link is up.
 *
 *--------------------------------------------------------------------*/

func pppos_connect(pcb *pppos_pcb) {
	pppos_input_free(pcb)

	pcb.in_state = PDIDLE
	pcb.in_escaped = false
	pcb.in_fcs = 0
	pcb.in_protocol = 0
	pcb.last_xmit = 0

	pcb.accm_mu.Lock()
	accm_reset_in(&pcb.in_accm)
	accm_reset_out(&pcb.out_accm)
	pcb.accm_mu.Unlock()

	pcb.vj.vj_init()
	pcb.open = true

	if pcb.status_cb != nil {
		pcb.status_cb(pcb.ctx, PPPOS_EV_LINK_STARTED)
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        pppos_disconnect
 *
 * Purpose:     Take the link down.  The partial input chain is left
 *		alone on purpose: the driver receive context may be
 *		mid-call in pppos_input.  The next connect or the
 *		final free reclaims it.
 *
 *--------------------------------------------------------------------*/

func pppos_disconnect(pcb *pppos_pcb) {
	pcb.open = false

	if pcb.status_cb != nil {
		pcb.status_cb(pcb.ctx, PPPOS_EV_LINK_ENDED)
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        pppos_free
 *
 * Purpose:     Destroy the link context.  Only valid once the driver
 *		is no longer feeding pppos_input.
 *
 *--------------------------------------------------------------------*/

func pppos_free(pcb *pppos_pcb) {
	pcb.open = false
	pppos_input_free(pcb)
	pcb.serial = nil
	pcb.disp = nil
}

/* Release a partial inbound frame, if any. */

func pppos_input_free(pcb *pppos_pcb) {
	if pcb.in_tail != nil && pcb.in_tail != pcb.in_head {
		/* A tail that has not filled yet is not chained to the head. */
		pbuf_free(pcb.in_tail)
	}
	if pcb.in_head != nil {
		pbuf_free(pcb.in_head)
	}
	pcb.in_head = nil
	pcb.in_tail = nil
}

/*-------------------------------------------------------------------
 *
 * Name:        pppos_set_accomp / pppos_set_pcomp
 *
 * Purpose:     Apply negotiated compression of the address/control
 *		and protocol fields on transmit.  The decoder accepts
 *		compressed headers unconditionally.
 *
 *--------------------------------------------------------------------*/

func pppos_set_accomp(pcb *pppos_pcb, on bool) {
	pcb.accomp = on
}

func pppos_set_pcomp(pcb *pppos_pcb, on bool) {
	pcb.pcomp = on
}

/*-------------------------------------------------------------------
 *
 * Name:        pppos_set_recv_accm / pppos_set_xmit_accm
 *
 * Purpose:     Apply a negotiated async control character map for
 *		octets 0x00-0x1f.  Called by the control plane while
 *		the receive and transmit contexts are running.
 *
 *--------------------------------------------------------------------*/

func pppos_set_recv_accm(pcb *pppos_pcb, word uint32) {
	pcb.accm_mu.Lock()
	accm_reset_in(&pcb.in_accm)
	accm_load_word(&pcb.in_accm, word)
	pcb.accm_mu.Unlock()
}

func pppos_set_xmit_accm(pcb *pppos_pcb, word uint32) {
	pcb.accm_mu.Lock()
	accm_reset_out(&pcb.out_accm)
	accm_load_word(&pcb.out_accm, word)
	pcb.accm_mu.Unlock()
}

/*
 * The direct dispatcher: the receive context itself runs the upper
 * layer.  Single-threaded builds use this; pppos_input must then be
 * serialized by its caller.
 */

type direct_dispatcher struct{}

func (direct_dispatcher) dispatch(pcb *pppos_pcb, pb *pbuf) error {
	pppos_upper_input(pcb, pb)
	return nil
}

/* Final delivery into the upper layer, shared by both dispatchers. */

func pppos_upper_input(pcb *pppos_pcb, pb *pbuf) {
	pcb.nif.in_packets++
	pcb.nif.in_octets += uint32(pb.tot_len)
	if pcb.nif.input != nil {
		pcb.nif.input(pcb.nif, pb, pcb.ctx)
	} else {
		pbuf_free(pb)
	}
}
