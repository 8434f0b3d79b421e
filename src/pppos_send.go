package pppos

/*------------------------------------------------------------------
 *
 * Purpose:   	Outbound encapsulation and the transmit sink.
 *
 * Description: A frame on the wire is
 *
 *			7E		- flag, only after an idle gap
 *			FF 03		- address/control, unless accomp
 *			protocol	- one byte if pcomp allows, else two
 *			payload
 *			FCS-lo FCS-hi	- one's complement, low byte first
 *			7E		- closing flag
 *
 *		Everything between the flags is escape-processed against
 *		the outbound ACCM: a mapped octet goes out as 7D
 *		followed by the octet XOR 0x20.
 *
 *		The output chain is built in pool segments through
 *		pppos_output_append, which always keeps two octets of
 *		headroom so an escape pair never splits across a
 *		segment boundary.
 *
 *---------------------------------------------------------------*/

/* An output chain under construction. */

type out_chain struct {
	head *pbuf
	tail *pbuf
}

/*-------------------------------------------------------------------
 *
 * Name:        pppos_output_append
 *
 * Purpose:     Append one octet to the output chain, escaping and
 *		FCS-accumulating it as requested.
 *
 * Inputs:	oc	- Chain under construction.
 *		err	- Error from the previous append.  Threaded
 *			  through so a failed frame falls through all
 *			  remaining appends and is dropped once at the
 *			  end.
 *		c	- The octet.
 *		m	- Outbound ACCM snapshot, or nil for octets that
 *			  are never escaped (the flags).
 *		fcs	- Running FCS to advance, or nil for octets
 *			  outside FCS coverage (flags and the FCS
 *			  itself).
 *
 * Returns:	nil or ErrMem.
 *
 *--------------------------------------------------------------------*/

func pppos_output_append(oc *out_chain, err error, c byte, m *accm, fcs *uint16) error {
	if err != nil {
		return err
	}

	/* Reserve room for the octet and a possible escape code.  The
	 * segment may waste its last octet when no escape happens; that
	 * is cheaper than splitting an escape pair. */
	if cap(oc.tail.payload)-len(oc.tail.payload) < 2 {
		var tb = pbuf_alloc(oc.tail.pool)
		if tb == nil {
			return ErrMem
		}
		oc.tail.next = tb
		oc.tail = tb
	}

	if fcs != nil {
		*fcs = fcs_step(*fcs, c)
	}

	if m != nil && escape_p(m, c) {
		oc.tail.payload = append(oc.tail.payload, PPP_ESCAPE, c^PPP_TRANS)
	} else {
		oc.tail.payload = append(oc.tail.payload, c)
	}
	return nil
}

/*-------------------------------------------------------------------
 *
 * Name:        pppos_netif_output
 *
 * Purpose:     Encapsulate and transmit a data-plane frame.
 *
 * Inputs:	pcb		- The link.
 *		pb		- Payload chain.  Consumed.
 *		protocol	- PPP protocol number.
 *
 * Returns:	nil on success; ErrMem, ErrProtocol, ErrDevice or
 *		ErrClosed on a dropped frame.
 *
 * Description:	IP traffic is offered to the VJ codec first when VJ
 *		compression has been negotiated; the codec's verdict
 *		selects the protocol number actually sent.
 *
 *--------------------------------------------------------------------*/

func pppos_netif_output(pcb *pppos_pcb, pb *pbuf, protocol uint16) error {
	if !pcb.open || pcb.serial == nil {
		pbuf_free(pb)
		pcb.stats.drop++
		pcb.nif.out_discards++
		return ErrClosed
	}

	/* Grab an output buffer. */
	var nb = pbuf_alloc(pcb.pool)
	if nb == nil {
		pbuf_free(pb)
		pcb.stats.memerr++
		pcb.stats.drop++
		pcb.nif.out_discards++
		return ErrMem
	}
	var oc = out_chain{head: nb, tail: nb}

	if protocol == PPP_IP && pcb.vj_enabled {
		var verdict, vpb = pcb.vj.vj_compress_tcp(pb)
		switch verdict {
		case VJ_TYPE_IP:
			/* No change. */
		case VJ_TYPE_COMPRESSED_TCP:
			protocol = PPP_VJC_COMP
		case VJ_TYPE_UNCOMPRESSED_TCP:
			protocol = PPP_VJC_UNCOMP
		default:
			/* Bad IP packet.  Drop the frame. */
			pbuf_free(vpb)
			pbuf_free(nb)
			pcb.stats.proterr++
			pcb.stats.drop++
			pcb.nif.out_discards++
			return ErrProtocol
		}
		pb = vpb
	}

	pcb.accm_mu.Lock()
	var out_accm = pcb.out_accm
	pcb.accm_mu.Unlock()

	var err error
	var fcs_out uint16 = PPP_INITFCS

	/* Flag the start of the frame only if the line has been quiet. */
	if sys_jiffies()-pcb.last_xmit >= PPP_MAXIDLEFLAG {
		err = pppos_output_append(&oc, err, PPP_FLAG, nil, nil)
	}
	pcb.last_xmit = sys_jiffies()

	if !pcb.accomp {
		err = pppos_output_append(&oc, err, PPP_ALLSTATIONS, &out_accm, &fcs_out)
		err = pppos_output_append(&oc, err, PPP_UI, &out_accm, &fcs_out)
	}
	if !pcb.pcomp || protocol > 0xff {
		err = pppos_output_append(&oc, err, byte(protocol>>8), &out_accm, &fcs_out)
	}
	err = pppos_output_append(&oc, err, byte(protocol), &out_accm, &fcs_out)

	for p := pb; p != nil; p = p.next {
		for _, c := range p.payload {
			err = pppos_output_append(&oc, err, c, &out_accm, &fcs_out)
		}
	}
	pbuf_free(pb)

	/* One's complement of the remainder, low byte first, then the
	 * closing flag.  The FCS octets are escaped but not themselves
	 * FCS-covered. */
	err = pppos_output_append(&oc, err, byte(^fcs_out), &out_accm, nil)
	err = pppos_output_append(&oc, err, byte(^fcs_out>>8), &out_accm, nil)
	err = pppos_output_append(&oc, err, PPP_FLAG, nil, nil)

	return pppos_output_last(pcb, err, &oc)
}

/*-------------------------------------------------------------------
 *
 * Name:        pppos_write
 *
 * Purpose:     Transmit a control-plane frame.  The chain already
 *		carries the address/control and protocol octets; no
 *		header compression and no VJ are applied.  Consumed.
 *
 *--------------------------------------------------------------------*/

func pppos_write(pcb *pppos_pcb, pb *pbuf) error {
	if !pcb.open || pcb.serial == nil {
		pbuf_free(pb)
		pcb.stats.drop++
		pcb.nif.out_discards++
		return ErrClosed
	}

	var nb = pbuf_alloc(pcb.pool)
	if nb == nil {
		pbuf_free(pb)
		pcb.stats.memerr++
		pcb.stats.drop++
		pcb.nif.out_discards++
		return ErrMem
	}
	var oc = out_chain{head: nb, tail: nb}

	pcb.accm_mu.Lock()
	var out_accm = pcb.out_accm
	pcb.accm_mu.Unlock()

	var err error
	var fcs_out uint16 = PPP_INITFCS

	if sys_jiffies()-pcb.last_xmit >= PPP_MAXIDLEFLAG {
		err = pppos_output_append(&oc, err, PPP_FLAG, nil, nil)
	}
	pcb.last_xmit = sys_jiffies()

	for p := pb; p != nil; p = p.next {
		for _, c := range p.payload {
			err = pppos_output_append(&oc, err, c, &out_accm, &fcs_out)
		}
	}
	pbuf_free(pb)

	err = pppos_output_append(&oc, err, byte(^fcs_out), &out_accm, nil)
	err = pppos_output_append(&oc, err, byte(^fcs_out>>8), &out_accm, nil)
	err = pppos_output_append(&oc, err, PPP_FLAG, nil, nil)

	return pppos_output_last(pcb, err, &oc)
}

/*-------------------------------------------------------------------
 *
 * Name:        pppos_output_last
 *
 * Purpose:     The transmit sink.  Walk the finished chain and write
 *		each segment to the serial driver.
 *
 *		A short write is a hard failure: the whole chain is
 *		dropped and last_xmit is zeroed so the next frame
 *		re-emits an opening flag to resynchronize the remote
 *		decoder.
 *
 *--------------------------------------------------------------------*/

func pppos_output_last(pcb *pppos_pcb, err error, oc *out_chain) error {
	if err != nil {
		/* Some append failed; nothing was transmitted. */
		pbuf_free(oc.head)
		pcb.stats.memerr++
		pcb.stats.drop++
		pcb.nif.out_discards++
		return err
	}

	/* Settle tot_len over the finished chain. */
	var total = 0
	for p := oc.head; p != nil; p = p.next {
		total += len(p.payload)
	}
	var rem = total
	for p := oc.head; p != nil; p = p.next {
		p.tot_len = rem
		rem -= len(p.payload)
	}

	for p := oc.head; p != nil; p = p.next {
		if pcb.serial.sio_write(p.payload) != len(p.payload) {
			pcb.last_xmit = 0 /* Reopen with a flag next time. */
			pcb.stats.ioerr++
			pcb.stats.drop++
			pcb.nif.out_discards++
			pbuf_free(oc.head)
			return ErrDevice
		}
	}

	pcb.stats.tx_packets++
	pcb.stats.tx_bytes += uint32(total)
	pcb.nif.out_packets++
	pcb.nif.out_octets += uint32(total)
	pbuf_free(oc.head)
	return nil
}
