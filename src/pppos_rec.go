package pppos

/*------------------------------------------------------------------
 *
 * Purpose:   	Inbound frame reassembly.
 *
 * Description: pppos_input consumes whatever chunk of octets the
 *		serial driver hands it and advances a per-link state
 *		machine one octet at a time:
 *
 *		  PDIDLE -> PDSTART -> PDADDRESS -> PDCONTROL
 *		         -> PDPROTOCOL1 -> PDPROTOCOL2 -> PDDATA
 *
 *		A peer that negotiated ACFC omits the FF 03 header and
 *		one that negotiated PFC sends a single protocol octet.
 *		Both are accepted by reinterpreting the octet in the
 *		next state within the same iteration, so a frame can
 *		enter PDDATA on its very first non-flag octet.
 *
 *		Data accumulates in pool segments.  The first segment
 *		starts with the two-byte protocol identifier so the
 *		dispatched chain is self-describing.  At the closing
 *		flag the FCS residue decides the frame's fate and the
 *		two trailing FCS octets are trimmed before dispatch.
 *
 *		Only one receive context may call pppos_input; the
 *		reassembly state is not shared with anything else.
 *
 *---------------------------------------------------------------*/

/*-------------------------------------------------------------------
 *
 * Name:        pppos_input
 *
 * Purpose:     Feed received octets into the decoder.
 *
 * Inputs:	pcb	- The link.
 *		data	- Any number of octets, any chunking.
 *
 * Description:	Callable from a receive thread or a driver callback,
 *		but from only one such context per link.  Completed
 *		frames leave through the link's dispatcher.
 *
 *--------------------------------------------------------------------*/

func pppos_input(pcb *pppos_pcb, data []byte) {
	/* Snapshot the inbound map once per call; the control plane
	 * may rewrite it concurrently. */
	pcb.accm_mu.Lock()
	var in_accm = pcb.in_accm
	pcb.accm_mu.Unlock()

	for _, cur_char := range data {
		if escape_p(&in_accm, cur_char) {
			/* XXX an escaped 0x5d arrives as 0x7d 0x7d and the second
			 * octet lands here instead of being unescaped, so a peer
			 * escaping ']' corrupts the frame.  Longstanding behavior;
			 * no async map ever asks for it. */
			if cur_char == PPP_ESCAPE {
				pcb.in_escaped = true
			} else if cur_char == PPP_FLAG {
				pppos_input_flag(pcb)
			}
			/* Anything else mapped is a control character some line
			 * driver slipped in (XON/XOFF and friends).  Not data,
			 * not FCS-covered; drop it without a trace. */
			continue
		}

		if pcb.in_escaped {
			pcb.in_escaped = false
			cur_char ^= PPP_TRANS
		}

		switch pcb.in_state {
		case PDIDLE:
			/* Junk between frames; only an address octet can wake us. */
			if cur_char != PPP_ALLSTATIONS {
				break
			}
			fallthrough
		case PDSTART:
			pcb.in_fcs = PPP_INITFCS
			fallthrough
		case PDADDRESS:
			if cur_char == PPP_ALLSTATIONS {
				pcb.in_state = PDCONTROL
				break
			}
			/* Peer compressed the address/control fields; this octet
			 * already belongs to the next field. */
			fallthrough
		case PDCONTROL:
			if cur_char == PPP_UI {
				pcb.in_state = PDPROTOCOL1
				break
			}
			fallthrough
		case PDPROTOCOL1:
			if cur_char&1 != 0 {
				/* Compressed single-octet protocol. */
				pcb.in_protocol = uint16(cur_char)
				pcb.in_state = PDDATA
			} else {
				pcb.in_protocol = uint16(cur_char) << 8
				pcb.in_state = PDPROTOCOL2
			}
		case PDPROTOCOL2:
			pcb.in_protocol |= uint16(cur_char)
			pcb.in_state = PDDATA
		case PDDATA:
			if pcb.in_tail == nil || len(pcb.in_tail.payload) == cap(pcb.in_tail.payload) {
				/* Close out the full segment before starting a new one. */
				if pcb.in_tail != nil {
					pcb.in_tail.tot_len = len(pcb.in_tail.payload)
					if pcb.in_tail != pcb.in_head {
						pbuf_cat(pcb.in_head, pcb.in_tail)
						/* Now owned through the head's chain. */
						pcb.in_tail = nil
					}
				}
				var next_pbuf = pbuf_alloc(pcb.pool)
				if next_pbuf == nil {
					/* No free segments.  Drop this frame and keep
					 * consuming octets; a new frame may start within
					 * this same chunk. */
					pcb.stats.memerr++
					pppos_input_drop(pcb)
					break
				}
				if pcb.in_head == nil {
					/* First segment of the frame carries the protocol
					 * identifier, big-endian, ahead of the data. */
					next_pbuf.payload = append(next_pbuf.payload,
						byte(pcb.in_protocol>>8), byte(pcb.in_protocol))
					pcb.in_head = next_pbuf
				}
				pcb.in_tail = next_pbuf
			}
			pcb.in_tail.payload = append(pcb.in_tail.payload, cur_char)
		}

		/* Every non-control octet is FCS-covered, including the two
		 * trailing FCS octets themselves; that is what leaves the
		 * good residue behind. */
		pcb.in_fcs = fcs_step(pcb.in_fcs, cur_char)
	}

	/* Arrival timing is cheap entropy for the control plane's
	 * magic numbers.  Fires once per call, frames or not. */
	magic_randomize()
}

/*-------------------------------------------------------------------
 *
 * Name:        pppos_input_flag
 *
 * Purpose:     A flag octet arrived: frame boundary.  Decide what the
 *		accumulated state amounts to and reset for the next
 *		frame.
 *
 *--------------------------------------------------------------------*/

func pppos_input_flag(pcb *pppos_pcb) {
	if pcb.in_state <= PDADDRESS {
		/* Extra flag between frames; ignore. */
	} else if pcb.in_state < PDDATA {
		/* The frame ended before the data field.  Too short. */
		pcb.stats.lenerr++
		pppos_input_drop(pcb)
	} else if pcb.in_fcs != PPP_GOODFCS {
		pcb.stats.chkerr++
		pppos_input_drop(pcb)
	} else if pcb.in_tail == nil {
		/* PDDATA was reached but not a single data octet followed,
		 * so there is no FCS to trim.  A residue match here is a
		 * fluke of the header octets.  Too short. */
		pcb.stats.lenerr++
		pppos_input_drop(pcb)
	} else {
		/* Trim off the checksum. */
		if len(pcb.in_tail.payload) > 2 {
			pcb.in_tail.payload = pcb.in_tail.payload[:len(pcb.in_tail.payload)-2]
			pcb.in_tail.tot_len = len(pcb.in_tail.payload)
			if pcb.in_tail != pcb.in_head {
				pbuf_cat(pcb.in_head, pcb.in_tail)
			}
		} else {
			/* The tail segment holds nothing but FCS octets (one or
			 * both); fold the tail in and shed exactly two octets
			 * off the end of the chain. */
			pcb.in_tail.tot_len = len(pcb.in_tail.payload)
			if pcb.in_tail != pcb.in_head {
				pbuf_cat(pcb.in_head, pcb.in_tail)
			}
			pbuf_realloc(pcb.in_head, pcb.in_head.tot_len-2)
		}

		/* Dispatch the packet, thereby consuming it. */
		pppos_deliver(pcb, pcb.in_head)
		pcb.in_head = nil
		pcb.in_tail = nil
	}

	/* Prepare for the next frame. */
	pcb.in_fcs = PPP_INITFCS
	pcb.in_state = PDADDRESS
	pcb.in_escaped = false
}

/*-------------------------------------------------------------------
 *
 * Name:        pppos_input_drop
 *
 * Purpose:     Discard the frame being reassembled.  The state drops
 *		back to PDSTART, so the next non-control octet is taken
 *		as the start of a new frame without waiting for a flag.
 *
 *--------------------------------------------------------------------*/

func pppos_input_drop(pcb *pppos_pcb) {
	if pcb.in_tail != nil && pcb.in_tail != pcb.in_head {
		/* A tail that has not filled yet is not chained to the head. */
		pbuf_free(pcb.in_tail)
	}
	if pcb.in_head != nil {
		pbuf_free(pcb.in_head)
	}
	pcb.in_head = nil
	pcb.in_tail = nil
	pcb.stats.drop++
	pcb.nif.in_discards++
	pcb.in_state = PDSTART
}

/*-------------------------------------------------------------------
 *
 * Name:        pppos_deliver
 *
 * Purpose:     Hand a finished frame (protocol prefix included) to
 *		the dispatcher.  A dispatcher that cannot take it --
 *		a full marshalling queue -- costs the frame, counted
 *		as a drop.
 *
 *--------------------------------------------------------------------*/

func pppos_deliver(pcb *pppos_pcb, pb *pbuf) {
	pcb.stats.rx_packets++
	pcb.stats.rx_bytes += uint32(pb.tot_len)
	if err := pcb.disp.dispatch(pcb, pb); err != nil {
		pbuf_free(pb)
		pcb.stats.drop++
		pcb.nif.in_discards++
	}
}
