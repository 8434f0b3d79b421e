package pppos

/*------------------------------------------------------------------
 *
 * Purpose:   	Van Jacobson TCP/IP header compression plumbing.
 *
 * Description: The codec itself lives outside this package; the
 *		framer only selects protocol numbers on the way out
 *		and routes VJ-typed frames on the way in.  Everything
 *		here fails closed: with VJ disabled or a codec verdict
 *		of error, the frame is dropped and counted.
 *
 *---------------------------------------------------------------*/

/*
 * Codec verdicts for outbound IP traffic.
 */

const (
	VJ_TYPE_ERROR            = 0x00
	VJ_TYPE_IP               = 0x40 /* Send as ordinary IP. */
	VJ_TYPE_UNCOMPRESSED_TCP = 0x70
	VJ_TYPE_COMPRESSED_TCP   = 0x80
)

/*
 * The external codec contract.  Every operation consumes the chain
 * it is given.  vj_compress_tcp returns the chain to transmit (often
 * the input, rewritten).  The two uncompress operations take a frame
 * without its protocol prefix and return an IP packet chain, or nil
 * when the frame is beyond repair.
 */

type vj_codec interface {
	vj_init()
	vj_config(slot_compress bool, max_slots int)
	vj_compress_tcp(pb *pbuf) (int, *pbuf)
	vj_uncompress_compressed(pb *pbuf) *pbuf
	vj_uncompress_uncompressed(pb *pbuf) *pbuf
}

/*
 * Null codec, installed until the control plane supplies a real one.
 * Outbound IP passes through untouched; inbound VJ frames cannot be
 * reconstructed and are rejected.
 */

type vj_null struct{}

func (*vj_null) vj_init()                                {}
func (*vj_null) vj_config(slot_compress bool, max_slots int) {}

func (*vj_null) vj_compress_tcp(pb *pbuf) (int, *pbuf) {
	return VJ_TYPE_IP, pb
}

func (*vj_null) vj_uncompress_compressed(pb *pbuf) *pbuf {
	pbuf_free(pb)
	return nil
}

func (*vj_null) vj_uncompress_uncompressed(pb *pbuf) *pbuf {
	pbuf_free(pb)
	return nil
}

/*-------------------------------------------------------------------
 *
 * Name:        pppos_set_vj_codec
 *
 * Purpose:     Install the external codec.  nil restores the null
 *		codec and leaves VJ disabled.
 *
 *--------------------------------------------------------------------*/

func pppos_set_vj_codec(pcb *pppos_pcb, vj vj_codec) {
	if vj == nil {
		pcb.vj = &vj_null{}
		pcb.vj_enabled = false
		return
	}
	pcb.vj = vj
}

/*-------------------------------------------------------------------
 *
 * Name:        pppos_vjc_config
 *
 * Purpose:     Apply negotiated VJ parameters.
 *
 * Inputs:	enable		- Use VJ at all.
 *		slot_compress	- Peer may omit the connection number.
 *		max_cid		- Highest connection state slot.
 *
 *--------------------------------------------------------------------*/

func pppos_vjc_config(pcb *pppos_pcb, enable bool, slot_compress bool, max_cid int) {
	pcb.vj_enabled = enable
	pcb.vj.vj_config(slot_compress, max_cid)
}

/*-------------------------------------------------------------------
 *
 * Name:        pppos_vjc_comp
 *
 * Purpose:     Route an inbound VJ-compressed-TCP frame: reconstruct
 *		the TCP/IP header and forward the result upward as an
 *		IP frame.
 *
 * Inputs:	pb	- Frame chain without its protocol prefix.
 *		  	  Consumed.
 *
 *--------------------------------------------------------------------*/

func pppos_vjc_comp(pcb *pppos_pcb, pb *pbuf) error {
	if !pcb.vj_enabled {
		pbuf_free(pb)
		pcb.stats.proterr++
		pcb.stats.drop++
		return ErrProtocol
	}
	var ip = pcb.vj.vj_uncompress_compressed(pb)
	if ip == nil {
		pcb.stats.proterr++
		pcb.stats.drop++
		return ErrProtocol
	}
	return pppos_vjc_forward(pcb, ip)
}

/*-------------------------------------------------------------------
 *
 * Name:        pppos_vjc_uncomp
 *
 * Purpose:     Route an inbound VJ-uncompressed-TCP frame: let the
 *		codec refresh its connection state, then forward as IP.
 *
 *--------------------------------------------------------------------*/

func pppos_vjc_uncomp(pcb *pppos_pcb, pb *pbuf) error {
	if !pcb.vj_enabled {
		pbuf_free(pb)
		pcb.stats.proterr++
		pcb.stats.drop++
		return ErrProtocol
	}
	var ip = pcb.vj.vj_uncompress_uncompressed(pb)
	if ip == nil {
		pcb.stats.proterr++
		pcb.stats.drop++
		return ErrProtocol
	}
	return pppos_vjc_forward(pcb, ip)
}

/* Re-prefix the rebuilt packet as IP and hand it upward. */

func pppos_vjc_forward(pcb *pppos_pcb, ip *pbuf) error {
	var nb = pbuf_alloc(pcb.pool)
	if nb == nil {
		pbuf_free(ip)
		pcb.stats.memerr++
		pcb.stats.drop++
		return ErrMem
	}
	nb.payload = append(nb.payload, 0x00, PPP_IP)
	nb.tot_len = len(nb.payload)
	pbuf_cat(nb, ip)
	pppos_upper_input(pcb, nb)
	return nil
}
