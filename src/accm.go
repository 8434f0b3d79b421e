package pppos

/*-------------------------------------------------------------
 *
 * Purpose:	Async Control Character Map.
 *
 *		A 256-bit map answering "does this octet need special
 *		treatment?"  Octet c lives at bit (c & 7) of byte
 *		(c >> 3).  Each link carries two: the inbound map
 *		selects received octets treated as control characters
 *		rather than data, the outbound map selects octets that
 *		are escape-sequenced before transmission.
 *
 *		The flag (0x7e) and escape (0x7d) octets must always be
 *		mapped in both directions or the framing falls apart.
 *
 *--------------------------------------------------------------*/

type accm [32]byte

/*-------------------------------------------------------------
 *
 * Name:	escape_p
 *
 * Purpose:	Membership test.
 *
 * Inputs:	m	- The map.
 *		c	- Octet value.
 *
 * Returns:	true when c is mapped.
 *
 *--------------------------------------------------------------*/

func escape_p(m *accm, c byte) bool {
	return m[c>>3]&(1<<(c&7)) != 0
}

func accm_set(m *accm, c byte) {
	m[c>>3] |= 1 << (c & 7)
}

func accm_clear(m *accm, c byte) {
	m[c>>3] &^= 1 << (c & 7)
}

/*-------------------------------------------------------------
 *
 * Name:	accm_reset_in / accm_reset_out
 *
 * Purpose:	Restore a map to its link-start contents: just the
 *		escape and flag octets, in both directions.
 *
 *		Mapping anything more inbound before negotiation would
 *		eat unescaped protocol octets (0x00 turns up in every
 *		uncompressed protocol field).  The negotiated async-map
 *		adds the control characters later.
 *
 *--------------------------------------------------------------*/

func accm_reset_in(m *accm) {
	*m = accm{}
	accm_set(m, PPP_ESCAPE)
	accm_set(m, PPP_FLAG)
}

func accm_reset_out(m *accm) {
	*m = accm{}
	accm_set(m, PPP_ESCAPE)
	accm_set(m, PPP_FLAG)
}

/*-------------------------------------------------------------
 *
 * Name:	accm_load_word
 *
 * Purpose:	Apply a negotiated 32-bit async map covering octets
 *		0x00-0x1f.  Bit n of the word selects octet n.
 *		The escape and flag octets stay mapped regardless.
 *
 *--------------------------------------------------------------*/

func accm_load_word(m *accm, word uint32) {
	m[0] = byte(word)
	m[1] = byte(word >> 8)
	m[2] = byte(word >> 16)
	m[3] = byte(word >> 24)
	accm_set(m, PPP_ESCAPE)
	accm_set(m, PPP_FLAG)
}
