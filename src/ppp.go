// Package pppos implements the PPP-over-Serial link layer: HDLC-like
// asynchronous framing of PPP frames over a raw octet-oriented serial
// channel, per RFC 1662.
//
// The package covers byte stuffing, FCS computation and verification,
// outbound encapsulation (with optional address/control and protocol
// compression and Van Jacobson TCP/IP header compression selection), and
// an incremental receive state machine that reassembles frames from
// arbitrary byte chunks delivered by a serial driver.
//
// The PPP control plane (LCP, authentication, NCPs), the VJ codec proper,
// and the IP stack are external collaborators; this package only carries
// their bytes.
package pppos

/*------------------------------------------------------------------
 *
 * Purpose:   	Constants shared by the PPPoS encoder and decoder.
 *
 *		Significant octet values and protocol numbers are from
 *		RFC 1662 (HDLC-like framing) and RFC 1661 (PPP).
 *
 *---------------------------------------------------------------*/

import "errors"

/*
 * Significant octet values.
 */

const PPP_ALLSTATIONS = 0xff /* All-Stations broadcast address */
const PPP_UI = 0x03          /* Unnumbered Information */
const PPP_FLAG = 0x7e        /* Flag Sequence */
const PPP_ESCAPE = 0x7d      /* Asynchronous Control Escape */
const PPP_TRANS = 0x20       /* Asynchronous transparency modifier */

/*
 * Protocol field values.
 */

const PPP_IP = 0x21          /* Internet Protocol */
const PPP_VJC_COMP = 0x2d    /* VJ compressed TCP */
const PPP_VJC_UNCOMP = 0x2f  /* VJ uncompressed TCP */
const PPP_IPV6 = 0x57        /* Internet Protocol Version 6 */
const PPP_COMP = 0xfd        /* compressed packet */
const PPP_IPCP = 0x8021      /* IP Control Protocol */
const PPP_CCP = 0x80fd       /* Compression Control Protocol */
const PPP_LCP = 0xc021       /* Link Control Protocol */
const PPP_PAP = 0xc023       /* Password Authentication Protocol */
const PPP_CHAP = 0xc223      /* Cryptographic Handshake Auth. Protocol */

/*
 * Values for FCS calculations.
 */

const PPP_INITFCS = 0xffff /* Initial FCS value */
const PPP_GOODFCS = 0xf0b8 /* Good final FCS value */

/* Send a flag before the next frame if the line was quiet this long. */

const PPP_MAXIDLEFLAG = 100 /* Milliseconds. */

/*
 * Errors surfaced by the framer API.  The engine itself never retries;
 * these accompany a counter increment and a dropped frame.
 */

var ErrMem = errors.New("pppos: no buffer available")
var ErrDevice = errors.New("pppos: serial device write failed")
var ErrProtocol = errors.New("pppos: malformed packet rejected by codec")
var ErrClosed = errors.New("pppos: link not connected")

func protocol_name(protocol uint16) string {
	switch protocol {
	case PPP_IP:
		return "IP"
	case PPP_VJC_COMP:
		return "VJ comp TCP"
	case PPP_VJC_UNCOMP:
		return "VJ uncomp TCP"
	case PPP_IPV6:
		return "IPv6"
	case PPP_COMP:
		return "compressed"
	case PPP_IPCP:
		return "IPCP"
	case PPP_CCP:
		return "CCP"
	case PPP_LCP:
		return "LCP"
	case PPP_PAP:
		return "PAP"
	case PPP_CHAP:
		return "CHAP"
	}
	return "unknown"
}
