package pppos

/*------------------------------------------------------------------
 *
 * Purpose:   	Generate PPPoS frames for testing receivers.
 *
 * Description:	Each command line argument is a payload in hex.  The
 *		encoded frames go to stdout (pipe them into a decoder
 *		or a file) or straight to a serial device with -d.
 *
 * Usage:	ppposgen -P c021 01010004
 *		ppposgen -d /dev/ttyUSB1 -B 115200 --accomp --pcomp 450000...
 *
 *---------------------------------------------------------------*/

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
)

func PpposGenMain() {
	var protocolStr = pflag.StringP("protocol", "P", "0021", "PPP protocol number, hex.")
	var device = pflag.StringP("device", "d", "", "Serial device to send to.  Default is stdout.")
	var baud = pflag.IntP("bitrate", "B", 0, "Bits/second for the serial port.")
	var accomp = pflag.Bool("accomp", false, "Compress the address/control fields.")
	var pcomp = pflag.Bool("pcomp", false, "Compress the protocol field when it fits in one octet.")
	var count = pflag.IntP("count", "n", 1, "Send each frame this many times.")
	var help = pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - Generate PPP frames with HDLC async framing.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options] payload-hex [payload-hex ...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help || pflag.NArg() == 0 {
		pflag.Usage()
		os.Exit(64)
	}

	var protocol64, parseErr = strconv.ParseUint(*protocolStr, 16, 16)
	if parseErr != nil {
		log.Fatal("Bad protocol number", "protocol", *protocolStr)
	}
	var protocol = uint16(protocol64)

	var serial sio_port
	if *device != "" {
		var fd = serial_port_open(*device, *baud)
		if fd == nil {
			log.Fatal("Could not open device", "device", *device)
		}
		defer serial_port_close(fd)
		serial = sio_open(fd)
	} else {
		serial = sio_from_writer(os.Stdout)
	}

	var nif = &netif{name: "ppposgen"}
	var pcb = pppos_create(nif, serial, nil, nil)
	pppos_connect(pcb)
	pppos_set_accomp(pcb, *accomp)
	pppos_set_pcomp(pcb, *pcomp)

	for _, arg := range pflag.Args() {
		var payload, err = hex.DecodeString(arg)
		if err != nil {
			log.Fatal("Bad payload hex", "payload", arg)
		}
		for i := 0; i < *count; i++ {
			var pb = pbuf_take(pcb.pool, payload)
			if pb == nil {
				log.Fatal("Out of buffers")
			}
			if err := pppos_netif_output(pcb, pb, protocol); err != nil {
				log.Fatal("Send failed", "error", err)
			}
		}
	}

	pppos_disconnect(pcb)
	pppos_free(pcb)
}
