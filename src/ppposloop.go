package pppos

/*------------------------------------------------------------------
 *
 * Purpose:   	Loopback self-test over a pseudo terminal pair.
 *
 * Description:	A pty pair behaves like the two ends of a serial
 *		cable: bytes written to the master come out of the
 *		slave.  One link encodes random frames into the
 *		master, another decodes the slave, and every payload
 *		that survives the round trip intact counts as a pass.
 *
 *		A real tty line discipline sits in the middle, so the
 *		ptys are put in raw mode first or it would cook the
 *		framing bytes.
 *
 * Usage:	ppposloop [-n frames] [-s max-payload]
 *
 *---------------------------------------------------------------*/

import (
	"bytes"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/creack/pty"
	"github.com/pkg/term/termios"
	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"
)

func PpposLoopMain() {
	var nframes = pflag.IntP("count", "n", 100, "Number of frames to bounce.")
	var maxlen = pflag.IntP("size", "s", 500, "Maximum payload length.")
	var help = pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - PPPoS encode/decode self test over a pty pair.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	var ptmx, pts, err = pty.Open()
	if err != nil {
		log.Fatal("Could not open pty pair", "error", err)
	}
	defer ptmx.Close()
	defer pts.Close()

	/* Raw mode on both ends or the line discipline will cook our
	 * framing bytes. */
	for _, f := range []*os.File{ptmx, pts} {
		var attr unix.Termios
		if err := termios.Tcgetattr(f.Fd(), &attr); err != nil {
			log.Fatal("tcgetattr failed", "error", err)
		}
		termios.Cfmakeraw(&attr)
		if err := termios.Tcsetattr(f.Fd(), termios.TCSANOW, &attr); err != nil {
			log.Fatal("tcsetattr failed", "error", err)
		}
	}

	log.Info("Loopback running", "pty", pts.Name(), "frames", *nframes)

	/* Transmit side writes the master. */
	var tx_nif = &netif{name: "loop-tx"}
	var tx = pppos_create(tx_nif, sio_from_writer(ptmx), nil, nil)
	pppos_connect(tx)
	pppos_set_accomp(tx, true)
	pppos_set_pcomp(tx, true)
	/* Escape every octet below 0x20 too, not just the flag and
	 * escape octets. */
	pppos_set_xmit_accm(tx, 0xffffffff)

	/* Receive side decodes the slave.  The reader goroutine feeds
	 * the decoder; finished frames cross the queue and come back on
	 * its consumer thread. */
	var got = make(chan []byte, 8)
	var rx_nif = &netif{
		name: "loop-rx",
		input: func(nif *netif, pb *pbuf, ctx any) {
			var frame = pbuf_bytes(pb)
			pbuf_free(pb)
			got <- frame
		},
	}
	var q = inq_init(0)
	defer inq_terminate(q)
	var rx = pppos_create_disp(rx_nif, sio_from_writer(pts), nil, nil, inq_dispatcher(q))
	pppos_connect(rx)

	go func() {
		var buf [256]byte
		for {
			var n, err = pts.Read(buf[:])
			if err != nil {
				return
			}
			pppos_input(rx, buf[:n])
		}
	}()

	var pass, fail = 0, 0
	for i := 0; i < *nframes; i++ {
		var payload = make([]byte, int(magic())%(*maxlen)+1)
		for j := range payload {
			payload[j] = byte(magic())
		}

		var pb = pbuf_take(tx.pool, payload)
		if pb == nil {
			log.Fatal("Out of buffers")
		}
		if err := pppos_netif_output(tx, pb, PPP_IP); err != nil {
			log.Fatal("Send failed", "error", err)
		}

		var frame = <-got
		var want = append([]byte{0x00, PPP_IP}, payload...)
		if bytes.Equal(frame, want) {
			pass++
		} else {
			fail++
			text_color_set(DW_COLOR_ERROR)
			pp_printf("Mismatch on frame %d:\n", i)
			hex_dump(frame)
			text_color_set(DW_COLOR_INFO)
		}
	}

	pppos_disconnect(tx)
	pppos_disconnect(rx)
	pppos_free(tx)
	pppos_free(rx)

	log.Info("Loopback finished", "pass", pass, "fail", fail)
	if fail > 0 {
		os.Exit(1)
	}
}
