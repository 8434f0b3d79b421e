package pppos

/*------------------------------------------------------------------
 *
 * Purpose:   	Attach to a serial device carrying PPPoS and print
 *		every well-formed frame as it arrives.
 *
 * Description:	The serial reader feeds raw chunks into pppos_input;
 *		completed frames cross to a consumer thread through
 *		the received-frame queue and are printed there, so a
 *		slow terminal never stalls the receive path.
 *
 * Usage:	ppposdump [options] /dev/ttyUSB0
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
	"github.com/spf13/pflag"
)

func PpposDumpMain() {
	var baud = pflag.IntP("bitrate", "B", 0, "Bits/second for the serial port.  0 uses the config file's baud, or leaves the port alone.")
	var configFileName = pflag.StringP("config-file", "c", "", "Link configuration file (YAML).")
	var timestampFormat = pflag.StringP("timestamp-format", "T", "", "Precede received frames with 'strftime' format time stamp.")
	var colorLevel = pflag.IntP("color", "t", 1, "Text colors.  0 to disable.")
	var showVersion = pflag.Bool("version", false, "Print version and exit.")
	var help = pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - Watch PPP frames on a serial line.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options] device\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	text_color_init(*colorLevel)

	var cfg = &link_config_s{}
	if *configFileName != "" {
		var loaded, err = config_load(*configFileName)
		if err != nil {
			log.Fatal("Could not load configuration", "error", err)
		}
		cfg = loaded
	}

	var device = cfg.Device
	if pflag.NArg() > 0 {
		device = pflag.Arg(0)
	}
	if device == "" {
		pflag.Usage()
		os.Exit(64)
	}
	if *baud != 0 {
		cfg.Baud = *baud
	}

	var fd = serial_port_open(device, cfg.Baud)
	if fd == nil {
		log.Fatal("Could not open device", "device", device)
	}
	defer serial_port_close(fd)

	log.Info("Listening for PPP frames", "device", device, "baud", cfg.Baud)

	var tsfmt *strftime.Strftime
	if *timestampFormat != "" {
		var f, err = strftime.New(*timestampFormat)
		if err != nil {
			log.Fatal("Bad timestamp format", "error", err)
		}
		tsfmt = f
	}

	var nif = &netif{
		name:  device,
		input: func(nif *netif, pb *pbuf, ctx any) { dump_frame(tsfmt, pb) },
	}

	var q = inq_init(0)
	defer inq_terminate(q)

	var pcb = pppos_create_disp(nif, sio_open(fd), nil, nil, inq_dispatcher(q))
	pppos_connect(pcb)
	config_apply(pcb, cfg)

	var buf [256]byte
	for {
		var n, err = serial_port_read(fd, buf[:])
		if err != nil {
			log.Error("Serial read failed", "error", err)
			break
		}
		pppos_input(pcb, buf[:n])
	}

	pppos_disconnect(pcb)
	pppos_free(pcb)
}

/* Runs on the queue consumer thread. */

func dump_frame(tsfmt *strftime.Strftime, pb *pbuf) {
	var frame = pbuf_bytes(pb)
	pbuf_free(pb)
	if len(frame) < 2 {
		return
	}
	var protocol = uint16(frame[0])<<8 | uint16(frame[1])

	var prefix = ""
	if tsfmt != nil {
		prefix = "[" + tsfmt.FormatString(time.Now()) + "] "
	}

	text_color_set(DW_COLOR_REC)
	pp_printf("%s%s (0x%04x), %d bytes\n", prefix, protocol_name(protocol), protocol, len(frame)-2)
	hex_dump(frame[2:])
	text_color_set(DW_COLOR_INFO)
}
