package pppos

/*------------------------------------------------------------------
 *
 * Purpose:   	Interface to the serial port, hiding operating system
 *		differences, and its adaptation to the framer's driver
 *		contract.
 *
 *---------------------------------------------------------------*/

import (
	"io"

	"github.com/pkg/term"
)

/*-------------------------------------------------------------------
 *
 * Name:	serial_port_open
 *
 * Purpose:	Open a serial port in raw mode.
 *
 * Inputs:	devicename	- Usually /dev/tty...
 *				  Could be /dev/rfcomm0 for Bluetooth.
 *
 *		baud		- Speed.  1200, 4800, 9600 bps, etc.
 *				  If 0, leave it alone.
 *
 * Returns 	Handle for serial port or nil.
 *
 *---------------------------------------------------------------*/

func serial_port_open(devicename string, baud int) *term.Term {
	var fd, err = term.Open(devicename, term.RawMode)
	if err != nil {
		text_color_set(DW_COLOR_ERROR)
		pp_printf("ERROR - Could not open serial port %s: %s.\n", devicename, err)
		return nil
	}

	switch baud {
	case 0: /* Leave it alone. */
	case 1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200:
		fd.SetSpeed(baud)
	default:
		text_color_set(DW_COLOR_ERROR)
		pp_printf("serial_port_open: Unsupported speed %d.  Using 9600.\n", baud)
		fd.SetSpeed(9600)
	}

	return fd
}

/*-------------------------------------------------------------------
 *
 * Name:	serial_port_write
 *
 * Purpose:	Send octets to the serial port.
 *
 * Returns 	Number of octets written.  Anything short of len(data)
 *		is an error to the caller.
 *
 *---------------------------------------------------------------*/

func serial_port_write(fd *term.Term, data []byte) int {
	if fd == nil {
		return -1
	}

	var written, err = fd.Write(data)
	if err != nil {
		return -1
	}
	return written
}

/*-------------------------------------------------------------------
 *
 * Name:        serial_port_read
 *
 * Purpose:     Get whatever octets are available, waiting for at
 *		least one.  Sized for feeding pppos_input a chunk at
 *		a time.
 *
 *--------------------------------------------------------------------*/

func serial_port_read(fd *term.Term, buf []byte) (int, error) {
	return fd.Read(buf)
}

func serial_port_close(fd *term.Term) {
	if fd == nil {
		return
	}
	fd.Close()
}

/*
 * The framer side of the driver contract.  sio_open binds a real
 * port; sio_from_writer covers the pseudo-terminal and test doubles.
 */

type sio_serial struct {
	fd *term.Term
}

func sio_open(fd *term.Term) *sio_serial {
	return &sio_serial{fd: fd}
}

func (s *sio_serial) sio_write(data []byte) int {
	return serial_port_write(s.fd, data)
}

type sio_generic struct {
	w io.Writer
}

func sio_from_writer(w io.Writer) *sio_generic {
	return &sio_generic{w: w}
}

func (s *sio_generic) sio_write(data []byte) int {
	var n, err = s.w.Write(data)
	if err != nil {
		return -1
	}
	return n
}
