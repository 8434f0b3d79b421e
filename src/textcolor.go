package pppos

/*------------------------------------------------------------------
 *
 * Purpose:   	Colored terminal output for the interactive tools.
 *
 *		Received traffic, transmitted traffic, and errors get
 *		distinct colors so a scrolling dump stays readable.
 *		Disabled entirely when not wanted (piped output).
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"os"
)

type dw_color_e int

const (
	DW_COLOR_INFO  dw_color_e = iota /* default */
	DW_COLOR_ERROR                   /* red */
	DW_COLOR_REC                     /* green */
	DW_COLOR_XMIT                    /* magenta */
	DW_COLOR_DEBUG                   /* cyan */
)

var _text_color_level int

var _color_codes = map[dw_color_e]string{
	DW_COLOR_INFO:  "\x1b[0m",
	DW_COLOR_ERROR: "\x1b[0;31m",
	DW_COLOR_REC:   "\x1b[0;32m",
	DW_COLOR_XMIT:  "\x1b[0;35m",
	DW_COLOR_DEBUG: "\x1b[0;36m",
}

func text_color_init(level int) {
	_text_color_level = level
}

func text_color_set(c dw_color_e) {
	if _text_color_level == 0 {
		return
	}
	fmt.Fprint(os.Stdout, _color_codes[c])
}

func pp_printf(format string, a ...any) (int, error) {
	return fmt.Printf(format, a...)
}
