package kelpie

// Colored console output in the Dire Wolf tradition.

import (
	"fmt"
)

type dw_color_e int

const (
	DW_COLOR_INFO    dw_color_e = iota /* default */
	DW_COLOR_ERROR                     /* red */
	DW_COLOR_REC                       /* green */
	DW_COLOR_XMIT                      /* magenta */
	DW_COLOR_DEBUG                     /* cyan */
)

var ansi_color = map[dw_color_e]string{
	DW_COLOR_INFO:  "\x1b[0m",
	DW_COLOR_ERROR: "\x1b[31m",
	DW_COLOR_REC:   "\x1b[32m",
	DW_COLOR_XMIT:  "\x1b[35m",
	DW_COLOR_DEBUG: "\x1b[36m",
}

var _text_color_level int

func TextColorInit(level int) {
	_text_color_level = level
}

func text_color_set(c dw_color_e) {
	if _text_color_level == 0 {
		return
	}

	fmt.Print(ansi_color[c])
}

func dw_printf(format string, a ...any) (int, error) {
	return fmt.Printf(format, a...)
}
