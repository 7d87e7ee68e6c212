package kelpie

/*------------------------------------------------------------------
 *
 * Purpose:	Activate the push to talk (PTT) control line while
 *		transmitting.
 *
 * Description:	Traditionally this is done with the RTS signal of a
 *		serial port; on small boards a GPIO line is the usual
 *		choice.  Both are supported:
 *
 *		    gpio    - a line on a gpiochip character device.
 *		    serial  - RTS or DTR of a serial device.
 *		    none    - transmitter is keyed some other way
 *			      (VOX, or a receive-only station).
 *
 *		Wire Set(true)/Set(false) into the modem's DacIrqStart
 *		and DacIrqStop hooks and the radio keys exactly for
 *		the duration of a transmission, preamble through
 *		trailer.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"

	"github.com/pkg/term"
	"github.com/warthog618/go-gpiocdev"
)

type PTT struct {
	method string

	gpio_line *gpiocdev.Line

	serial      *term.Term
	serial_line string
}

func NewPTT(config PTTConfig) (*PTT, error) {
	var p = &PTT{method: config.Method} //nolint:exhaustruct

	switch config.Method {
	case "", "none":
		p.method = "none"

	case "gpio":
		var line, reqErr = gpiocdev.RequestLine(config.GPIOChip, config.GPIOLine,
			gpiocdev.AsOutput(0))
		if reqErr != nil {
			return nil, fmt.Errorf("can't get PTT line %d on %s: %w", config.GPIOLine, config.GPIOChip, reqErr)
		}
		p.gpio_line = line

	case "serial":
		var t, openErr = term.Open(config.SerialDevice, term.RawMode)
		if openErr != nil {
			return nil, fmt.Errorf("can't open PTT serial device %s: %w", config.SerialDevice, openErr)
		}
		p.serial = t
		p.serial_line = config.SerialLine

		/* Make sure we start un-keyed. */
		p.Set(false)

	default:
		return nil, fmt.Errorf("unknown PTT method %q", config.Method)
	}

	return p, nil
}

func (p *PTT) Set(on bool) {
	switch p.method {
	case "gpio":
		var setErr = p.gpio_line.SetValue(IfThenElse(on, 1, 0))
		if setErr != nil {
			text_color_set(DW_COLOR_ERROR)
			dw_printf("PTT gpio set failed: %s\n", setErr)
		}

	case "serial":
		var setErr error
		if p.serial_line == "dtr" {
			setErr = p.serial.SetDTR(on)
		} else {
			setErr = p.serial.SetRTS(on)
		}
		if setErr != nil {
			text_color_set(DW_COLOR_ERROR)
			dw_printf("PTT serial set failed: %s\n", setErr)
		}
	}
}

func (p *PTT) Close() {
	p.Set(false)

	if p.gpio_line != nil {
		p.gpio_line.Close() //nolint:errcheck
	}
	if p.serial != nil {
		p.serial.Close() //nolint:errcheck
	}
}
