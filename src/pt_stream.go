package kelpie

/*------------------------------------------------------------------
 *
 * Purpose:	Make the modem byte stream available on a pseudo
 *		terminal, for applications that expect to talk to a
 *		TNC over a serial device.
 *
 * Description:	The device name is not the same every time, which is
 *		inconvenient for the application on the other side, so
 *		a symlink with a stable name points at the current
 *		slave device.
 *
 *		If no one is reading from the other end of the pseudo
 *		terminal its buffer eventually fills, and a blocking
 *		write here would wedge the receive path.  The fd is
 *		checked for writability first and received data is
 *		dropped when the client has gone away; the client that
 *		isn't listening doesn't want it anyway.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

type PtStream struct {
	master *os.File
	slave  *os.File

	symlink string

	tx chan<- []byte

	done chan struct{}
}

/*-------------------------------------------------------------------
 *
 * Name:	NewPtStream
 *
 * Purpose:	Create the pseudo terminal and start shoveling.
 *
 * Inputs:	tx	- Channel toward the modem's transmit side.
 *			  Everything the client writes goes here.
 *
 *		symlink	- Stable path pointing at the slave device.
 *
 * Description:	Bytes received from the air are handed in through
 *		Deliver by whoever owns the modem's read side.
 *
 *--------------------------------------------------------------------*/

func NewPtStream(tx chan<- []byte, symlink string) (*PtStream, error) {
	var master, slave, openErr = pty.Open()
	if openErr != nil {
		return nil, fmt.Errorf("can't create pseudo terminal: %w", openErr)
	}

	var ps = &PtStream{
		master:  master,
		slave:   slave,
		symlink: symlink,
		tx:      tx,
		done:    make(chan struct{}),
	}

	os.Remove(symlink) //nolint:errcheck
	var symlinkErr = os.Symlink(slave.Name(), symlink)
	if symlinkErr != nil {
		master.Close() //nolint:errcheck
		slave.Close()  //nolint:errcheck
		return nil, fmt.Errorf("can't create symlink %s: %w", symlink, symlinkErr)
	}

	text_color_set(DW_COLOR_INFO)
	dw_printf("Modem stream available on %s (%s)\n", slave.Name(), symlink)

	go ps.client_reader()

	return ps, nil
}

// Client writes become transmit data.
func (ps *PtStream) client_reader() {
	var buf = make([]byte, 256)

	for {
		var n, readErr = ps.master.Read(buf)
		if readErr != nil {
			select {
			case <-ps.done:
				return
			default:
				SLEEP_MS(100)
				continue
			}
		}

		var data = make([]byte, n)
		copy(data, buf[:n])
		ps.tx <- data
	}
}

// Deliver hands received stream bytes to the client, if one is
// listening.
func (ps *PtStream) Deliver(data []byte) {
	if !ps.writable() {
		return
	}

	ps.master.Write(data) //nolint:errcheck
}

func (ps *PtStream) writable() bool {
	var fd = int(ps.master.Fd())

	var fds unix.FdSet
	fds.Set(fd)

	var timeout = unix.Timeval{Sec: 0, Usec: 0}
	var n, selectErr = unix.Select(fd+1, nil, &fds, nil, &timeout)

	return selectErr == nil && n > 0
}

func (ps *PtStream) Close() {
	close(ps.done)
	os.Remove(ps.symlink) //nolint:errcheck
	ps.master.Close()     //nolint:errcheck
	ps.slave.Close()      //nolint:errcheck
}
