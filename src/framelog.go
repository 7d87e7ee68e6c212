package kelpie

/*------------------------------------------------------------------
 *
 * Purpose:	Save received frames to daily log files.
 *
 * Description: Rather than a raw binary capture, write separated
 *		properties into CSV format for easy reading and later
 *		processing.  A new file is started whenever the day
 *		changes; the file is kept open between frames rather
 *		than opened and closed for every item.
 *
 *---------------------------------------------------------------*/

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lestrrat-go/strftime"
)

type FrameLog struct {
	dir string

	fp         *os.File
	csv_writer *csv.Writer
	open_name  string /* name of the currently open file */
}

/*-------------------------------------------------------------------
 *
 * Name:	NewFrameLog
 *
 * Purpose:	Set up daily frame logging into the given directory.
 *
 * Description:	The directory must already exist or be creatable; we
 *		don't create multiple levels like "mkdir -p".
 *
 *--------------------------------------------------------------------*/

func NewFrameLog(dir string) (*FrameLog, error) {
	var stat, statErr = os.Stat(dir)

	if statErr == nil {
		if !stat.IsDir() {
			return nil, fmt.Errorf("frame log location %q is not a directory", dir)
		}
	} else {
		var mkdirErr = os.Mkdir(dir, 0755)
		if mkdirErr != nil {
			return nil, fmt.Errorf("failed to create frame log location %q: %w", dir, mkdirErr)
		}

		text_color_set(DW_COLOR_INFO)
		dw_printf("Frame log location \"%s\" has been created.\n", dir)
	}

	return &FrameLog{dir: dir}, nil //nolint:exhaustruct
}

/*-------------------------------------------------------------------
 *
 * Name:	Log
 *
 * Purpose:	Append one received frame.
 *
 * Description:	Columns are the local timestamp, the payload length,
 *		and the payload in hex.  Interpreting the payload
 *		(AX.25 addressing and so on) belongs to whatever reads
 *		the log.
 *
 *--------------------------------------------------------------------*/

func (fl *FrameLog) Log(frame []byte) {
	var now = time.Now()

	var fname, ftimeErr = strftime.Format("%Y-%m-%d.log", now)
	if ftimeErr != nil {
		return
	}

	if fname != fl.open_name {
		fl.Close()

		var path = filepath.Join(fl.dir, fname)
		var fp, openErr = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if openErr != nil {
			text_color_set(DW_COLOR_ERROR)
			dw_printf("Can't open frame log file %s: %s\n", path, openErr)
			return
		}

		fl.fp = fp
		fl.csv_writer = csv.NewWriter(fp)
		fl.open_name = fname

		var pos, _ = fp.Seek(0, 2)
		if pos == 0 {
			fl.csv_writer.Write([]string{"time", "len", "payload"}) //nolint:errcheck
		}
	}

	if fl.csv_writer == nil {
		return
	}

	fl.csv_writer.Write([]string{ //nolint:errcheck
		now.Format(time.RFC3339),
		fmt.Sprintf("%d", len(frame)),
		hex_bytes(frame),
	})
	fl.csv_writer.Flush()
}

func (fl *FrameLog) Close() {
	if fl.csv_writer != nil {
		fl.csv_writer.Flush()
		fl.csv_writer = nil
	}
	if fl.fp != nil {
		fl.fp.Close() //nolint:errcheck
		fl.fp = nil
	}
	fl.open_name = ""
}
