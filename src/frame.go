package kelpie

/*------------------------------------------------------------------
 *
 * Purpose:	Helpers for the escaped byte-stream convention used
 *		on both sides of the modem.
 *
 * Description:	On the stream, HDLC_FLAG delimits frames and AX25_ESC
 *		marks the next byte as literal payload.  EscapeFrame
 *		produces the writer-side encoding of one frame;
 *		FrameScanner walks the reader-side stream and hands
 *		back de-escaped frame payloads.  This is the thin end
 *		of the packet layer above the modem - no addressing,
 *		no FCS.
 *
 *---------------------------------------------------------------*/

// Frames bigger than this are assumed to be garbage from a noise
// burst and are discarded by the scanner.
const MAX_FRAME_LEN = 2048

func is_reserved_byte(b byte) bool {
	return b == HDLC_FLAG || b == HDLC_RESET || b == AX25_ESC
}

/*-------------------------------------------------------------------
 *
 * Name:	EscapeFrame
 *
 * Purpose:	Encode one frame payload for Write: opening flag,
 *		payload with reserved bytes escaped, closing flag.
 *
 *--------------------------------------------------------------------*/

func EscapeFrame(payload []byte) []byte {
	var out = make([]byte, 0, len(payload)+2)

	out = append(out, HDLC_FLAG)
	for _, b := range payload {
		if is_reserved_byte(b) {
			out = append(out, AX25_ESC)
		}
		out = append(out, b)
	}
	out = append(out, HDLC_FLAG)

	return out
}

/*
 * FrameScanner splits the escaped receive stream back into frame
 * payloads.  Feed it bytes as they come out of Read; every completed
 * frame is returned exactly once.
 */

type FrameScanner struct {
	buf      []byte
	escaped  bool
	skipping bool /* oversized frame; ignore until the next flag */
	dropped  int  /* oversized or malformed frames thrown away */
}

func NewFrameScanner() *FrameScanner {
	return &FrameScanner{ //nolint:exhaustruct
		buf: make([]byte, 0, MAX_FRAME_LEN),
	}
}

// Dropped returns how many frames were discarded as oversized or
// malformed since the scanner was created.
func (fs *FrameScanner) Dropped() int {
	return fs.dropped
}

/*-------------------------------------------------------------------
 *
 * Name:	Feed
 *
 * Purpose:	Push one stream byte through the scanner.
 *
 * Returns:	A completed frame payload and true, or nil and false.
 *		The returned slice is a copy; the caller keeps it.
 *
 * Description:	Consecutive flags (the preamble and trailer fill)
 *		produce empty frames, which are swallowed here rather
 *		than handed to every caller to ignore.  An un-escaped
 *		HDLC_RESET should never appear in the stream; if one
 *		does, whatever was accumulating is garbage.
 *
 *--------------------------------------------------------------------*/

func (fs *FrameScanner) Feed(b byte) ([]byte, bool) {
	if fs.skipping {
		if b == HDLC_FLAG {
			fs.skipping = false
			fs.escaped = false
			fs.buf = fs.buf[:0]
		}
		return nil, false
	}

	if fs.escaped {
		fs.escaped = false
		fs.append_payload(b)
		return nil, false
	}

	switch b {
	case AX25_ESC:
		fs.escaped = true
		return nil, false

	case HDLC_FLAG:
		if len(fs.buf) == 0 {
			return nil, false
		}

		var frame = make([]byte, len(fs.buf))
		copy(frame, fs.buf)
		fs.buf = fs.buf[:0]
		return frame, true

	case HDLC_RESET:
		if len(fs.buf) > 0 {
			fs.dropped++
		}
		fs.buf = fs.buf[:0]
		return nil, false

	default:
		fs.append_payload(b)
		return nil, false
	}
}

// PrintRecFrame shows one received frame on the console, direwolf
// style: sequence number and length, then the payload in hex.
func PrintRecFrame(n int, frame []byte) {
	text_color_set(DW_COLOR_REC)
	dw_printf("[%d] len=%d\n", n, len(frame))
	dw_printf("%s\n", hex_bytes(frame))
	text_color_set(DW_COLOR_INFO)
}

func (fs *FrameScanner) append_payload(b byte) {
	if len(fs.buf) >= MAX_FRAME_LEN {
		/* Runaway frame; ignore the rest and resync at the
		 * next flag. */
		fs.buf = fs.buf[:0]
		fs.skipping = true
		fs.dropped++
		return
	}
	fs.buf = append(fs.buf, b)
}
