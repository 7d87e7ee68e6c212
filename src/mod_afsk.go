package kelpie

/*------------------------------------------------------------------
 *
 * Purpose:	Convert the queued byte stream to AFSK audio samples.
 *
 * Description:	Pull model: whoever owns the audio output calls
 *		DacIsr once per output sample while Sending reports
 *		true.  The outer, per-bit logic runs whenever the
 *		current bit's samples are used up; the inner DDS step
 *		runs every call.
 *
 *		All bits go out NRZI: a data 1 keeps the current
 *		tone, a data 0 switches it.  Data bytes get a zero
 *		stuffed after five 1 bits in a row; the flag fill of
 *		preamble and trailer is sent with stuffing disabled
 *		so flags stay recognizable.
 *
 *---------------------------------------------------------------*/

func (af *Afsk) switch_tone() {
	if af.phase_inc == af.mark_inc {
		af.phase_inc = af.space_inc
	} else {
		af.phase_inc = af.mark_inc
	}
}

// Tear down the transmission.  Runs in the DAC context.
func (af *Afsk) tx_stop() {
	if af.hw.DacIrqStop != nil {
		af.hw.DacIrqStop()
	}
	af.sending.Store(false)
}

/*-------------------------------------------------------------------
 *
 * Name:	DacIsr
 *
 * Purpose:	Produce the next transmit audio sample.  This is the
 *		transmit-side interrupt handler; call it at the
 *		configured DAC sample rate, from a single goroutine,
 *		while Sending is true.
 *
 * Returns:	Unsigned 8-bit sample, full scale, centered at 128.
 *		Returns the center value once the transmission has
 *		torn itself down.
 *
 *--------------------------------------------------------------------*/

func (af *Afsk) DacIsr() uint8 {
	if !af.sending.Load() {
		return 128
	}

	if af.sample_count == 0 {

		if af.tx_bit == 0 {
			/*
			 * Finished shifting out a byte; line up the
			 * next one.  When the queue is dry and the
			 * trailer has been sent there is nothing
			 * left to do.  The teardown decision is taken
			 * under the start mutex so a writer pushing a
			 * byte right now either gets it into this
			 * transmission or restarts cleanly.
			 */
			if fifo_isempty(af.tx_fifo) && af.trailer_len.Load() == 0 {
				af.start_mutex.Lock()
				if fifo_isempty(af.tx_fifo) && af.trailer_len.Load() == 0 {
					af.tx_stop()
					af.start_mutex.Unlock()
					return 128
				}
				af.start_mutex.Unlock()
			}

			/*
			 * If we have just finished sending an
			 * unstuffed byte, restart the counting of
			 * consecutive 1 bits.
			 */
			if !af.bit_stuff {
				af.stuff_cnt = 0
			}
			af.bit_stuff = true

			switch {
			case af.preamble_len > 0:
				af.preamble_len--
				af.curr_out = HDLC_FLAG
				af.bit_stuff = false

			case !fifo_isempty(af.tx_fifo):
				af.curr_out = fifo_pop(af.tx_fifo)

				if af.curr_out == AX25_ESC {
					/*
					 * Escape: the next byte is literal
					 * payload, sent with stuffing on.
					 * An escape with nothing behind it
					 * is a broken writer; treat it as
					 * end of stream.
					 */
					if fifo_isempty(af.tx_fifo) {
						af.tx_stop()
						return 128
					}
					af.curr_out = fifo_pop(af.tx_fifo)
				} else if af.curr_out == HDLC_FLAG || af.curr_out == HDLC_RESET {
					/* Out-of-band framing symbol. */
					af.bit_stuff = false
				}

			default:
				af.trailer_len.Add(-1)
				af.curr_out = HDLC_FLAG
				af.bit_stuff = false
			}

			af.tx_bit = 0x01
		}

		/* Pick the next bit to put on the air. */
		if af.bit_stuff && af.stuff_cnt >= BIT_STUFF_LEN {
			/* Break up the run of 1 bits with a stuffed 0. */
			af.stuff_cnt = 0
			af.switch_tone()
		} else {
			if af.curr_out&af.tx_bit != 0 {
				af.stuff_cnt++
			} else {
				af.stuff_cnt = 0
				af.switch_tone()
			}
			af.tx_bit <<= 1
		}

		af.sample_count = af.dac_samplesperbit
	}

	/* DDS step. */
	af.phase_acc = (af.phase_acc + af.phase_inc) % SIN_LEN
	af.sample_count--

	return sin_sample(af.phase_acc)
}
