package kelpie

/*------------------------------------------------------------------
 *
 * Purpose:	AFSK1200 modem context and the blocking stream
 *		interface offered to the layer above.
 *
 * Description:	Bell 202 compatible.  Mark = 1200 Hz, space = 2200 Hz,
 *		NRZI coded at 1200 bits/sec.  The demodulator runs at
 *		a fixed 9600 Hz sample rate (8 samples per bit); the
 *		modulator runs at any configured multiple of the bit
 *		rate.
 *
 *		The two sample-rate entry points, AdcIsr and DacIsr,
 *		play the role of the ADC and DAC interrupt handlers of
 *		the embedded original.  Whatever is pumping audio (the
 *		sound card goroutines, a WAV file tool, a test) calls
 *		them; they never block and never allocate.
 *
 *---------------------------------------------------------------*/

import (
	"sync"
	"sync/atomic"
	"time"
)

// Receive sampling.  These are fixed; the demodulator's delay-line
// discriminator and DPLL constants are derived from them.
const (
	SAMPLERATE    = 9600
	BITRATE       = 1200
	SAMPLESPERBIT = SAMPLERATE / BITRATE
)

const (
	MARK_FREQ  = 1200
	SPACE_FREQ = 2200
)

// Clock recovery.  The phase accumulator spans a bit time in units of
// 1/PHASE_BIT of a sample.
const (
	PHASE_BIT       = 8
	PHASE_INC       = 1
	PHASE_MAX       = SAMPLESPERBIT * PHASE_BIT
	PHASE_THRESHOLD = PHASE_MAX / 2
)

// HDLC framing bytes.  These are also the reserved values of the
// byte-stream interface: a literal occurrence in payload is preceded
// by AX25_ESC on both sides.
const (
	HDLC_FLAG  = 0x7E
	HDLC_RESET = 0x7F
	AX25_ESC   = 0x1B
)

// 1 bits in a row before the transmitter stuffs a zero (and the
// receiver strips one).
const BIT_STUFF_LEN = 5

// Status bits, see Status.
const (
	AFSK_RXFIFO_OVERRUN = 1 << 0
)

/*
 * Hardware hooks.  The embedded original toggled interrupt enables
 * and a scope strobe pin here; a sound-card build keys PTT from the
 * DAC hooks and usually leaves the strobes nil.
 */

type HW struct {
	DacIrqStart func()
	DacIrqStop  func()
	StrobeOn    func()
	StrobeOff   func()
}

type Afsk struct {
	hw HW

	filter        afsk_filter_e
	rx_timeout_ms int

	preamble_ms int
	trailer_ms  int

	/* DDS constants, from the configured DAC sample rate. */
	dac_samplerate    int
	dac_samplesperbit int
	mark_inc          uint16
	space_inc         uint16

	/* Receive side.  Owned by the ADC context. */
	delay_fifo   *fifo_t[int8]
	rx_fifo      *fifo_t[uint8]
	iir_x        [2]int16
	iir_y        [2]int16
	sampled_bits uint8
	curr_phase   int16
	found_bits   uint8
	hdlc         hdlc_state_s

	/* Transmit side.  Owned by the DAC context while sending. */
	tx_fifo      *fifo_t[uint8]
	curr_out     uint8
	tx_bit       uint8
	sample_count int
	phase_acc    uint16
	phase_inc    uint16
	bit_stuff    bool
	stuff_cnt    uint8
	preamble_len int

	/* Shared with the foreground. */
	trailer_len atomic.Int32
	sending     atomic.Bool
	status      atomic.Uint32

	// Serializes transmission start/stop decisions.  This is the
	// critical section the original implemented by masking the DAC
	// interrupt; it closes the window between the writer's push
	// and the DAC side deciding the queue has drained.
	start_mutex sync.Mutex
}

/*-------------------------------------------------------------------
 *
 * Name:	NewAfsk
 *
 * Purpose:	Build a modem from a validated configuration.
 *
 * Inputs:	config	- Modem parameters.  Validate is called here;
 *			  a bad combination is an error, not a panic.
 *
 *		hw	- Hardware hooks, any of which may be nil.
 *
 * Description:	Allocates the three FIFOs and primes the delay line
 *		with zeros so the discriminator has a full half-bit of
 *		history from the first sample.  All remaining state
 *		starts at zero.  Nothing is allocated after this.
 *
 *--------------------------------------------------------------------*/

func NewAfsk(config Config, hw HW) (*Afsk, error) {
	var validateErr = config.Validate()
	if validateErr != nil {
		return nil, validateErr
	}

	var af = &Afsk{ //nolint:exhaustruct
		hw:                hw,
		filter:            config.filter(),
		rx_timeout_ms:     config.RXTimeoutMS,
		preamble_ms:       config.PreambleLenMS,
		trailer_ms:        config.TrailerLenMS,
		dac_samplerate:    config.DACSampleRate,
		dac_samplesperbit: config.DACSampleRate / BITRATE,
		mark_inc:          uint16(DIV_ROUND(SIN_LEN*MARK_FREQ, config.DACSampleRate)),
		space_inc:         uint16(DIV_ROUND(SIN_LEN*SPACE_FREQ, config.DACSampleRate)),
		delay_fifo:        fifo_new[int8](SAMPLESPERBIT / 2),
		rx_fifo:           fifo_new[uint8](config.RXBufLen),
		tx_fifo:           fifo_new[uint8](config.TXBufLen),
	}

	for range SAMPLESPERBIT / 2 {
		fifo_push(af.delay_fifo, 0)
	}

	return af, nil
}

// Sending reports whether a transmission is in progress.  The sample
// pump uses it to decide whether to ask DacIsr for audio.
func (af *Afsk) Sending() bool {
	return af.sending.Load()
}

// Status returns the accumulated error bits (AFSK_*) and clears them.
func (af *Afsk) Status() uint32 {
	return af.status.Swap(0)
}

/*-------------------------------------------------------------------
 *
 * Name:	afsk_tx_start
 *
 * Purpose:	Arrange for the DAC side to start draining the
 *		transmit FIFO, or keep it going.
 *
 * Description:	Called by Write after every pushed byte.  If no
 *		transmission is running, prime the DDS at the mark
 *		tone, load the preamble, and start the DAC interrupt.
 *		The trailer is reloaded on *every* call so that
 *		appending to a live transmission pushes the closing
 *		flag fill out past the new data.
 *
 *--------------------------------------------------------------------*/

func (af *Afsk) afsk_tx_start() {
	af.start_mutex.Lock()
	defer af.start_mutex.Unlock()

	af.trailer_len.Store(int32(DIV_ROUND(af.trailer_ms*BITRATE, 8000)))

	if af.sending.Load() {
		return
	}

	af.phase_inc = af.mark_inc
	af.phase_acc = 0
	af.stuff_cnt = 0
	af.tx_bit = 0
	af.sample_count = 0
	af.preamble_len = DIV_ROUND(af.preamble_ms*BITRATE, 8000)
	af.sending.Store(true)

	if af.hw.DacIrqStart != nil {
		af.hw.DacIrqStart()
	}
}

/*-------------------------------------------------------------------
 *
 * Name:	Write
 *
 * Purpose:	Queue bytes for transmission.
 *
 * Description:	The caller supplies the escaped stream: HDLC_FLAG
 *		around each frame, AX25_ESC ahead of any payload byte
 *		that collides with a reserved value (EscapeFrame does
 *		this).  Blocks while the FIFO is full; the DAC side is
 *		draining it, so the wait is bounded by the configured
 *		rates unless nothing is pumping samples.
 *
 * Returns:	len(buf), once everything is queued.
 *
 *--------------------------------------------------------------------*/

func (af *Afsk) Write(buf []byte) int {
	for _, b := range buf {
		for fifo_isfull(af.tx_fifo) {
			cpu_relax()
		}
		fifo_push(af.tx_fifo, b)
		af.afsk_tx_start()
	}

	return len(buf)
}

/*-------------------------------------------------------------------
 *
 * Name:	Read
 *
 * Purpose:	Take bytes from the receive FIFO.
 *
 * Description:	Waiting is governed by rx_timeout_ms: -1 waits
 *		forever, 0 returns immediately with whatever is
 *		there, a positive value allows that many milliseconds
 *		of waiting per byte.
 *
 * Returns:	Number of bytes actually delivered, possibly short.
 *
 *--------------------------------------------------------------------*/

func (af *Afsk) Read(buf []byte) int {
	var n = 0

	for n < len(buf) {
		switch {
		case af.rx_timeout_ms == 0:
			if fifo_isempty(af.rx_fifo) {
				return n
			}

		case af.rx_timeout_ms < 0:
			for fifo_isempty(af.rx_fifo) {
				cpu_relax()
			}

		default:
			var deadline = time.Now().Add(time.Duration(af.rx_timeout_ms) * time.Millisecond)
			for fifo_isempty(af.rx_fifo) {
				cpu_relax()
				if time.Now().After(deadline) {
					return n
				}
			}
		}

		buf[n] = fifo_pop(af.rx_fifo)
		n++
	}

	return n
}

/*-------------------------------------------------------------------
 *
 * Name:	Flush
 *
 * Purpose:	Wait for the transmitter to finish.
 *
 * Description:	Returns once the DAC side has sent the trailer and
 *		torn itself down.  Instantaneous when nothing was
 *		being sent, so calling it twice costs nothing.
 *
 *--------------------------------------------------------------------*/

func (af *Afsk) Flush() {
	for af.sending.Load() {
		cpu_relax()
	}
}
