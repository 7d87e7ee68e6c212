package kelpie

/*------------------------------------------------------------------
 *
 * Purpose:	Interface to the audio device commonly called a
 *		"sound card" for historical reasons.
 *
 * Description:	The sound card plays the part of the ADC and DAC of
 *		the embedded original.  Two blocking streams are
 *		opened: input at the fixed demodulator rate, output at
 *		the configured DAC rate.  Each gets a pump goroutine
 *		that does nothing but move samples between the device
 *		and the two "interrupt" entry points.
 *
 *		The output stream runs continuously.  When nothing is
 *		being transmitted it is fed center-scale silence; this
 *		keeps the device clocking and means starting a
 *		transmission never has to reopen anything.  The actual
 *		keying of a transmitter happens through the DAC hooks
 *		(see HW), not here.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

const audio_frames_per_buffer = 256

type Soundcard struct {
	af *Afsk

	in_stream  *portaudio.Stream
	out_stream *portaudio.Stream

	in_buf  []int16
	out_buf []int16

	done chan struct{}
}

/*-------------------------------------------------------------------
 *
 * Name:	OpenSoundcard
 *
 * Purpose:	Open the default audio device and start pumping
 *		samples through the modem.
 *
 * Description:	16-bit device samples are used and narrowed to the
 *		modem's 8-bit world: input takes the top byte, output
 *		places the 8-bit DAC value in the top byte.
 *
 *--------------------------------------------------------------------*/

func OpenSoundcard(af *Afsk) (*Soundcard, error) {
	var initErr = portaudio.Initialize()
	if initErr != nil {
		return nil, fmt.Errorf("portaudio init failed: %w", initErr)
	}

	var sc = &Soundcard{ //nolint:exhaustruct
		af:      af,
		in_buf:  make([]int16, audio_frames_per_buffer),
		out_buf: make([]int16, audio_frames_per_buffer),
		done:    make(chan struct{}),
	}

	var inErr error
	sc.in_stream, inErr = portaudio.OpenDefaultStream(1, 0, float64(SAMPLERATE), len(sc.in_buf), sc.in_buf)
	if inErr != nil {
		portaudio.Terminate() //nolint:errcheck
		return nil, fmt.Errorf("can't open audio input at %d Hz: %w", SAMPLERATE, inErr)
	}

	var outErr error
	sc.out_stream, outErr = portaudio.OpenDefaultStream(0, 1, float64(af.dac_samplerate), len(sc.out_buf), sc.out_buf)
	if outErr != nil {
		sc.in_stream.Close()  //nolint:errcheck
		portaudio.Terminate() //nolint:errcheck
		return nil, fmt.Errorf("can't open audio output at %d Hz: %w", af.dac_samplerate, outErr)
	}

	var startInErr = sc.in_stream.Start()
	if startInErr != nil {
		sc.close_streams()
		return nil, fmt.Errorf("can't start audio input: %w", startInErr)
	}

	var startOutErr = sc.out_stream.Start()
	if startOutErr != nil {
		sc.close_streams()
		return nil, fmt.Errorf("can't start audio output: %w", startOutErr)
	}

	go sc.rx_pump()
	go sc.tx_pump()

	return sc, nil
}

// The receive side: device -> AdcIsr, one call per sample.
func (sc *Soundcard) rx_pump() {
	for {
		select {
		case <-sc.done:
			return
		default:
		}

		var readErr = sc.in_stream.Read()
		if readErr != nil {
			// Overflows happen when the host hiccups; losing
			// samples costs at worst the frame in flight.
			continue
		}

		for _, s := range sc.in_buf {
			sc.af.AdcIsr(int8(s >> 8))
		}
	}
}

// The transmit side: DacIsr -> device, silence when idle.
func (sc *Soundcard) tx_pump() {
	for {
		select {
		case <-sc.done:
			return
		default:
		}

		if sc.af.Sending() {
			for j := range sc.out_buf {
				sc.out_buf[j] = int16(int(sc.af.DacIsr())-128) << 8
			}
		} else {
			for j := range sc.out_buf {
				sc.out_buf[j] = 0
			}
		}

		sc.out_stream.Write() //nolint:errcheck
	}
}

func (sc *Soundcard) close_streams() {
	sc.in_stream.Close()  //nolint:errcheck
	sc.out_stream.Close() //nolint:errcheck
	portaudio.Terminate() //nolint:errcheck
}

func (sc *Soundcard) Close() {
	close(sc.done)
	sc.in_stream.Stop()  //nolint:errcheck
	sc.out_stream.Stop() //nolint:errcheck
	sc.close_streams()
}
