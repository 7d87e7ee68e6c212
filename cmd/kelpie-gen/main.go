package main

/*------------------------------------------------------------------
 *
 * Purpose:	Generate an audio file containing modulated frames.
 *
 * Description:	Test packets go through the real modulator - preamble,
 *		bit stuffing, NRZI, DDS - and the resulting 8-bit
 *		samples land in a WAV file.  Feed that to kelpie-atest
 *		(or any other 1200 baud decoder) to check the whole
 *		transmit chain without a radio.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	kelpie "github.com/doismellburning/kelpie/src"
)

func main() {
	var output = pflag.StringP("output", "o", "test.wav", "Output WAV file name.")
	var count = pflag.IntP("count", "n", 1, "Number of frames to generate.")
	var message = pflag.StringP("message", "m", "The quick brown fox jumps over the lazy dog.", "Frame payload.")
	var rate = pflag.IntP("samplerate", "r", 9600, "DAC sample rate.  Must be a multiple of 1200.")
	var preamble = pflag.IntP("preamble", "p", 300, "Preamble length in milliseconds.")
	var trailer = pflag.IntP("trailer", "T", 50, "Trailer length in milliseconds.")
	pflag.Parse()

	var config = kelpie.DefaultConfig()
	config.DACSampleRate = *rate
	config.PreambleLenMS = *preamble
	config.TrailerLenMS = *trailer
	config.TXBufLen = 4096

	var af, afErr = kelpie.NewAfsk(config, kelpie.HW{})
	if afErr != nil {
		fmt.Fprintf(os.Stderr, "%s\n", afErr)
		os.Exit(1)
	}

	var frame = kelpie.EscapeFrame([]byte(*message))

	var done = make(chan struct{})
	go func() {
		for range *count {
			af.Write(frame)
		}
		close(done)
	}()

	/* Pump the DAC until the writer is finished and the trailer is out. */
	var samples = make([]uint8, 0, *rate)
	var writer_done = false
	for {
		if af.Sending() {
			samples = append(samples, af.DacIsr())
			continue
		}

		if writer_done {
			break
		}

		select {
		case <-done:
			writer_done = true
		default:
			kelpie.SLEEP_MS(1)
		}
	}

	var writeErr = kelpie.WriteWav8(*output, *rate, samples)
	if writeErr != nil {
		fmt.Fprintf(os.Stderr, "%s\n", writeErr)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d frames of %d bytes, %d samples (%.1f seconds) to %s\n",
		*count, len(*message), len(samples), float64(len(samples))/float64(*rate), *output)
}
