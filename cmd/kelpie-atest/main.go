package main

/*------------------------------------------------------------------
 *
 * Purpose:	Test the demodulator with audio from a file rather
 *		than the sound card.
 *
 * Description:	Reads WAV files (8 or 16 bit mono PCM at 9600
 *		samples/sec, e.g. from kelpie-gen), runs every sample
 *		through the receive chain, and prints the recovered
 *		frames.  With --expect the exit status reports whether
 *		the right number came out, which makes this usable
 *		from scripts.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	kelpie "github.com/doismellburning/kelpie/src"
)

func main() {
	var expect = pflag.IntP("expect", "n", -1, "Expected number of frames; exit non-zero on mismatch.")
	var filter = pflag.StringP("filter", "F", "chebyshev", "Receive filter, \"butterworth\" or \"chebyshev\".")
	var colorLevel = pflag.IntP("color", "t", 1, "Text colors.  0 to disable.")
	pflag.Parse()

	kelpie.TextColorInit(*colorLevel)

	if pflag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: kelpie-atest [options] file.wav ...\n")
		os.Exit(64)
	}

	var total = 0
	for _, path := range pflag.Args() {
		total += decode_file(path, *filter)
	}

	fmt.Printf("%d frames decoded.\n", total)

	if *expect >= 0 && total != *expect {
		fmt.Fprintf(os.Stderr, "Expected %d frames but got %d.\n", *expect, total)
		os.Exit(1)
	}
}

func decode_file(path string, filter string) int {
	var samples, rate, readErr = kelpie.ReadWavSigned8(path)
	if readErr != nil {
		fmt.Fprintf(os.Stderr, "%s\n", readErr)
		return 0
	}

	if rate != kelpie.SAMPLERATE {
		fmt.Fprintf(os.Stderr, "%s: sample rate is %d, the demodulator wants %d\n",
			path, rate, kelpie.SAMPLERATE)
		return 0
	}

	fmt.Printf("%s: %d samples (%.1f seconds)\n", path, len(samples), float64(len(samples))/float64(rate))

	var config = kelpie.DefaultConfig()
	config.Filter = filter
	config.RXBufLen = 4096
	config.RXTimeoutMS = 0

	var af, afErr = kelpie.NewAfsk(config, kelpie.HW{})
	if afErr != nil {
		fmt.Fprintf(os.Stderr, "%s\n", afErr)
		return 0
	}

	var scanner = kelpie.NewFrameScanner()
	var count = 0
	var buf = make([]byte, 256)

	var drain = func() {
		for {
			var n = af.Read(buf)
			if n == 0 {
				return
			}
			for _, b := range buf[:n] {
				var frame, ok = scanner.Feed(b)
				if ok {
					count++
					kelpie.PrintRecFrame(count, frame)
				}
			}
		}
	}

	for _, s := range samples {
		af.AdcIsr(s)
		drain()
	}
	drain()

	return count
}
