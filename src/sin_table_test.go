package kelpie

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/dsp/fourier"
)

func TestSinSampleLandmarks(t *testing.T) {
	assert.Equal(t, uint8(128), sin_sample(0))
	assert.Equal(t, uint8(255), sin_sample(SIN_LEN/4))
	assert.InDelta(t, 128, int(sin_sample(SIN_LEN/2)), 1)
	assert.Equal(t, uint8(0), sin_sample(3*SIN_LEN/4))
	assert.InDelta(t, 128, int(sin_sample(SIN_LEN-1)), 1)
}

// The reconstructed full wave should track the real thing to within a
// quantization step everywhere, not just at the compass points.
func TestSinSampleAgainstMathSin(t *testing.T) {
	for i := range uint16(SIN_LEN) {
		var want = 127.5 + 127.5*math.Sin(2.0*math.Pi*float64(i)/SIN_LEN)
		// The quarter-wave reflection re-uses the sample one slot
		// over, so allow a bit more than one quantization step.
		assert.InDelta(t, want, float64(sin_sample(i)), 2.5, "index %d", i)
	}
}

func TestSinSampleSymmetry(t *testing.T) {
	for i := range uint16(SIN_LEN / 2) {
		var a = int(sin_sample(i))
		var b = int(sin_sample(i + SIN_LEN/2))

		// Half a cycle apart means reflected around the center.
		assert.Equal(t, 255, a+b, "index %d", i)
	}
}

// Run the DDS at the mark and space increments and check the tones
// actually land where Bell 202 wants them.
func TestDDSSpectrum(t *testing.T) {
	const rate = 9600
	const n = 4096

	var config = DefaultConfig()
	var af, err = NewAfsk(config, HW{})
	require.NoError(t, err)

	tests := []struct {
		name        string
		inc         uint16
		expect_freq float64
	}{
		{"mark", af.mark_inc, 1200},
		{"space", af.space_inc, 2200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seq = make([]float64, n)
			var phase = uint16(0)
			for j := range seq {
				phase = (phase + tt.inc) % SIN_LEN
				seq[j] = float64(sin_sample(phase)) - 127.5
			}

			var fft = fourier.NewFFT(n)
			var coeff = fft.Coefficients(nil, seq)

			var peak_bin = 0
			var peak = 0.0
			for bin, c := range coeff {
				var mag = math.Hypot(real(c), imag(c))
				if mag > peak {
					peak = mag
					peak_bin = bin
				}
			}

			var peak_freq = float64(peak_bin) * rate / n
			assert.InDelta(t, tt.expect_freq, peak_freq, 10.0)
		})
	}
}
