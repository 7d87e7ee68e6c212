package kelpie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

/*
 * Full modem loopback: everything the modulator puts out is wired
 * straight back into the demodulator, the way a TNC test jig loops
 * audio out to audio in.  In a noise-free channel the recovered
 * stream must match byte for byte.
 */

func loopback_config() Config {
	var config = DefaultConfig()
	config.RXBufLen = 4096
	config.TXBufLen = 4096
	return config
}

// Drain the transmitter into signed samples, as the receiving ADC
// would see them.
func modulate_to_samples(af *Afsk) []int8 {
	var samples []int8
	for af.Sending() {
		samples = append(samples, int8(int(af.DacIsr())-128))
	}
	return samples
}

func drain_rx(af *Afsk) []byte {
	var out []byte
	var buf = make([]byte, 256)
	for {
		var n = af.Read(buf)
		if n == 0 {
			return out
		}
		out = append(out, buf[:n]...)
	}
}

// Write the given raw stream bytes, loop the audio back, and return
// the de-escaped frames the other end saw.
func loopback_frames(t *testing.T, config Config, stream []byte) [][]byte {
	t.Helper()

	var af, err = NewAfsk(config, HW{})
	require.NoError(t, err)

	af.Write(stream)
	var samples = modulate_to_samples(af)
	require.NotEmpty(t, samples)

	for _, s := range samples {
		af.AdcIsr(s)
	}

	var scanner = NewFrameScanner()
	var frames [][]byte
	for _, b := range drain_rx(af) {
		if frame, ok := scanner.Feed(b); ok {
			frames = append(frames, frame)
		}
	}
	return frames
}

func TestLoopbackScenarios(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"plain byte", []byte{0x55}},
		{"flag byte as payload", []byte{0x7E}},
		{"all ones, stuffing transparent", []byte{0xFF, 0xFF}},
		{"escape byte as payload", []byte{0x1B}},
		{"reset byte as payload", []byte{0x7F}},
		{"mixed", []byte("Hello \x7e\x7f\x1b world")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var frames = loopback_frames(t, loopback_config(), EscapeFrame(tt.payload))

			require.Len(t, frames, 1)
			assert.Equal(t, tt.payload, frames[0])
		})
	}
}

// Escaping a byte that didn't need it is harmless: the escape is
// consumed by the modulator and the literal goes over the air.
func TestLoopbackGratuitousEscape(t *testing.T) {
	var stream = []byte{HDLC_FLAG, AX25_ESC, 0x41, HDLC_FLAG}
	var frames = loopback_frames(t, loopback_config(), stream)

	require.Len(t, frames, 1)
	assert.Equal(t, []byte{0x41}, frames[0])
}

// The raw receive stream keeps the reserved values escaped, so the
// reader can always tell a payload 0x7E from a frame boundary.
func TestLoopbackStreamEscaping(t *testing.T) {
	var af, err = NewAfsk(loopback_config(), HW{})
	require.NoError(t, err)

	af.Write(EscapeFrame([]byte{0x7E}))
	for _, s := range modulate_to_samples(af) {
		af.AdcIsr(s)
	}

	/* Strip the flag fill and look at what's left. */
	var payload []byte
	for _, b := range drain_rx(af) {
		if b != HDLC_FLAG {
			payload = append(payload, b)
		}
	}

	assert.Equal(t, []byte{AX25_ESC, 0x7E}, payload)
}

// All 256 byte values survive the round trip in one frame.
func TestLoopbackAllByteValues(t *testing.T) {
	var payload = make([]byte, 256)
	for j := range payload {
		payload[j] = byte(j)
	}

	var frames = loopback_frames(t, loopback_config(), EscapeFrame(payload))

	require.Len(t, frames, 1)
	assert.Equal(t, payload, frames[0])
}

// Several frames in one transmission come out as several frames.
func TestLoopbackBackToBackFrames(t *testing.T) {
	var stream []byte
	stream = append(stream, EscapeFrame([]byte("first"))...)
	stream = append(stream, EscapeFrame([]byte("second"))...)
	stream = append(stream, EscapeFrame([]byte("third"))...)

	var frames = loopback_frames(t, loopback_config(), stream)

	require.Len(t, frames, 3)
	assert.Equal(t, []byte("first"), frames[0])
	assert.Equal(t, []byte("second"), frames[1])
	assert.Equal(t, []byte("third"), frames[2])
}

// Both receive filter variants decode a clean signal.
func TestLoopbackBothFilters(t *testing.T) {
	for _, filter := range []string{"butterworth", "chebyshev"} {
		t.Run(filter, func(t *testing.T) {
			var config = loopback_config()
			config.Filter = filter

			var frames = loopback_frames(t, config, EscapeFrame([]byte("filter test")))

			require.Len(t, frames, 1)
			assert.Equal(t, []byte("filter test"), frames[0])
		})
	}
}

// The receiver has no idea where bit boundaries are in advance; an
// arbitrary sample offset ahead of the signal must not matter.  The
// worst case is half a bit, 4 samples.
func TestLoopbackPhaseOffset(t *testing.T) {
	for offset := range SAMPLESPERBIT {
		var config = loopback_config()
		var af, err = NewAfsk(config, HW{})
		require.NoError(t, err)

		af.Write(EscapeFrame([]byte{0xC3, 0x3C}))
		var samples = modulate_to_samples(af)

		for range offset {
			af.AdcIsr(0)
		}
		for _, s := range samples {
			af.AdcIsr(s)
		}

		var scanner = NewFrameScanner()
		var frames [][]byte
		for _, b := range drain_rx(af) {
			if frame, ok := scanner.Feed(b); ok {
				frames = append(frames, frame)
			}
		}

		require.Len(t, frames, 1, "offset %d", offset)
		assert.Equal(t, []byte{0xC3, 0x3C}, frames[0], "offset %d", offset)
	}
}

// Property: any payload at all survives the loopback, as long as the
// writer escapes it.
func TestLoopbackRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var payload = rapid.SliceOfN(rapid.Byte(), 1, 64).Draw(t, "payload")

		var config = loopback_config()
		config.PreambleLenMS = 100
		config.TrailerLenMS = 20

		var af, err = NewAfsk(config, HW{})
		if err != nil {
			t.Fatal(err)
		}

		af.Write(EscapeFrame(payload))
		for _, s := range modulate_to_samples(af) {
			af.AdcIsr(s)
		}

		var scanner = NewFrameScanner()
		var frames [][]byte
		for _, b := range drain_rx(af) {
			if frame, ok := scanner.Feed(b); ok {
				frames = append(frames, frame)
			}
		}

		if len(frames) != 1 {
			t.Fatalf("got %d frames, want 1", len(frames))
		}
		if string(frames[0]) != string(payload) {
			t.Fatalf("payload mangled: sent % x, got % x", payload, frames[0])
		}
	})
}

// When the reader never drains and the receive FIFO fills up, the
// frame is dropped and the overrun bit is raised; nothing hangs.
func TestLoopbackOverrun(t *testing.T) {
	var config = loopback_config()
	config.RXBufLen = 16

	var af, err = NewAfsk(config, HW{})
	require.NoError(t, err)

	var payload = make([]byte, 64)
	for j := range payload {
		payload[j] = 0xAA
	}

	af.Write(EscapeFrame(payload))
	for _, s := range modulate_to_samples(af) {
		af.AdcIsr(s)
	}

	assert.NotZero(t, af.Status()&AFSK_RXFIFO_OVERRUN)
	assert.Zero(t, af.Status(), "Status must clear on read")
}
