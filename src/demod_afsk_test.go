package kelpie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The delay line always holds exactly half a bit time of history:
// primed at init, then one pop and one push per sample forever.
func TestDelayLineInvariant(t *testing.T) {
	var config = DefaultConfig()
	var af, err = NewAfsk(config, HW{})
	require.NoError(t, err)

	assert.Equal(t, SAMPLESPERBIT/2, fifo_len(af.delay_fifo))

	for j := range 1000 {
		af.AdcIsr(int8(j % 100))
		require.Equal(t, SAMPLESPERBIT/2, fifo_len(af.delay_fifo))
	}
}

func TestEdgeFound(t *testing.T) {
	assert.False(t, edge_found(0b00))
	assert.False(t, edge_found(0b11))
	assert.True(t, edge_found(0b01))
	assert.True(t, edge_found(0b10))

	// Only the two low bits matter.
	assert.True(t, edge_found(0b1110))
	assert.False(t, edge_found(0b1011))
}

// Pure silence must not hallucinate frames.
func TestDemodSilence(t *testing.T) {
	var config = DefaultConfig()
	var af, err = NewAfsk(config, HW{})
	require.NoError(t, err)

	for range 10 * SAMPLERATE {
		af.AdcIsr(0)
	}

	var buf = make([]byte, 16)
	assert.Equal(t, 0, af.Read(buf))
}

// The strobe hooks bracket every sample.
func TestDemodStrobe(t *testing.T) {
	var ons, offs = 0, 0
	var config = DefaultConfig()
	var af, err = NewAfsk(config, HW{
		StrobeOn:  func() { ons++ },
		StrobeOff: func() { offs++ },
	})
	require.NoError(t, err)

	for range 100 {
		af.AdcIsr(17)
	}

	assert.Equal(t, 100, ons)
	assert.Equal(t, 100, offs)
}
