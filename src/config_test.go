package kelpie

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	var config = DefaultConfig()
	assert.NoError(t, config.Validate())
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mangle func(*Config)
	}{
		{"bad filter", func(c *Config) { c.Filter = "bessel" }},
		{"odd rx buflen", func(c *Config) { c.RXBufLen = 100 }},
		{"odd tx buflen", func(c *Config) { c.TXBufLen = 0 }},
		{"dac rate not multiple of bit rate", func(c *Config) { c.DACSampleRate = 44100 }},
		{"negative preamble", func(c *Config) { c.PreambleLenMS = -5 }},
		{"bad rx timeout", func(c *Config) { c.RXTimeoutMS = -2 }},
		{"bad ptt method", func(c *Config) { c.PTT.Method = "telepathy" }},
		{"bad ptt serial line", func(c *Config) { c.PTT.Method = "serial"; c.PTT.SerialLine = "dsr" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var config = DefaultConfig()
			tt.mangle(&config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestLoadConfigMissingFileGivesDefaults(t *testing.T) {
	var config, err = LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestLoadConfig(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "kelpie.yaml")
	var yaml = `
filter: butterworth
dac_samplerate: 38400
preamble_len_ms: 450
ptt:
  method: gpio
  gpio_chip: gpiochip2
  gpio_line: 17
tcp_port: 8001
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	var config, err = LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, "butterworth", config.Filter)
	assert.Equal(t, FILTER_BUTTERWORTH, config.filter())
	assert.Equal(t, 38400, config.DACSampleRate)
	assert.Equal(t, 450, config.PreambleLenMS)
	assert.Equal(t, "gpio", config.PTT.Method)
	assert.Equal(t, "gpiochip2", config.PTT.GPIOChip)
	assert.Equal(t, 17, config.PTT.GPIOLine)
	assert.Equal(t, 8001, config.TCPPort)

	/* Untouched keys keep their defaults. */
	assert.Equal(t, 64, config.RXBufLen)
	assert.Equal(t, 50, config.TrailerLenMS)
}

func TestLoadConfigRejectsGarbage(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "kelpie.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{{{"), 0644))

	var _, err = LoadConfig(path)
	assert.Error(t, err)
}
