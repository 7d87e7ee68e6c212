package kelpie

/*------------------------------------------------------------------
 *
 * Purpose:	Configuration for the modem and the things wrapped
 *		around it.
 *
 * Description:	The embedded ancestors fixed all of this at compile
 *		time and rejected bad combinations with static
 *		assertions.  Here the same knobs live in a YAML file
 *		and the assertions run in Validate before anything is
 *		wired up.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type afsk_filter_e int

const (
	FILTER_BUTTERWORTH afsk_filter_e = iota
	FILTER_CHEBYSHEV
)

type PTTConfig struct {
	// "none", "gpio" or "serial".
	Method string `yaml:"method"`

	// For gpio.
	GPIOChip string `yaml:"gpio_chip"`
	GPIOLine int    `yaml:"gpio_line"`

	// For serial: device path and which control line to wiggle,
	// "rts" or "dtr".
	SerialDevice string `yaml:"serial_device"`
	SerialLine   string `yaml:"serial_line"`
}

type Config struct {
	// Receive low-pass variant: "butterworth" or "chebyshev".
	Filter string `yaml:"filter"`

	// FIFO depths in bytes.  Powers of two.
	RXBufLen int `yaml:"rx_buflen"`
	TXBufLen int `yaml:"tx_buflen"`

	// DAC sample rate.  Must be an integer multiple of the bit
	// rate so bits land on sample boundaries.
	DACSampleRate int `yaml:"dac_samplerate"`

	// Flag fill before and after each transmission.
	PreambleLenMS int `yaml:"preamble_len_ms"`
	TrailerLenMS  int `yaml:"trailer_len_ms"`

	// Read behavior: -1 waits forever, 0 never waits, >0 waits
	// that many milliseconds per byte.
	RXTimeoutMS int `yaml:"rx_timeout_ms"`

	// Sound device name.  Loaded but not used: OpenSoundcard
	// always opens the system default device.
	ADevice string `yaml:"adevice"`

	PTT PTTConfig `yaml:"ptt"`

	// Byte-stream surfaces.
	EnablePTY bool   `yaml:"enable_pty"`
	TCPPort   int    `yaml:"tcp_port"` /* 0 disables */
	DNSSDName string `yaml:"dns_sd_name"`

	// Daily CSV logs of received frames.  Empty disables.
	FrameLogDir string `yaml:"frame_log_dir"`
}

func DefaultConfig() Config {
	return Config{
		Filter:        "chebyshev",
		RXBufLen:      64,
		TXBufLen:      64,
		DACSampleRate: 9600,
		PreambleLenMS: 300,
		TrailerLenMS:  50,
		RXTimeoutMS:   0,
		ADevice:       "",
		PTT:           PTTConfig{Method: "none", GPIOChip: "gpiochip0", SerialLine: "rts"},
		EnablePTY:     false,
		TCPPort:       0,
		DNSSDName:     "",
		FrameLogDir:   "",
	}
}

// LoadConfig reads a YAML file over the defaults.  A missing file is
// not an error; you just get the defaults.
func LoadConfig(path string) (Config, error) {
	var config = DefaultConfig()

	var data, readErr = os.ReadFile(path)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return config, nil
		}
		return config, fmt.Errorf("can't read config file %s: %w", path, readErr)
	}

	var yamlErr = yaml.Unmarshal(data, &config)
	if yamlErr != nil {
		return config, fmt.Errorf("can't parse config file %s: %w", path, yamlErr)
	}

	return config, nil
}

func is_power_of_two(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func (c *Config) Validate() error {
	switch c.Filter {
	case "butterworth", "chebyshev":
	default:
		return fmt.Errorf("filter must be \"butterworth\" or \"chebyshev\", not %q", c.Filter)
	}

	if !is_power_of_two(c.RXBufLen) || !is_power_of_two(c.TXBufLen) {
		return fmt.Errorf("rx_buflen (%d) and tx_buflen (%d) must be powers of two", c.RXBufLen, c.TXBufLen)
	}

	// The static assertion from the original driver: an integer
	// number of DAC samples per bit gives deterministic bit
	// boundaries.
	if c.DACSampleRate <= 0 || c.DACSampleRate%BITRATE != 0 {
		return fmt.Errorf("dac_samplerate %d is not a multiple of the bit rate %d", c.DACSampleRate, BITRATE)
	}

	if c.PreambleLenMS < 0 || c.TrailerLenMS < 0 {
		return fmt.Errorf("preamble/trailer lengths must not be negative")
	}

	if c.RXTimeoutMS < -1 {
		return fmt.Errorf("rx_timeout_ms must be -1, 0 or positive, not %d", c.RXTimeoutMS)
	}

	switch c.PTT.Method {
	case "", "none", "gpio":
	case "serial":
		if c.PTT.SerialLine != "rts" && c.PTT.SerialLine != "dtr" {
			return fmt.Errorf("ptt serial_line must be \"rts\" or \"dtr\", not %q", c.PTT.SerialLine)
		}
	default:
		return fmt.Errorf("ptt method must be \"none\", \"gpio\" or \"serial\", not %q", c.PTT.Method)
	}

	return nil
}

func (c *Config) filter() afsk_filter_e {
	if c.Filter == "butterworth" {
		return FILTER_BUTTERWORTH
	}
	return FILTER_CHEBYSHEV
}
