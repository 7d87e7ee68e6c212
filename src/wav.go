package kelpie

/*------------------------------------------------------------------
 *
 * Purpose:	Just enough WAV file handling for the offline tools:
 *		8-bit unsigned mono PCM out of the modulator, 8 or 16
 *		bit mono PCM into the demodulator.
 *
 * Description:	The 44-byte canonical RIFF header, written and parsed
 *		by hand like every packet tool before this one.  Not a
 *		general WAV library and not trying to be.
 *
 *---------------------------------------------------------------*/

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

/*-------------------------------------------------------------------
 *
 * Name:	WriteWav8
 *
 * Purpose:	Write unsigned 8-bit mono samples as a WAV file.
 *
 *--------------------------------------------------------------------*/

func WriteWav8(path string, sample_rate int, samples []uint8) error {
	var buf bytes.Buffer

	var data_len = uint32(len(samples))

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+data_len)) //nolint:errcheck
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))              //nolint:errcheck
	binary.Write(&buf, binary.LittleEndian, uint16(1))               //nolint:errcheck  /* PCM */
	binary.Write(&buf, binary.LittleEndian, uint16(1))               //nolint:errcheck  /* mono */
	binary.Write(&buf, binary.LittleEndian, uint32(sample_rate))     //nolint:errcheck
	binary.Write(&buf, binary.LittleEndian, uint32(sample_rate))     //nolint:errcheck  /* byte rate */
	binary.Write(&buf, binary.LittleEndian, uint16(1))               //nolint:errcheck  /* block align */
	binary.Write(&buf, binary.LittleEndian, uint16(8))               //nolint:errcheck  /* bits per sample */

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, data_len) //nolint:errcheck
	buf.Write(samples)

	return os.WriteFile(path, buf.Bytes(), 0644)
}

/*-------------------------------------------------------------------
 *
 * Name:	ReadWavSigned8
 *
 * Purpose:	Read a mono PCM WAV file and return its samples as
 *		the signed 8-bit values the demodulator wants.
 *
 * Returns:	Samples, sample rate, error.
 *
 * Description:	8-bit data is unsigned and re-centered; 16-bit data
 *		keeps its top byte.  Anything fancier (stereo, float,
 *		extensible format headers) is rejected rather than
 *		half-handled.  Chunks other than fmt and data are
 *		skipped.
 *
 *--------------------------------------------------------------------*/

func ReadWavSigned8(path string) ([]int8, int, error) {
	var data, readErr = os.ReadFile(path)
	if readErr != nil {
		return nil, 0, readErr
	}

	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("%s is not a WAV file", path)
	}

	var sample_rate = 0
	var bits = 0
	var channels = 0

	/* Walk the chunks; fmt must come before data. */
	var pos = 12
	for pos+8 <= len(data) {
		var id = string(data[pos : pos+4])
		var size = int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		var body = pos + 8

		switch id {
		case "fmt ":
			if size < 16 || body+16 > len(data) {
				return nil, 0, fmt.Errorf("%s has a short fmt chunk", path)
			}
			var format = int(binary.LittleEndian.Uint16(data[body : body+2]))
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sample_rate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))

			if format != 1 {
				return nil, 0, fmt.Errorf("%s: only plain PCM is supported", path)
			}
			if channels != 1 {
				return nil, 0, fmt.Errorf("%s: only mono is supported", path)
			}
			if bits != 8 && bits != 16 {
				return nil, 0, fmt.Errorf("%s: only 8 or 16 bit samples are supported", path)
			}

		case "data":
			if bits == 0 {
				return nil, 0, fmt.Errorf("%s: data chunk before fmt chunk", path)
			}
			if body+size > len(data) {
				size = len(data) - body
			}

			var raw = data[body : body+size]
			var samples []int8

			if bits == 8 {
				samples = make([]int8, len(raw))
				for j, s := range raw {
					samples[j] = int8(int(s) - 128)
				}
			} else {
				samples = make([]int8, len(raw)/2)
				for j := range samples {
					var s = int16(binary.LittleEndian.Uint16(raw[2*j : 2*j+2]))
					samples[j] = int8(s >> 8)
				}
			}

			return samples, sample_rate, nil
		}

		pos = body + size
		if size%2 == 1 {
			pos++ /* chunks are word aligned */
		}
	}

	return nil, 0, fmt.Errorf("%s has no data chunk", path)
}
