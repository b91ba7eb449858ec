// Package audio is the input boundary: it turns audio files into mono
// float64 samples at a known sample rate. Container parsing beyond WAV is
// delegated to ffmpeg.
package audio

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// ReadWavAsFloat64 reads a PCM WAV file and returns mono samples normalized
// to [-1,1] plus the sample rate. Stereo input is downmixed by averaging.
func ReadWavAsFloat64(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decoding %s: %w", path, err)
	}
	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return nil, 0, errors.New("wav file has no audio data")
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))

	channels := buf.Format.NumChannels
	switch channels {
	case 1:
		out := make([]float64, len(buf.Data))
		for i, s := range buf.Data {
			out[i] = float64(s) * scale
		}
		return out, buf.Format.SampleRate, nil
	case 2:
		frames := len(buf.Data) / 2
		out := make([]float64, frames)
		for i := 0; i < frames; i++ {
			l := float64(buf.Data[2*i]) * scale
			r := float64(buf.Data[2*i+1]) * scale
			out[i] = (l + r) * 0.5
		}
		return out, buf.Format.SampleRate, nil
	default:
		return nil, 0, fmt.Errorf("unsupported channel count %d: only mono/stereo supported", channels)
	}
}
