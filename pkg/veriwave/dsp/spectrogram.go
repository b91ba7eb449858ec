package dsp

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

const (
	// WindowSize is the STFT analysis window in samples. Power of two so the
	// radix-2 FFT path applies without internal padding.
	WindowSize = 2048
	// HopSize is the STFT frame advance in samples.
	HopSize = 512
)

// ErrSegmentTooShort is returned when the input is shorter than one analysis
// window. Callers segmenting a recording drop such segments instead of
// extracting a degenerate vector.
var ErrSegmentTooShort = errors.New("segment shorter than analysis window")

// ErrInvalidSamples is returned when the input contains NaN or infinite
// values; feature extraction cannot recover from malformed input.
var ErrInvalidSamples = errors.New("samples contain NaN or Inf values")

// HannWindow returns an n-point Hann window.
func HannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// Spectrogram computes the short-time magnitude spectrogram of samples using
// a Hann window of WindowSize samples and a hop of HopSize. Each row holds
// the magnitudes of the first WindowSize/2 FFT bins.
//
// Framing advances by HopSize until fewer than half a window of real samples
// remains; trailing partial windows are zero-padded to WindowSize.
func Spectrogram(samples []float64) ([][]float64, error) {
	if len(samples) < WindowSize {
		return nil, ErrSegmentTooShort
	}

	window := HannWindow(WindowSize)
	frames := make([][]float64, 0, len(samples)/HopSize+1)

	for start := 0; len(samples)-start >= WindowSize/2; start += HopSize {
		if len(samples)-start >= WindowSize {
			frames = append(frames, magnitudeFrame(samples[start:start+WindowSize], window))
			continue
		}
		padded := make([]float64, WindowSize)
		copy(padded, samples[start:])
		frames = append(frames, magnitudeFrame(padded, window))
	}

	return frames, nil
}

func magnitudeFrame(frame, window []float64) []float64 {
	buf := make([]float64, WindowSize)
	for i := range buf {
		buf[i] = frame[i] * window[i]
	}
	spectrum := fft.FFTReal(buf)
	mag := make([]float64, WindowSize/2)
	for i := range mag {
		mag[i] = cmplx.Abs(spectrum[i])
	}
	return mag
}
