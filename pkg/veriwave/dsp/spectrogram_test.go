package dsp

import (
	"errors"
	"math"
	"testing"
)

func TestHannWindow(t *testing.T) {
	w := HannWindow(WindowSize)
	if len(w) != WindowSize {
		t.Fatalf("expected %d coefficients, got %d", WindowSize, len(w))
	}
	if w[0] > 1e-9 || w[len(w)-1] > 1e-9 {
		t.Errorf("window endpoints should be ~0, got %f and %f", w[0], w[len(w)-1])
	}
	mid := w[WindowSize/2]
	if math.Abs(mid-1.0) > 1e-3 {
		t.Errorf("window midpoint should be ~1, got %f", mid)
	}
}

func TestSpectrogramShape(t *testing.T) {
	// Framing continues past the last full window until fewer than half a
	// window of real samples remains.
	n := WindowSize + 3*HopSize
	spec, err := Spectrogram(sineWave(440, float64(n)/22050.0, 22050)[:n])
	if err != nil {
		t.Fatalf("Spectrogram failed: %v", err)
	}

	want := (n-WindowSize/2)/HopSize + 1
	if len(spec) != want {
		t.Fatalf("expected %d frames for %d samples, got %d", want, n, len(spec))
	}
	for i, frame := range spec {
		if len(frame) != WindowSize/2 {
			t.Fatalf("frame %d has %d bins, expected %d", i, len(frame), WindowSize/2)
		}
	}
}

func TestSpectrogramTrailingWindow(t *testing.T) {
	// One window plus half a hop: one full frame, then padded frames until
	// the half-window cutoff.
	n := WindowSize + HopSize/2
	spec, err := Spectrogram(make([]float64, n))
	if err != nil {
		t.Fatalf("Spectrogram failed: %v", err)
	}
	want := (n-WindowSize/2)/HopSize + 1
	if len(spec) != want {
		t.Errorf("expected %d frames, got %d", want, len(spec))
	}

	// One sample short of admitting the last padded frame.
	for _, n := range []int{WindowSize, WindowSize + HopSize, WindowSize + 2*HopSize - 1} {
		spec, err := Spectrogram(make([]float64, n))
		if err != nil {
			t.Fatalf("Spectrogram failed for %d samples: %v", n, err)
		}
		want := (n-WindowSize/2)/HopSize + 1
		if len(spec) != want {
			t.Errorf("expected %d frames for %d samples, got %d", want, n, len(spec))
		}
	}
}

func TestSpectrogramTooShort(t *testing.T) {
	_, err := Spectrogram(make([]float64, WindowSize-1))
	if !errors.Is(err, ErrSegmentTooShort) {
		t.Fatalf("expected ErrSegmentTooShort, got %v", err)
	}
}

func TestSpectrogramPeakBin(t *testing.T) {
	sr := 22050
	freq := 1000.0
	spec, err := Spectrogram(sineWave(freq, 1.0, sr))
	if err != nil {
		t.Fatalf("Spectrogram failed: %v", err)
	}

	frame := spec[len(spec)/2]
	peak := 0
	for i, m := range frame {
		if m > frame[peak] {
			peak = i
		}
	}
	wantBin := int(freq / float64(sr) * WindowSize)
	if peak < wantBin-2 || peak > wantBin+2 {
		t.Errorf("spectral peak at bin %d, expected near %d for %.0f Hz", peak, wantBin, freq)
	}
}
