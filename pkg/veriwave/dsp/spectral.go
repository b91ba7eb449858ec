package dsp

import (
	"math"
	"sort"
)

// RolloffThreshold is the cumulative-energy fraction for spectral rolloff.
const RolloffThreshold = 0.85

// SpectralCentroids returns the magnitude-weighted mean bin index of each
// frame, normalized by the bin count to [0,1].
func SpectralCentroids(spectrogram [][]float64) []float64 {
	out := make([]float64, len(spectrogram))
	for t, frame := range spectrogram {
		var weighted, total float64
		for b, mag := range frame {
			weighted += float64(b) * mag
			total += mag
		}
		if total > 0 {
			out[t] = weighted / total / float64(len(frame))
		}
	}
	return out
}

// SpectralRolloffs returns, per frame, the lowest bin index covering
// RolloffThreshold of the cumulative magnitude, normalized to [0,1].
func SpectralRolloffs(spectrogram [][]float64) []float64 {
	out := make([]float64, len(spectrogram))
	for t, frame := range spectrogram {
		var total float64
		for _, mag := range frame {
			total += mag
		}
		if total == 0 {
			continue
		}
		target := RolloffThreshold * total
		var cumulative float64
		for b, mag := range frame {
			cumulative += mag
			if cumulative >= target {
				out[t] = float64(b) / float64(len(frame))
				break
			}
		}
	}
	return out
}

// SpectralContrasts splits each frame into ContrastBands octave-style bands
// and returns, per frame, the log contrast between the strongest and weakest
// fifth of each band's magnitudes.
func SpectralContrasts(spectrogram [][]float64) [][]float64 {
	if len(spectrogram) == 0 {
		return nil
	}
	bands := contrastBandEdges(len(spectrogram[0]))

	out := make([][]float64, len(spectrogram))
	for t, frame := range spectrogram {
		row := make([]float64, ContrastBands)
		for bi, edge := range bands {
			lo, hi := edge[0], edge[1]
			if hi <= lo {
				continue
			}
			band := append([]float64(nil), frame[lo:hi]...)
			sort.Float64s(band)
			q := len(band) / 5
			if q < 1 {
				q = 1
			}
			var valley, peak float64
			for i := 0; i < q; i++ {
				valley += band[i]
				peak += band[len(band)-1-i]
			}
			row[bi] = math.Log(peak/float64(q)+logEps) - math.Log(valley/float64(q)+logEps)
		}
		out[t] = row
	}
	return out
}

// contrastBandEdges splits [1, numBins) into ContrastBands ranges whose
// widths roughly double, mirroring octave spacing.
func contrastBandEdges(numBins int) [][2]int {
	edges := make([][2]int, 0, ContrastBands)
	lo := 1
	width := numBins / (1 << ContrastBands)
	if width < 1 {
		width = 1
	}
	for i := 0; i < ContrastBands; i++ {
		hi := lo + width
		if i == ContrastBands-1 || hi > numBins {
			hi = numBins
		}
		edges = append(edges, [2]int{lo, hi})
		lo = hi
		width *= 2
	}
	return edges
}
