package dsp

import (
	"fmt"
	"math"
)

// normEps keeps the max-abs normalization defined for silent input.
const normEps = 1e-9

// ExtractFeatures computes the canonical VectorLength-value perceptual
// descriptor of a window of mono samples, ordered per Schema and normalized
// by the maximum absolute value so the vector is scale-invariant.
//
// Returns ErrSegmentTooShort when the input is shorter than one analysis
// window, and ErrInvalidSamples when it contains NaN or Inf values.
func ExtractFeatures(samples []float64, sampleRate int) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	for _, s := range samples {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, ErrInvalidSamples
		}
	}

	spectrogram, err := Spectrogram(samples)
	if err != nil {
		return nil, err
	}

	mfcc := MFCCFrames(spectrogram, sampleRate, DefaultMelFilters)
	chroma := ChromaFrames(spectrogram, sampleRate)
	centroids := SpectralCentroids(spectrogram)
	rolloffs := SpectralRolloffs(spectrogram)
	contrasts := SpectralContrasts(spectrogram)

	vector := make([]float64, 0, VectorLength)
	vector = append(vector, columnMeans(mfcc, NumMFCC)...)
	vector = append(vector, columnStds(mfcc, NumMFCC)...)
	vector = append(vector, columnDeltas(mfcc, NumMFCC)...)
	vector = append(vector, columnMeans(chroma, NumChromaBins)...)
	vector = append(vector, columnStds(chroma, NumChromaBins)...)
	vector = append(vector, mean(centroids), stddev(centroids))
	vector = append(vector, mean(rolloffs), stddev(rolloffs))
	vector = append(vector, columnMeans(contrasts, ContrastBands)...)
	vector = append(vector, columnStds(contrasts, ContrastBands)...)
	vector = append(vector, ZeroCrossingRate(samples))
	vector = append(vector, Energy(samples))
	vector = append(vector, EnvelopeStats(samples)...)
	vector = append(vector, HarmonicNoiseRatio(samples, sampleRate))

	if len(vector) != VectorLength {
		return nil, fmt.Errorf("feature vector length %d, want %d", len(vector), VectorLength)
	}

	normalizeMaxAbs(vector)
	return vector, nil
}

// normalizeMaxAbs divides every element by the maximum absolute value plus a
// small epsilon.
func normalizeMaxAbs(vector []float64) {
	var maxAbs float64
	for _, v := range vector {
		if a := math.Abs(v); a > maxAbs {
			maxAbs = a
		}
	}
	scale := 1.0 / (maxAbs + normEps)
	for i := range vector {
		vector[i] *= scale
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var variance float64
	for _, v := range values {
		d := v - m
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)))
}

// columnMeans returns the per-column mean of a frames-by-columns matrix.
func columnMeans(frames [][]float64, columns int) []float64 {
	out := make([]float64, columns)
	if len(frames) == 0 {
		return out
	}
	for _, frame := range frames {
		for c := 0; c < columns && c < len(frame); c++ {
			out[c] += frame[c]
		}
	}
	for c := range out {
		out[c] /= float64(len(frames))
	}
	return out
}

func columnStds(frames [][]float64, columns int) []float64 {
	out := make([]float64, columns)
	if len(frames) == 0 {
		return out
	}
	means := columnMeans(frames, columns)
	for _, frame := range frames {
		for c := 0; c < columns && c < len(frame); c++ {
			d := frame[c] - means[c]
			out[c] += d * d
		}
	}
	for c := range out {
		out[c] = math.Sqrt(out[c] / float64(len(frames)))
	}
	return out
}

// columnDeltas returns the mean absolute frame-to-frame first difference per
// column, the representative delta statistic of the vector.
func columnDeltas(frames [][]float64, columns int) []float64 {
	out := make([]float64, columns)
	if len(frames) <= 1 {
		return out
	}
	for t := 1; t < len(frames); t++ {
		for c := 0; c < columns && c < len(frames[t]) && c < len(frames[t-1]); c++ {
			out[c] += math.Abs(frames[t][c] - frames[t-1][c])
		}
	}
	for c := range out {
		out[c] /= float64(len(frames) - 1)
	}
	return out
}
