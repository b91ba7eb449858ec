package dsp

import "math"

// ChromaFrames folds each spectrogram frame's energy into the 12 pitch
// classes. Each frame's chroma vector is normalized to sum to 1 so chroma
// describes the pitch-class distribution independent of level.
func ChromaFrames(spectrogram [][]float64, sampleRate int) [][]float64 {
	if len(spectrogram) == 0 {
		return nil
	}
	numBins := len(spectrogram[0])
	fftSize := numBins * 2
	binHz := float64(sampleRate) / float64(fftSize)

	// Precompute pitch class per bin; bin 0 (DC) carries no pitch.
	pitchClass := make([]int, numBins)
	for b := 1; b < numBins; b++ {
		freq := float64(b) * binHz
		midi := 12.0*math.Log2(freq/440.0) + 69.0
		pc := int(math.Round(midi)) % NumChromaBins
		if pc < 0 {
			pc += NumChromaBins
		}
		pitchClass[b] = pc
	}

	chroma := make([][]float64, len(spectrogram))
	for t, frame := range spectrogram {
		row := make([]float64, NumChromaBins)
		var total float64
		for b := 1; b < numBins; b++ {
			row[pitchClass[b]] += frame[b]
			total += frame[b]
		}
		if total > 0 {
			for i := range row {
				row[i] /= total
			}
		}
		chroma[t] = row
	}
	return chroma
}
