package dsp

import "math"

// DefaultMelFilters is the default triangular mel filterbank size.
const DefaultMelFilters = 128

const logEps = 1e-10

func hzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

func melToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// melFilter is one triangular filter: weights applied to bins [lo, lo+len).
type melFilter struct {
	lo      int
	weights []float64
}

// melFilterbank builds numFilters triangular filters spanning 0 Hz to Nyquist
// over numBins magnitude bins.
func melFilterbank(numFilters, numBins, sampleRate int) []melFilter {
	nyquist := float64(sampleRate) / 2.0
	melMax := hzToMel(nyquist)

	// numFilters+2 edge points, evenly spaced on the mel scale.
	edges := make([]float64, numFilters+2)
	for i := range edges {
		hz := melToHz(melMax * float64(i) / float64(numFilters+1))
		edges[i] = hz / nyquist * float64(numBins)
	}

	filters := make([]melFilter, numFilters)
	for f := 0; f < numFilters; f++ {
		left, center, right := edges[f], edges[f+1], edges[f+2]
		lo := int(math.Floor(left))
		if lo < 0 {
			lo = 0
		}
		hi := int(math.Ceil(right))
		if hi > numBins {
			hi = numBins
		}
		if hi <= lo {
			filters[f] = melFilter{lo: lo}
			continue
		}
		weights := make([]float64, hi-lo)
		for b := lo; b < hi; b++ {
			x := float64(b)
			switch {
			case x >= left && x <= center && center > left:
				weights[b-lo] = (x - left) / (center - left)
			case x > center && x <= right && right > center:
				weights[b-lo] = (right - x) / (right - center)
			}
		}
		filters[f] = melFilter{lo: lo, weights: weights}
	}
	return filters
}

func applyFilterbank(magnitude []float64, filters []melFilter) []float64 {
	energies := make([]float64, len(filters))
	for f, filt := range filters {
		var sum float64
		for i, w := range filt.weights {
			sum += magnitude[filt.lo+i] * w
		}
		energies[f] = sum
	}
	return energies
}

// dctII computes the first numCoeffs coefficients of the DCT-II of x.
func dctII(x []float64, numCoeffs int) []float64 {
	n := len(x)
	out := make([]float64, numCoeffs)
	for k := 0; k < numCoeffs; k++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += x[i] * math.Cos(math.Pi/float64(n)*(float64(i)+0.5)*float64(k))
		}
		out[k] = sum
	}
	return out
}

// MFCCFrames maps every spectrogram frame through the mel filterbank, takes
// the log, and keeps the first NumMFCC DCT coefficients per frame.
func MFCCFrames(spectrogram [][]float64, sampleRate, numFilters int) [][]float64 {
	if numFilters <= 0 {
		numFilters = DefaultMelFilters
	}
	if len(spectrogram) == 0 {
		return nil
	}
	filters := melFilterbank(numFilters, len(spectrogram[0]), sampleRate)

	mfcc := make([][]float64, len(spectrogram))
	logEnergies := make([]float64, numFilters)
	for t, frame := range spectrogram {
		energies := applyFilterbank(frame, filters)
		for i, e := range energies {
			logEnergies[i] = math.Log(e + logEps)
		}
		mfcc[t] = dctII(logEnergies, NumMFCC)
	}
	return mfcc
}
