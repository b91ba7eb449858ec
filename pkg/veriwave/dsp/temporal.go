package dsp

import "math"

// ZeroCrossingRate returns the fraction of adjacent sample pairs whose signs
// differ.
func ZeroCrossingRate(samples []float64) float64 {
	if len(samples) <= 1 {
		return 0
	}
	var count float64
	for i := 1; i < len(samples); i++ {
		if (samples[i-1] >= 0) != (samples[i] >= 0) {
			count++
		}
	}
	return count / float64(len(samples)-1)
}

// Energy returns the mean squared amplitude.
func Energy(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return sum / float64(len(samples))
}

// EnvelopeStats splits the signal into EnvelopeBins equal sub-windows and
// returns the mean absolute amplitude of each, a coarse amplitude envelope.
func EnvelopeStats(samples []float64) []float64 {
	out := make([]float64, EnvelopeBins)
	if len(samples) == 0 {
		return out
	}
	step := len(samples) / EnvelopeBins
	if step < 1 {
		step = 1
	}
	for i := 0; i < EnvelopeBins; i++ {
		lo := i * step
		hi := lo + step
		if i == EnvelopeBins-1 || hi > len(samples) {
			hi = len(samples)
		}
		if lo >= hi {
			break
		}
		var sum float64
		for _, s := range samples[lo:hi] {
			sum += math.Abs(s)
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

// HarmonicNoiseRatio estimates the fraction of signal energy concentrated at
// the strongest periodic lag, via normalized autocorrelation over lags
// corresponding to 50-500 Hz.
func HarmonicNoiseRatio(samples []float64, sampleRate int) float64 {
	if sampleRate <= 0 || len(samples) < 2 {
		return 0
	}
	var r0 float64
	for _, s := range samples {
		r0 += s * s
	}
	if r0 == 0 {
		return 0
	}

	minLag := sampleRate / 500
	maxLag := sampleRate / 50
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(samples) {
		maxLag = len(samples) - 1
	}

	var best float64
	for lag := minLag; lag <= maxLag; lag++ {
		var r float64
		for i := lag; i < len(samples); i++ {
			r += samples[i] * samples[i-lag]
		}
		if r > best {
			best = r
		}
	}

	hnr := best / r0
	if hnr < 0 {
		return 0
	}
	if hnr > 1 {
		return 1
	}
	return hnr
}
