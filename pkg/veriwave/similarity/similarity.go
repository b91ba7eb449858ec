// Package similarity combines three independent vector-distance metrics into
// one normalized similarity score for two feature vectors.
package similarity

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Threshold is the combined-similarity value at or above which two feature
// vectors count as a perceptual match.
const Threshold = 0.95

// Component weights. Cosine carries the most weight because directional
// agreement is the strongest signal for max-abs-normalized vectors; euclidean
// still penalizes magnitude divergence and pearson rewards co-variation shape.
const (
	euclideanWeight = 0.30
	cosineWeight    = 0.40
	pearsonWeight   = 0.30
)

// ErrLengthMismatch is returned when the two vectors differ in length.
var ErrLengthMismatch = errors.New("feature vectors differ in length")

// Euclidean maps euclidean distance into (0,1]: 1/(1+d). Monotonically
// decreasing with distance and free of any scale-dependent normalization
// constant.
func Euclidean(a, b []float64) float64 {
	return clamp01(1.0 / (1.0 + floats.Distance(a, b, 2)))
}

// Cosine returns the cosine of the angle between a and b, clamped to [0,1].
// Feature vectors are non-negative in principle; normalization may produce
// small negatives, which count as zero similarity.
func Cosine(a, b []float64) float64 {
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return clamp01(floats.Dot(a, b) / (na * nb))
}

// Pearson maps the Pearson correlation coefficient from [-1,1] into [0,1].
func Pearson(a, b []float64) float64 {
	r := stat.Correlation(a, b, nil)
	if math.IsNaN(r) {
		// Correlation is undefined for a constant vector.
		return 0
	}
	return clamp01((r + 1.0) / 2.0)
}

// Combined returns the weighted combination of the three component
// similarities, in [0,1].
func Combined(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrLengthMismatch
	}
	if len(a) == 0 {
		return 0, ErrLengthMismatch
	}
	score := euclideanWeight*Euclidean(a, b) +
		cosineWeight*Cosine(a, b) +
		pearsonWeight*Pearson(a, b)
	return clamp01(score), nil
}

// Matches reports whether the combined similarity meets Threshold.
func Matches(score float64) bool {
	return score >= Threshold
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
