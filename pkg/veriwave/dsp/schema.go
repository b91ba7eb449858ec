package dsp

// SchemaVersion identifies the feature-vector layout. Fingerprints built with
// a different schema version must never be compared.
const SchemaVersion = 1

const (
	// VectorLength is the total length of a feature vector.
	VectorLength = 86

	NumMFCC       = 13
	NumChromaBins = 12
	ContrastBands = 6
	EnvelopeBins  = 4
)

// FeatureGroup names one contiguous slice of the feature vector.
type FeatureGroup struct {
	Name   string
	Offset int
	Length int
}

// Schema returns the canonical ordered layout of a feature vector. All
// extraction and comparison code derives offsets from this table so that
// adding or removing a group cannot silently desynchronize the two sides.
func Schema() []FeatureGroup {
	groups := []FeatureGroup{
		{Name: "mfcc_mean", Length: NumMFCC},
		{Name: "mfcc_std", Length: NumMFCC},
		{Name: "mfcc_delta", Length: NumMFCC},
		{Name: "chroma_mean", Length: NumChromaBins},
		{Name: "chroma_std", Length: NumChromaBins},
		{Name: "spectral_centroid", Length: 2},
		{Name: "spectral_rolloff", Length: 2},
		{Name: "spectral_contrast_mean", Length: ContrastBands},
		{Name: "spectral_contrast_std", Length: ContrastBands},
		{Name: "zero_crossing_rate", Length: 1},
		{Name: "energy", Length: 1},
		{Name: "temporal_envelope", Length: EnvelopeBins},
		{Name: "harmonic_noise_ratio", Length: 1},
	}
	offset := 0
	for i := range groups {
		groups[i].Offset = offset
		offset += groups[i].Length
	}
	return groups
}
