package model

// VerificationStatus is the overall outcome of a verification run.
type VerificationStatus string

const (
	StatusFullyVerified   VerificationStatus = "FULLY_VERIFIED"
	StatusPartialVerified VerificationStatus = "PARTIAL_VERIFIED"
	StatusTampered        VerificationStatus = "TAMPERED"
	StatusNoMatch         VerificationStatus = "NO_MATCH"
)

// Segment is a bounded time range of a recording together with everything
// needed to verify it later: the perceptual feature vector, the exact content
// digest, and the opaque industry fingerprint (empty when the industry adapter
// was unavailable).
type Segment struct {
	StartTime           float64   `json:"start_time"`
	EndTime             float64   `json:"end_time"`
	Duration            float64   `json:"duration"`
	Features            []float64 `json:"features"`
	ExactDigest         string    `json:"exact_digest"`
	IndustryFingerprint string    `json:"industry_fingerprint,omitempty"`
}

// Fingerprint is the complete stored identity of a recording: one feature
// vector over the whole recording plus the ordered segment list. Segments are
// non-decreasing in StartTime. Immutable after creation.
type Fingerprint struct {
	FullFeatures    []float64 `json:"full_features"`
	Segments        []Segment `json:"segments"`
	Duration        float64   `json:"duration"`
	SampleRate      int       `json:"sample_rate"`
	SchemaVersion   int       `json:"schema_version"`
	IndustryVersion string    `json:"industry_version,omitempty"`
}

// SegmentMatch is the per-candidate-segment comparison outcome against the
// best-overlapping reference segment.
type SegmentMatch struct {
	Segment              Segment  `json:"segment"`
	Reference            *Segment `json:"reference,omitempty"`
	PerceptualSimilarity float64  `json:"perceptual_similarity"`
	IndustrySimilarity   float64  `json:"industry_similarity"`
	IndustryKnown        bool     `json:"industry_known"`
	ExactMatch           bool     `json:"exact_match"`
	Matched              bool     `json:"matched"`
	IsTampered           bool     `json:"is_tampered"`
}

// TamperedRegion is a time range flagged as altered, with the perceptual
// similarity that failed the threshold.
type TamperedRegion struct {
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	Similarity float64 `json:"similarity"`
}

// ValidRegion is a time range that verified, annotated with whether the match
// was byte-exact or perceptual/industry only.
type ValidRegion struct {
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	ExactMatch bool    `json:"exact_match"`
}

// VerificationVerdict is the aggregated result of verifying a candidate
// recording against a stored reference fingerprint.
type VerificationVerdict struct {
	Status           VerificationStatus `json:"status"`
	TotalSegments    int                `json:"total_segments"`
	ValidSegments    int                `json:"valid_segments"`
	TamperedSegments int                `json:"tampered_segments"`
	MissingSegments  int                `json:"missing_segments"`
	ExtraSegments    int                `json:"extra_segments"`
	AvgSimilarity    float64            `json:"avg_similarity"`
	TamperedRegions  []TamperedRegion   `json:"tampered_regions"`
	ValidRegions     []ValidRegion      `json:"valid_regions"`
	// IndustryUsed reports whether the industry fingerprint vote participated
	// in this run. False means the adapter was unavailable and decisions fell
	// back to exact digests and perceptual similarity only.
	IndustryUsed bool           `json:"industry_used"`
	Matches      []SegmentMatch `json:"matches,omitempty"`
}

// Recording is a stored reference recording's metadata.
type Recording struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DurationMs    int    `json:"duration_ms"`
	SampleRate    int    `json:"sample_rate"`
	SchemaVersion int    `json:"schema_version"`
}
