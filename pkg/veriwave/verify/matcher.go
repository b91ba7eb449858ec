// Package verify aligns a candidate fingerprint against a reference
// fingerprint and reduces the per-segment comparisons to a verdict.
package verify

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/veriwave/veriwave/pkg/veriwave/industry"
	"github.com/veriwave/veriwave/pkg/veriwave/model"
	"github.com/veriwave/veriwave/pkg/veriwave/similarity"
)

// IndustryThreshold is the minimum industry-fingerprint similarity that
// counts as a match on its own.
const IndustryThreshold = 0.90

// ErrSchemaMismatch is returned when two fingerprints carry incompatible
// feature-vector schemas and must not be compared.
var ErrSchemaMismatch = errors.New("fingerprint schema version mismatch")

// Logger is the minimal logging surface the matcher needs.
type Logger interface {
	Warnf(format string, args ...any)
	Debugf(format string, args ...any)
}

// MatchResult is the Segment Matcher's full output: one SegmentMatch per
// candidate segment that overlaps the reference, plus the segments present on
// only one side.
type MatchResult struct {
	Matches []model.SegmentMatch
	// Missing holds reference segments with no overlapping candidate segment.
	Missing []model.Segment
	// Extra holds candidate segments with no overlapping reference segment.
	Extra []model.Segment
	// IndustryUsed reports whether the industry comparator contributed to any
	// match decision this run.
	IndustryUsed bool
}

// Matcher compares candidate segments against reference segments by time
// overlap. Industry may be nil; match decisions then rest on exact digests
// and perceptual similarity alone.
type Matcher struct {
	industry industry.Fingerprinter
	workers  int
	log      Logger
}

// NewMatcher returns a Matcher. ind and log may be nil.
func NewMatcher(ind industry.Fingerprinter, workers int, log Logger) *Matcher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Matcher{industry: ind, workers: workers, log: log}
}

// Match aligns every candidate segment with the reference segment of maximal
// time overlap and classifies each pair. Incompatible schema or adapter
// versions abort the comparison rather than producing a misleading score.
func (m *Matcher) Match(candidate, reference *model.Fingerprint) (*MatchResult, error) {
	if candidate.SchemaVersion != reference.SchemaVersion {
		return nil, fmt.Errorf("%w: candidate v%d, reference v%d",
			ErrSchemaMismatch, candidate.SchemaVersion, reference.SchemaVersion)
	}
	if candidate.IndustryVersion != "" && reference.IndustryVersion != "" &&
		candidate.IndustryVersion != reference.IndustryVersion {
		return nil, fmt.Errorf("%w: candidate %q, reference %q",
			industry.ErrVersionMismatch, candidate.IndustryVersion, reference.IndustryVersion)
	}

	industryCapable := m.industry != nil
	matches := make([]*model.SegmentMatch, len(candidate.Segments))
	errs := make([]error, len(candidate.Segments))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < m.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				matches[idx], errs[idx] = m.matchSegment(&candidate.Segments[idx], reference, industryCapable)
			}
		}()
	}
	for i := range candidate.Segments {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	res := &MatchResult{}
	for i, match := range matches {
		if errs[i] != nil {
			return nil, errs[i]
		}
		if match == nil {
			res.Extra = append(res.Extra, candidate.Segments[i])
			continue
		}
		res.Matches = append(res.Matches, *match)
		if match.IndustryKnown {
			res.IndustryUsed = true
		}
	}

	for i := range reference.Segments {
		ref := &reference.Segments[i]
		covered := false
		for j := range candidate.Segments {
			if overlap(&candidate.Segments[j], ref) > 0 {
				covered = true
				break
			}
		}
		if !covered {
			res.Missing = append(res.Missing, *ref)
		}
	}

	return res, nil
}

// matchSegment classifies one candidate segment against its best-overlapping
// reference segment. Returns nil when no reference segment overlaps.
func (m *Matcher) matchSegment(seg *model.Segment, reference *model.Fingerprint, industryCapable bool) (*model.SegmentMatch, error) {
	ref := bestOverlap(seg, reference.Segments)
	if ref == nil {
		return nil, nil
	}

	exact := seg.ExactDigest != "" && seg.ExactDigest == ref.ExactDigest

	perceptual, err := similarity.Combined(seg.Features, ref.Features)
	if err != nil {
		return nil, fmt.Errorf("comparing segment [%.2f,%.2f): %w", seg.StartTime, seg.EndTime, err)
	}

	industrySim, industryKnown := 0.0, false
	if industryCapable && seg.IndustryFingerprint != "" && ref.IndustryFingerprint != "" {
		industrySim, err = m.industry.Compare(seg.IndustryFingerprint, ref.IndustryFingerprint)
		switch {
		case err == nil:
			industryKnown = true
		case errors.Is(err, industry.ErrVersionMismatch):
			return nil, fmt.Errorf("comparing segment [%.2f,%.2f): %w", seg.StartTime, seg.EndTime, err)
		default:
			// Degraded: the decision falls back to digest and perceptual only.
			if m.log != nil {
				m.log.Warnf("industry comparison failed for segment [%.2f,%.2f): %v", seg.StartTime, seg.EndTime, err)
			}
			industrySim = 0
		}
	}

	matched := classify(exact, industrySim, industryKnown, perceptual)
	return &model.SegmentMatch{
		Segment:              *seg,
		Reference:            ref,
		PerceptualSimilarity: perceptual,
		IndustrySimilarity:   industrySim,
		IndustryKnown:        industryKnown,
		ExactMatch:           exact,
		Matched:              matched,
		IsTampered:           !matched,
	}, nil
}

// classify applies the match rule: a segment matches when any of the three
// verification methods accepts it.
func classify(exact bool, industrySim float64, industryKnown bool, perceptual float64) bool {
	if exact {
		return true
	}
	if industryKnown && industrySim >= IndustryThreshold {
		return true
	}
	return similarity.Matches(perceptual)
}

// bestOverlap returns the reference segment with maximal time overlap, ties
// broken by earliest start. Returns nil when nothing overlaps.
func bestOverlap(seg *model.Segment, refs []model.Segment) *model.Segment {
	var best *model.Segment
	bestOv := 0.0
	for i := range refs {
		ov := overlap(seg, &refs[i])
		if ov <= 0 {
			continue
		}
		if best == nil || ov > bestOv || (ov == bestOv && refs[i].StartTime < best.StartTime) {
			best, bestOv = &refs[i], ov
		}
	}
	return best
}

func overlap(a, b *model.Segment) float64 {
	lo := a.StartTime
	if b.StartTime > lo {
		lo = b.StartTime
	}
	hi := a.EndTime
	if b.EndTime < hi {
		hi = b.EndTime
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}
