// Package segment partitions a recording into time-addressed segments and
// drives feature extraction, exact digesting, and industry fingerprinting per
// segment to assemble a Fingerprint.
package segment

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/veriwave/veriwave/pkg/veriwave/digest"
	"github.com/veriwave/veriwave/pkg/veriwave/dsp"
	"github.com/veriwave/veriwave/pkg/veriwave/industry"
	"github.com/veriwave/veriwave/pkg/veriwave/model"
)

const (
	// DefaultSegmentDuration is the fixed chunk length in seconds.
	DefaultSegmentDuration = 5.0
	// minTrailingFraction is the smallest trailing fragment kept, as a
	// fraction of the target duration.
	minTrailingFraction = 0.30
)

// ErrNoUsableSegments is returned when every segment was dropped as too short.
var ErrNoUsableSegments = errors.New("no segment long enough for analysis")

// Logger is the minimal logging surface the segmenter needs.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Debugf(format string, args ...any)
}

// Config tunes a Segmenter. Zero values select defaults.
type Config struct {
	// SegmentDuration is the fixed chunk length in seconds.
	SegmentDuration float64
	// Workers bounds the per-segment extraction pool.
	Workers int
	// IndustryTimeout bounds each industry-adapter call independently of the
	// rest of the pipeline.
	IndustryTimeout time.Duration
}

// Segmenter builds Fingerprints. Industry may be nil or unavailable; the
// resulting segments then carry no industry fingerprint.
type Segmenter struct {
	cfg      Config
	industry industry.Fingerprinter
	log      Logger
}

// New returns a Segmenter. log may be nil.
func New(cfg Config, ind industry.Fingerprinter, log Logger) *Segmenter {
	if cfg.SegmentDuration <= 0 {
		cfg.SegmentDuration = DefaultSegmentDuration
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.IndustryTimeout <= 0 {
		cfg.IndustryTimeout = industry.DefaultTimeout
	}
	return &Segmenter{cfg: cfg, industry: ind, log: log}
}

// FixedRanges chunks a duration into consecutive fixed-length ranges,
// discarding a trailing fragment shorter than minTrailingFraction of the
// target duration.
func (s *Segmenter) FixedRanges(duration float64) [][2]float64 {
	var ranges [][2]float64
	d := s.cfg.SegmentDuration
	for start := 0.0; start < duration; start += d {
		end := start + d
		if end > duration {
			if duration-start < minTrailingFraction*d {
				break
			}
			end = duration
		}
		ranges = append(ranges, [2]float64{start, end})
	}
	return ranges
}

// Build fingerprints a whole recording using fixed-duration chunking.
func (s *Segmenter) Build(ctx context.Context, samples []float64, sampleRate int) (*model.Fingerprint, error) {
	duration := float64(len(samples)) / float64(sampleRate)
	return s.BuildRanges(ctx, samples, sampleRate, s.FixedRanges(duration))
}

// BuildRanges fingerprints a recording over explicit (start,end) ranges in
// seconds. Ranges may overlap or leave gaps; they are processed in ascending
// start order. One feature vector is also computed over the entire recording,
// independent of segmentation.
func (s *Segmenter) BuildRanges(ctx context.Context, samples []float64, sampleRate int, ranges [][2]float64) (*model.Fingerprint, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	fullFeatures, err := dsp.ExtractFeatures(samples, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("extracting full-recording features: %w", err)
	}

	sorted := make([][2]float64, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i][0] < sorted[j][0] })

	industryAvailable := s.industry != nil && s.industry.Available()
	if s.industry != nil && !industryAvailable && s.log != nil {
		s.log.Warnf("industry fingerprint adapter unavailable; segments will carry no industry fingerprint")
	}

	results := make([]*model.Segment, len(sorted))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < s.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					return
				}
				results[idx] = s.buildSegment(ctx, samples, sampleRate, sorted[idx], industryAvailable)
			}
		}()
	}

feed:
	for i := range sorted {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fingerprint build aborted with partial results: %w", err)
	}

	segments := make([]model.Segment, 0, len(results))
	for _, seg := range results {
		if seg != nil {
			segments = append(segments, *seg)
		}
	}
	if len(sorted) > 0 && len(segments) == 0 {
		return nil, ErrNoUsableSegments
	}

	fp := &model.Fingerprint{
		FullFeatures:  fullFeatures,
		Segments:      segments,
		Duration:      float64(len(samples)) / float64(sampleRate),
		SampleRate:    sampleRate,
		SchemaVersion: dsp.SchemaVersion,
	}
	if industryAvailable {
		fp.IndustryVersion = s.industry.Version()
	}
	return fp, nil
}

// buildSegment extracts one segment's features, digest, and industry
// fingerprint. Returns nil when the segment is too short to analyze.
func (s *Segmenter) buildSegment(ctx context.Context, samples []float64, sampleRate int, r [2]float64, industryAvailable bool) *model.Segment {
	lo := int(r[0] * float64(sampleRate))
	hi := int(r[1] * float64(sampleRate))
	if lo < 0 {
		lo = 0
	}
	if hi > len(samples) {
		hi = len(samples)
	}
	if hi <= lo {
		return nil
	}
	window := samples[lo:hi]

	features, err := dsp.ExtractFeatures(window, sampleRate)
	if err != nil {
		if errors.Is(err, dsp.ErrSegmentTooShort) {
			if s.log != nil {
				s.log.Debugf("dropping segment [%.2f,%.2f): %v", r[0], r[1], err)
			}
			return nil
		}
		if s.log != nil {
			s.log.Warnf("segment [%.2f,%.2f) feature extraction failed: %v", r[0], r[1], err)
		}
		return nil
	}

	seg := &model.Segment{
		StartTime:   r[0],
		EndTime:     r[1],
		Duration:    r[1] - r[0],
		Features:    features,
		ExactDigest: digest.Compute(window),
	}

	if industryAvailable {
		fpCtx, cancel := context.WithTimeout(ctx, s.cfg.IndustryTimeout)
		encoded, err := s.industry.Fingerprint(fpCtx, window, sampleRate)
		cancel()
		if err != nil {
			// Non-fatal: the segment simply carries no industry vote.
			if s.log != nil {
				s.log.Warnf("industry fingerprint failed for segment [%.2f,%.2f): %v", r[0], r[1], err)
			}
		} else {
			seg.IndustryFingerprint = encoded
		}
	}

	return seg
}
