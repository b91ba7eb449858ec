package segment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/veriwave/veriwave/pkg/veriwave/digest"
	"github.com/veriwave/veriwave/pkg/veriwave/dsp"
)

// stubFingerprinter stands in for the external algorithm: the fingerprint is
// derived from the samples so identical audio always agrees.
type stubFingerprinter struct {
	unavailable bool
	failAll     bool
}

func (s *stubFingerprinter) Available() bool { return !s.unavailable }
func (s *stubFingerprinter) Version() string { return "stub1" }

func (s *stubFingerprinter) Fingerprint(ctx context.Context, samples []float64, sampleRate int) (string, error) {
	if s.failAll {
		return "", fmt.Errorf("stub failure")
	}
	return "stub1:" + digest.Compute(samples), nil
}

func (s *stubFingerprinter) Compare(a, b string) (float64, error) {
	if a == b {
		return 1.0, nil
	}
	return 0.0, nil
}

func sineWave(freq float64, seconds float64, sampleRate int) []float64 {
	n := int(seconds * float64(sampleRate))
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.8 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func TestFixedRanges(t *testing.T) {
	s := New(Config{}, nil, nil)

	ranges := s.FixedRanges(60)
	if len(ranges) != 12 {
		t.Fatalf("expected 12 ranges for 60s, got %d", len(ranges))
	}
	for i, r := range ranges {
		if r[0] != float64(i)*5 || r[1] != float64(i+1)*5 {
			t.Errorf("range %d is [%.1f,%.1f], expected [%d,%d]", i, r[0], r[1], i*5, (i+1)*5)
		}
	}

	// A 3s trailing fragment (60% of the target) is kept.
	ranges = s.FixedRanges(23)
	if len(ranges) != 5 {
		t.Fatalf("expected 5 ranges for 23s, got %d", len(ranges))
	}
	if last := ranges[4]; last[0] != 20 || last[1] != 23 {
		t.Errorf("trailing range is [%.1f,%.1f], expected [20,23]", last[0], last[1])
	}

	// A 1s trailing fragment (20% of the target) is dropped.
	ranges = s.FixedRanges(21)
	if len(ranges) != 4 {
		t.Fatalf("expected 4 ranges for 21s, got %d", len(ranges))
	}
}

func TestBuild(t *testing.T) {
	sr := 22050
	samples := sineWave(440, 12, sr)
	s := New(Config{}, &stubFingerprinter{}, nil)

	fp, err := s.Build(context.Background(), samples, sr)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if fp.SchemaVersion != dsp.SchemaVersion {
		t.Errorf("schema version %d, expected %d", fp.SchemaVersion, dsp.SchemaVersion)
	}
	if fp.IndustryVersion != "stub1" {
		t.Errorf("industry version %q, expected stub1", fp.IndustryVersion)
	}
	if fp.SampleRate != sr {
		t.Errorf("sample rate %d, expected %d", fp.SampleRate, sr)
	}
	if len(fp.FullFeatures) != dsp.VectorLength {
		t.Errorf("full feature vector has %d values, expected %d", len(fp.FullFeatures), dsp.VectorLength)
	}

	// 12s splits into two full segments plus a kept 2s trailing fragment.
	if len(fp.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(fp.Segments))
	}
	for i, seg := range fp.Segments {
		if len(seg.Features) != dsp.VectorLength {
			t.Errorf("segment %d has %d features", i, len(seg.Features))
		}
		if seg.ExactDigest == "" {
			t.Errorf("segment %d has no digest", i)
		}
		if seg.IndustryFingerprint == "" {
			t.Errorf("segment %d has no industry fingerprint", i)
		}
		if i > 0 && seg.StartTime < fp.Segments[i-1].StartTime {
			t.Errorf("segment %d starts before segment %d", i, i-1)
		}
	}
}

func TestBuildRangesSortsInput(t *testing.T) {
	sr := 22050
	samples := sineWave(300, 15, sr)
	s := New(Config{}, nil, nil)

	fp, err := s.BuildRanges(context.Background(), samples, sr, [][2]float64{
		{10, 15}, {0, 5}, {5, 10},
	})
	if err != nil {
		t.Fatalf("BuildRanges failed: %v", err)
	}
	if len(fp.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(fp.Segments))
	}
	for i, seg := range fp.Segments {
		if seg.StartTime != float64(i)*5 {
			t.Errorf("segment %d starts at %.1f, expected %d", i, seg.StartTime, i*5)
		}
	}
	if fp.IndustryVersion != "" {
		t.Errorf("no industry adapter, but industry version is %q", fp.IndustryVersion)
	}
}

func TestBuildRangesDropsShort(t *testing.T) {
	sr := 22050
	samples := sineWave(440, 12, sr)
	s := New(Config{}, nil, nil)

	// The 20ms range is below the analysis window and gets dropped.
	fp, err := s.BuildRanges(context.Background(), samples, sr, [][2]float64{
		{0, 5}, {5, 5.02},
	})
	if err != nil {
		t.Fatalf("BuildRanges failed: %v", err)
	}
	if len(fp.Segments) != 1 {
		t.Fatalf("expected 1 segment after dropping the short range, got %d", len(fp.Segments))
	}

	_, err = s.BuildRanges(context.Background(), samples, sr, [][2]float64{
		{0, 0.01}, {1, 1.02},
	})
	if !errors.Is(err, ErrNoUsableSegments) {
		t.Fatalf("expected ErrNoUsableSegments, got %v", err)
	}
}

func TestBuildIndustryFailureIsNonFatal(t *testing.T) {
	sr := 22050
	samples := sineWave(440, 10, sr)
	s := New(Config{}, &stubFingerprinter{failAll: true}, nil)

	fp, err := s.Build(context.Background(), samples, sr)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for i, seg := range fp.Segments {
		if seg.IndustryFingerprint != "" {
			t.Errorf("segment %d should carry no industry fingerprint", i)
		}
		if seg.ExactDigest == "" || len(seg.Features) != dsp.VectorLength {
			t.Errorf("segment %d lost its other verification data", i)
		}
	}
}

func TestBuildUnavailableAdapter(t *testing.T) {
	sr := 22050
	samples := sineWave(440, 10, sr)
	s := New(Config{}, &stubFingerprinter{unavailable: true}, nil)

	fp, err := s.Build(context.Background(), samples, sr)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if fp.IndustryVersion != "" {
		t.Errorf("unavailable adapter should leave industry version empty, got %q", fp.IndustryVersion)
	}
	for i, seg := range fp.Segments {
		if seg.IndustryFingerprint != "" {
			t.Errorf("segment %d should carry no industry fingerprint", i)
		}
	}
}

func TestBuildCancellation(t *testing.T) {
	sr := 22050
	samples := sineWave(440, 30, sr)
	s := New(Config{}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Build(ctx, samples, sr)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
