package veriwave

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/veriwave/veriwave/pkg/veriwave/digest"
	"github.com/veriwave/veriwave/pkg/veriwave/model"
)

// stubFingerprinter replaces the external algorithm in tests.
type stubFingerprinter struct{}

func (s *stubFingerprinter) Available() bool { return true }
func (s *stubFingerprinter) Version() string { return "stub1" }

func (s *stubFingerprinter) Fingerprint(ctx context.Context, samples []float64, sampleRate int) (string, error) {
	return "stub1:" + digest.Compute(samples), nil
}

func (s *stubFingerprinter) Compare(a, b string) (float64, error) {
	if a == b {
		return 1.0, nil
	}
	return 0.0, nil
}

func setupTestService(t *testing.T) Service {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test_veriwave.sqlite3")

	svc, err := NewService(
		WithDBPath(dbPath),
		WithIndustryFingerprinter(&stubFingerprinter{}),
	)
	if err != nil {
		t.Fatalf("failed to create test service: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func sineWave(freq float64, seconds float64, sampleRate int) []float64 {
	n := int(seconds * float64(sampleRate))
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.8 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func TestServiceFingerprintAndVerify(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	samples := sineWave(440, 30, 22050)

	reference, err := svc.FingerprintSamples(ctx, samples, 22050)
	if err != nil {
		t.Fatalf("FingerprintSamples failed: %v", err)
	}
	if len(reference.Segments) != 6 {
		t.Fatalf("expected 6 segments for 30s, got %d", len(reference.Segments))
	}

	candidate, err := svc.FingerprintSamples(ctx, samples, 22050)
	if err != nil {
		t.Fatalf("candidate fingerprint failed: %v", err)
	}

	verdict, err := svc.Verify(ctx, candidate, reference)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if verdict.Status != model.StatusFullyVerified {
		t.Fatalf("status %s, expected FULLY_VERIFIED", verdict.Status)
	}
}

func TestServiceCustomRanges(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	samples := sineWave(300, 20, 22050)

	fp, err := svc.FingerprintRanges(ctx, samples, 22050, [][2]float64{
		{0, 8}, {8, 20},
	})
	if err != nil {
		t.Fatalf("FingerprintRanges failed: %v", err)
	}
	if len(fp.Segments) != 2 {
		t.Fatalf("expected 2 custom segments, got %d", len(fp.Segments))
	}
	if fp.Segments[1].Duration != 12 {
		t.Errorf("second segment duration %.1f, expected 12", fp.Segments[1].Duration)
	}
}

func TestServiceStorageRoundTrip(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	samples := sineWave(440, 10, 22050)

	fp, err := svc.FingerprintSamples(ctx, samples, 22050)
	if err != nil {
		t.Fatalf("FingerprintSamples failed: %v", err)
	}

	stor, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "roundtrip.sqlite3"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage failed: %v", err)
	}
	defer stor.Close()

	id, err := stor.SaveRecording("tone", fp)
	if err != nil {
		t.Fatalf("SaveRecording failed: %v", err)
	}

	loaded, err := stor.GetFingerprint(id)
	if err != nil {
		t.Fatalf("GetFingerprint failed: %v", err)
	}

	verdict, err := svc.Verify(ctx, fp, loaded)
	if err != nil {
		t.Fatalf("Verify against stored fingerprint failed: %v", err)
	}
	if verdict.Status != model.StatusFullyVerified {
		t.Fatalf("status %s, expected FULLY_VERIFIED after storage round trip", verdict.Status)
	}

	recs, err := stor.ListRecordings()
	if err != nil {
		t.Fatalf("ListRecordings failed: %v", err)
	}
	if len(recs) != 1 || recs[0].Name != "tone" {
		t.Errorf("unexpected listing: %+v", recs)
	}
}

func TestServiceTamperDetection(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	sr := 22050

	samples := sineWave(440, 30, sr)
	reference, err := svc.FingerprintSamples(ctx, samples, sr)
	if err != nil {
		t.Fatalf("reference fingerprint failed: %v", err)
	}

	tampered := append([]float64(nil), samples...)
	// Replace [10s,15s) with deterministic noise.
	replacement := make([]float64, 5*sr)
	state := uint64(1234)
	for i := range replacement {
		state = state*6364136223846793005 + 1442695040888963407
		replacement[i] = float64(int64(state>>11))/float64(1<<52) - 1
	}
	copy(tampered[10*sr:15*sr], replacement)

	candidate, err := svc.FingerprintSamples(ctx, tampered, sr)
	if err != nil {
		t.Fatalf("candidate fingerprint failed: %v", err)
	}

	verdict, err := svc.Verify(ctx, candidate, reference)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if verdict.Status != model.StatusTampered {
		t.Fatalf("status %s, expected TAMPERED", verdict.Status)
	}
	if len(verdict.TamperedRegions) != 1 {
		t.Fatalf("expected 1 tampered region, got %d", len(verdict.TamperedRegions))
	}
	r := verdict.TamperedRegions[0]
	if r.StartTime != 10 || r.EndTime != 15 {
		t.Errorf("tampered region [%.1f,%.1f], expected [10,15]", r.StartTime, r.EndTime)
	}
}
