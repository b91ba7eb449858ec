package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/veriwave/veriwave/pkg/veriwave/model"
)

func setupTestDB(t *testing.T) *DBClient {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test_veriwave.sqlite3")
	db, err := NewDBClientWithPath(dbPath)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testFingerprint() *model.Fingerprint {
	return &model.Fingerprint{
		FullFeatures: []float64{0.1, 0.2, 0.3},
		Segments: []model.Segment{
			{StartTime: 0, EndTime: 5, Duration: 5, Features: []float64{0.4, 0.5}, ExactDigest: "abc", IndustryFingerprint: "cp1:AAAA"},
			{StartTime: 5, EndTime: 10, Duration: 5, Features: []float64{0.6, 0.7}, ExactDigest: "def"},
		},
		Duration:        10,
		SampleRate:      22050,
		SchemaVersion:   1,
		IndustryVersion: "cp1",
	}
}

func TestSaveAndGetRecording(t *testing.T) {
	db := setupTestDB(t)
	fp := testFingerprint()

	id, err := db.SaveRecording("meeting", fp)
	if err != nil {
		t.Fatalf("SaveRecording failed: %v", err)
	}
	if id == "" {
		t.Fatal("empty recording ID")
	}

	got, err := db.GetFingerprint(id)
	if err != nil {
		t.Fatalf("GetFingerprint failed: %v", err)
	}
	if len(got.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(got.Segments))
	}
	if got.Segments[0].ExactDigest != "abc" || got.Segments[1].ExactDigest != "def" {
		t.Error("segment digests did not survive the round trip")
	}
	if got.SchemaVersion != fp.SchemaVersion || got.IndustryVersion != fp.IndustryVersion {
		t.Error("version fields did not survive the round trip")
	}
	if got.Segments[0].Features[0] != 0.4 {
		t.Error("segment features did not survive the round trip")
	}

	byName, err := db.GetFingerprintByName("meeting")
	if err != nil {
		t.Fatalf("GetFingerprintByName failed: %v", err)
	}
	if byName.Duration != fp.Duration {
		t.Error("lookup by name returned a different fingerprint")
	}
}

func TestSaveRecordingReplacesByName(t *testing.T) {
	db := setupTestDB(t)

	first, err := db.SaveRecording("meeting", testFingerprint())
	if err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	updated := testFingerprint()
	updated.Duration = 42
	second, err := db.SaveRecording("meeting", updated)
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if first != second {
		t.Errorf("replacing a recording changed its ID: %s vs %s", first, second)
	}

	got, err := db.GetFingerprint(first)
	if err != nil {
		t.Fatalf("GetFingerprint failed: %v", err)
	}
	if got.Duration != 42 {
		t.Errorf("fingerprint not replaced: duration %f", got.Duration)
	}

	recs, err := db.ListRecordings()
	if err != nil {
		t.Fatalf("ListRecordings failed: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("expected 1 recording after replace, got %d", len(recs))
	}
}

func TestListRecordings(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.SaveRecording("one", testFingerprint()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := db.SaveRecording("two", testFingerprint()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	recs, err := db.ListRecordings()
	if err != nil {
		t.Fatalf("ListRecordings failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 recordings, got %d", len(recs))
	}
	for _, r := range recs {
		if r.ID == "" || r.Name == "" {
			t.Errorf("incomplete listing entry: %+v", r)
		}
		if r.DurationMs != 10000 {
			t.Errorf("duration %dms, expected 10000", r.DurationMs)
		}
	}
}

func TestDeleteRecording(t *testing.T) {
	db := setupTestDB(t)

	id, err := db.SaveRecording("meeting", testFingerprint())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := db.DeleteRecording(id); err != nil {
		t.Fatalf("DeleteRecording failed: %v", err)
	}

	if _, err := db.GetFingerprint(id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := db.DeleteRecording(id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for double delete, got %v", err)
	}
}

func TestGetFingerprintNotFound(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.GetFingerprint("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
