package veriwave

import (
	"context"

	"github.com/veriwave/veriwave/pkg/veriwave/model"
)

type Service interface {
	// FingerprintFile converts and fingerprints an audio file.
	FingerprintFile(ctx context.Context, audioPath string) (*model.Fingerprint, error)
	// FingerprintSamples fingerprints raw mono samples with fixed-duration
	// segmentation.
	FingerprintSamples(ctx context.Context, samples []float64, sampleRate int) (*model.Fingerprint, error)
	// FingerprintRanges fingerprints raw mono samples over explicit
	// (start,end) second ranges.
	FingerprintRanges(ctx context.Context, samples []float64, sampleRate int, ranges [][2]float64) (*model.Fingerprint, error)
	// StoreRecording fingerprints an audio file and persists it as a named
	// reference; returns the recording ID.
	StoreRecording(ctx context.Context, audioPath, name string) (string, error)
	// Verify compares a candidate fingerprint against a reference fingerprint.
	Verify(ctx context.Context, candidate, reference *model.Fingerprint) (*model.VerificationVerdict, error)
	// VerifyFile fingerprints an audio file and verifies it against the stored
	// recording with the given ID.
	VerifyFile(ctx context.Context, audioPath, recordingID string) (*model.VerificationVerdict, error)
	GetFingerprint(recordingID string) (*model.Fingerprint, error)
	ListRecordings() ([]model.Recording, error)
	DeleteRecording(recordingID string) error
	Close() error
}

type Storage interface {
	SaveRecording(name string, fp *model.Fingerprint) (string, error)
	GetFingerprint(id string) (*model.Fingerprint, error)
	GetFingerprintByName(name string) (*model.Fingerprint, error)
	ListRecordings() ([]model.Recording, error)
	DeleteRecording(id string) error
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
