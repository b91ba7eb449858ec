// Package veriwave authenticates audio recordings: it builds segmented
// fingerprints from reference recordings and verifies candidate recordings
// against them using exact digests, an industry fingerprint adapter, and
// perceptual feature similarity.
package veriwave

import (
	"context"
	"fmt"

	"github.com/veriwave/veriwave/pkg/logger"
	"github.com/veriwave/veriwave/pkg/veriwave/audio"
	"github.com/veriwave/veriwave/pkg/veriwave/industry"
	"github.com/veriwave/veriwave/pkg/veriwave/model"
	"github.com/veriwave/veriwave/pkg/veriwave/segment"
	"github.com/veriwave/veriwave/pkg/veriwave/verify"
)

// veriwaveService is the default implementation of the Service interface.
type veriwaveService struct {
	storage   Storage
	log       Logger
	config    *Config
	segmenter *segment.Segmenter
	matcher   *verify.Matcher
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}
	if cfg.Industry == nil {
		cfg.Industry = industry.NewChromaprint()
	}

	var stor Storage
	var err error
	if cfg.Storage != nil {
		stor = cfg.Storage
	} else {
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	seg := segment.New(segment.Config{
		SegmentDuration: cfg.SegmentDuration,
		Workers:         cfg.Workers,
		IndustryTimeout: cfg.IndustryTimeout,
	}, cfg.Industry, cfg.Logger)

	return &veriwaveService{
		storage:   stor,
		log:       cfg.Logger,
		config:    cfg,
		segmenter: seg,
		matcher:   verify.NewMatcher(cfg.Industry, cfg.Workers, cfg.Logger),
	}, nil
}

// FingerprintFile converts an audio file to mono WAV at the configured
// sample rate, then fingerprints it with fixed-duration segmentation.
func (s *veriwaveService) FingerprintFile(ctx context.Context, audioPath string) (*model.Fingerprint, error) {
	samples, sampleRate, err := s.loadFile(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	return s.FingerprintSamples(ctx, samples, sampleRate)
}

func (s *veriwaveService) FingerprintSamples(ctx context.Context, samples []float64, sampleRate int) (*model.Fingerprint, error) {
	fp, err := s.segmenter.Build(ctx, samples, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("building fingerprint: %w", err)
	}
	s.log.Infof("Fingerprinted %.1fs of audio into %d segments", fp.Duration, len(fp.Segments))
	return fp, nil
}

func (s *veriwaveService) FingerprintRanges(ctx context.Context, samples []float64, sampleRate int, ranges [][2]float64) (*model.Fingerprint, error) {
	fp, err := s.segmenter.BuildRanges(ctx, samples, sampleRate, ranges)
	if err != nil {
		return nil, fmt.Errorf("building fingerprint: %w", err)
	}
	s.log.Infof("Fingerprinted %.1fs of audio into %d custom segments", fp.Duration, len(fp.Segments))
	return fp, nil
}

// StoreRecording fingerprints an audio file and persists it under a name.
func (s *veriwaveService) StoreRecording(ctx context.Context, audioPath, name string) (string, error) {
	s.log.Infof("Storing reference recording %q from %s", name, audioPath)

	fp, err := s.FingerprintFile(ctx, audioPath)
	if err != nil {
		return "", err
	}

	id, err := s.storage.SaveRecording(name, fp)
	if err != nil {
		return "", fmt.Errorf("persisting recording: %w", err)
	}
	s.log.Infof("Stored recording %q as %s", name, id)
	return id, nil
}

// Verify compares a candidate fingerprint against a reference fingerprint
// and aggregates the per-segment results into a verdict.
func (s *veriwaveService) Verify(ctx context.Context, candidate, reference *model.Fingerprint) (*model.VerificationVerdict, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := s.matcher.Match(candidate, reference)
	if err != nil {
		return nil, fmt.Errorf("matching segments: %w", err)
	}
	verdict := verify.Aggregate(res)

	if !verdict.IndustryUsed {
		s.log.Warnf("Industry fingerprint vote did not participate in this verification")
	}
	s.log.Infof("Verdict %s: %d/%d segments valid, %d tampered, %d missing, %d extra",
		verdict.Status, verdict.ValidSegments, verdict.TotalSegments,
		verdict.TamperedSegments, verdict.MissingSegments, verdict.ExtraSegments)
	return verdict, nil
}

// VerifyFile fingerprints a candidate audio file and verifies it against a
// stored reference recording.
func (s *veriwaveService) VerifyFile(ctx context.Context, audioPath, recordingID string) (*model.VerificationVerdict, error) {
	reference, err := s.storage.GetFingerprint(recordingID)
	if err != nil {
		return nil, fmt.Errorf("loading reference %s: %w", recordingID, err)
	}

	candidate, err := s.FingerprintFile(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	return s.Verify(ctx, candidate, reference)
}

func (s *veriwaveService) GetFingerprint(recordingID string) (*model.Fingerprint, error) {
	return s.storage.GetFingerprint(recordingID)
}

func (s *veriwaveService) ListRecordings() ([]model.Recording, error) {
	return s.storage.ListRecordings()
}

func (s *veriwaveService) DeleteRecording(recordingID string) error {
	return s.storage.DeleteRecording(recordingID)
}

func (s *veriwaveService) Close() error {
	return s.storage.Close()
}

// loadFile converts an arbitrary audio file to analysis form and reads it
// back as mono float64 samples.
func (s *veriwaveService) loadFile(ctx context.Context, audioPath string) ([]float64, int, error) {
	wavPath, err := audio.ConvertToMonoWAV(ctx, audioPath, s.config.TempDir, audio.ConvertWAVConfig{
		SampleRate: s.config.SampleRate,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("audio conversion failed: %w", err)
	}

	samples, sampleRate, err := audio.ReadWavAsFloat64(wavPath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read WAV file: %w", err)
	}
	return samples, sampleRate, nil
}
