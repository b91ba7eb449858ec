package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// DefaultSampleRate is the analysis sample rate recordings are converted to.
const DefaultSampleRate = 22050

type ConvertWAVConfig struct {
	SampleRate int
}

// ConvertToMonoWAV transcodes any ffmpeg-readable input into a mono 16-bit
// PCM WAV at the configured sample rate and returns the output path.
func ConvertToMonoWAV(ctx context.Context, inputPath, outputDir string, cfg ConvertWAVConfig) (string, error) {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 60*time.Second)
		defer cancel()
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	base := filepath.Base(inputPath)
	ext := filepath.Ext(base)
	outputPath := filepath.Join(outputDir, base[:len(base)-len(ext)]+".wav")

	tmpPath := outputPath + ".tmp.wav"
	defer os.Remove(tmpPath)

	cmd := exec.CommandContext(
		ctx,
		"ffmpeg",
		"-y",
		"-v", "quiet",
		"-i", inputPath,
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", cfg.SampleRate),
		"-c:a", "pcm_s16le",
		tmpPath,
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ffmpeg failed: %v (%s)", err, out)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		return "", fmt.Errorf("moving converted wav: %w", err)
	}

	return outputPath, nil
}
