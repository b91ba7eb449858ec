package industry

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// chromaprintVersion prefixes every encoded fingerprint. Bump when the
// invocation or encoding changes.
const chromaprintVersion = "cp1"

// DefaultTimeout bounds one fpcalc invocation so a stalled external call
// cannot block unrelated segments.
const DefaultTimeout = 15 * time.Second

// Chromaprint invokes the fpcalc binary (the Chromaprint reference client)
// and encodes its raw 32-bit sub-fingerprints as a compact opaque string.
type Chromaprint struct {
	// TempDir holds the intermediate WAV files fpcalc reads. Defaults to the
	// system temp dir.
	TempDir string
	// Timeout bounds one fpcalc invocation. Defaults to DefaultTimeout.
	Timeout time.Duration

	lookupOnce sync.Once
	available  bool
}

// NewChromaprint returns a Chromaprint adapter with default settings.
func NewChromaprint() *Chromaprint {
	return &Chromaprint{}
}

// Available probes for the fpcalc binary once and caches the result.
func (c *Chromaprint) Available() bool {
	c.lookupOnce.Do(func() {
		_, err := exec.LookPath("fpcalc")
		c.available = err == nil
	})
	return c.available
}

// Version identifies the adapter's algorithm and encoding.
func (c *Chromaprint) Version() string {
	return chromaprintVersion
}

// Fingerprint writes the samples to a temporary WAV file, runs fpcalc on it,
// and returns the encoded raw fingerprint.
func (c *Chromaprint) Fingerprint(ctx context.Context, samples []float64, sampleRate int) (string, error) {
	if !c.Available() {
		return "", ErrUnavailable
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	wavPath, err := c.writeTempWAV(samples, sampleRate)
	if err != nil {
		return "", fmt.Errorf("writing fpcalc input: %w", err)
	}
	defer os.Remove(wavPath)

	cmd := exec.CommandContext(ctx, "fpcalc", "-raw", "-plain", wavPath)
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("fpcalc: %w", ctx.Err())
		}
		return "", fmt.Errorf("fpcalc: %w", err)
	}

	raw, err := parseRawFingerprint(string(out))
	if err != nil {
		return "", err
	}
	return Encode(raw), nil
}

// Compare decodes both fingerprints and computes a true bitwise similarity
// over the underlying 32-bit sub-fingerprints. When either side cannot be
// decoded it falls back to a normalized edit distance on the encoded strings;
// that fallback is a documented approximation of the bit-level comparison and
// carries no cryptographic meaning.
func (c *Chromaprint) Compare(a, b string) (float64, error) {
	return Similarity(a, b)
}

func (c *Chromaprint) writeTempWAV(samples []float64, sampleRate int) (string, error) {
	dir := c.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, "veriwave-fp-*.wav")
	if err != nil {
		return "", err
	}
	path := f.Name()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, len(samples)),
	}
	for i, s := range samples {
		v := int(s * 32767.0)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		buf.Data[i] = v
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := enc.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return filepath.Clean(path), nil
}

func parseRawFingerprint(output string) ([]uint32, error) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// -plain emits the bare value; older fpcalc prefixes FINGERPRINT=.
		line = strings.TrimPrefix(line, "FINGERPRINT=")
		parts := strings.Split(line, ",")
		raw := make([]uint32, 0, len(parts))
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parsing fpcalc output: %w", err)
			}
			raw = append(raw, uint32(v))
		}
		if len(raw) > 0 {
			return raw, nil
		}
	}
	return nil, fmt.Errorf("fpcalc produced no fingerprint")
}

// Encode packs raw 32-bit sub-fingerprints into the opaque transport form:
// a version prefix plus base64 of the big-endian words.
func Encode(raw []uint32) string {
	payload := make([]byte, 4*len(raw))
	for i, v := range raw {
		binary.BigEndian.PutUint32(payload[4*i:], v)
	}
	return chromaprintVersion + ":" + base64.StdEncoding.EncodeToString(payload)
}

// Decode reverses Encode. It returns ErrVersionMismatch when the prefix names
// a different encoding version.
func Decode(s string) ([]uint32, error) {
	version, payload, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("fingerprint has no version prefix")
	}
	if version != chromaprintVersion {
		return nil, fmt.Errorf("%w: %q vs %q", ErrVersionMismatch, version, chromaprintVersion)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding fingerprint payload: %w", err)
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("fingerprint payload is not word-aligned")
	}
	raw := make([]uint32, len(data)/4)
	for i := range raw {
		raw[i] = binary.BigEndian.Uint32(data[4*i:])
	}
	return raw, nil
}

// Similarity compares two encoded fingerprints. Decodable inputs get a true
// hamming similarity over the overlapping 32-bit words: 1 minus the bit error
// rate. Undecodable inputs fall back to a normalized edit distance over the
// encoded strings -- an imprecise proxy kept only for foreign encodings.
func Similarity(a, b string) (float64, error) {
	if a == "" || b == "" {
		return 0, ErrUnavailable
	}
	rawA, errA := Decode(a)
	rawB, errB := Decode(b)
	if errA != nil || errB != nil {
		if isVersionMismatch(errA) || isVersionMismatch(errB) {
			return 0, ErrVersionMismatch
		}
		return editDistanceSimilarity(a, b), nil
	}
	return hammingSimilarity(rawA, rawB), nil
}

func isVersionMismatch(err error) bool {
	return errors.Is(err, ErrVersionMismatch)
}

func hammingSimilarity(a, b []uint32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	var bitErrors int
	for i := 0; i < n; i++ {
		bitErrors += bits.OnesCount32(a[i] ^ b[i])
	}
	return 1.0 - float64(bitErrors)/float64(32*n)
}

// editDistanceSimilarity is the legacy string-level approximation: 1 minus
// the Levenshtein distance normalized by the longer length.
func editDistanceSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len(a), len(b)
	longer := la
	if lb > longer {
		longer = lb
	}
	if longer == 0 {
		return 0
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return 1.0 - float64(prev[lb])/float64(longer)
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
