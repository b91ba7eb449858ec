// Package industry wraps an external, proven compact-fingerprint algorithm as
// a third, independent verification signal. The algorithm is a black box: it
// produces an opaque encoded string per segment and a similarity estimate
// between two such strings.
package industry

import (
	"context"
	"errors"
)

// Fingerprinter is the adapter boundary. Implementations must degrade
// gracefully: Available is queried once per run, and an unavailable adapter
// simply removes the industry vote from match decisions.
type Fingerprinter interface {
	// Available reports whether the external algorithm can be invoked.
	Available() bool
	// Version identifies the algorithm and encoding. Fingerprints produced
	// by different versions must not be compared.
	Version() string
	// Fingerprint returns the opaque encoded fingerprint of the samples.
	Fingerprint(ctx context.Context, samples []float64, sampleRate int) (string, error)
	// Compare returns a similarity in [0,1] between two encoded fingerprints.
	Compare(a, b string) (float64, error)
}

// ErrUnavailable is returned when the external algorithm cannot be invoked.
var ErrUnavailable = errors.New("industry fingerprint algorithm unavailable")

// ErrVersionMismatch is returned when two fingerprints were produced by
// incompatible algorithm versions or encodings.
var ErrVersionMismatch = errors.New("industry fingerprint version mismatch")
