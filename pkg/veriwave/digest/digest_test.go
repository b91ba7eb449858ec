package digest

import "testing"

func TestComputeDeterminism(t *testing.T) {
	samples := []float64{0.1, -0.5, 0.25, 0.0, 0.999}

	first := Compute(samples)
	second := Compute(samples)
	if first != second {
		t.Fatalf("digest not deterministic: %s vs %s", first, second)
	}
	if len(first) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(first))
	}
}

func TestComputeSensitivity(t *testing.T) {
	samples := []float64{0.1, -0.5, 0.25, 0.0, 0.999}
	base := Compute(samples)

	altered := append([]float64(nil), samples...)
	altered[2] += 1e-15
	if Compute(altered) == base {
		t.Error("smallest representable change did not alter the digest")
	}

	truncated := samples[:len(samples)-1]
	if Compute(truncated) == base {
		t.Error("truncation did not alter the digest")
	}
}

func TestEqual(t *testing.T) {
	a := Compute([]float64{1, 2, 3})
	b := Compute([]float64{1, 2, 3})
	c := Compute([]float64{1, 2, 4})

	if !Equal(a, b) {
		t.Error("identical digests reported unequal")
	}
	if Equal(a, c) {
		t.Error("different digests reported equal")
	}
	if Equal("", "") {
		t.Error("empty digests must never be equal")
	}
}
