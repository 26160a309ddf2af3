package vector

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{1, 0, 0}
	if got := CosineSimilarity(a, b); math.Abs(float64(got-1)) > 1e-4 {
		t.Errorf("identical vectors: got %f, want 1", got)
	}

	c := []float32{0, 1, 0}
	if got := CosineSimilarity(a, c); math.Abs(float64(got)) > 1e-4 {
		t.Errorf("orthogonal vectors: got %f, want 0", got)
	}

	if got := CosineSimilarity(a, []float32{1, 0}); got != 0 {
		t.Errorf("mismatched dimensions: got %f, want 0", got)
	}
}

func TestCosineDistanceNonNegative(t *testing.T) {
	a := []float32{0.3, 0.7, 0.2}
	if got := CosineDistance(a, a); got < 0 {
		t.Errorf("self distance negative: %f", got)
	}
	opposite := []float32{-0.3, -0.7, -0.2}
	if got := CosineDistance(a, opposite); got < 1.9 {
		t.Errorf("opposite vectors: got %f, want ~2", got)
	}
}

func TestNormalize(t *testing.T) {
	v := Normalize([]float32{3, 4})
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if math.Abs(sum-1) > 1e-4 {
		t.Errorf("norm after Normalize = %f, want 1", math.Sqrt(sum))
	}

	zero := Normalize([]float32{0, 0})
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector changed: %v", zero)
	}
}
