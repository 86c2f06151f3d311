package vector

import (
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/innoreg/internal/domain"
)

func TestCosine_Symmetry(t *testing.T) {
	a := []float32{0.3, -1.2, 4.5, 0.01}
	b := []float32{2.2, 0.7, -0.4, 1.9}

	ab, err := Cosine(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ba, err := Cosine(b, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(ab-ba) > 1e-12 {
		t.Errorf("cosine not symmetric: %v vs %v", ab, ba)
	}
}

func TestCosine_SelfSimilarity(t *testing.T) {
	a := []float32{1.5, -2.5, 0.25}
	got, err := Cosine(a, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-1) > 1e-9 {
		t.Errorf("expected self-similarity ~1, got %v", got)
	}
}

func TestCosine_ZeroVector(t *testing.T) {
	zero := []float32{0, 0, 0}
	other := []float32{1, 2, 3}

	got, err := Cosine(zero, other)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("expected 0 for zero vector, got %v", got)
	}
	if math.IsNaN(got) {
		t.Error("zero vector produced NaN")
	}

	got, err = Cosine(zero, zero)
	if err != nil || got != 0 {
		t.Errorf("expected (0, nil) for zero/zero, got (%v, %v)", got, err)
	}
}

func TestCosine_DimMismatch(t *testing.T) {
	_, err := Cosine([]float32{1, 2}, []float32{1, 2, 3})
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
}

func TestCosine_Orthogonal(t *testing.T) {
	got, err := Cosine([]float32{1, 0}, []float32{0, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got) > 1e-12 {
		t.Errorf("expected 0 for orthogonal vectors, got %v", got)
	}
}
