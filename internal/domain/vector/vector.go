// Package vector provides pure numeric helpers for embedding vectors.
package vector

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/innoreg/internal/domain"
)

// Cosine returns the cosine similarity dot(a,b)/(|a|*|b|) of two
// equal-length vectors. Unequal lengths are a data-shape bug and fail
// with domain.ErrVectorDimMismatch. If either norm is zero the result
// is 0 ("no similarity"), never NaN.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine: %d vs %d: %w", len(a), len(b), domain.ErrVectorDimMismatch)
	}

	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
