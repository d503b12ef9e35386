// Package similarity scores embedding vectors against each other.
package similarity

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/smartdoc/internal/domain"
)

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Vectors of different length are rejected; a zero-magnitude vector scores 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine %d vs %d: %w", len(a), len(b), domain.ErrVectorDimMismatch)
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}

	s := dot / (math.Sqrt(na) * math.Sqrt(nb))
	switch {
	case s > 1:
		return 1, nil
	case s < -1:
		return -1, nil
	}
	return s, nil
}
