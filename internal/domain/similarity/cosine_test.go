package similarity

import (
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/smartdoc/internal/domain"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"scaled", []float32{1, 1}, []float32{5, 5}, 1},
		{"zero left", []float32{0, 0}, []float32{1, 1}, 0},
		{"zero both", []float32{0, 0}, []float32{0, 0}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cosine(tt.a, tt.b)
			if err != nil {
				t.Fatalf("Cosine: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosine_Symmetric(t *testing.T) {
	a := []float32{0.3, -0.7, 0.2, 0.9}
	b := []float32{-0.1, 0.4, 0.8, 0.05}

	ab, err := Cosine(a, b)
	if err != nil {
		t.Fatal(err)
	}
	ba, err := Cosine(b, a)
	if err != nil {
		t.Fatal(err)
	}
	if ab != ba {
		t.Errorf("Cosine(a, b) = %v, Cosine(b, a) = %v", ab, ba)
	}
	if ab < -1 || ab > 1 {
		t.Errorf("Cosine = %v, outside [-1, 1]", ab)
	}
}

func TestCosine_DimensionMismatch(t *testing.T) {
	if _, err := Cosine([]float32{1, 2, 3}, []float32{1, 2}); !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Errorf("expected ErrVectorDimMismatch, got %v", err)
	}
}
