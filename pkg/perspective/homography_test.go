package perspective

import (
	"errors"
	"math"
	"testing"
)

func TestNewHomographyMapsCorners(t *testing.T) {
	dst := square(0.2, 0.8)
	h, err := NewHomography(skewedSource, dst)
	if err != nil {
		t.Fatalf("NewHomography() error = %v", err)
	}

	src := skewedSource.Corners()
	want := dst.Corners()
	for i := range src {
		got, err := h.Apply(src[i])
		if err != nil {
			t.Fatalf("Apply(%v) error = %v", src[i], err)
		}
		if math.Abs(got.X-want[i].X) > 1e-9 || math.Abs(got.Y-want[i].Y) > 1e-9 {
			t.Errorf("Apply(%v) = %v, want %v", src[i], got, want[i])
		}
	}
}

func TestSolveHomography(t *testing.T) {
	tests := []struct {
		name        string
		source      Quadrilateral
		destination Quadrilateral
		want        Quadrilateral
	}{
		{"scaling", square(0.1, 0.9), square(0.3, 0.7), square(0.25, 0.75)},
		{"identity square", square(0.1, 0.9), square(0.1, 0.9), UnitSquare()},
		{"identity skewed", skewedSource, skewedSource, UnitSquare()},
		{"translation", square(0.1, 0.5), square(0.3, 0.7), Quad(Pt(0.2, 0.2), Pt(1.2, 0.2), Pt(1.2, 1.2), Pt(0.2, 1.2))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SolveHomography(tt.source, tt.destination)
			if err != nil {
				t.Fatalf("SolveHomography() error = %v", err)
			}
			if !got.ApproxEqual(tt.want, tolerance) {
				t.Errorf("SolveHomography() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSolveHomographyRejectsDegenerate(t *testing.T) {
	colinear := Quad(Pt(0.1, 0.1), Pt(0.5, 0.1), Pt(0.9, 0.1), Pt(0.1, 0.9))
	if _, err := SolveHomography(colinear, square(0.2, 0.8)); !errors.Is(err, ErrDegenerateInput) {
		t.Errorf("SolveHomography() error = %v, want %v", err, ErrDegenerateInput)
	}
}

func TestHomographyApplyAtInfinity(t *testing.T) {
	h := Homography{1, 0, 0, 0, 1, 0, -1, 0, 1}
	if _, err := h.Apply(Pt(1, 0.5)); !errors.Is(err, ErrDegenerateInput) {
		t.Errorf("Apply() error = %v, want %v", err, ErrDegenerateInput)
	}
}
