package perspective

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Homography is a 3x3 projective transform in row-major order with H[8] = 1.
type Homography [9]float64

// NewHomography solves the 8-equation system mapping each corner of from onto
// the matching corner of to.
func NewHomography(from, to Quadrilateral) (Homography, error) {
	src, dst := from.Corners(), to.Corners()

	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := range src {
		X, Y := src[i].X, src[i].Y
		x, y := dst[i].X, dst[i].Y
		r := 2 * i

		// x' = (h0 X + h1 Y + h2) / (h6 X + h7 Y + 1)
		a.SetRow(r, []float64{X, Y, 1, 0, 0, 0, -X * x, -Y * x})
		b.SetVec(r, x)

		// y' = (h3 X + h4 Y + h5) / (h6 X + h7 Y + 1)
		a.SetRow(r+1, []float64{0, 0, 0, X, Y, 1, -X * y, -Y * y})
		b.SetVec(r+1, y)
	}

	var h mat.VecDense
	if err := h.SolveVec(a, b); err != nil {
		return Homography{}, fmt.Errorf("homography system: %v: %w", err, ErrDegenerateInput)
	}

	var out Homography
	for i := 0; i < 8; i++ {
		out[i] = h.AtVec(i)
	}
	out[8] = 1
	return out, nil
}

// Apply maps p through the homography. Points sent to infinity are reported
// as ErrDegenerateInput.
func (h Homography) Apply(p Coordinate) (Coordinate, error) {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if math.Abs(w) < Epsilon {
		return Coordinate{}, fmt.Errorf("point %v maps to infinity: %w", p, ErrDegenerateInput)
	}
	return Coordinate{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}, nil
}

// SolveHomography is the exact alternative to Solve: it returns the frame
// corners pushed through the homography taking source onto destination.
func SolveHomography(source, destination Quadrilateral) (Quadrilateral, error) {
	if err := source.Validate(); err != nil {
		return Quadrilateral{}, fmt.Errorf("source: %w", err)
	}
	if err := destination.Validate(); err != nil {
		return Quadrilateral{}, fmt.Errorf("destination: %w", err)
	}

	h, err := NewHomography(source, destination)
	if err != nil {
		return Quadrilateral{}, err
	}

	var corners [4]Coordinate
	for i, c := range UnitSquare().Corners() {
		corners[i], err = h.Apply(c)
		if err != nil {
			return Quadrilateral{}, err
		}
	}

	return Quad(corners[0], corners[1], corners[2], corners[3]), nil
}
