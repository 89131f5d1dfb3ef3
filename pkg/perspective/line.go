package perspective

import (
	"fmt"
	"math"
)

// Epsilon bounds the determinants and cross products treated as zero.
const Epsilon = 1e-9

// Line is the infinite line through two points.
type Line struct {
	P, Q Coordinate
}

// LineThrough returns the line through p and q.
func LineThrough(p, q Coordinate) Line {
	return Line{P: p, Q: q}
}

// Coefficients returns a, b, c such that a*x + b*y + c = 0 on the line.
func (l Line) Coefficients() (a, b, c float64) {
	a = l.Q.Y - l.P.Y
	b = l.P.X - l.Q.X
	c = (l.Q.X-l.P.X)*l.P.Y - (l.Q.Y-l.P.Y)*l.P.X
	return a, b, c
}

// AtX evaluates the line at the given x. Vertical lines have no single answer
// and yield ErrDegenerateInput.
func (l Line) AtX(x float64) (Coordinate, error) {
	dx := l.Q.X - l.P.X
	if math.Abs(dx) < Epsilon {
		return Coordinate{}, fmt.Errorf("line %v-%v is vertical: %w", l.P, l.Q, ErrDegenerateInput)
	}
	return Coordinate{X: x, Y: (x-l.P.X)*(l.Q.Y-l.P.Y)/dx + l.P.Y}, nil
}

// AtY evaluates the line at the given y. Horizontal lines yield ErrDegenerateInput.
func (l Line) AtY(y float64) (Coordinate, error) {
	dy := l.Q.Y - l.P.Y
	if math.Abs(dy) < Epsilon {
		return Coordinate{}, fmt.Errorf("line %v-%v is horizontal: %w", l.P, l.Q, ErrDegenerateInput)
	}
	return Coordinate{X: (y-l.P.Y)*(l.Q.X-l.P.X)/dy + l.P.X, Y: y}, nil
}

// Intersect returns the point where l and o cross.
func (l Line) Intersect(o Line) (Coordinate, error) {
	a1, b1, c1 := l.Coefficients()
	a2, b2, c2 := o.Coefficients()

	d := a1*b2 - a2*b1
	if math.Abs(d) < Epsilon {
		return Coordinate{}, ErrParallelLines
	}

	return Coordinate{
		X: (b1*c2 - b2*c1) / d,
		Y: (a2*c1 - a1*c2) / d,
	}, nil
}
