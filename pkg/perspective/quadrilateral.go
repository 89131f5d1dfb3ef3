package perspective

import (
	"fmt"
	"math"
)

// Quadrilateral is a region given by four named corners in clockwise order
// starting at the top-left:
//
//	A ---- B
//	|      |
//	D ---- C
//
// The same winding applies to source, destination and projected quads.
type Quadrilateral struct {
	A, B, C, D Coordinate
}

// Quad builds a Quadrilateral from corners in A, B, C, D order.
func Quad(a, b, c, d Coordinate) Quadrilateral {
	return Quadrilateral{A: a, B: b, C: c, D: d}
}

// UnitSquare is the full normalized frame.
func UnitSquare() Quadrilateral {
	return Quadrilateral{A: Pt(0, 0), B: Pt(1, 0), C: Pt(1, 1), D: Pt(0, 1)}
}

// Corners returns the corners in winding order.
func (q Quadrilateral) Corners() [4]Coordinate {
	return [4]Coordinate{q.A, q.B, q.C, q.D}
}

// Validate rejects quads the solver cannot work with.
func (q Quadrilateral) Validate() error {
	corners := q.Corners()
	names := [4]string{"A", "B", "C", "D"}

	for i, c := range corners {
		if !c.IsFinite() {
			return fmt.Errorf("corner %s is not finite: %w", names[i], ErrDegenerateInput)
		}
	}

	for i := range corners {
		prev := corners[(i+3)%4]
		cur := corners[i]
		next := corners[(i+1)%4]

		if cur.Distance(next) < Epsilon {
			return fmt.Errorf("edge %s%s has zero length: %w", names[i], names[(i+1)%4], ErrDegenerateInput)
		}
		if math.Abs(cur.Sub(prev).Cross(next.Sub(cur))) < Epsilon {
			return fmt.Errorf("corners %s, %s, %s are colinear: %w",
				names[(i+3)%4], names[i], names[(i+1)%4], ErrDegenerateInput)
		}
	}

	return nil
}

// ApproxEqual reports whether every corner of q is within tol of o.
func (q Quadrilateral) ApproxEqual(o Quadrilateral, tol float64) bool {
	a, b := q.Corners(), o.Corners()
	for i := range a {
		if math.Abs(a[i].X-b[i].X) > tol || math.Abs(a[i].Y-b[i].Y) > tol {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the quad as [[x,y],[x,y],[x,y],[x,y]] in A, B, C, D order.
func (q Quadrilateral) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.Corners())
}

// UnmarshalJSON decodes exactly four coordinates in A, B, C, D order.
func (q *Quadrilateral) UnmarshalJSON(data []byte) error {
	var corners []Coordinate
	if err := json.Unmarshal(data, &corners); err != nil {
		return fmt.Errorf("invalid quadrilateral: %w", err)
	}
	if len(corners) != 4 {
		return fmt.Errorf("quadrilateral must have 4 corners, got %d", len(corners))
	}
	*q = Quad(corners[0], corners[1], corners[2], corners[3])
	return nil
}
