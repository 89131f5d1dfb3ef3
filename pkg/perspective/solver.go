package perspective

import "fmt"

// Method selects how Solve derives the projected corners.
type Method string

const (
	// MethodExtrapolate is the line-intersection / colinear-ratio method.
	MethodExtrapolate Method = "extrapolate"
	// MethodHomography pushes the frame corners through an exact 4-point homography.
	MethodHomography Method = "homography"
)

// DefaultMethod is used when no method is requested.
const DefaultMethod = MethodExtrapolate

// Valid reports whether m names a known method.
func (m Method) Valid() bool {
	return m == MethodExtrapolate || m == MethodHomography
}

// Correspondence is one solved calibration: the two input quads and the
// projected corners derived from them.
type Correspondence struct {
	Source      Quadrilateral `json:"source"`
	Destination Quadrilateral `json:"destination"`
	Projected   Quadrilateral `json:"projected"`
	Method      Method        `json:"method"`
}

// NewCorrespondence solves source against destination with the given method.
func NewCorrespondence(method Method, source, destination Quadrilateral) (*Correspondence, error) {
	if method == "" {
		method = DefaultMethod
	}

	projected, err := SolveWith(method, source, destination)
	if err != nil {
		return nil, err
	}

	return &Correspondence{
		Source:      source,
		Destination: destination,
		Projected:   projected,
		Method:      method,
	}, nil
}

// SolveWith dispatches to Solve or SolveHomography.
func SolveWith(method Method, source, destination Quadrilateral) (Quadrilateral, error) {
	switch method {
	case MethodExtrapolate, "":
		return Solve(source, destination)
	case MethodHomography:
		return SolveHomography(source, destination)
	default:
		return Quadrilateral{}, fmt.Errorf("%q: %w", method, ErrUnknownMethod)
	}
}

// Solve computes the projected corners for a source quad marked in one frame
// and the destination quad it should land on.
//
// Each source edge is extended to the frame boundary, the eight boundary
// crossings are carried into destination space by colinear-ratio
// extrapolation, and the four destination lines they form are intersected:
//
//	c1 i1 i2 c2
//	i8 A  B  i3
//	i7 D  C  i4
//	c4 i6 i5 c3
//
// The result approximates a projective correction. It is exact when the two
// quads differ by an affine stretch along each edge direction.
func Solve(source, destination Quadrilateral) (Quadrilateral, error) {
	if err := source.Validate(); err != nil {
		return Quadrilateral{}, fmt.Errorf("source: %w", err)
	}
	if err := destination.Validate(); err != nil {
		return Quadrilateral{}, fmt.Errorf("destination: %w", err)
	}

	sa, sb, sc, sd := source.A, source.B, source.C, source.D
	da, db, dc, dd := destination.A, destination.B, destination.C, destination.D

	top := LineThrough(sa, sb)
	bottom := LineThrough(sd, sc)
	left := LineThrough(sa, sd)
	right := LineThrough(sb, sc)

	var (
		crossings [8]Coordinate
		err       error
	)
	evals := [8]struct {
		line Line
		atX  bool
		v    float64
	}{
		{top, true, 0}, {top, true, 1},
		{bottom, true, 0}, {bottom, true, 1},
		{left, false, 0}, {left, false, 1},
		{right, false, 0}, {right, false, 1},
	}
	for i, e := range evals {
		if e.atX {
			crossings[i], err = e.line.AtX(e.v)
		} else {
			crossings[i], err = e.line.AtY(e.v)
		}
		if err != nil {
			return Quadrilateral{}, fmt.Errorf("source: %w", err)
		}
	}
	i8, i3, i7, i4 := crossings[0], crossings[1], crossings[2], crossings[3]
	i1, i6, i2, i5 := crossings[4], crossings[5], crossings[6], crossings[7]

	steps := [8]struct {
		s1, d1, s2, d2, s3 Coordinate
	}{
		{sb, db, sa, da, i8},
		{sa, da, sb, db, i3},
		{sc, dc, sd, dd, i7},
		{sd, dd, sc, dc, i4},
		{sd, dd, sa, da, i1},
		{sa, da, sd, dd, i6},
		{sc, dc, sb, db, i2},
		{sb, db, sc, dc, i5},
	}
	var mapped [8]Coordinate
	for i, s := range steps {
		mapped[i], err = extrapolate(s.s1, s.d1, s.s2, s.d2, s.s3)
		if err != nil {
			return Quadrilateral{}, err
		}
	}
	d8, d3, d7, d4 := mapped[0], mapped[1], mapped[2], mapped[3]
	d1, d6, d2, d5 := mapped[4], mapped[5], mapped[6], mapped[7]

	topDest := LineThrough(d1, d2)
	bottomDest := LineThrough(d5, d6)
	leftDest := LineThrough(d7, d8)
	rightDest := LineThrough(d3, d4)

	pairs := [4][2]Line{
		{topDest, leftDest},
		{topDest, rightDest},
		{bottomDest, rightDest},
		{bottomDest, leftDest},
	}
	var corners [4]Coordinate
	for i, p := range pairs {
		corners[i], err = p[0].Intersect(p[1])
		if err != nil {
			return Quadrilateral{}, fmt.Errorf("projected corner %d: %w", i+1, err)
		}
		if !corners[i].IsFinite() {
			return Quadrilateral{}, fmt.Errorf("projected corner %d is not finite: %w", i+1, ErrDegenerateInput)
		}
	}

	return Quad(corners[0], corners[1], corners[2], corners[3]), nil
}

// extrapolate maps s3 into destination space given s1->d1 and s2->d2, with
// s1, s2, s3 colinear in that order. The scale along the line is assumed
// uniform.
func extrapolate(s1, d1, s2, d2, s3 Coordinate) (Coordinate, error) {
	srcLen := s1.Distance(s2)
	dstLen := d1.Distance(d2)
	if srcLen < Epsilon || dstLen < Epsilon {
		return Coordinate{}, fmt.Errorf("zero-length correspondence edge: %w", ErrDegenerateInput)
	}

	scale := dstLen / srcLen
	direction := d2.Sub(d1).Mul(1 / dstLen)
	return d2.Add(direction.Mul(scale * s3.Distance(s2))), nil
}
