package perspective

import (
	"fmt"
	"maps"
)

// Landmark is a detected pose point. Only X and Y are touched by remapping;
// everything else rides along in Attributes.
type Landmark struct {
	X, Y       float64
	Attributes map[string]interface{}
}

// Pose is an ordered sequence of landmarks.
type Pose []Landmark

// RemapPoint places a normalized point inside q by bilinear interpolation:
// first along the D-A and C-B edges by y, then between those by x.
//
//	A    B
//	h1 p h2
//	D    C
func RemapPoint(p Coordinate, q Quadrilateral) Coordinate {
	h1 := q.A.Lerp(q.D, p.Y)
	h2 := q.B.Lerp(q.C, p.Y)
	return h1.Lerp(h2, p.X)
}

// RemapPose remaps every landmark of pose. The result has the same length and
// order; attributes are copied unchanged and the input is not modified.
func RemapPose(pose Pose, q Quadrilateral) Pose {
	if pose == nil {
		return nil
	}

	out := make(Pose, len(pose))
	for i, lm := range pose {
		c := RemapPoint(Coordinate{X: lm.X, Y: lm.Y}, q)
		out[i] = Landmark{
			X:          c.X,
			Y:          c.Y,
			Attributes: maps.Clone(lm.Attributes),
		}
	}
	return out
}

// MarshalJSON writes the landmark as a flat object with x, y and every attribute.
func (l Landmark) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(l.Attributes)+2)
	for k, v := range l.Attributes {
		flat[k] = v
	}
	flat["x"] = l.X
	flat["y"] = l.Y
	return json.Marshal(flat)
}

// UnmarshalJSON reads a flat landmark object; keys other than x and y are kept
// in Attributes.
func (l *Landmark) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid landmark: %w", err)
	}

	x, ok := raw["x"].(float64)
	if !ok {
		return fmt.Errorf("landmark requires numeric x")
	}
	y, ok := raw["y"].(float64)
	if !ok {
		return fmt.Errorf("landmark requires numeric y")
	}
	delete(raw, "x")
	delete(raw, "y")

	l.X, l.Y = x, y
	l.Attributes = nil
	if len(raw) > 0 {
		l.Attributes = raw
	}
	return nil
}
