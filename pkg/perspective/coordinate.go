package perspective

import (
	"fmt"
	"math"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Coordinate is a point in normalized [0,1]x[0,1] frame space.
type Coordinate struct {
	X, Y float64
}

// Pt is a convenience constructor for a Coordinate.
func Pt(x, y float64) Coordinate {
	return Coordinate{X: x, Y: y}
}

// Add returns the vector sum of c and o.
func (c Coordinate) Add(o Coordinate) Coordinate {
	return Coordinate{X: c.X + o.X, Y: c.Y + o.Y}
}

// Sub returns the vector difference c - o.
func (c Coordinate) Sub(o Coordinate) Coordinate {
	return Coordinate{X: c.X - o.X, Y: c.Y - o.Y}
}

// Mul scales c by s.
func (c Coordinate) Mul(s float64) Coordinate {
	return Coordinate{X: c.X * s, Y: c.Y * s}
}

// Cross returns the scalar 2D cross product.
func (c Coordinate) Cross(o Coordinate) float64 {
	return c.X*o.Y - c.Y*o.X
}

// Distance returns the Euclidean distance between c and o.
func (c Coordinate) Distance(o Coordinate) float64 {
	return math.Hypot(c.X-o.X, c.Y-o.Y)
}

// Lerp interpolates between c (t=0) and o (t=1).
func (c Coordinate) Lerp(o Coordinate, t float64) Coordinate {
	return Coordinate{
		X: c.X*(1-t) + o.X*t,
		Y: c.Y*(1-t) + o.Y*t,
	}
}

// IsFinite reports whether both components are neither NaN nor infinite.
func (c Coordinate) IsFinite() bool {
	return !math.IsNaN(c.X) && !math.IsInf(c.X, 0) && !math.IsNaN(c.Y) && !math.IsInf(c.Y, 0)
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%g, %g)", c.X, c.Y)
}

// MarshalJSON encodes the coordinate as a two element array [x, y].
func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.X, c.Y})
}

// UnmarshalJSON accepts either [x, y] or {"x": .., "y": ..}.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("coordinate must have 2 components, got %d", len(pair))
		}
		c.X, c.Y = pair[0], pair[1]
		return nil
	}

	var obj struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid coordinate: %w", err)
	}
	if obj.X == nil || obj.Y == nil {
		return fmt.Errorf("coordinate requires both x and y")
	}
	c.X, c.Y = *obj.X, *obj.Y
	return nil
}
