package perspective

import (
	"fmt"
	"strings"
)

// FilterString renders q as the corner list of ffmpeg's perspective filter:
// top-left, top-right, bottom-left, bottom-right, each as x*W:y*H.
func FilterString(q Quadrilateral) string {
	order := [4]Coordinate{q.A, q.B, q.D, q.C}
	parts := make([]string, 0, len(order))
	for _, c := range order {
		parts = append(parts, fmt.Sprintf("%.3f*W:%.3f*H", c.X, c.Y))
	}
	return strings.Join(parts, ":")
}

// FilterExpression is a complete -vf argument, e.g.
//
//	perspective=0.155*W:0.169*H:...:sense=destination
func FilterExpression(q Quadrilateral) string {
	return "perspective=" + FilterString(q) + ":sense=destination"
}
