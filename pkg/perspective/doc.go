// Package perspective aligns two video frames by quadrilateral correspondence.
//
// A caller marks the same region in two frames as a source and a destination
// Quadrilateral, both in normalized [0,1]x[0,1] coordinates and both in the
// clockwise A (top-left), B, C, D winding. Solve turns that pair into the
// projected corners, and RemapPose carries every landmark of each later frame
// through those corners by bilinear interpolation.
//
// Everything here is a pure function of its inputs. Holder is the only stateful
// type: it publishes a solved Correspondence to concurrent readers with a
// single atomic swap.
//
//	projected, err := perspective.Solve(source, destination)
//	if err != nil {
//		// ErrDegenerateInput or ErrParallelLines: ask for a new region.
//	}
//	aligned := perspective.RemapPose(pose, projected)
package perspective
