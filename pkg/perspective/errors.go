package perspective

import "errors"

var (
	// ErrDegenerateInput is returned when a quadrilateral has non-finite corners,
	// zero-length edges, three colinear corners, or an edge that cannot be
	// extended to the frame boundary.
	ErrDegenerateInput = errors.New("degenerate quadrilateral")

	// ErrParallelLines is returned when two extrapolated boundary lines never meet.
	ErrParallelLines = errors.New("boundary lines are parallel")

	// ErrUnknownMethod is returned by SolveWith for an unrecognized Method.
	ErrUnknownMethod = errors.New("unknown solve method")
)
