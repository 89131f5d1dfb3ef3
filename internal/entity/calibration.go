package entity

import (
	"PoseAlign/pkg/perspective"
	"time"
)

type VideoSource string

const (
	VideoSourceUser      VideoSource = "user"
	VideoSourceReference VideoSource = "reference"
)

func IsValidVideoSource(source string) bool {
	switch VideoSource(source) {
	case VideoSourceUser, VideoSourceReference:
		return true
	default:
		return false
	}
}

// Calibration is a persisted quadrilateral correspondence for one video feed.
type Calibration struct {
	ID          string                    `json:"id"`
	UserID      string                    `json:"user_id"`
	VideoSource VideoSource               `json:"video_source"`
	Method      perspective.Method        `json:"method"`
	Source      perspective.Quadrilateral `json:"source"`
	Destination perspective.Quadrilateral `json:"destination"`
	Projected   perspective.Quadrilateral `json:"projected"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

func (c *Calibration) Correspondence() *perspective.Correspondence {
	return &perspective.Correspondence{
		Source:      c.Source,
		Destination: c.Destination,
		Projected:   c.Projected,
		Method:      c.Method,
	}
}

// PoseFrame is one detector output: the landmarks of a single video frame.
type PoseFrame struct {
	Frame     int64            `json:"frame,omitempty"`
	Timestamp float64          `json:"timestamp,omitempty"`
	Landmarks perspective.Pose `json:"landmarks"`
}
