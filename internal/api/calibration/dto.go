package calibration

import (
	"PoseAlign/internal/entity"
	"PoseAlign/pkg/perspective"
)

type SolveRequest struct {
	Source      []perspective.Coordinate `json:"source" validate:"required,len=4"`
	Destination []perspective.Coordinate `json:"destination" validate:"required,len=4"`
	Method      string                   `json:"method" validate:"omitempty,oneof=extrapolate homography"`
}

type SolveResponse struct {
	Method    perspective.Method        `json:"method"`
	Projected perspective.Quadrilateral `json:"projected"`
	Filter    string                    `json:"filter"`
}

type RemapRequest struct {
	Projected []perspective.Coordinate `json:"projected" validate:"required,len=4"`
	Landmarks perspective.Pose         `json:"landmarks" validate:"required"`
}

type RemapPoseRequest struct {
	Frame     int64            `json:"frame"`
	Timestamp float64          `json:"timestamp"`
	Landmarks perspective.Pose `json:"landmarks" validate:"required"`
}

type CreateCalibrationRequest struct {
	UserID      string                   `json:"user_id" validate:"required"`
	VideoSource string                   `json:"video_source" validate:"required,oneof=user reference"`
	Source      []perspective.Coordinate `json:"source" validate:"required,len=4"`
	Destination []perspective.Coordinate `json:"destination" validate:"required,len=4"`
	Method      string                   `json:"method" validate:"omitempty,oneof=extrapolate homography"`
}

type UpdateCalibrationRequest struct {
	ID          string                   `json:"id" validate:"required"`
	UserID      string                   `json:"user_id" validate:"required"`
	Source      []perspective.Coordinate `json:"source" validate:"required,len=4"`
	Destination []perspective.Coordinate `json:"destination" validate:"required,len=4"`
	Method      string                   `json:"method" validate:"omitempty,oneof=extrapolate homography"`
}

type CalibrationResponse struct {
	ID          string                    `json:"id"`
	UserID      string                    `json:"user_id"`
	VideoSource string                    `json:"video_source"`
	Method      perspective.Method        `json:"method"`
	Source      perspective.Quadrilateral `json:"source"`
	Destination perspective.Quadrilateral `json:"destination"`
	Projected   perspective.Quadrilateral `json:"projected"`
	Filter      string                    `json:"filter"`
	CreatedAt   string                    `json:"created_at"`
	UpdatedAt   string                    `json:"updated_at"`
}

type CalibrationListResponse struct {
	Calibrations []CalibrationResponse `json:"calibrations"`
	Total        int                   `json:"total"`
}

type ExportResponse struct {
	CalibrationID string `json:"calibration_id"`
	Filter        string `json:"filter"`
	ObjectKey     string `json:"object_key"`
	URL           string `json:"url"`
}

// ExportSnapshot is the JSON document uploaded on export.
type ExportSnapshot struct {
	Calibration entity.Calibration `json:"calibration"`
	Filter      string             `json:"filter"`
	ExportedAt  string             `json:"exported_at"`
}

// ToQuadrilateral reads four corners in A, B, C, D order.
func ToQuadrilateral(corners []perspective.Coordinate) (perspective.Quadrilateral, error) {
	if len(corners) != 4 {
		return perspective.Quadrilateral{}, ErrInvalidQuadrilateral
	}
	return perspective.Quad(corners[0], corners[1], corners[2], corners[3]), nil
}
