package calibration

import (
	"PoseAlign/pkg/response"
	"net/http"
)

var (
	ErrCalibrationNotFound     = response.NewError(http.StatusNotFound, "calibration not found")
	ErrCalibrationNotOwned     = response.NewError(http.StatusForbidden, "calibration does not belong to user")
	ErrInvalidQuadrilateral    = response.NewError(http.StatusBadRequest, "quadrilateral must have exactly four corners")
	ErrInvalidVideoSource      = response.NewError(http.StatusBadRequest, "invalid video source")
	ErrInvalidPose             = response.NewError(http.StatusBadRequest, "invalid pose payload")
	ErrUnknownMethod           = response.NewError(http.StatusBadRequest, "unknown solve method")
	ErrDegenerateQuadrilateral = response.NewError(http.StatusUnprocessableEntity, "quadrilateral is degenerate")
	ErrParallelBoundaries      = response.NewError(http.StatusUnprocessableEntity, "projected boundaries are parallel")
	ErrCreateCalibration       = response.NewError(http.StatusInternalServerError, "failed to create calibration")
	ErrUpdateCalibration       = response.NewError(http.StatusInternalServerError, "failed to update calibration")
	ErrDeleteCalibration       = response.NewError(http.StatusInternalServerError, "failed to delete calibration")
	ErrExportCalibration       = response.NewError(http.StatusInternalServerError, "failed to export calibration")
	ErrDetectorUnavailable     = response.NewError(http.StatusServiceUnavailable, "pose detector unavailable")
)
