package calibrationService

import (
	"PoseAlign/internal/api/calibration"
	"PoseAlign/internal/entity"
	contextPkg "PoseAlign/pkg/context"
	"PoseAlign/pkg/perspective"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *calibrationService) Solve(ctx context.Context, req calibration.SolveRequest) (*perspective.Correspondence, error) {
	corr, err := solve(req.Method, req.Source, req.Destination)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Warn("Failed to solve correspondence")
		return nil, err
	}

	return corr, nil
}

func (s *calibrationService) Remap(ctx context.Context, req calibration.RemapRequest) (perspective.Pose, error) {
	projected, err := calibration.ToQuadrilateral(req.Projected)
	if err != nil {
		return nil, err
	}

	if err := projected.Validate(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Warn("Rejected projected corners")
		return nil, classifySolveError(err)
	}

	return perspective.RemapPose(req.Landmarks, projected), nil
}

func (s *calibrationService) RemapPose(ctx context.Context, id string, userID string, pose perspective.Pose) (perspective.Pose, error) {
	entry, err := s.ownedEntry(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	remapped, ok := entry.holder.RemapPose(pose)
	if !ok {
		return nil, calibration.ErrCalibrationNotFound
	}

	return remapped, nil
}

// RemapFrame runs one image through the external pose detector and remaps
// the landmarks it returns.
func (s *calibrationService) RemapFrame(ctx context.Context, id string, userID string, frame []byte) (*entity.PoseFrame, error) {
	requestID := contextPkg.GetRequestID(ctx)

	entry, err := s.ownedEntry(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if s.detector == nil {
		return nil, calibration.ErrDetectorUnavailable
	}

	detected, err := s.detector.DetectPose(ctx, frame)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":     requestID,
			"calibration_id": id,
			"user_id":        contextPkg.GetUserID(ctx),
			"error":          err.Error(),
		}).Warn("Pose detection failed")
		return nil, fmt.Errorf("%w: %w", calibration.ErrDetectorUnavailable, err)
	}

	remapped, ok := entry.holder.RemapPose(detected.Landmarks)
	if !ok {
		return nil, calibration.ErrCalibrationNotFound
	}

	return &entity.PoseFrame{
		Frame:     detected.Frame,
		Timestamp: detected.Timestamp,
		Landmarks: remapped,
	}, nil
}
