package calibrationService

import (
	"PoseAlign/internal/api/calibration"
	"PoseAlign/internal/entity"
	contextPkg "PoseAlign/pkg/context"
	"PoseAlign/pkg/perspective"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *calibrationService) CreateCalibration(ctx context.Context, req calibration.CreateCalibrationRequest) (entity.Calibration, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if !entity.IsValidVideoSource(req.VideoSource) {
		s.log.WithFields(logrus.Fields{
			"request_id":   requestID,
			"video_source": req.VideoSource,
		}).Warn("Invalid video source")
		return entity.Calibration{}, calibration.ErrInvalidVideoSource
	}

	corr, err := solve(req.Method, req.Source, req.Destination)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to solve calibration")
		return entity.Calibration{}, err
	}

	repo, err := s.calibrationRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return entity.Calibration{}, err
	}

	now := s.now()
	ULID, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate ULID")
		return entity.Calibration{}, err
	}

	cal := entity.Calibration{
		ID:          ULID,
		UserID:      req.UserID,
		VideoSource: entity.VideoSource(req.VideoSource),
		Method:      corr.Method,
		Source:      corr.Source,
		Destination: corr.Destination,
		Projected:   corr.Projected,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := repo.Calibration.CreateCalibration(ctx, cal); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create calibration")
		return entity.Calibration{}, calibration.ErrCreateCalibration
	}

	s.store.put(cal, now)
	s.writeCache(ctx, cal)

	s.log.WithFields(logrus.Fields{
		"request_id":     requestID,
		"calibration_id": cal.ID,
		"video_source":   cal.VideoSource,
		"method":         cal.Method,
	}).Info("Calibration created")

	return cal, nil
}

func (s *calibrationService) GetCalibration(ctx context.Context, id string, userID string) (entity.Calibration, error) {
	entry, err := s.ownedEntry(ctx, id, userID)
	if err != nil {
		return entity.Calibration{}, err
	}

	return entry.calibration(), nil
}

func (s *calibrationService) GetCalibrationsByUserID(ctx context.Context, userID string, videoSource string) ([]entity.Calibration, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if videoSource != "" && !entity.IsValidVideoSource(videoSource) {
		return nil, calibration.ErrInvalidVideoSource
	}

	repo, err := s.calibrationRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return nil, err
	}

	calibrations, err := repo.Calibration.GetCalibrationsByUserID(ctx, userID, videoSource)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to get calibrations")
		return nil, err
	}

	return calibrations, nil
}

// UpdateCalibration re-solves with the new quads and swaps the result in.
// Readers keep the previous correspondence until the row is committed, and
// updates of one id publish in the order they committed.
func (s *calibrationService) UpdateCalibration(ctx context.Context, req calibration.UpdateCalibrationRequest) (entity.Calibration, error) {
	requestID := contextPkg.GetRequestID(ctx)

	entry, err := s.ownedEntry(ctx, req.ID, req.UserID)
	if err != nil {
		return entity.Calibration{}, err
	}

	unlock := s.store.lock(req.ID)
	defer unlock()

	current := entry.calibration()
	method := req.Method
	if method == "" {
		method = string(current.Method)
	}

	corr, err := solve(method, req.Source, req.Destination)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":     requestID,
			"calibration_id": req.ID,
			"error":          err.Error(),
		}).Warn("Failed to re-solve calibration")
		return entity.Calibration{}, err
	}

	updated := current
	updated.Method = corr.Method
	updated.Source = corr.Source
	updated.Destination = corr.Destination
	updated.Projected = corr.Projected
	updated.UpdatedAt = s.now()

	repo, err := s.calibrationRepository.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return entity.Calibration{}, err
	}

	if err := repo.Calibration.UpdateCalibration(ctx, updated); err != nil {
		_ = repo.Rollback()
		s.log.WithFields(logrus.Fields{
			"request_id":     requestID,
			"calibration_id": req.ID,
			"error":          err.Error(),
		}).Error("Failed to update calibration")
		if errors.Is(err, calibration.ErrCalibrationNotFound) {
			s.store.delete(req.ID)
			return entity.Calibration{}, err
		}
		return entity.Calibration{}, calibration.ErrUpdateCalibration
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":     requestID,
			"calibration_id": req.ID,
			"error":          err.Error(),
		}).Error("Failed to commit calibration update")
		return entity.Calibration{}, calibration.ErrUpdateCalibration
	}

	previous, swapped := s.store.swap(updated, s.now())
	if !swapped {
		s.log.WithFields(logrus.Fields{
			"request_id":     requestID,
			"calibration_id": req.ID,
		}).Warn("Calibration removed during update, skipping publish")
		s.evictCache(ctx, req.ID)
		return updated, nil
	}

	s.writeCache(ctx, updated)
	if !s.store.contains(req.ID) {
		s.evictCache(ctx, req.ID)
	}

	fields := logrus.Fields{
		"request_id":     requestID,
		"calibration_id": updated.ID,
		"method":         updated.Method,
	}
	if previous != nil {
		fields["previous_method"] = previous.Method
	}
	s.log.WithFields(fields).Info("Calibration re-solved")

	return updated, nil
}

func (s *calibrationService) DeleteCalibration(ctx context.Context, id string, userID string) error {
	requestID := contextPkg.GetRequestID(ctx)

	if _, err := s.ownedEntry(ctx, id, userID); err != nil {
		return err
	}

	repo, err := s.calibrationRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return err
	}

	if err := repo.Calibration.DeleteCalibration(ctx, id); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":     requestID,
			"calibration_id": id,
			"error":          err.Error(),
		}).Error("Failed to delete calibration")
		if !errors.Is(err, calibration.ErrCalibrationNotFound) {
			return calibration.ErrDeleteCalibration
		}
	}

	s.store.delete(id)
	s.evictCache(ctx, id)

	return nil
}

// ExportCalibration uploads a JSON snapshot with the ffmpeg perspective
// filter and returns a presigned link to it.
func (s *calibrationService) ExportCalibration(ctx context.Context, id string, userID string) (calibration.ExportResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	entry, err := s.ownedEntry(ctx, id, userID)
	if err != nil {
		return calibration.ExportResponse{}, err
	}

	cal := entry.calibration()
	now := s.now()
	filter := perspective.FilterExpression(cal.Projected)

	payload, err := json.Marshal(calibration.ExportSnapshot{
		Calibration: cal,
		Filter:      filter,
		ExportedAt:  now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to encode export snapshot")
		return calibration.ExportResponse{}, calibration.ErrExportCalibration
	}

	objectKey, err := s.s3.UploadBytes(s.utils.NewExportKey(id, now), "application/json", payload)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":     requestID,
			"calibration_id": id,
			"error":          err.Error(),
		}).Error("Failed to upload export snapshot")
		return calibration.ExportResponse{}, calibration.ErrExportCalibration
	}

	url, err := s.s3.PresignUrl(objectKey)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"object_key": objectKey,
			"error":      err.Error(),
		}).Error("Failed to presign export snapshot")

		if delErr := s.s3.DeleteFile(objectKey); delErr != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"object_key": objectKey,
				"error":      delErr.Error(),
			}).Warn("Failed to remove orphaned export snapshot")
		}
		return calibration.ExportResponse{}, calibration.ErrExportCalibration
	}

	return calibration.ExportResponse{
		CalibrationID: id,
		Filter:        filter,
		ObjectKey:     objectKey,
		URL:           url,
	}, nil
}
