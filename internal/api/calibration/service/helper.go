package calibrationService

import (
	"PoseAlign/internal/api/calibration"
	"PoseAlign/internal/entity"
	contextPkg "PoseAlign/pkg/context"
	"PoseAlign/pkg/perspective"
	"PoseAlign/pkg/redis"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// classifySolveError attaches an HTTP status to a perspective error while
// keeping the perspective sentinel reachable through errors.Is.
func classifySolveError(err error) error {
	switch {
	case errors.Is(err, perspective.ErrParallelLines):
		return fmt.Errorf("%w: %w", calibration.ErrParallelBoundaries, err)
	case errors.Is(err, perspective.ErrDegenerateInput):
		return fmt.Errorf("%w: %w", calibration.ErrDegenerateQuadrilateral, err)
	case errors.Is(err, perspective.ErrUnknownMethod):
		return fmt.Errorf("%w: %w", calibration.ErrUnknownMethod, err)
	default:
		return err
	}
}

func solve(method string, source, destination []perspective.Coordinate) (*perspective.Correspondence, error) {
	src, err := calibration.ToQuadrilateral(source)
	if err != nil {
		return nil, err
	}
	dst, err := calibration.ToQuadrilateral(destination)
	if err != nil {
		return nil, err
	}

	corr, err := perspective.NewCorrespondence(perspective.Method(method), src, dst)
	if err != nil {
		return nil, classifySolveError(err)
	}

	return corr, nil
}

// loadEntry resolves a calibration from memory, then Redis, then Postgres,
// registering it in memory on the way out. Memory entries older than the
// cache TTL are re-read so changes made by other replicas are picked up.
func (s *calibrationService) loadEntry(ctx context.Context, id string) (*holderEntry, error) {
	if entry, ok := s.store.load(id, s.now()); ok {
		return entry, nil
	}

	requestID := contextPkg.GetRequestID(ctx)

	if cal, ok := s.readCache(ctx, id); ok {
		return s.store.put(cal, s.now()), nil
	}

	repo, err := s.calibrationRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return nil, err
	}

	cal, err := repo.Calibration.GetCalibrationByID(ctx, id)
	if err != nil {
		if errors.Is(err, calibration.ErrCalibrationNotFound) {
			s.store.delete(id)
		}
		return nil, err
	}

	s.writeCache(ctx, cal)
	return s.store.put(cal, s.now()), nil
}

func (s *calibrationService) ownedEntry(ctx context.Context, id string, userID string) (*holderEntry, error) {
	entry, err := s.loadEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	if entry.userID != userID {
		s.log.WithFields(logrus.Fields{
			"request_id":     contextPkg.GetRequestID(ctx),
			"calibration_id": id,
			"user_id":        userID,
		}).Warn("Calibration does not belong to user")
		return nil, calibration.ErrCalibrationNotOwned
	}

	return entry, nil
}

func (s *calibrationService) readCache(ctx context.Context, id string) (entity.Calibration, bool) {
	if s.redis == nil {
		return entity.Calibration{}, false
	}

	payload, err := s.redis.GetCalibration(ctx, id)
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.log.WithFields(logrus.Fields{
				"request_id":     contextPkg.GetRequestID(ctx),
				"calibration_id": id,
				"error":          err.Error(),
			}).Warn("Calibration cache read failed")
		}
		return entity.Calibration{}, false
	}

	var cal entity.Calibration
	if err := json.Unmarshal(payload, &cal); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":     contextPkg.GetRequestID(ctx),
			"calibration_id": id,
			"error":          err.Error(),
		}).Warn("Discarding unreadable cached calibration")
		return entity.Calibration{}, false
	}

	return cal, true
}

func (s *calibrationService) writeCache(ctx context.Context, cal entity.Calibration) {
	if s.redis == nil {
		return
	}

	payload, err := json.Marshal(cal)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":     contextPkg.GetRequestID(ctx),
			"calibration_id": cal.ID,
			"error":          err.Error(),
		}).Warn("Failed to encode calibration for cache")
		return
	}

	if err := s.redis.SetCalibration(ctx, cal.ID, payload, s.cacheTTL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":     contextPkg.GetRequestID(ctx),
			"calibration_id": cal.ID,
			"error":          err.Error(),
		}).Warn("Failed to cache calibration")
	}
}

func (s *calibrationService) evictCache(ctx context.Context, id string) {
	if s.redis == nil {
		return
	}

	if err := s.redis.DeleteCalibration(ctx, id); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":     contextPkg.GetRequestID(ctx),
			"calibration_id": id,
			"error":          err.Error(),
		}).Warn("Failed to evict cached calibration")
	}
}
