package calibrationService

import (
	"PoseAlign/internal/api/calibration"
	calibrationRepository "PoseAlign/internal/api/calibration/repository"
	"PoseAlign/internal/entity"
	"PoseAlign/pkg/perspective"
	"PoseAlign/pkg/redis"
	"PoseAlign/pkg/s3"
	"PoseAlign/pkg/utils"
	websocketPkg "PoseAlign/pkg/websocket"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const defaultCacheTTL = time.Hour

type ICalibrationService interface {
	Solve(ctx context.Context, req calibration.SolveRequest) (*perspective.Correspondence, error)
	Remap(ctx context.Context, req calibration.RemapRequest) (perspective.Pose, error)

	CreateCalibration(ctx context.Context, req calibration.CreateCalibrationRequest) (entity.Calibration, error)
	GetCalibration(ctx context.Context, id string, userID string) (entity.Calibration, error)
	GetCalibrationsByUserID(ctx context.Context, userID string, videoSource string) ([]entity.Calibration, error)
	UpdateCalibration(ctx context.Context, req calibration.UpdateCalibrationRequest) (entity.Calibration, error)
	DeleteCalibration(ctx context.Context, id string, userID string) error
	ExportCalibration(ctx context.Context, id string, userID string) (calibration.ExportResponse, error)

	RemapPose(ctx context.Context, id string, userID string, pose perspective.Pose) (perspective.Pose, error)
	RemapFrame(ctx context.Context, id string, userID string, frame []byte) (*entity.PoseFrame, error)
}

type calibrationService struct {
	log                   *logrus.Logger
	calibrationRepository calibrationRepository.Repository
	redis                 redis.IRedis
	s3                    s3.ItfS3
	detector              websocketPkg.IPoseDetector
	utils                 utils.IUtils
	store                 *holderStore
	cacheTTL              time.Duration
	now                   func() time.Time
}

func New(
	log *logrus.Logger,
	cr calibrationRepository.Repository,
	redis redis.IRedis,
	s3 s3.ItfS3,
	detector websocketPkg.IPoseDetector,
	utils utils.IUtils,
) ICalibrationService {
	ttl := cacheTTLFromEnv(log)

	return &calibrationService{
		log:                   log,
		calibrationRepository: cr,
		redis:                 redis,
		s3:                    s3,
		detector:              detector,
		utils:                 utils,
		store:                 newHolderStore(ttl),
		cacheTTL:              ttl,
		now:                   time.Now,
	}
}

func cacheTTLFromEnv(log *logrus.Logger) time.Duration {
	raw := os.Getenv("CALIBRATION_CACHE_TTL")
	if raw == "" {
		return defaultCacheTTL
	}

	ttl, err := time.ParseDuration(raw)
	if err != nil || ttl <= 0 {
		log.WithField("value", raw).Warn("Invalid CALIBRATION_CACHE_TTL, using default")
		return defaultCacheTTL
	}

	return ttl
}
