package calibrationService

import (
	"PoseAlign/internal/api/calibration"
	calibrationRepository "PoseAlign/internal/api/calibration/repository"
	"PoseAlign/internal/entity"
	"PoseAlign/pkg/perspective"
	"PoseAlign/pkg/redis"
	"PoseAlign/pkg/utils"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type fakeCalibrationStore struct {
	mu        sync.Mutex
	rows      map[string]entity.Calibration
	reads     int
	createErr error
	updateErr error
}

func (f *fakeCalibrationStore) CreateCalibration(_ context.Context, cal entity.Calibration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.rows[cal.ID] = cal
	return nil
}

func (f *fakeCalibrationStore) GetCalibrationByID(_ context.Context, id string) (entity.Calibration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	cal, ok := f.rows[id]
	if !ok {
		return entity.Calibration{}, calibration.ErrCalibrationNotFound
	}
	return cal, nil
}

func (f *fakeCalibrationStore) GetCalibrationsByUserID(_ context.Context, userID string, videoSource string) ([]entity.Calibration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Calibration
	for _, cal := range f.rows {
		if cal.UserID != userID {
			continue
		}
		if videoSource != "" && string(cal.VideoSource) != videoSource {
			continue
		}
		out = append(out, cal)
	}
	return out, nil
}

func (f *fakeCalibrationStore) UpdateCalibration(_ context.Context, cal entity.Calibration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.rows[cal.ID]; !ok {
		return calibration.ErrCalibrationNotFound
	}
	f.rows[cal.ID] = cal
	return nil
}

func (f *fakeCalibrationStore) DeleteCalibration(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return calibration.ErrCalibrationNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeRepository struct {
	store     *fakeCalibrationStore
	commits   int
	rollbacks int
	onCommit  func()
}

func (r *fakeRepository) NewClient(tx bool) (calibrationRepository.Client, error) {
	return calibrationRepository.Client{
		Calibration: r.store,
		Commit: func() error {
			if tx {
				r.commits++
				if r.onCommit != nil {
					r.onCommit()
				}
			}
			return nil
		},
		Rollback: func() error {
			r.rollbacks++
			return nil
		},
	}, nil
}

type fakeRedis struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttl     time.Duration
}

func (f *fakeRedis) SetCalibration(_ context.Context, id string, payload []byte, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[id] = payload
	f.ttl = expiration
	return nil
}

func (f *fakeRedis) GetCalibration(_ context.Context, id string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payload, ok := f.entries[id]
	if !ok {
		return nil, redis.ErrCacheMiss
	}
	return payload, nil
}

func (f *fakeRedis) DeleteCalibration(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, id)
	return nil
}

type fakeS3 struct {
	uploads    map[string][]byte
	uploadErr  error
	presignErr error
	deleted    []string
}

func (f *fakeS3) UploadBytes(key string, _ string, body []byte) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	objectKey := "calibrations/" + key
	f.uploads[objectKey] = body
	return objectKey, nil
}

func (f *fakeS3) PresignUrl(key string) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	if _, ok := f.uploads[key]; !ok {
		return "", errors.New("file does not exist")
	}
	return "https://bucket.example/" + key + "?signed=1", nil
}

func (f *fakeS3) DeleteFile(key string) error {
	delete(f.uploads, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeDetector struct {
	frame    *entity.PoseFrame
	err      error
	calls    int
	deadline time.Time
}

func (f *fakeDetector) DetectPose(ctx context.Context, _ []byte) (*entity.PoseFrame, error) {
	f.calls++
	f.deadline, _ = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	return f.frame, nil
}

func (f *fakeDetector) IsConnected() bool { return f.err == nil }
func (f *fakeDetector) Reconnect() error  { return nil }
func (f *fakeDetector) CloseConnection()  {}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testDeps struct {
	repo     *fakeRepository
	redis    *fakeRedis
	s3       *fakeS3
	detector *fakeDetector
	clock    *fakeClock
}

func newTestService() (*calibrationService, *testDeps) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	deps := &testDeps{
		repo:     &fakeRepository{store: &fakeCalibrationStore{rows: map[string]entity.Calibration{}}},
		redis:    &fakeRedis{entries: map[string][]byte{}},
		s3:       &fakeS3{uploads: map[string][]byte{}},
		detector: &fakeDetector{},
		clock:    &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	}

	svc := &calibrationService{
		log:                   logger,
		calibrationRepository: deps.repo,
		redis:                 deps.redis,
		s3:                    deps.s3,
		detector:              deps.detector,
		utils:                 utils.New(),
		store:                 newHolderStore(defaultCacheTTL),
		cacheTTL:              defaultCacheTTL,
		now:                   deps.clock.Now,
	}

	return svc, deps
}

func corners(q perspective.Quadrilateral) []perspective.Coordinate {
	c := q.Corners()
	return c[:]
}

func square(lo, hi float64) perspective.Quadrilateral {
	return perspective.Quad(perspective.Pt(lo, lo), perspective.Pt(hi, lo), perspective.Pt(hi, hi), perspective.Pt(lo, hi))
}
