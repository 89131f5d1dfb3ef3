package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrCacheMiss is returned by GetCalibration when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

const calibrationKeyPrefix = "calibration:"

type IRedis interface {
	SetCalibration(ctx context.Context, id string, payload []byte, expiration time.Duration) error
	GetCalibration(ctx context.Context, id string) ([]byte, error)
	DeleteCalibration(ctx context.Context, id string) error
}

type redisClient struct {
	client *redis.Client
}

func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client}
}

func calibrationKey(id string) string {
	return calibrationKeyPrefix + id
}

func (r *redisClient) SetCalibration(ctx context.Context, id string, payload []byte, expiration time.Duration) error {
	key := calibrationKey(id)
	logrus.Debug(fmt.Sprintf("Caching calibration %s with expiration %v", key, expiration))
	if err := r.client.Set(ctx, key, payload, expiration).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error caching calibration %s: %v", key, err))
		return err
	}
	return nil
}

func (r *redisClient) GetCalibration(ctx context.Context, id string) ([]byte, error) {
	key := calibrationKey(id)
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		logrus.Debug(fmt.Sprintf("Calibration %s not cached", key))
		return nil, ErrCacheMiss
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error reading calibration %s: %v", key, err))
		return nil, err
	}
	return val, nil
}

func (r *redisClient) DeleteCalibration(ctx context.Context, id string) error {
	key := calibrationKey(id)
	result, err := r.client.Del(ctx, key).Result()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error evicting calibration %s: %v", key, err))
		return err
	}

	if result == 0 {
		logrus.Debug(fmt.Sprintf("Calibration %s was not cached", key))
	}
	return nil
}
