package redis

import (
	"DrowsyWatch/internal/entity"
	"DrowsyWatch/pkg/utils"
	"context"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"os"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var ErrVerdictNotFound = errors.New("verdict not found")

const latestVerdictKey = "drowsywatch:verdict:latest:%s"

type IRedis interface {
	SetVerdict(ctx context.Context, verdict entity.Verdict, expiration time.Duration) error
	GetVerdict(ctx context.Context, deviceID string) (entity.Verdict, error)
	Close() error
}

type redisClient struct {
	client *redis.Client
}

// New connects to REDIS_ADDRESS. It returns nil when no address is set so
// the caller can treat the cache as optional.
func New() IRedis {
	redisAddr := os.Getenv("REDIS_ADDRESS")
	if redisAddr == "" {
		return nil
	}

	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
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

	return NewWithClient(client)
}

func NewWithClient(client *redis.Client) IRedis {
	return &redisClient{client: client}
}

func (r *redisClient) SetVerdict(ctx context.Context, verdict entity.Verdict, expiration time.Duration) error {
	payload, err := jsoniter.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("marshal verdict: %w", err)
	}

	key := fmt.Sprintf(latestVerdictKey, utils.Slug(verdict.DeviceID))
	if err := r.client.Set(ctx, key, payload, expiration).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error setting verdict for key %s: %v", key, err))
		return err
	}

	logrus.Debug(fmt.Sprintf("Stored latest verdict %s for key %s", verdict.Status, key))
	return nil
}

func (r *redisClient) GetVerdict(ctx context.Context, deviceID string) (entity.Verdict, error) {
	key := fmt.Sprintf(latestVerdictKey, utils.Slug(deviceID))

	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return entity.Verdict{}, ErrVerdictNotFound
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error getting verdict for key %s: %v", key, err))
		return entity.Verdict{}, err
	}

	var verdict entity.Verdict
	if err := jsoniter.Unmarshal(val, &verdict); err != nil {
		return entity.Verdict{}, fmt.Errorf("unmarshal verdict: %w", err)
	}

	return verdict, nil
}

func (r *redisClient) Close() error {
	return r.client.Close()
}
