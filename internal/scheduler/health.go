package scheduler

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/mehdirazajaffri/leads-management-system/platform/config"
)

// RedisHealth is the readiness probe for the queue's Redis.
type RedisHealth struct {
	client *redis.Client
}

func NewRedisHealth(cfg config.SchedulerConfig) (*RedisHealth, error) {
	opt, err := parseRedisURL(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}
	return &RedisHealth{client: redis.NewClient(opt)}, nil
}

func (h *RedisHealth) Ping(ctx context.Context) error {
	return h.client.Ping(ctx).Err()
}

func (h *RedisHealth) Close() error {
	return h.client.Close()
}
