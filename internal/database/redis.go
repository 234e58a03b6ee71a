package database

import (
	"context"
	"time"

	"whutmovie/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewRedisClient connects to Redis. It returns nil when Redis is not
// configured or does not answer, and callers run without the page cache.
func NewRedisClient(cfg config.RedisConfig, logger *logrus.Logger) *redis.Client {
	if cfg.Addr == "" {
		logger.Info("REDIS_ADDR not set, page cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).WithField("addr", cfg.Addr).Warn("Redis unreachable, page cache disabled")
		_ = client.Close()
		return nil
	}

	logger.WithField("addr", cfg.Addr).Info("Redis connection established")
	return client
}
