package database

import (
	"context"
	"fmt"
	"time"

	"github.com/pathway-finder/webclient/pkg/common/config"
	"github.com/pathway-finder/webclient/pkg/common/logger"
	"github.com/redis/go-redis/v9"
)

// NewRedis connects to the Redis instance named by cfg and verifies it with a
// PING before returning.
func NewRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	logger.Log.WithField("addr", client.Options().Addr).Info("Connected to Redis")
	return client, nil
}
