package cache

import (
	"context"

	"yt-analytics/infrastructure/logger"

	"github.com/redis/go-redis/v9"
)

// NewCache connects to Redis and pings it once
func NewCache(ctx context.Context, addr, username, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while ping redis")
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
