package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"yt-analytics/domain/model"
	"yt-analytics/infrastructure/logger"

	"github.com/redis/go-redis/v9"
)

type snapshotSetter interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// SnapshotCache keeps the most recent snapshot of each platform in Redis
type SnapshotCache struct {
	client snapshotSetter
	ttl    time.Duration
}

func NewSnapshotCache(client snapshotSetter, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: ttl}
}

func (c *SnapshotCache) Name() string { return "redis" }

// LatestKey is the key holding the newest snapshot of platform
func LatestKey(platform string) string {
	return fmt.Sprintf("snapshot:%s:latest", platform)
}

// DatedKey is the key holding the snapshot of platform for one day
func DatedKey(platform, date string) string {
	return fmt.Sprintf("snapshot:%s:%s", platform, date)
}

// Archive writes the snapshot under its dated key with TTL and under the latest key without one
func (c *SnapshotCache) Archive(ctx context.Context, snapshot *model.Snapshot) error {
	if c.client == nil || snapshot == nil {
		return nil
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := c.client.Set(ctx, DatedKey(snapshot.Platform, snapshot.Date), payload, c.ttl).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while set dated snapshot")
		return err
	}
	if err := c.client.Set(ctx, LatestKey(snapshot.Platform), payload, 0).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while set latest snapshot")
		return err
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"runId": snapshot.RunID,
		"ttl":   c.ttl.String(),
	}).Info("Snapshot cached in Redis")
	return nil
}
