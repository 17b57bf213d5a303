package repository

import (
	"context"
	"time"

	"yt-analytics/domain/dto"
	"yt-analytics/domain/model"
)

// ISnapshotStore persists the dated snapshot file
type ISnapshotStore interface {
	// Save writes records for the given day and returns the written path.
	Save(ctx context.Context, day time.Time, platform string, records []model.StandardRecord) (string, error)
}

// ISnapshotArchive is an optional secondary copy of a snapshot (database, cache, bucket)
type ISnapshotArchive interface {
	Name() string
	Archive(ctx context.Context, snapshot *model.Snapshot) error
}

// ISnapshotNotifier announces a written snapshot to a broker
type ISnapshotNotifier interface {
	Name() string
	Notify(ctx context.Context, event dto.SnapshotEvent) error
}
