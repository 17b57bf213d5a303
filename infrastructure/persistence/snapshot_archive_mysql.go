package persistence

import (
	"context"
	"time"

	"yt-analytics/domain/model"
	"yt-analytics/infrastructure/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VideoSnapshot is the gorm model of one archived record
type VideoSnapshot struct {
	SnapshotDate     string    `gorm:"column:snapshot_date;type:date;primaryKey"`
	Platform         string    `gorm:"column:platform;size:32;primaryKey"`
	PostID           string    `gorm:"column:post_id;size:64;primaryKey"`
	RunID            string    `gorm:"column:run_id;size:64;not null"`
	Views            float64   `gorm:"column:views;not null;default:0"`
	WatchTimeMinutes float64   `gorm:"column:watch_time_minutes;not null;default:0"`
	Data             string    `gorm:"column:data;type:json;not null"`
	ArchivedAt       time.Time `gorm:"column:archived_at;not null"`
}

func (VideoSnapshot) TableName() string { return "video_snapshots" }

// SnapshotArchiveMySQL stores every snapshot record in MySQL through gorm
type SnapshotArchiveMySQL struct {
	db *gorm.DB
}

func NewSnapshotArchiveMySQL(db *gorm.DB) *SnapshotArchiveMySQL {
	return &SnapshotArchiveMySQL{db: db}
}

func (r *SnapshotArchiveMySQL) Name() string { return "mysql" }

// EnsureSchema migrates the video_snapshots table
func (r *SnapshotArchiveMySQL) EnsureSchema() error {
	return r.db.AutoMigrate(&VideoSnapshot{})
}

// Archive upserts all records with ON DUPLICATE KEY UPDATE
func (r *SnapshotArchiveMySQL) Archive(ctx context.Context, snapshot *model.Snapshot) error {
	if r.db == nil || snapshot == nil || len(snapshot.Records) == 0 {
		return nil
	}
	rows, err := toSnapshotRows(snapshot)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	models := make([]VideoSnapshot, 0, len(rows))
	for _, row := range rows {
		models = append(models, VideoSnapshot{
			SnapshotDate:     row.SnapshotDate,
			Platform:         row.Platform,
			PostID:           row.PostID,
			RunID:            row.RunID,
			Views:            row.Views,
			WatchTimeMinutes: row.WatchMinutes,
			Data:             string(row.Data),
			ArchivedAt:       now,
		})
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		UpdateAll: true,
	}).Create(&models).Error
	if err != nil {
		return err
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"runId": snapshot.RunID,
		"rows":  len(models),
	}).Info("Snapshot archived to MySQL")
	return nil
}
