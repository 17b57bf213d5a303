package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"yt-analytics/domain/model"
	"yt-analytics/infrastructure/logger"
)

// snapshotRow is one archived record keyed by (snapshot_date, platform, post_id)
type snapshotRow struct {
	SnapshotDate string
	Platform     string
	PostID       string
	RunID        string
	Views        float64
	WatchMinutes float64
	Data         []byte
}

func toSnapshotRows(snapshot *model.Snapshot) ([]snapshotRow, error) {
	rows := make([]snapshotRow, 0, len(snapshot.Records))
	for i := range snapshot.Records {
		rec := &snapshot.Records[i]
		raw, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("marshal record %s: %w", rec.PostID, err)
		}
		rows = append(rows, snapshotRow{
			SnapshotDate: snapshot.Date,
			Platform:     rec.Platform,
			PostID:       rec.PostID,
			RunID:        snapshot.RunID,
			Views:        rec.Metrics.Views,
			WatchMinutes: rec.Metrics.WatchTimeMinutes,
			Data:         raw,
		})
	}
	return rows, nil
}

// EnsureSnapshotSchema creates the video_snapshots table if not exists
func EnsureSnapshotSchema(db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS video_snapshots (
        snapshot_date DATE NOT NULL,
        platform TEXT NOT NULL,
        post_id TEXT NOT NULL,
        run_id TEXT NOT NULL,
        views DOUBLE PRECISION NOT NULL DEFAULT 0,
        watch_time_minutes DOUBLE PRECISION NOT NULL DEFAULT 0,
        data JSONB NOT NULL,
        archived_at TIMESTAMPTZ NOT NULL,
        PRIMARY KEY (snapshot_date, platform, post_id)
    )`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create video_snapshots table: %w", err)
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_video_snapshots_post_id ON video_snapshots(post_id)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_video_snapshots_post_id")
	}
	return nil
}

// SnapshotArchive stores every snapshot record in PostgreSQL
type SnapshotArchive struct{ db *sql.DB }

func NewSnapshotArchive(db *sql.DB) *SnapshotArchive {
	return &SnapshotArchive{db: db}
}

func (r *SnapshotArchive) Name() string { return "postgres" }

// Archive upserts all records of the snapshot in one transaction
func (r *SnapshotArchive) Archive(ctx context.Context, snapshot *model.Snapshot) error {
	if r.db == nil || snapshot == nil || len(snapshot.Records) == 0 {
		return nil
	}
	rows, err := toSnapshotRows(snapshot)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	now := time.Now().UTC()
	q := `INSERT INTO video_snapshots(snapshot_date, platform, post_id, run_id, views, watch_time_minutes, data, archived_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		  ON CONFLICT (snapshot_date, platform, post_id) DO UPDATE SET run_id=EXCLUDED.run_id, views=EXCLUDED.views, watch_time_minutes=EXCLUDED.watch_time_minutes, data=EXCLUDED.data, archived_at=EXCLUDED.archived_at`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, row := range rows {
		if _, err = stmt.ExecContext(ctx, row.SnapshotDate, row.Platform, row.PostID, row.RunID, row.Views, row.WatchMinutes, row.Data, now); err != nil {
			return fmt.Errorf("upsert %s: %w", row.PostID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"runId": snapshot.RunID,
		"rows":  len(rows),
	}).Info("Snapshot archived to PostgreSQL")
	return nil
}
