package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"yt-analytics/domain/model"
	"yt-analytics/infrastructure/logger"
)

// EnsureSnapshotSchemaMSSQL creates the snapshot table on MSSQL if not exists
func EnsureSnapshotSchemaMSSQL(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("db is nil")
	}
	ddl := `IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.video_snapshots') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.video_snapshots (
        snapshot_date DATE NOT NULL,
        platform NVARCHAR(32) NOT NULL,
        post_id NVARCHAR(64) NOT NULL,
        run_id NVARCHAR(64) NOT NULL,
        views FLOAT NOT NULL DEFAULT 0,
        watch_time_minutes FLOAT NOT NULL DEFAULT 0,
        data NVARCHAR(MAX) NOT NULL,
        archived_at DATETIMEOFFSET NOT NULL,
        CONSTRAINT pk_video_snapshots PRIMARY KEY (snapshot_date, platform, post_id)
    );
END`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create video_snapshots table (mssql): %w", err)
	}
	if _, err := db.Exec(`IF NOT EXISTS (SELECT * FROM sys.indexes WHERE name = 'idx_video_snapshots_post_id' AND object_id = OBJECT_ID('dbo.video_snapshots'))
CREATE INDEX idx_video_snapshots_post_id ON dbo.video_snapshots(post_id)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_video_snapshots_post_id (mssql)")
	}
	return nil
}

// SnapshotArchiveMSSQL stores every snapshot record in SQL Server
type SnapshotArchiveMSSQL struct {
	db *sql.DB
}

func NewSnapshotArchiveMSSQL(db *sql.DB) *SnapshotArchiveMSSQL {
	return &SnapshotArchiveMSSQL{db: db}
}

func (r *SnapshotArchiveMSSQL) Name() string { return "mssql" }

// Archive merges all records of the snapshot in one transaction
func (r *SnapshotArchiveMSSQL) Archive(ctx context.Context, snapshot *model.Snapshot) error {
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
	q := `MERGE dbo.video_snapshots AS target
USING (SELECT @p1 AS snapshot_date, @p2 AS platform, @p3 AS post_id) AS src
ON (target.snapshot_date = src.snapshot_date AND target.platform = src.platform AND target.post_id = src.post_id)
WHEN MATCHED THEN UPDATE SET run_id=@p4, views=@p5, watch_time_minutes=@p6, data=@p7, archived_at=@p8
WHEN NOT MATCHED THEN INSERT (snapshot_date, platform, post_id, run_id, views, watch_time_minutes, data, archived_at)
VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7, @p8);`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, row := range rows {
		if _, err = stmt.ExecContext(ctx, row.SnapshotDate, row.Platform, row.PostID, row.RunID, row.Views, row.WatchMinutes, string(row.Data), now); err != nil {
			return fmt.Errorf("merge %s: %w", row.PostID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"runId": snapshot.RunID,
		"rows":  len(rows),
	}).Info("Snapshot archived to MSSQL")
	return nil
}
