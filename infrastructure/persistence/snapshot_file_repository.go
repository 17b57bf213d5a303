package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"yt-analytics/domain/model"
	"yt-analytics/domain/repository"
	"yt-analytics/infrastructure/logger"
	"yt-analytics/infrastructure/utils"

	"github.com/spf13/afero"
)

// SnapshotFileRepository writes dated snapshot files under one directory
type SnapshotFileRepository struct {
	fs  afero.Fs
	dir string
}

func NewSnapshotFileRepository(fs afero.Fs, dir string) repository.ISnapshotStore {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &SnapshotFileRepository{fs: fs, dir: dir}
}

// SnapshotFileName is <yyyy-MM-dd>-<platform>-analytics.json
func SnapshotFileName(day time.Time, platform string) string {
	return fmt.Sprintf("%s-%s-analytics.json", utils.DateStamp(day), platform)
}

// Save overwrites the day's file atomically: a temp file in the same directory is renamed over it.
func (r *SnapshotFileRepository) Save(ctx context.Context, day time.Time, platform string, records []model.StandardRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if records == nil {
		records = []model.StandardRecord{}
	}

	if err := r.fs.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", r.dir, err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	path := filepath.Join(r.dir, SnapshotFileName(day, platform))
	tmp, err := afero.TempFile(r.fs, r.dir, ".snapshot-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = r.fs.Remove(tmpName)
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = r.fs.Remove(tmpName)
		return "", fmt.Errorf("close snapshot: %w", err)
	}
	if err := r.fs.Rename(tmpName, path); err != nil {
		_ = r.fs.Remove(tmpName)
		return "", fmt.Errorf("rename snapshot into place: %w", err)
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"path":    path,
		"records": len(records),
		"bytes":   buf.Len(),
	}).Info("Snapshot file saved")
	return path, nil
}
