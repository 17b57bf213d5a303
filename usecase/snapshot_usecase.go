package usecase

import (
	"context"
	"fmt"
	"time"

	"yt-analytics/domain/dto"
	"yt-analytics/domain/model"
	"yt-analytics/domain/repository"
	"yt-analytics/infrastructure/logger"
	"yt-analytics/infrastructure/utils"

	"golang.org/x/sync/errgroup"
)

// metadataBatchSize is the videos.list id limit.
const metadataBatchSize = 50

// ISnapshotUsecase runs the fetch, normalize and write pipeline once.
type ISnapshotUsecase interface {
	Run(ctx context.Context) (*model.Snapshot, error)
}

// SnapshotUsecase wires the YouTube clients, the snapshot store and the optional fan-out sinks
type SnapshotUsecase struct {
	credential model.Credential
	tokens     repository.ITokenExchanger
	analytics  repository.IYouTubeAnalytics
	videos     repository.IVideoMetadata
	store      repository.ISnapshotStore
	archives   []repository.ISnapshotArchive
	notifiers  []repository.ISnapshotNotifier
	now        func() time.Time
	newRunID   func() string
}

// NewSnapshotUsecase creates the pipeline runner
func NewSnapshotUsecase(
	credential model.Credential,
	tokens repository.ITokenExchanger,
	analytics repository.IYouTubeAnalytics,
	videos repository.IVideoMetadata,
	store repository.ISnapshotStore,
) *SnapshotUsecase {
	return &SnapshotUsecase{
		credential: credential,
		tokens:     tokens,
		analytics:  analytics,
		videos:     videos,
		store:      store,
		now:        utils.GetCurrentTime,
		newRunID:   utils.NewRunID,
	}
}

// WithArchives adds archive sinks run after the file is written (fluent)
func (u *SnapshotUsecase) WithArchives(archives ...repository.ISnapshotArchive) *SnapshotUsecase {
	u.archives = append(u.archives, archives...)
	return u
}

// WithNotifiers adds event sinks run after the file is written (fluent)
func (u *SnapshotUsecase) WithNotifiers(notifiers ...repository.ISnapshotNotifier) *SnapshotUsecase {
	u.notifiers = append(u.notifiers, notifiers...)
	return u
}

// WithClock overrides the clock and run id source, mainly for tests
func (u *SnapshotUsecase) WithClock(now func() time.Time, newRunID func() string) *SnapshotUsecase {
	if now != nil {
		u.now = now
	}
	if newRunID != nil {
		u.newRunID = newRunID
	}
	return u
}

// Run performs one full snapshot. The file is written only when every fetch succeeded.
func (u *SnapshotUsecase) Run(ctx context.Context) (*model.Snapshot, error) {
	runID := u.newRunID()
	log := logger.GetLogger().WithField("runId", runID)

	if err := validateCredential(u.credential); err != nil {
		return nil, err
	}

	token, err := u.tokens.ExchangeRefreshToken(ctx, u.credential)
	if err != nil {
		return nil, fmt.Errorf("exchange refresh token: %w", err)
	}
	if token == nil || token.AccessToken == "" {
		return nil, fmt.Errorf("%w: token exchange returned no access token", model.ErrResponseShape)
	}

	today := u.now()
	query := BuildReportQuery(today)
	report, err := u.analytics.QueryReport(ctx, token.AccessToken, query)
	if err != nil {
		return nil, fmt.Errorf("query analytics report: %w", err)
	}
	rows := TransformReport(report)
	log.WithFields(map[string]interface{}{
		"startDate": query.StartDate,
		"endDate":   query.EndDate,
		"rows":      len(rows),
	}).Info("Analytics rows transformed")

	metadata, err := u.fetchMetadata(ctx, token.AccessToken, DistinctVideoIDs(rows))
	if err != nil {
		return nil, err
	}

	records := NormalizeRecords(rows, metadata)
	path, err := u.store.Save(ctx, today, model.PlatformYouTube, records)
	if err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	log.WithFields(map[string]interface{}{
		"path":    path,
		"records": len(records),
		"dropped": len(rows) - len(records),
	}).Info("Snapshot written")

	snapshot := &model.Snapshot{
		RunID:    runID,
		Date:     utils.DateStamp(today),
		Platform: model.PlatformYouTube,
		Path:     path,
		Records:  records,
		TakenAt:  today,
	}
	if err := u.fanOut(ctx, snapshot); err != nil {
		return snapshot, err
	}
	return snapshot, nil
}

func (u *SnapshotUsecase) fetchMetadata(ctx context.Context, accessToken string, ids []string) (map[string]model.VideoMetadata, error) {
	metadata := make(map[string]model.VideoMetadata, len(ids))
	for i, chunk := range ChunkIDs(ids, metadataBatchSize) {
		videos, err := u.videos.ListVideos(ctx, accessToken, chunk)
		if err != nil {
			return nil, fmt.Errorf("list videos batch %d: %w", i+1, err)
		}
		for _, v := range videos {
			if v.ID == "" {
				continue
			}
			metadata[v.ID] = v
		}
	}
	return metadata, nil
}

func (u *SnapshotUsecase) fanOut(ctx context.Context, snapshot *model.Snapshot) error {
	if len(u.archives) == 0 && len(u.notifiers) == 0 {
		return nil
	}

	event := dto.SnapshotEvent{
		RunID:       snapshot.RunID,
		Platform:    snapshot.Platform,
		Date:        snapshot.Date,
		Path:        snapshot.Path,
		RecordCount: len(snapshot.Records),
		WrittenAt:   snapshot.TakenAt,
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, archive := range u.archives {
		archive := archive
		g.Go(func() error {
			if err := archive.Archive(gctx, snapshot); err != nil {
				return fmt.Errorf("archive %s: %w", archive.Name(), err)
			}
			return nil
		})
	}
	for _, notifier := range u.notifiers {
		notifier := notifier
		g.Go(func() error {
			if err := notifier.Notify(gctx, event); err != nil {
				return fmt.Errorf("notify %s: %w", notifier.Name(), err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"runId": snapshot.RunID,
			"path":  snapshot.Path,
			"error": err,
		}).Error("Snapshot fan-out failed; file kept")
		return err
	}
	return nil
}

func validateCredential(c model.Credential) error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "YOUTUBE_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "YOUTUBE_CLIENT_SECRET")
	}
	if c.RefreshToken == "" {
		missing = append(missing, "YOUTUBE_REFRESH_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", model.ErrConfiguration, missing)
	}
	return nil
}
