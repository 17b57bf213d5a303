package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"yt-analytics/domain/repository"
	"yt-analytics/infrastructure/cache"
	"yt-analytics/infrastructure/configuration"
	"yt-analytics/infrastructure/logger"
	"yt-analytics/infrastructure/persistence"
	"yt-analytics/infrastructure/pubsub"
	"yt-analytics/infrastructure/queue"
	"yt-analytics/infrastructure/servicebus"
	"yt-analytics/infrastructure/storage"
)

// InitiateArchives connects every driver listed in archive.drivers.
// The returned func releases the connections.
func InitiateArchives(ctx context.Context) ([]repository.ISnapshotArchive, func(), error) {
	var archives []repository.ISnapshotArchive
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	cfg := configuration.C.Archive

	for _, driver := range cfg.Drivers {
		switch strings.ToLower(strings.TrimSpace(driver)) {
		case "postgres", "psql":
			db, err := persistence.NewPostgreSQLDB()
			if err != nil {
				closeAll()
				return nil, func() {}, fmt.Errorf("postgres archive: %w", err)
			}
			closers = append(closers, func() { _ = db.Close() })
			if err := persistence.EnsureSnapshotSchema(db); err != nil {
				closeAll()
				return nil, func() {}, err
			}
			archives = append(archives, persistence.NewSnapshotArchive(db))
		case "mssql":
			db, err := persistence.NewMSSQLDB()
			if err != nil {
				closeAll()
				return nil, func() {}, fmt.Errorf("mssql archive: %w", err)
			}
			closers = append(closers, func() { _ = db.Close() })
			if err := persistence.EnsureSnapshotSchemaMSSQL(db); err != nil {
				closeAll()
				return nil, func() {}, err
			}
			archives = append(archives, persistence.NewSnapshotArchiveMSSQL(db))
		case "mysql":
			db, err := persistence.NewMySqlDB()
			if err != nil {
				closeAll()
				return nil, func() {}, fmt.Errorf("mysql archive: %w", err)
			}
			if sqlDB, err := db.DB(); err == nil {
				closers = append(closers, func() { _ = sqlDB.Close() })
			}
			archive := persistence.NewSnapshotArchiveMySQL(db)
			if err := archive.EnsureSchema(); err != nil {
				closeAll()
				return nil, func() {}, fmt.Errorf("migrate video_snapshots (mysql): %w", err)
			}
			archives = append(archives, archive)
		case "mongo":
			client, err := persistence.NewMongoDb(ctx, cfg.Mongo.URI)
			if err != nil {
				closeAll()
				return nil, func() {}, fmt.Errorf("mongo archive: %w", err)
			}
			closers = append(closers, func() {
				disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = client.Disconnect(disconnectCtx)
			})
			archives = append(archives, persistence.NewSnapshotArchiveMongo(client, cfg.Mongo.Database, cfg.Mongo.Collection))
		case "redis":
			client, err := cache.NewCache(ctx,
				fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
				cfg.Redis.Username,
				cfg.Redis.Password,
			)
			if err != nil {
				closeAll()
				return nil, func() {}, fmt.Errorf("redis archive: %w", err)
			}
			closers = append(closers, func() { _ = client.Close() })
			archives = append(archives, cache.NewSnapshotCache(client, time.Duration(cfg.Redis.TTLHours)*time.Hour))
		case "s3":
			client, err := storage.NewS3Client(ctx, storage.BucketConfig{
				Bucket:    cfg.S3.Bucket,
				Region:    cfg.S3.Region,
				Endpoint:  cfg.S3.Endpoint,
				AccessKey: cfg.S3.AccessKey,
				SecretKey: cfg.S3.SecretKey,
				Prefix:    cfg.S3.Prefix,
			})
			if err != nil {
				closeAll()
				return nil, func() {}, fmt.Errorf("s3 archive: %w", err)
			}
			archives = append(archives, storage.NewSnapshotBucket(client, cfg.S3.Bucket, cfg.S3.Prefix))
		case "":
		default:
			closeAll()
			return nil, func() {}, fmt.Errorf("unknown archive driver %q", driver)
		}
	}

	for _, a := range archives {
		logger.GetLogger().WithField("archive", a.Name()).Info("Archive enabled")
	}
	return archives, closeAll, nil
}

// InitiateNotifiers enables a notifier for every broker whose target is configured.
func InitiateNotifiers(ctx context.Context) ([]repository.ISnapshotNotifier, func(), error) {
	var notifiers []repository.ISnapshotNotifier
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	cfg := configuration.C.Notify

	if cfg.PubSub.Topic != "" {
		client, err := pubsub.NewPubSub(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("pubsub notifier: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		notifiers = append(notifiers, pubsub.NewSnapshotPubSub(client, cfg.PubSub.Topic))
	}
	if cfg.ServiceBus.Queue != "" {
		client, err := servicebus.NewServiceBus(ctx, cfg.ServiceBus.Namespace)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("service bus notifier: %w", err)
		}
		closers = append(closers, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Close(closeCtx)
		})
		notifiers = append(notifiers, servicebus.NewSnapshotServiceBus(client, cfg.ServiceBus.Queue))
	}
	if cfg.Asynq.RedisAddr != "" {
		client := queue.NewAsynqClient(cfg.Asynq.RedisAddr)
		closers = append(closers, func() { _ = client.Close() })
		notifiers = append(notifiers, queue.NewSnapshotQueue(client, cfg.Asynq.Queue))
	}

	for _, n := range notifiers {
		logger.GetLogger().WithField("notifier", n.Name()).Info("Notifier enabled")
	}
	return notifiers, closeAll, nil
}
