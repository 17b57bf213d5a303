package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	oauthclient "yt-analytics/infrastructure/clients/oauth"
	youtubeclient "yt-analytics/infrastructure/clients/youtube"
	"yt-analytics/infrastructure/configuration"
	"yt-analytics/infrastructure/logger"
	"yt-analytics/infrastructure/persistence"
	"yt-analytics/infrastructure/scheduler"
	"yt-analytics/usecase"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()
	os.Exit(run())
}

func run() int {
	configName := pflag.String("config", "", "config file base name (default config or config-$ENV)")
	once := pflag.Bool("once", false, "run a single snapshot and exit, ignoring schedule.cron")
	pflag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")
	if err := configuration.LoadConfig(*configName); err != nil {
		logger.GetLogger().WithField("error", err).Error("Configuration failed")
		return 1
	}

	youtubeConfig := configuration.GetYouTubeConfig()
	credential, err := youtubeConfig.Credential()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("YouTube credential not configured")
		return 1
	}

	archives, closeArchives, err := InitiateArchives(ctx)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Archive initialization failed")
		return 1
	}
	defer closeArchives()

	notifiers, closeNotifiers, err := InitiateNotifiers(ctx)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Notifier initialization failed")
		return 1
	}
	defer closeNotifiers()

	youtubeClient := youtubeclient.NewYouTubeClient(&youtubeclient.Config{
		AnalyticsEndpoint: youtubeConfig.AnalyticsEndpoint,
		DataEndpoint:      youtubeConfig.DataEndpoint,
		Timeout:           youtubeConfig.Timeout,
		RequestsPerSecond: youtubeConfig.RequestsPerSecond,
	})
	snapshotUsecase := usecase.NewSnapshotUsecase(
		credential,
		oauthclient.NewTokenClient(youtubeConfig.TokenURL, nil, youtubeConfig.Timeout),
		youtubeClient,
		youtubeClient,
		persistence.NewSnapshotFileRepository(afero.NewOsFs(), configuration.C.Output.Dir),
	).WithArchives(archives...).WithNotifiers(notifiers...)

	logger.GetLogger().WithFields(map[string]interface{}{
		"outputDir": configuration.C.Output.Dir,
		"cron":      configuration.C.Schedule.Cron,
		"archives":  len(archives),
		"notifiers": len(notifiers),
	}).Info("Starting application")

	if *once || configuration.C.Schedule.Cron == "" {
		if _, err := snapshotUsecase.Run(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Snapshot run failed")
			return 1
		}
		return 0
	}

	cronScheduler, err := scheduler.NewScheduler(configuration.C.Schedule.Cron, func(ctx context.Context) error {
		_, err := snapshotUsecase.Run(ctx)
		return err
	})
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Invalid schedule")
		return 1
	}
	if err := cronScheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.GetLogger().WithField("error", err).Error("Scheduler returned an error")
		return 1
	}
	logger.GetLogger().Info("Application shutdown requested")
	return 0
}
