package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"yt-analytics/infrastructure/logger"

	"github.com/robfig/cron"
)

// Job is one scheduled unit of work
type Job func(ctx context.Context) error

// Scheduler runs a Job on a cron spec and never overlaps two runs
type Scheduler struct {
	spec    string
	job     Job
	cron    *cron.Cron
	running int32
	wg      sync.WaitGroup
}

// NewScheduler validates spec (seconds field first, or a descriptor such as @daily)
func NewScheduler(spec string, job Job) (*Scheduler, error) {
	if _, err := cron.Parse(spec); err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return &Scheduler{spec: spec, job: job, cron: cron.New()}, nil
}

// Run starts the schedule and blocks until ctx is done, then waits for an in-flight run
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.cron.AddFunc(s.spec, func() { s.trigger(ctx) }); err != nil {
		return fmt.Errorf("schedule job: %w", err)
	}
	s.cron.Start()
	logger.GetLogger().WithField("spec", s.spec).Info("Scheduler started")

	<-ctx.Done()
	s.cron.Stop()
	s.wg.Wait()
	logger.GetLogger().Info("Scheduler stopped")
	return nil
}

// trigger runs the job unless the previous run is still going
func (s *Scheduler) trigger(ctx context.Context) bool {
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		logger.GetLogger().WithField("spec", s.spec).Warn("Previous run still in progress, skipping tick")
		return false
	}
	s.wg.Add(1)
	defer func() {
		atomic.StoreInt32(&s.running, 0)
		s.wg.Done()
	}()
	if ctx.Err() != nil {
		return false
	}
	if err := s.job(ctx); err != nil {
		logger.GetLogger().WithField("error", err).Error("Scheduled run failed")
	}
	return true
}
