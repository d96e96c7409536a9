package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/community-pulse/backend/pkg/logger"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

const jobTimeout = 30 * time.Minute

// Scheduler runs the collection loop on a cron cadence.
type Scheduler struct {
	cron *cron.Cron
	jobs map[string]cron.EntryID
}

func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		jobs: make(map[string]cron.EntryID),
	}
}

// AddJob registers a named job under a cron expression. Job failures are
// logged and never stop the schedule.
func (s *Scheduler) AddJob(name, schedule string, job Job) error {
	entryID, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		logger.Info("Starting scheduled job", zap.String("job", name))
		start := time.Now()

		if err := job(ctx); err != nil {
			logger.Error("Scheduled job failed",
				zap.String("job", name),
				zap.Error(err),
			)
			return
		}

		logger.Info("Scheduled job completed",
			zap.String("job", name),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = entryID
	logger.Info("Job scheduled", zap.String("job", name), zap.String("schedule", schedule))

	return nil
}

// AddIntervalJob schedules a job every intervalMinutes.
func (s *Scheduler) AddIntervalJob(name string, intervalMinutes int, job Job) error {
	return s.AddJob(name, fmt.Sprintf("@every %dm", intervalMinutes), job)
}

func (s *Scheduler) Start() {
	logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop halts scheduling and returns a context that completes when running
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	logger.Info("Stopping scheduler")
	return s.cron.Stop()
}
