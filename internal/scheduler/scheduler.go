package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockwise/internal/config"
)

// Digester builds the upcoming important-date digest.
type Digester interface {
	UpcomingDigest(now time.Time, horizon time.Duration) (string, int)
}

// Notifier delivers a digest to the farmer.
type Notifier interface {
	Notify(ctx context.Context, body string) (string, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	digester Digester
	notifier Notifier
	cfg      config.ReminderConfig
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. notifier may be nil, in
// which case digests are only logged.
func NewScheduler(cfg config.ReminderConfig, digester Digester, notifier Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		digester: digester,
		notifier: notifier,
		cfg:      cfg,
		location: loc,
		now:      time.Now,
		logger:   logger,
	}, nil
}

// Start registers the reminder job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule), zap.String("timezone", s.location.String()))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.sendReminders); err != nil {
		return fmt.Errorf("schedule reminders: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// startOfDay returns the current calendar day in the scheduler's location at
// UTC midnight, the form important dates are stored in.
func (s *Scheduler) startOfDay() time.Time {
	year, month, day := s.now().In(s.location).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (s *Scheduler) sendReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("failed to send reminder digest", zap.Error(err))
	}
}

// RunOnce builds the digest for the configured horizon and delivers it.
// Nothing is sent when no dates fall within the horizon. The horizon starts at
// the beginning of the current day so that dates due today are included.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	digest, count := s.digester.UpcomingDigest(s.startOfDay(), s.cfg.Horizon)
	if count == 0 {
		s.logger.Info("no upcoming important dates")
		return nil
	}

	if s.notifier == nil {
		s.logger.Info("reminder digest", zap.Int("entries", count), zap.String("digest", digest))
		return nil
	}

	id, err := s.notifier.Notify(ctx, digest)
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	s.logger.Info("reminder digest sent", zap.Int("entries", count), zap.String("message_id", id))
	return nil
}
