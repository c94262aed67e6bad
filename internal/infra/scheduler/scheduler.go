package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// TickFunc is one notification pass. The context bounds its external calls.
type TickFunc func(ctx context.Context)

// NotificationScheduler drives the polling loop at a fixed minute tick. The
// cron chain delays an overdue run instead of overlapping it, so a slow tick
// postpones the next one but two ticks never execute concurrently.
type NotificationScheduler struct {
	cronEngine  *cron.Cron
	tick        TickFunc
	tickSpec    string
	tickTimeout time.Duration
	logger      *logrus.Entry
}

func NewNotificationScheduler(tick TickFunc, tickSpec string, tickTimeout time.Duration, logger *logrus.Entry) *NotificationScheduler {
	cronLogger := cron.PrintfLogger(logger)
	return &NotificationScheduler{
		cronEngine: cron.New(
			cron.WithLocation(time.Local),
			cron.WithChain(cron.DelayIfStillRunning(cronLogger)),
		),
		tick:        tick,
		tickSpec:    tickSpec,
		tickTimeout: tickTimeout,
		logger:      logger,
	}
}

func (s *NotificationScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.tickSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.tickTimeout)
		defer cancel()
		s.tick(ctx)
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.WithField("tick_spec", s.tickSpec).Info("Notification scheduler started")
	return nil
}

func (s *NotificationScheduler) Stop() {
	s.logger.Info("Stopping notification scheduler...")
	ctx := s.cronEngine.Stop() // waits for a running tick to finish
	<-ctx.Done()
	s.logger.Info("Notification scheduler stopped")
}
