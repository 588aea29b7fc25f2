// services/reminder_service.go
package services

import (
	"context"
	"log/slog"
	"time"

	"bookingpro-backend/config"

	"github.com/robfig/cron/v3"
)

// ReminderSweeper is the part of the workflow the scheduler drives.
type ReminderSweeper interface {
	SendReminders(ctx context.Context, now time.Time) (int, error)
}

type ReminderScheduler struct {
	cron     *cron.Cron
	sweeper  ReminderSweeper
	settings *config.Settings
	logger   *slog.Logger
}

func NewReminderScheduler(sweeper ReminderSweeper, settings *config.Settings, logger *slog.Logger) *ReminderScheduler {
	return &ReminderScheduler{
		cron:     cron.New(cron.WithLocation(settings.Location())),
		sweeper:  sweeper,
		settings: settings,
		logger:   logger,
	}
}

// Start registers the daily sweep on Settings.ReminderCron and starts the
// cron runner in the background.
func (s *ReminderScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.settings.ReminderCron, s.RunOnce); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("reminder scheduler started", "schedule", s.settings.ReminderCron, "timezone", s.settings.Timezone)
	return nil
}

// Stop waits for a running sweep to finish.
func (s *ReminderScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("reminder scheduler stopped")
}

func (s *ReminderScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	s.logger.Info("starting reminder sweep")
	sent, err := s.sweeper.SendReminders(ctx, time.Now())
	if err != nil {
		s.logger.Error("reminder sweep failed", "sent", sent, "error", err)
		return
	}
	s.logger.Info("reminder sweep completed", "sent", sent)
}
