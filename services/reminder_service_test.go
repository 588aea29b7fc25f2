package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type sweeperFunc func(ctx context.Context, now time.Time) (int, error)

func (f sweeperFunc) SendReminders(ctx context.Context, now time.Time) (int, error) {
	return f(ctx, now)
}

func TestReminderScheduler_RunOnce(t *testing.T) {
	calls := 0
	sweeper := sweeperFunc(func(ctx context.Context, _ time.Time) (int, error) {
		calls++
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return 0, errors.New("database is locked")
	})

	s := NewReminderScheduler(sweeper, testSettings(), testLogger())
	s.RunOnce()
	assert.Equal(t, 1, calls)
}

func TestReminderScheduler_InvalidSchedule(t *testing.T) {
	settings := testSettings()
	settings.ReminderCron = "every morning"
	s := NewReminderScheduler(sweeperFunc(func(context.Context, time.Time) (int, error) { return 0, nil }), settings, testLogger())
	assert.Error(t, s.Start())

	settings.ReminderCron = "0 9 * * *"
	s = NewReminderScheduler(sweeperFunc(func(context.Context, time.Time) (int, error) { return 0, nil }), settings, testLogger())
	assert.NoError(t, s.Start())
	s.Stop()
}
