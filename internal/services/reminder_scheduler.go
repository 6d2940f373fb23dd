package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"vectora/internal/models"
)

const reminderBatch = 100

// ReminderStore is the part of the task repository the scheduler touches.
type ReminderStore interface {
	ListDueForReminder(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error)
	SetReminderFired(ctx context.Context, id int64, at time.Time) error
}

type ReminderNotifier interface {
	SendReminder(ctx context.Context, r models.Reminder) error
}

// ReminderScheduler polls for tasks whose reminder window has opened and notifies
// each owner once per window.
type ReminderScheduler struct {
	store    ReminderStore
	notifier ReminderNotifier
	every    time.Duration
	now      func() time.Time
	log      *zap.Logger
}

func NewReminderScheduler(store ReminderStore, notifier ReminderNotifier, every time.Duration, log *zap.Logger) *ReminderScheduler {
	if every <= 0 {
		every = time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReminderScheduler{store: store, notifier: notifier, every: every, now: time.Now, log: log}
}

// Run ticks until ctx is cancelled.
func (s *ReminderScheduler) Run(ctx context.Context) {
	s.log.Info("reminder scheduler started", zap.Duration("interval", s.every))
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()

	for {
		if _, err := s.Tick(ctx); err != nil && ctx.Err() == nil {
			s.log.Error("reminder tick failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			s.log.Info("reminder scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}

// Tick runs one pass and returns how many reminders were delivered. A failed send
// leaves the task unmarked so the next tick retries it.
func (s *ReminderScheduler) Tick(ctx context.Context) (int, error) {
	now := s.now().UTC()
	due, err := s.store.ListDueForReminder(ctx, now, reminderBatch)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, r := range due {
		if err := s.notifier.SendReminder(ctx, r); err != nil {
			s.log.Warn("reminder send failed", zap.Int64("task_id", r.TaskID), zap.Error(err))
			continue
		}
		if err := s.store.SetReminderFired(ctx, r.TaskID, now); err != nil {
			s.log.Error("mark reminder failed", zap.Int64("task_id", r.TaskID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}
