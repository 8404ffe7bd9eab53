// Package scheduler owns the two fixed daily triggers: the unconditional
// session sweep and the reminder push. Both run on cron schedules evaluated
// in Japan Standard Time.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/example/attendance-bot/internal/notify"
	"github.com/example/attendance-bot/internal/persistence"
)

// ReminderText is pushed to every registered user each morning.
const ReminderText = "おはようございます。本日の勤怠情報の入力をお忘れなく。「勤怠」と送信すると入力を開始できます。"

// SessionSweeper discards all in-memory conversation state.
type SessionSweeper interface {
	SweepAll() int
}

// Recipients enumerates the users targeted by the reminder push.
type Recipients interface {
	ListUsers(ctx context.Context) ([]persistence.RegisteredUser, error)
}

// Config holds the two cron expressions, evaluated in JST.
type Config struct {
	SweepSchedule    string
	ReminderSchedule string
}

// Scheduler wires the cron runner to the session store, user registry, and
// outbound notifier.
type Scheduler struct {
	cron       *cron.Cron
	sweeper    SessionSweeper
	recipients Recipients
	notifier   notify.Notifier
	logger     *slog.Logger
}

// New registers both jobs with the cron runner. Invalid cron expressions are
// reported before the scheduler ever starts.
func New(cfg Config, sweeper SessionSweeper, recipients Recipients, notifier notify.Notifier, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		cron:       cron.New(cron.WithLocation(jstLocation())),
		sweeper:    sweeper,
		recipients: recipients,
		notifier:   notifier,
		logger:     logger,
	}

	if _, err := s.cron.AddFunc(cfg.SweepSchedule, func() {
		s.RunSweep(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("scheduler: invalid sweep schedule %q: %w", cfg.SweepSchedule, err)
	}

	if _, err := s.cron.AddFunc(cfg.ReminderSchedule, func() {
		s.RunReminder(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("scheduler: invalid reminder schedule %q: %w", cfg.ReminderSchedule, err)
	}

	return s, nil
}

// Start launches the cron runner in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron runner and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunSweep unconditionally clears every session, however far along. Partial
// records are discarded, never persisted.
func (s *Scheduler) RunSweep(ctx context.Context) {
	dropped := s.sweeper.SweepAll()
	s.logger.InfoContext(ctx, "session sweep completed", "component", "scheduler", "dropped", dropped)
}

// RunReminder pushes the reminder to every registered user. Each delivery is
// an independent attempt; a failure is logged and the remaining recipients
// still get theirs.
func (s *Scheduler) RunReminder(ctx context.Context) {
	users, err := s.recipients.ListUsers(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list reminder recipients", "component", "scheduler", "error", err)
		return
	}

	var delivered, failed int
	for _, user := range users {
		if err := s.notifier.Push(ctx, user.LineID, ReminderText); err != nil {
			failed++
			s.logger.ErrorContext(ctx, "reminder delivery failed", "component", "scheduler", "line_id", user.LineID, "error", err)
			continue
		}
		delivered++
	}

	s.logger.InfoContext(ctx, "reminder push completed", "component", "scheduler", "delivered", delivered, "failed", failed)
}

func jstLocation() *time.Location {
	return time.FixedZone("JST", 9*60*60)
}
