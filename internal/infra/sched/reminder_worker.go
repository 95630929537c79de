package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"prime-fitness-backend/internal/infra/redis"
	"prime-fitness-backend/internal/usecase"
)

const reminderSweepLockKey = "lock:reminder_sweep"

// ReminderWorker drives the reminder sweep on a short interval. The sweep
// window is two minutes, so the interval must stay below that or due
// reminders are skipped. A distributed lock keeps multiple instances from
// sweeping concurrently; the push-log uniqueness constraint is the backstop.
type ReminderWorker struct {
	interval time.Duration
	remUC    usecase.ReminderUseCase
	locker   redis.Locker
	log      *zerolog.Logger
}

func NewReminderWorker(interval time.Duration, remUC usecase.ReminderUseCase, locker redis.Locker, logger *zerolog.Logger) *ReminderWorker {
	compLog := logger.With().Str("component", "ReminderWorker").Logger()
	return &ReminderWorker{
		interval: interval,
		remUC:    remUC,
		locker:   locker,
		log:      &compLog,
	}
}

func (w *ReminderWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting reminder worker")
	// Run once on startup, then on every tick
	w.runSweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping reminder worker")
			return ctx.Err()
		case <-ticker.C:
			w.runSweep(ctx)
		}
	}
}

func (w *ReminderWorker) runSweep(ctx context.Context) {
	token, err := w.locker.TryLock(ctx, reminderSweepLockKey, w.interval)
	if err != nil {
		// Another instance holds the sweep.
		return
	}
	defer func() {
		if err := w.locker.Unlock(ctx, reminderSweepLockKey, token); err != nil {
			w.log.Warn().Err(err).Msg("reminder sweep unlock failed")
		}
	}()

	sent, err := w.remUC.Sweep(ctx, time.Now().UTC())
	if err != nil {
		w.log.Error().Err(err).Msg("reminder sweep failed")
	}
	if sent > 0 {
		w.log.Info().Int("count", sent).Msg("reminders delivered")
	}
}
