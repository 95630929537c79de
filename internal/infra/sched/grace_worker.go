package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"prime-fitness-backend/internal/domain/ports/repository"
	"prime-fitness-backend/internal/infra/metrics"
)

// GraceWorker periodically flips stored subscription statuses to expired
// once the grace window has lapsed. Reads never depend on it (status is
// computed on the fly); it only keeps stored rows and gauges honest.
type GraceWorker struct {
	interval time.Duration
	subs     repository.SubscriptionRepository
	log      *zerolog.Logger
}

func NewGraceWorker(interval time.Duration, subs repository.SubscriptionRepository, logger *zerolog.Logger) *GraceWorker {
	compLog := logger.With().Str("component", "GraceWorker").Logger()
	return &GraceWorker{
		interval: interval,
		subs:     subs,
		log:      &compLog,
	}
}

func (w *GraceWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting grace worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping grace worker")
			return ctx.Err()
		case <-ticker.C:
			w.runSweep(ctx)
		}
	}
}

func (w *GraceWorker) runSweep(ctx context.Context) {
	n, err := w.subs.MarkExpiredPastGrace(ctx, nil, time.Now().UTC())
	if err != nil {
		w.log.Error().Err(err).Msg("grace sweep failed")
		return
	}
	if n > 0 {
		metrics.IncSubscriptionsExpired(n)
		w.log.Info().Int("count", n).Msg("subscriptions expired past grace")
	}

	counts, err := w.subs.CountByStatus(ctx, nil)
	if err != nil {
		w.log.Error().Err(err).Msg("subscription status counts failed")
		return
	}
	metrics.SetSubscriptionsTotal(counts)
}
