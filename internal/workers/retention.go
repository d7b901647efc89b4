package workers

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hookd/internal/platform/config"
)

type DeliveryLogPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionWorker prunes old delivery log rows. The dispatch path only ever
// appends; without this the audit trail grows unbounded.
type RetentionWorker struct {
	logs     DeliveryLogPruner
	interval time.Duration
	maxAge   time.Duration
	log      zerolog.Logger
}

func NewRetentionWorker(logs DeliveryLogPruner, cfg config.RetentionConfig) *RetentionWorker {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 30 * 24 * time.Hour
	}
	return &RetentionWorker{
		logs:     logs,
		interval: interval,
		maxAge:   maxAge,
		log:      log.With().Str("component", "retention").Logger(),
	}
}

// Run blocks until the context is cancelled, pruning once per interval.
func (w *RetentionWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info().Dur("interval", w.interval).Dur("max_age", w.maxAge).Msg("retention worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("retention worker stopped")
			return
		case <-ticker.C:
			w.PruneOnce(ctx)
		}
	}
}

func (w *RetentionWorker) PruneOnce(ctx context.Context) {
	cutoff := time.Now().Add(-w.maxAge)
	deleted, err := w.logs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		w.log.Error().Err(err).Msg("failed to prune delivery logs")
		return
	}
	if deleted > 0 {
		w.log.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("pruned delivery logs")
	}
}
