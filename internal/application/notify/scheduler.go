package notify

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler triggers notifier cycles on a fixed process-wide cadence,
// independent of any one subscriber's actions.
type Scheduler struct {
	notifier *Notifier
	interval time.Duration
	log      *slog.Logger
}

func NewScheduler(notifier *Notifier, interval time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{notifier: notifier, interval: interval, log: log}
}

// Run cycles until ctx is cancelled. A failed cycle is logged and retried on
// the next tick; there is no in-process retry within a cycle.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		if _, err := s.notifier.RunOnce(ctx); err != nil {
			s.log.Warn("notifier cycle failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
