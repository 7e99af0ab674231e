package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vaxwatch/vaxwatch/internal/domain"
)

// Outcome classifies one poll cycle and selects the next-poll delay.
type Outcome int

const (
	// OutcomeFailed: the fetch or a storage operation failed; retry soon.
	OutcomeFailed Outcome = iota
	// OutcomeUnchanged: the fetched day is already stored with identical
	// derived values.
	OutcomeUnchanged
	// OutcomeAbsorbed: a new or revised record was written; nothing more to
	// do until the feed moves again.
	OutcomeAbsorbed
)

// Delays maps each cycle outcome to the sleep before the next poll.
type Delays struct {
	Failed    time.Duration
	Unchanged time.Duration
	Absorbed  time.Duration
}

func (d Delays) For(o Outcome) time.Duration {
	switch o {
	case OutcomeUnchanged:
		return d.Unchanged
	case OutcomeAbsorbed:
		return d.Absorbed
	default:
		return d.Failed
	}
}

type feedSource interface {
	FetchLatest(ctx context.Context) (*domain.RawObservation, error)
}

type recordStore interface {
	GetByDate(ctx context.Context, date string) (*domain.DailyRecord, error)
	LatestBefore(ctx context.Context, day time.Time, lookback int) (*domain.DailyRecord, error)
	Put(ctx context.Context, rec *domain.DailyRecord) error
}

// Poller drives fetch → build → upsert on an outcome-dependent cadence.
// Each cycle is independent: a failure abandons the cycle, never the loop.
type Poller struct {
	feed     feedSource
	records  recordStore
	lookback int
	delays   Delays
	log      *slog.Logger
}

func NewPoller(feed feedSource, records recordStore, lookback int, delays Delays, log *slog.Logger) *Poller {
	return &Poller{feed: feed, records: records, lookback: lookback, delays: delays, log: log}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	for {
		outcome := p.cycle(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.delays.For(outcome)):
		}
	}
}

func (p *Poller) cycle(ctx context.Context) Outcome {
	raw, err := p.feed.FetchLatest(ctx)
	if err != nil {
		p.log.Warn("feed fetch failed", "err", err)
		return OutcomeFailed
	}

	day, err := domain.ParseDay(raw.Day())
	if err != nil {
		p.log.Warn("unparseable observation day", "day", raw.Day(), "err", err)
		return OutcomeFailed
	}

	prev, err := p.records.LatestBefore(ctx, day, p.lookback)
	if errors.Is(err, domain.ErrNotFound) {
		prev = nil // first day on record
	} else if err != nil {
		p.log.Warn("prior-day lookup failed", "day", raw.Day(), "err", err)
		return OutcomeFailed
	}

	rec := BuildRecord(raw, prev)

	existing, err := p.records.GetByDate(ctx, rec.Date)
	if err == nil && *existing == *rec {
		return OutcomeUnchanged
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		p.log.Warn("record lookup failed", "date", rec.Date, "err", err)
		return OutcomeFailed
	}

	if err := p.records.Put(ctx, rec); err != nil {
		p.log.Warn("record upsert failed", "date", rec.Date, "err", err)
		return OutcomeFailed
	}

	if existing != nil {
		p.log.Info("absorbed revised record", "date", rec.Date, "total", rec.Total, "daily", rec.Daily)
	} else {
		p.log.Info("absorbed new record", "date", rec.Date, "total", rec.Total, "daily", rec.Daily)
	}
	return OutcomeAbsorbed
}
