// Package stats serves the on-demand read queries behind the public API:
// latest-day figures, rolling 7-day totals, overall rollout progress and
// weekly supply deliveries. All reads tolerate feed gaps up to the
// configured lookback; past the bound they report domain.ErrNotFound, which
// the transport maps to a clean "no data available" response.
package stats

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/vaxwatch/vaxwatch/internal/domain"
)

// weeklyWindow is the number of calendar days in the rolling window.
const weeklyWindow = 7

// Weekly aggregates the rolling window. Days missing from the store
// contribute zero doses.
type Weekly struct {
	Since        string `json:"since"`
	Until        string `json:"until"`
	Total        int64  `json:"total"`
	DailyAverage int64  `json:"daily_average"`
}

type Service interface {
	Latest(ctx context.Context) (*domain.DailyRecord, *domain.DailyRecord, error)
	Week(ctx context.Context) (*Weekly, error)
	Overall(ctx context.Context) (*domain.DailyRecord, *Weekly, error)
	Supply(ctx context.Context) (*domain.SupplyRecord, *domain.SupplyRecord, error)
}

type recordStore interface {
	GetByDate(ctx context.Context, date string) (*domain.DailyRecord, error)
	Latest(ctx context.Context, anchor time.Time, lookback int) (*domain.DailyRecord, error)
	LatestWithPrevious(ctx context.Context, anchor time.Time, lookback int) (*domain.DailyRecord, *domain.DailyRecord, error)
}

type supplyStore interface {
	LatestPair(ctx context.Context, anchor time.Time, lookback int) (*domain.SupplyRecord, *domain.SupplyRecord, error)
}

type service struct {
	records  recordStore
	supply   supplyStore
	lookback int
	now      func() time.Time
}

func NewService(records recordStore, supply supplyStore, lookback int, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{records: records, supply: supply, lookback: lookback, now: now}
}

func (s *service) Latest(ctx context.Context) (*domain.DailyRecord, *domain.DailyRecord, error) {
	return s.records.LatestWithPrevious(ctx, s.now(), s.lookback)
}

func (s *service) Week(ctx context.Context) (*Weekly, error) {
	latest, err := s.records.Latest(ctx, s.now(), s.lookback)
	if err != nil {
		return nil, err
	}
	return s.weekEndingAt(ctx, latest)
}

func (s *service) Overall(ctx context.Context) (*domain.DailyRecord, *Weekly, error) {
	latest, err := s.records.Latest(ctx, s.now(), s.lookback)
	if err != nil {
		return nil, nil, err
	}
	week, err := s.weekEndingAt(ctx, latest)
	if err != nil {
		return nil, nil, err
	}
	return latest, week, nil
}

func (s *service) Supply(ctx context.Context) (*domain.SupplyRecord, *domain.SupplyRecord, error) {
	return s.supply.LatestPair(ctx, s.now(), s.lookback)
}

func (s *service) weekEndingAt(ctx context.Context, latest *domain.DailyRecord) (*Weekly, error) {
	end, err := domain.ParseDay(latest.Date)
	if err != nil {
		return nil, err
	}

	var total int64
	for offset := 0; offset < weeklyWindow; offset++ {
		rec, err := s.records.GetByDate(ctx, domain.DayKey(end.AddDate(0, 0, -offset)))
		if errors.Is(err, domain.ErrNotFound) {
			continue // feed gap, counts as zero
		}
		if err != nil {
			return nil, err
		}
		total += rec.Daily
	}

	return &Weekly{
		Since:        domain.DayKey(end.AddDate(0, 0, -(weeklyWindow - 1))),
		Until:        latest.Date,
		Total:        total,
		DailyAverage: int64(math.Round(float64(total) / weeklyWindow)),
	}, nil
}
