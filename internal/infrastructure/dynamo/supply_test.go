package dynamo

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaxwatch/vaxwatch/internal/domain"
)

func supplyGetter(days ...string) func(context.Context, string) (*domain.SupplyRecord, error) {
	stored := make(map[string]*domain.SupplyRecord, len(days))
	for _, d := range days {
		stored[d] = &domain.SupplyRecord{Date: d}
	}
	return func(_ context.Context, date string) (*domain.SupplyRecord, error) {
		if rec, ok := stored[date]; ok {
			return rec, nil
		}
		return nil, fmt.Errorf("supply record %s: %w", date, domain.ErrNotFound)
	}
}

func TestLatestSupplyPair_WeekApart(t *testing.T) {
	latest, previous, err := latestSupplyPair(context.Background(),
		supplyGetter("2021-04-02", "2021-03-26"), day("2021-04-02"), 5)
	require.NoError(t, err)
	assert.Equal(t, "2021-04-02", latest.Date)
	assert.Equal(t, "2021-03-26", previous.Date)
}

func TestLatestSupplyPair_SkipsUnpairedReports(t *testing.T) {
	// The newest report has no counterpart a week earlier; the scan moves on
	// to the older pair instead of failing.
	latest, previous, err := latestSupplyPair(context.Background(),
		supplyGetter("2021-04-02", "2021-03-31", "2021-03-24"), day("2021-04-02"), 5)
	require.NoError(t, err)
	assert.Equal(t, "2021-03-31", latest.Date)
	assert.Equal(t, "2021-03-24", previous.Date)
}

func TestLatestSupplyPair_NoPairWithinLookback(t *testing.T) {
	_, _, err := latestSupplyPair(context.Background(),
		supplyGetter("2021-04-02"), day("2021-04-02"), 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
