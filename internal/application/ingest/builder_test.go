package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vaxwatch/vaxwatch/internal/domain"
)

func obs(day string, total, pfizer, moderna, astra, first, second int64) *domain.RawObservation {
	t, _ := domain.ParseDay(day)
	return &domain.RawObservation{
		ReportedAt:  t,
		Total:       total,
		Pfizer:      pfizer,
		Moderna:     moderna,
		AstraZeneca: astra,
		FirstDose:   first,
		SecondDose:  second,
	}
}

func TestBuildRecord_FirstDayOnRecord(t *testing.T) {
	raw := obs("2021-04-01", 100, 40, 30, 20, 70, 25)

	rec := BuildRecord(raw, nil)

	assert.Equal(t, "2021-04-01", rec.Date)
	assert.Equal(t, int64(100), rec.Total)
	assert.Equal(t, int64(100), rec.Daily)
	// Residual between total and the named vendors.
	assert.Equal(t, int64(10), rec.Janssen)
	// Single-dose recipients shift the dose split.
	assert.Equal(t, int64(60), rec.FirstDose)
	assert.Equal(t, int64(35), rec.SecondDose)
}

func TestBuildRecord_DiffsAgainstPriorDay(t *testing.T) {
	prev := &domain.DailyRecord{
		Date: "2021-04-01", Total: 1000, Daily: 100,
		Pfizer: 400, Moderna: 300, AstraZeneca: 200, Janssen: 100,
	}
	raw := obs("2021-04-02", 1200, 480, 350, 240, 700, 500)

	rec := BuildRecord(raw, prev)

	assert.Equal(t, int64(200), rec.Daily)
	// 200 total minus 170 across named vendors leaves 30 for Janssen.
	assert.Equal(t, int64(130), rec.Janssen)
	assert.Equal(t, int64(570), rec.FirstDose)
	assert.Equal(t, int64(630), rec.SecondDose)
}

func TestBuildRecord_ZeroResidual(t *testing.T) {
	prev := &domain.DailyRecord{
		Date: "2021-04-01", Total: 900, Pfizer: 400, Moderna: 300, AstraZeneca: 200, Janssen: 0,
	}
	raw := obs("2021-04-02", 1000, 450, 330, 220, 800, 200)

	rec := BuildRecord(raw, prev)

	assert.Equal(t, int64(100), rec.Daily)
	assert.Equal(t, int64(0), rec.Janssen)
}

func TestBuildRecord_UpstreamRegressionKeptAsIs(t *testing.T) {
	prev := &domain.DailyRecord{
		Date: "2021-04-01", Total: 1000, Pfizer: 400, Moderna: 300, AstraZeneca: 200, Janssen: 100,
	}
	raw := obs("2021-04-02", 950, 390, 290, 195, 600, 350)

	rec := BuildRecord(raw, prev)

	// Corrections are stored without clamping.
	assert.Equal(t, int64(-50), rec.Daily)
	assert.Equal(t, int64(75), rec.Janssen)
}

func TestBuildRecord_IsDeterministic(t *testing.T) {
	prev := &domain.DailyRecord{Date: "2021-04-01", Total: 500, Pfizer: 250, Moderna: 150, AstraZeneca: 50, Janssen: 50}
	raw := obs("2021-04-02", 600, 290, 180, 70, 400, 150)

	a := BuildRecord(raw, prev)
	b := BuildRecord(raw, prev)
	assert.Equal(t, *a, *b)
}

func TestRawObservation_DayUsesUTC(t *testing.T) {
	loc := time.FixedZone("IST", 3600)
	o := domain.RawObservation{ReportedAt: time.Date(2021, 4, 2, 0, 30, 0, 0, loc)}
	assert.Equal(t, "2021-04-01", o.Day())
}
