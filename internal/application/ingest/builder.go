package ingest

import "github.com/vaxwatch/vaxwatch/internal/domain"

// BuildRecord derives the daily record to store from the latest upstream
// observation and the most recent prior-day record. Pure function: no I/O,
// same inputs always produce the same record.
//
// The upstream feed reports cumulative figures for Pfizer, Moderna and
// AstraZeneca but not Janssen, and the vendor figures don't sum to the
// reported total. The Janssen delta is therefore the residual between the
// day's total delta and the sum of the known vendor deltas, accumulated on
// top of the prior day's Janssen figure.
//
// Janssen is a single-dose vaccine: its recipients are fully vaccinated, so
// the reported first/second dose split is shifted by the Janssen cumulative.
//
// A prev of nil means no prior record exists within the lookback bound; the
// day is treated as the first on record. Upstream corrections that regress
// the total produce a negative Daily — stored as-is, no clamping.
func BuildRecord(raw *domain.RawObservation, prev *domain.DailyRecord) *domain.DailyRecord {
	rec := &domain.DailyRecord{
		Date:        raw.Day(),
		Total:       raw.Total,
		Pfizer:      raw.Pfizer,
		Moderna:     raw.Moderna,
		AstraZeneca: raw.AstraZeneca,
	}

	if prev == nil {
		rec.Daily = raw.Total
		rec.Janssen = raw.Total - (raw.Pfizer + raw.Moderna + raw.AstraZeneca)
	} else {
		rec.Daily = raw.Total - prev.Total
		pfizerDelta := raw.Pfizer - prev.Pfizer
		modernaDelta := raw.Moderna - prev.Moderna
		astraDelta := raw.AstraZeneca - prev.AstraZeneca
		janssenDelta := rec.Daily - (pfizerDelta + modernaDelta + astraDelta)
		rec.Janssen = prev.Janssen + janssenDelta
	}

	rec.FirstDose = raw.FirstDose - rec.Janssen
	rec.SecondDose = raw.SecondDose + rec.Janssen
	return rec
}
