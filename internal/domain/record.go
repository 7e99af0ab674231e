package domain

import "time"

// DayFormat is the canonical key format for date-keyed tables.
const DayFormat = "2006-01-02"

// DayKey normalizes a timestamp to its UTC calendar-day key.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

// ParseDay parses a day key back into a UTC midnight timestamp.
func ParseDay(key string) (time.Time, error) {
	return time.Parse(DayFormat, key)
}

// DailyRecord is one day of the vaccination rollout, keyed by date.
// Daily and Janssen are derived at build time, never copied from upstream.
// All fields are scalars so records compare with ==.
type DailyRecord struct {
	Date        string `json:"date" dynamodbav:"date"`
	Total       int64  `json:"total" dynamodbav:"total"`
	Daily       int64  `json:"daily" dynamodbav:"daily"`
	Pfizer      int64  `json:"pfizer" dynamodbav:"pfizer"`
	Moderna     int64  `json:"moderna" dynamodbav:"moderna"`
	AstraZeneca int64  `json:"astra_zeneca" dynamodbav:"astra_zeneca"`
	Janssen     int64  `json:"janssen" dynamodbav:"janssen"`
	FirstDose   int64  `json:"first_dose" dynamodbav:"first_dose"`
	SecondDose  int64  `json:"second_dose" dynamodbav:"second_dose"`
}

// RawObservation is the latest upstream feed reading before derivation.
// Cumulative counts only; per-day deltas are computed by the record builder.
type RawObservation struct {
	ReportedAt  time.Time
	Total       int64
	Pfizer      int64
	Moderna     int64
	AstraZeneca int64
	FirstDose   int64
	SecondDose  int64
}

// Day returns the calendar-day key the observation belongs to.
// Upstream timestamps are UTC-midnight anchored.
func (o RawObservation) Day() string {
	return DayKey(o.ReportedAt)
}
