// Package render turns stored records into human-readable notification and
// stats payloads. Plain text: the same payload goes out over SMS and email.
package render

import (
	"fmt"
	"strings"

	"github.com/vaxwatch/vaxwatch/internal/application/stats"
	"github.com/vaxwatch/vaxwatch/internal/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var weekdays = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Renderer formats payloads. eligible is the population denominator for
// dose-coverage percentages.
type Renderer struct {
	p        *message.Printer
	eligible int64
}

func New(eligiblePopulation int64) *Renderer {
	return &Renderer{
		p:        message.NewPrinter(language.English),
		eligible: eligiblePopulation,
	}
}

// DailyUpdate renders the fan-out payload for a newly announced day.
func (r *Renderer) DailyUpdate(latest, previous *domain.DailyRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", dayOfWeek(latest.Date), latest.Date)
	r.p.Fprintf(&b, "Daily doses: %d\n\n", latest.Daily)
	r.p.Fprintf(&b, "Pfizer: %d\n", latest.Pfizer-previous.Pfizer)
	r.p.Fprintf(&b, "Moderna: %d\n", latest.Moderna-previous.Moderna)
	r.p.Fprintf(&b, "AstraZeneca: %d\n", latest.AstraZeneca-previous.AstraZeneca)
	r.p.Fprintf(&b, "Janssen: %d\n\n", latest.Janssen-previous.Janssen)
	r.coverage(&b, latest)
	return b.String()
}

// Overall renders cumulative rollout figures plus the rolling week.
func (r *Renderer) Overall(latest *domain.DailyRecord, week *stats.Weekly) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Overall stats as of %s\n", latest.Date)
	r.p.Fprintf(&b, "Total doses: %d\n\n", latest.Total)
	r.p.Fprintf(&b, "Pfizer: %d\n", latest.Pfizer)
	r.p.Fprintf(&b, "Moderna: %d\n", latest.Moderna)
	r.p.Fprintf(&b, "AstraZeneca: %d\n", latest.AstraZeneca)
	r.p.Fprintf(&b, "Janssen: %d\n\n", latest.Janssen)
	r.coverage(&b, latest)
	b.WriteString("\n")
	b.WriteString(r.Week(week))
	return b.String()
}

// Week renders the rolling 7-day window.
func (r *Renderer) Week(week *stats.Weekly) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rolling 7 day stats (%s to %s)\n", week.Since, week.Until)
	r.p.Fprintf(&b, "Doses: %d\n", week.Total)
	r.p.Fprintf(&b, "Average per day: %d\n", week.DailyAverage)
	return b.String()
}

// Supply renders the latest weekly supply pair.
func (r *Renderer) Supply(latest, previous *domain.SupplyRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Overall supply as of %s\n", latest.Date)
	r.p.Fprintf(&b, "Total delivered: %d\n\n", latest.Total)
	fmt.Fprintf(&b, "Deliveries %s to %s\n", previous.Date, latest.Date)
	r.p.Fprintf(&b, "Total: %d\n", latest.Total-previous.Total)
	r.p.Fprintf(&b, "Pfizer: %d\n", latest.Pfizer-previous.Pfizer)
	r.p.Fprintf(&b, "Moderna: %d\n", latest.Moderna-previous.Moderna)
	r.p.Fprintf(&b, "AstraZeneca: %d\n", latest.AstraZeneca-previous.AstraZeneca)
	r.p.Fprintf(&b, "Janssen: %d\n", latest.Janssen-previous.Janssen)
	return b.String()
}

func (r *Renderer) coverage(b *strings.Builder, rec *domain.DailyRecord) {
	if r.eligible <= 0 {
		return
	}
	fmt.Fprintf(b, "Eligible population vaccinated\n")
	fmt.Fprintf(b, "First dose: %.2f%%\n", percent(rec.FirstDose, r.eligible))
	fmt.Fprintf(b, "Fully vaccinated: %.2f%%\n", percent(rec.SecondDose, r.eligible))
}

func percent(n, of int64) float64 {
	return float64(n) / float64(of) * 100
}

func dayOfWeek(date string) string {
	t, err := domain.ParseDay(date)
	if err != nil {
		return ""
	}
	return weekdays[t.Weekday()]
}
