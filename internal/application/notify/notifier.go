package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vaxwatch/vaxwatch/internal/domain"
	"github.com/vaxwatch/vaxwatch/internal/pkg/id"
	"golang.org/x/time/rate"
)

// Outcome classifies one notifier cycle.
type Outcome int

const (
	// OutcomeNoData: no usable (latest, previous) pair within the lookback.
	OutcomeNoData Outcome = iota
	// OutcomeUpToDate: latest stored date already announced.
	OutcomeUpToDate
	// OutcomeAnnounced: a fan-out was attempted and the watermark advanced.
	OutcomeAnnounced
)

// Formatter renders the notification payload from the (latest, previous)
// record pair the notifier computed.
type Formatter func(latest, previous *domain.DailyRecord) string

type recordSource interface {
	LatestWithPrevious(ctx context.Context, anchor time.Time, lookback int) (*domain.DailyRecord, *domain.DailyRecord, error)
}

type watermarkStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, date string) error
}

type subscriberSource interface {
	ListSubscribed(ctx context.Context) ([]domain.Subscriber, error)
}

type reportStore interface {
	Put(ctx context.Context, rep *domain.DeliveryReport) error
}

// Notifier compares the latest stored record against the announcement
// watermark and fans the rendered update out to every subscriber.
//
// The watermark advances after the fan-out attempt regardless of individual
// delivery failures: announcements are at-most-once per date. A permanently
// unreachable recipient must never re-trigger a broadcast storm.
type Notifier struct {
	records     recordSource
	watermarks  watermarkStore
	subscribers subscriberSource
	reports     reportStore
	channels    Channels
	format      Formatter
	lookback    int
	sendTimeout time.Duration
	limiter     *rate.Limiter
	now         func() time.Time
	log         *slog.Logger
}

// Options bundles the notifier's tunables.
type Options struct {
	Lookback    int
	SendTimeout time.Duration
	SendRate    float64 // deliveries per second; <= 0 disables pacing
	SendBurst   int
	Now         func() time.Time // defaults to time.Now
}

func NewNotifier(records recordSource, watermarks watermarkStore, subscribers subscriberSource, reports reportStore, channels Channels, format Formatter, opts Options, log *slog.Logger) *Notifier {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	var limiter *rate.Limiter
	if opts.SendRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.SendRate), max(opts.SendBurst, 1))
	}
	return &Notifier{
		records:     records,
		watermarks:  watermarks,
		subscribers: subscribers,
		reports:     reports,
		channels:    channels,
		format:      format,
		lookback:    opts.Lookback,
		sendTimeout: opts.SendTimeout,
		limiter:     limiter,
		now:         now,
		log:         log,
	}
}

// RunOnce performs one notifier cycle. Most invocations are no-ops: the
// schedule is faster than the data actually changes.
func (n *Notifier) RunOnce(ctx context.Context) (Outcome, error) {
	latest, previous, err := n.records.LatestWithPrevious(ctx, n.now(), n.lookback)
	if errors.Is(err, domain.ErrNotFound) {
		n.log.Debug("no usable record pair within lookback, skipping cycle")
		return OutcomeNoData, nil
	}
	if err != nil {
		return OutcomeNoData, fmt.Errorf("record pair lookup: %w", err)
	}

	announced, err := n.watermarks.Get(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return OutcomeNoData, fmt.Errorf("watermark read: %w", err)
	}
	if announced == latest.Date {
		return OutcomeUpToDate, nil
	}

	n.log.Info("announcing new record", "date", latest.Date, "previous", announced)
	payload := n.format(latest, previous)
	n.fanout(ctx, payload, domain.DeliveryDaily, latest.Date)

	if err := n.watermarks.Set(ctx, latest.Date); err != nil {
		return OutcomeAnnounced, fmt.Errorf("watermark advance: %w", err)
	}
	return OutcomeAnnounced, nil
}

// Broadcast fans an arbitrary payload out to every subscriber without
// touching the watermark. Used by the admin broadcast command.
func (n *Notifier) Broadcast(ctx context.Context, message string) (*domain.DeliveryReport, error) {
	return n.fanout(ctx, message, domain.DeliveryBroadcast, domain.DayKey(n.now())), nil
}

// Preview renders the current daily update and delivers it to a single
// recipient, leaving the watermark alone. Used by the admin test command.
func (n *Notifier) Preview(ctx context.Context, channel, address string) error {
	latest, previous, err := n.records.LatestWithPrevious(ctx, n.now(), n.lookback)
	if err != nil {
		return fmt.Errorf("record pair lookup: %w", err)
	}
	return n.Deliver(ctx, channel, address, n.format(latest, previous))
}

// Deliver sends one payload to one recipient with the per-recipient timeout.
func (n *Notifier) Deliver(ctx context.Context, channel, address, message string) error {
	ch, ok := n.channels[channel]
	if !ok {
		return fmt.Errorf("unknown delivery channel %q", channel)
	}
	sendCtx, cancel := context.WithTimeout(ctx, n.sendTimeout)
	defer cancel()
	return ch.Send(sendCtx, address, message)
}

// fanout attempts delivery to every subscribed recipient. Per-recipient
// failures are counted and logged, never escalated: one bad recipient must
// not block the rest. The resulting report is persisted best-effort.
func (n *Notifier) fanout(ctx context.Context, payload, kind, date string) *domain.DeliveryReport {
	report := &domain.DeliveryReport{
		ReportID:  id.New(),
		Date:      date,
		Kind:      kind,
		CreatedAt: n.now().UTC(),
	}

	subs, err := n.subscribers.ListSubscribed(ctx)
	if err != nil {
		n.log.Warn("subscriber listing failed, fan-out skipped", "err", err)
		return report
	}

	for _, sub := range subs {
		if n.limiter != nil {
			if err := n.limiter.Wait(ctx); err != nil {
				n.log.Warn("fan-out interrupted", "err", err)
				break
			}
		}
		report.Attempted++
		if err := n.Deliver(ctx, sub.Channel, sub.Address, payload); err != nil {
			report.Failed++
			n.log.Info("delivery failed", "address", sub.Address, "channel", sub.Channel, "err", err)
			continue
		}
		report.Delivered++
	}

	n.log.Info("fan-out complete", "kind", kind, "date", date,
		"attempted", report.Attempted, "delivered", report.Delivered, "failed", report.Failed)

	if err := n.reports.Put(ctx, report); err != nil {
		n.log.Warn("could not persist delivery report", "err", err)
	}
	return report
}
