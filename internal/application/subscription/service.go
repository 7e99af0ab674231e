package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vaxwatch/vaxwatch/internal/domain"
	"github.com/vaxwatch/vaxwatch/internal/pkg/validate"
)

// AlertFunc notifies the operator about subscription changes. Best-effort:
// implementations log their own failures.
type AlertFunc func(ctx context.Context, text string)

type Service interface {
	Subscribe(ctx context.Context, req domain.SubscribeRequest) (*domain.Subscriber, error)
	Unsubscribe(ctx context.Context, address string) error
	List(ctx context.Context) ([]domain.Subscriber, error)
}

type subscriberStore interface {
	Get(ctx context.Context, address string) (*domain.Subscriber, error)
	Put(ctx context.Context, s *domain.Subscriber) error
	SetSubscribed(ctx context.Context, address string, subscribed bool) error
	ScanAll(ctx context.Context) ([]domain.Subscriber, error)
}

type service struct {
	repo  subscriberStore
	alert AlertFunc
	log   *slog.Logger
}

// NewService builds the subscription service. alert may be nil.
func NewService(repo subscriberStore, alert AlertFunc, log *slog.Logger) Service {
	return &service{repo: repo, alert: alert, log: log}
}

// Subscribe upserts the subscriber in the subscribed state. Calling it for an
// already-subscribed address refreshes UpdatedAt; a different channel in the
// request replaces the stored one.
func (s *service) Subscribe(ctx context.Context, req domain.SubscribeRequest) (*domain.Subscriber, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	if err := validateAddress(req.Channel, req.Address); err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(ctx, req.Address)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		now := time.Now().UTC()
		sub := &domain.Subscriber{
			Address:    req.Address,
			Channel:    req.Channel,
			Subscribed: true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.repo.Put(ctx, sub); err != nil {
			return nil, err
		}
		s.notifyAdmin(ctx, fmt.Sprintf("Subscriber %s (%s) subscribed", sub.Address, sub.Channel))
		return sub, nil
	case err != nil:
		return nil, err
	default:
		if existing.Channel != req.Channel {
			// Channel switch: rewrite the full row, keeping CreatedAt.
			existing.Channel = req.Channel
			existing.Subscribed = true
			existing.UpdatedAt = time.Now().UTC()
			if err := s.repo.Put(ctx, existing); err != nil {
				return nil, err
			}
		} else {
			if err := s.repo.SetSubscribed(ctx, req.Address, true); err != nil {
				return nil, err
			}
			existing.Subscribed = true
		}
		s.notifyAdmin(ctx, fmt.Sprintf("Subscriber %s (%s) resubscribed", existing.Address, existing.Channel))
		return existing, nil
	}
}

// Unsubscribe flips the state off; the row is kept so the subscriber's
// history survives a later resubscribe.
func (s *service) Unsubscribe(ctx context.Context, address string) error {
	if _, err := s.repo.Get(ctx, address); err != nil {
		return err
	}
	if err := s.repo.SetSubscribed(ctx, address, false); err != nil {
		return err
	}
	s.notifyAdmin(ctx, fmt.Sprintf("Subscriber %s unsubscribed", address))
	return nil
}

func (s *service) List(ctx context.Context) ([]domain.Subscriber, error) {
	return s.repo.ScanAll(ctx)
}

func (s *service) notifyAdmin(ctx context.Context, text string) {
	if s.alert == nil {
		return
	}
	s.alert(ctx, text)
}

// validateAddress checks the address shape against the chosen channel:
// e.164 phone numbers for SMS, plain email addresses otherwise.
func validateAddress(channel, address string) error {
	var tag string
	switch channel {
	case domain.ChannelSMS:
		tag = "e164"
	case domain.ChannelEmail:
		tag = "email"
	default:
		return fmt.Errorf("unknown channel %q: %w", channel, domain.ErrBadRequest)
	}
	if err := validate.Var(address, tag); err != nil {
		return fmt.Errorf("address %q is not a valid %s recipient: %w", address, channel, domain.ErrBadRequest)
	}
	return nil
}
