// Package feed fetches the upstream vaccine-administration feed.
//
// The feed is an ArcGIS FeatureServer query endpoint that returns the latest
// cumulative figures as a single feature. Every failure mode here — network,
// non-200, malformed JSON, empty feature list — is transient by design: the
// poll loop retries after a cooldown, nothing escalates.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/vaxwatch/vaxwatch/internal/domain"
)

// maxAttempts bounds the in-call retry before the failure is reported to the
// poll loop, which applies its own (longer) cooldown.
const maxAttempts = 3

// Client polls the upstream feed over HTTP.
type Client struct {
	httpClient *http.Client
	url        string
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
	}
}

// response mirrors the slice of the ArcGIS payload we care about.
type response struct {
	Features []struct {
		Attributes attributes `json:"attributes"`
	} `json:"features"`
}

type attributes struct {
	RelDate           *int64 `json:"relDate"` // epoch millis, UTC midnight
	TotalAdministered *int64 `json:"totalAdministered"`
	Pfizer            *int64 `json:"pf"`
	Moderna           *int64 `json:"modern"`
	AstraZeneca       *int64 `json:"az"`
	FirstDose         *int64 `json:"firstDose"`
	SecondDose        *int64 `json:"secondDose"`
}

// FetchLatest retrieves and parses the newest upstream observation.
// Transport errors are retried up to maxAttempts with exponential backoff
// before being returned to the caller.
func (c *Client) FetchLatest(ctx context.Context) (*domain.RawObservation, error) {
	backoffCfg := backoff.NewExponentialBackOff()

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoffCfg.NextBackOff()):
			}
		}
		obs, err := c.fetchOnce(ctx)
		if err == nil {
			return obs, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context) (*domain.RawObservation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode feed body: %w", err)
	}
	if len(parsed.Features) == 0 {
		return nil, fmt.Errorf("feed returned no features")
	}

	return mapObservation(parsed.Features[0].Attributes)
}

// mapObservation converts raw attributes into the normalized observation,
// rejecting payloads with missing expected fields.
func mapObservation(a attributes) (*domain.RawObservation, error) {
	for name, v := range map[string]*int64{
		"relDate":           a.RelDate,
		"totalAdministered": a.TotalAdministered,
		"pf":                a.Pfizer,
		"modern":            a.Moderna,
		"az":                a.AstraZeneca,
		"firstDose":         a.FirstDose,
		"secondDose":        a.SecondDose,
	} {
		if v == nil {
			return nil, fmt.Errorf("feed attribute %q missing", name)
		}
	}
	return &domain.RawObservation{
		ReportedAt:  time.UnixMilli(*a.RelDate).UTC(),
		Total:       *a.TotalAdministered,
		Pfizer:      *a.Pfizer,
		Moderna:     *a.Moderna,
		AstraZeneca: *a.AstraZeneca,
		FirstDose:   *a.FirstDose,
		SecondDose:  *a.SecondDose,
	}, nil
}
