package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/vaxwatch/vaxwatch/internal/domain"
	"github.com/vaxwatch/vaxwatch/internal/pkg/id"
	"github.com/vaxwatch/vaxwatch/internal/pkg/validate"
)

type Service interface {
	Broadcast(ctx context.Context, message string) (*domain.DeliveryReport, error)
	TestUpdate(ctx context.Context) error
	UpsertSupply(ctx context.Context, input domain.SupplyInput) (*domain.SupplyRecord, error)
	ExportHistory(ctx context.Context) (string, error)
	DownloadExport(ctx context.Context, name string) (io.ReadCloser, error)
	RecentReports(ctx context.Context, limit int) ([]domain.DeliveryReport, error)
}

// broadcaster is the slice of the notifier the admin surface drives.
type broadcaster interface {
	Broadcast(ctx context.Context, message string) (*domain.DeliveryReport, error)
	Preview(ctx context.Context, channel, address string) error
}

type recordStore interface {
	ScanAll(ctx context.Context) ([]domain.DailyRecord, error)
}

type supplyStore interface {
	Put(ctx context.Context, s *domain.SupplyRecord) error
}

type reportStore interface {
	ListRecent(ctx context.Context, limit int) ([]domain.DeliveryReport, error)
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
}

type service struct {
	notifier     broadcaster
	records      recordStore
	supply       supplyStore
	reports      reportStore
	objects      objectStore
	adminChannel string
	adminAddress string
}

type Deps struct {
	Notifier     broadcaster
	Records      recordStore
	Supply       supplyStore
	Reports      reportStore
	Objects      objectStore
	AdminChannel string
	AdminAddress string
}

func NewService(deps Deps) Service {
	return &service{
		notifier:     deps.Notifier,
		records:      deps.Records,
		supply:       deps.Supply,
		reports:      deps.Reports,
		objects:      deps.Objects,
		adminChannel: deps.AdminChannel,
		adminAddress: deps.AdminAddress,
	}
}

func (s *service) Broadcast(ctx context.Context, message string) (*domain.DeliveryReport, error) {
	if message == "" {
		return nil, fmt.Errorf("empty broadcast message: %w", domain.ErrBadRequest)
	}
	return s.notifier.Broadcast(ctx, message)
}

// TestUpdate sends the rendered daily update to the admin address only,
// without advancing the watermark.
func (s *service) TestUpdate(ctx context.Context) error {
	if s.adminAddress == "" {
		return fmt.Errorf("no admin address configured: %w", domain.ErrBadRequest)
	}
	return s.notifier.Preview(ctx, s.adminChannel, s.adminAddress)
}

func (s *service) UpsertSupply(ctx context.Context, input domain.SupplyInput) (*domain.SupplyRecord, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	rec := &domain.SupplyRecord{
		Date:        input.Date,
		Total:       input.Total,
		Pfizer:      input.Pfizer,
		Moderna:     input.Moderna,
		AstraZeneca: input.AstraZeneca,
		Janssen:     input.Janssen,
	}
	if err := s.supply.Put(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ExportHistory snapshots the full record history as JSON into object
// storage and returns the object URL.
func (s *service) ExportHistory(ctx context.Context) (string, error) {
	records, err := s.records.ScanAll(ctx)
	if err != nil {
		return "", err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date < records[j].Date })

	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal export: %w", err)
	}

	key := fmt.Sprintf("%s/records-%s-%s.json", exportPrefix, domain.DayKey(time.Now()), id.New())
	return s.objects.Upload(ctx, key, bytes.NewReader(payload), "application/json")
}

// exportPrefix namespaces history exports inside the bucket.
const exportPrefix = "exports"

// DownloadExport streams a previously written export back by object name.
// The caller owns closing the returned stream.
func (s *service) DownloadExport(ctx context.Context, name string) (io.ReadCloser, error) {
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return nil, fmt.Errorf("invalid export name %q: %w", name, domain.ErrBadRequest)
	}
	return s.objects.Download(ctx, exportPrefix+"/"+name)
}

func (s *service) RecentReports(ctx context.Context, limit int) ([]domain.DeliveryReport, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.reports.ListRecent(ctx, limit)
}
