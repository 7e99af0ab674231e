package admin

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vaxwatch/vaxwatch/internal/domain"
)

// --- mocks ---

type mockBroadcaster struct{ mock.Mock }

func (m *mockBroadcaster) Broadcast(ctx context.Context, message string) (*domain.DeliveryReport, error) {
	args := m.Called(ctx, message)
	if r, _ := args.Get(0).(*domain.DeliveryReport); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockBroadcaster) Preview(ctx context.Context, channel, address string) error {
	return m.Called(ctx, channel, address).Error(0)
}

type mockRecordStore struct{ mock.Mock }

func (m *mockRecordStore) ScanAll(ctx context.Context) ([]domain.DailyRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]domain.DailyRecord)
	return records, args.Error(1)
}

type mockSupplyStore struct{ mock.Mock }

func (m *mockSupplyStore) Put(ctx context.Context, s *domain.SupplyRecord) error {
	return m.Called(ctx, s).Error(0)
}

type mockReportStore struct{ mock.Mock }

func (m *mockReportStore) ListRecent(ctx context.Context, limit int) ([]domain.DeliveryReport, error) {
	args := m.Called(ctx, limit)
	reports, _ := args.Get(0).([]domain.DeliveryReport)
	return reports, args.Error(1)
}

type mockObjectStore struct{ mock.Mock }

func (m *mockObjectStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(ctx, key, string(body), contentType)
	return args.String(0), args.Error(1)
}
func (m *mockObjectStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if rc, _ := args.Get(0).(io.ReadCloser); rc != nil {
		return rc, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

type adminMocks struct {
	notifier *mockBroadcaster
	records  *mockRecordStore
	supply   *mockSupplyStore
	reports  *mockReportStore
	objects  *mockObjectStore
}

func newTestService(adminAddress string) (Service, *adminMocks) {
	m := &adminMocks{
		notifier: new(mockBroadcaster),
		records:  new(mockRecordStore),
		supply:   new(mockSupplyStore),
		reports:  new(mockReportStore),
		objects:  new(mockObjectStore),
	}
	svc := NewService(Deps{
		Notifier:     m.notifier,
		Records:      m.records,
		Supply:       m.supply,
		Reports:      m.reports,
		Objects:      m.objects,
		AdminChannel: domain.ChannelEmail,
		AdminAddress: adminAddress,
	})
	return svc, m
}

// --- tests ---

func TestBroadcast_DelegatesToNotifier(t *testing.T) {
	svc, m := newTestService("admin@example.com")
	m.notifier.On("Broadcast", mock.Anything, "maintenance tonight").
		Return(&domain.DeliveryReport{Attempted: 3, Delivered: 3}, nil)

	report, err := svc.Broadcast(context.Background(), "maintenance tonight")

	require.NoError(t, err)
	assert.Equal(t, 3, report.Delivered)
}

func TestBroadcast_EmptyMessageRejected(t *testing.T) {
	svc, m := newTestService("admin@example.com")

	_, err := svc.Broadcast(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrBadRequest)
	m.notifier.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
}

func TestTestUpdate_SendsToAdminOnly(t *testing.T) {
	svc, m := newTestService("admin@example.com")
	m.notifier.On("Preview", mock.Anything, domain.ChannelEmail, "admin@example.com").Return(nil)

	err := svc.TestUpdate(context.Background())

	require.NoError(t, err)
	m.notifier.AssertExpectations(t)
}

func TestTestUpdate_RequiresAdminAddress(t *testing.T) {
	svc, m := newTestService("")

	err := svc.TestUpdate(context.Background())

	assert.ErrorIs(t, err, domain.ErrBadRequest)
	m.notifier.AssertNotCalled(t, "Preview", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpsertSupply_StoresRecord(t *testing.T) {
	svc, m := newTestService("admin@example.com")
	m.supply.On("Put", mock.Anything, mock.MatchedBy(func(s *domain.SupplyRecord) bool {
		return s.Date == "2021-04-02" && s.Total == 5000
	})).Return(nil)

	rec, err := svc.UpsertSupply(context.Background(), domain.SupplyInput{
		Date: "2021-04-02", Total: 5000, Pfizer: 3000, Moderna: 1000, AstraZeneca: 800, Janssen: 200,
	})

	require.NoError(t, err)
	assert.Equal(t, "2021-04-02", rec.Date)
	m.supply.AssertExpectations(t)
}

func TestUpsertSupply_RejectsBadDate(t *testing.T) {
	svc, m := newTestService("admin@example.com")

	_, err := svc.UpsertSupply(context.Background(), domain.SupplyInput{Date: "02/04/2021", Total: 5000})

	assert.ErrorIs(t, err, domain.ErrBadRequest)
	m.supply.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestUpsertSupply_RejectsNegativeCounts(t *testing.T) {
	svc, _ := newTestService("admin@example.com")

	_, err := svc.UpsertSupply(context.Background(), domain.SupplyInput{Date: "2021-04-02", Total: -1})

	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestExportHistory_UploadsSortedJSON(t *testing.T) {
	svc, m := newTestService("admin@example.com")
	m.records.On("ScanAll", mock.Anything).Return([]domain.DailyRecord{
		{Date: "2021-04-02", Total: 1200},
		{Date: "2021-04-01", Total: 1000},
	}, nil)

	var uploaded string
	m.objects.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
		return len(key) > 0
	}), mock.Anything, "application/json").Run(func(args mock.Arguments) {
		uploaded = args.String(2)
	}).Return("https://bucket.example/exports/history.json", nil)

	location, err := svc.ExportHistory(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "https://bucket.example/exports/history.json", location)

	var records []domain.DailyRecord
	require.NoError(t, json.Unmarshal([]byte(uploaded), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "2021-04-01", records[0].Date)
	assert.Equal(t, "2021-04-02", records[1].Date)
}

func TestDownloadExport_StreamsNamedObject(t *testing.T) {
	svc, m := newTestService("admin@example.com")
	payload := io.NopCloser(strings.NewReader(`[{"date":"2021-04-02"}]`))
	m.objects.On("Download", mock.Anything, "exports/records-2021-04-02.json").Return(payload, nil)

	body, err := svc.DownloadExport(context.Background(), "records-2021-04-02.json")

	require.NoError(t, err)
	defer body.Close()
	got, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(got), "2021-04-02")
}

func TestDownloadExport_RejectsPathTraversal(t *testing.T) {
	svc, m := newTestService("admin@example.com")

	for _, name := range []string{"", "../secrets.json", "a/b.json", `a\b.json`} {
		_, err := svc.DownloadExport(context.Background(), name)
		assert.ErrorIs(t, err, domain.ErrBadRequest, "name %q", name)
	}
	m.objects.AssertNotCalled(t, "Download", mock.Anything, mock.Anything)
}

func TestDownloadExport_UnknownObject(t *testing.T) {
	svc, m := newTestService("admin@example.com")
	m.objects.On("Download", mock.Anything, "exports/missing.json").Return(nil, domain.ErrNotFound)

	_, err := svc.DownloadExport(context.Background(), "missing.json")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecentReports_ClampsLimit(t *testing.T) {
	svc, m := newTestService("admin@example.com")
	m.reports.On("ListRecent", mock.Anything, 20).Return([]domain.DeliveryReport{}, nil)

	_, err := svc.RecentReports(context.Background(), -5)

	require.NoError(t, err)
	m.reports.AssertCalled(t, "ListRecent", mock.Anything, 20)
}

func TestRecentReports_PassesThroughLimit(t *testing.T) {
	svc, m := newTestService("admin@example.com")
	m.reports.On("ListRecent", mock.Anything, 50).Return([]domain.DeliveryReport{{ReportID: "r1"}}, nil)

	reports, err := svc.RecentReports(context.Background(), 50)

	require.NoError(t, err)
	assert.Len(t, reports, 1)
}
