package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
	apperrors "github.com/VXerys/artconnect-crm-sub001/internal/shared/errors"
	"github.com/VXerys/artconnect-crm-sub001/internal/stats"
	"github.com/VXerys/artconnect-crm-sub001/internal/storage/postgres"
)

var errDown = errors.New("connection refused")

var (
	windowStart = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
)

type fakeSource struct {
	fail         bool
	failSales    bool
	failPrevious bool
}

func (f *fakeSource) current(start time.Time) bool {
	return !start.Before(windowStart)
}

func (f *fakeSource) SalesTotals(ctx context.Context, artistID uuid.UUID, start, end time.Time) (postgres.SalesTotals, error) {
	if f.fail || f.failSales {
		return postgres.SalesTotals{}, errDown
	}
	if f.failPrevious && !f.current(start) {
		return postgres.SalesTotals{}, errDown
	}
	if f.current(start) {
		return postgres.SalesTotals{Count: 3, Revenue: 6_000_000}, nil
	}
	return postgres.SalesTotals{Count: 2, Revenue: 4_000_000}, nil
}

func (f *fakeSource) SalesByMonth(ctx context.Context, artistID uuid.UUID, start, end time.Time) ([]postgres.MonthlySales, error) {
	if f.fail || f.failSales {
		return nil, errDown
	}
	return []postgres.MonthlySales{{Month: time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), Count: 3, Revenue: 6_000_000}}, nil
}

func (f *fakeSource) CountArtworksByStatus(ctx context.Context, artistID uuid.UUID) (map[domain.ArtworkStatus]int64, error) {
	if f.fail {
		return nil, errDown
	}
	return map[domain.ArtworkStatus]int64{domain.StatusConcept: 1, domain.StatusFinished: 1, domain.StatusSold: 2}, nil
}

func (f *fakeSource) InventoryValue(ctx context.Context, artistID uuid.UUID) (float64, error) {
	if f.fail {
		return 0, errDown
	}
	return 3_000_000, nil
}

func (f *fakeSource) TopArtworks(ctx context.Context, artistID uuid.UUID, limit int) ([]domain.TopArtwork, error) {
	if f.fail {
		return nil, errDown
	}
	return []domain.TopArtwork{{ID: uuid.New(), Title: "Senja", Views: 12}}, nil
}

func (f *fakeSource) CountContacts(ctx context.Context, artistID uuid.UUID) (int64, error) {
	if f.fail {
		return 0, errDown
	}
	return 7, nil
}

func (f *fakeSource) CountContactsCreated(ctx context.Context, artistID uuid.UUID, start, end time.Time) (int64, error) {
	if f.fail || (f.failPrevious && !f.current(start)) {
		return 0, errDown
	}
	if f.current(start) {
		return 4, nil
	}
	return 0, nil
}

func (f *fakeSource) CountContactsByCategory(ctx context.Context, artistID uuid.UUID) (map[domain.ContactCategory]int64, error) {
	if f.fail {
		return nil, errDown
	}
	return map[domain.ContactCategory]int64{domain.CategoryCollector: 7}, nil
}

func (f *fakeSource) TrafficBySource(ctx context.Context, artistID uuid.UUID, start, end time.Time) ([]postgres.SourceVisits, error) {
	if f.fail || (f.failPrevious && !f.current(start)) {
		return nil, errDown
	}
	if f.current(start) {
		return []postgres.SourceVisits{{Source: "instagram", Visits: 30}, {Source: "direct", Visits: 10}}, nil
	}
	return []postgres.SourceVisits{{Source: "instagram", Visits: 20}}, nil
}

func (f *fakeSource) ListArtworks(ctx context.Context, artistID uuid.UUID, filter postgres.ArtworkFilter) ([]domain.Artwork, error) {
	if f.fail {
		return nil, errDown
	}
	return []domain.Artwork{{ID: uuid.New(), Title: "Senja"}}, nil
}

func (f *fakeSource) ListPipeline(ctx context.Context, artistID uuid.UUID) ([]domain.PipelineItem, error) {
	if f.fail {
		return nil, errDown
	}
	return []domain.PipelineItem{
		{Stage: domain.StatusConcept, ExpectedValue: 1_000_000},
		{Stage: domain.StatusFinished, ExpectedValue: 2_000_000},
		{Stage: domain.StatusSold, ExpectedValue: 3_000_000},
		{Stage: domain.StatusSold, ExpectedValue: 3_000_000},
	}, nil
}

func (f *fakeSource) ListReports(ctx context.Context, artistID uuid.UUID, reportType *domain.ReportType, limit int) ([]domain.Report, error) {
	if f.fail {
		return nil, errDown
	}
	return []domain.Report{{ID: uuid.New(), Type: domain.ReportSales}}, nil
}

func (f *fakeSource) CountReportsByType(ctx context.Context, artistID uuid.UUID) (map[domain.ReportType]int64, error) {
	if f.fail {
		return nil, errDown
	}
	return map[domain.ReportType]int64{domain.ReportSales: 2, domain.ReportNetwork: 1}, nil
}

type memoryCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, artistID uuid.UUID, name string, dest any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[artistID.String()+name]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, artistID uuid.UUID, name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[artistID.String()+name] = raw
	return nil
}

func (m *memoryCache) Invalidate(ctx context.Context, artistID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = map[string][]byte{}
	m.invalidated++
	return nil
}

func newTestService(source Source, cache SnapshotCache) *Service {
	svc := NewService(source, cache, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, time.April, 15, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestOverview(t *testing.T) {
	svc := newTestService(&fakeSource{}, nil)

	out, err := svc.Overview(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, int64(4), out.TotalArtworks)
	assert.Equal(t, int64(7), out.TotalContacts)
	assert.Equal(t, int64(2), out.ActivePipeline)
	assert.Equal(t, "Rp 4.000.000", out.RevenueDisplay)
	assert.Len(t, out.RecentArtworks, 1)

	require.Len(t, out.Pipeline, 4)
	assert.Equal(t, domain.StatusConcept, out.Pipeline[0].Stage)
	assert.Equal(t, "Dalam Proses", out.Pipeline[1].Label)
	assert.Equal(t, int64(0), out.Pipeline[1].Count)
	assert.Equal(t, int64(2), out.Pipeline[3].Count)
	assert.InDelta(t, 6_000_000, out.Pipeline[3].Value, 0.001)
}

func TestOverviewAllSourcesFailed(t *testing.T) {
	svc := newTestService(&fakeSource{fail: true}, nil)

	_, err := svc.Overview(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeFetchFailed, apperrors.CodeOf(err))
	assert.ErrorIs(t, err, ErrAllSourcesFailed)
}

func TestAnalytics(t *testing.T) {
	svc := newTestService(&fakeSource{}, nil)

	out, err := svc.Analytics(context.Background(), uuid.New(), stats.Window{Start: windowStart, End: windowEnd})
	require.NoError(t, err)

	require.Len(t, out.Stats, 4)
	revenue := out.Stats[0]
	assert.Equal(t, "revenue", revenue.Key)
	assert.InDelta(t, 6_000_000, revenue.Value, 0.001)
	assert.InDelta(t, 50, revenue.ChangePercent, 0.001)
	assert.Equal(t, domain.TrendUp, revenue.Trend)

	views := out.Stats[2]
	assert.InDelta(t, 40, views.Value, 0.001)
	assert.InDelta(t, 100, views.ChangePercent, 0.001)

	contacts := out.Stats[3]
	assert.InDelta(t, 100, contacts.ChangePercent, 0.001)

	require.Len(t, out.Sales, 2)
	assert.Equal(t, "Mar", out.Sales[0].Month)
	assert.Equal(t, int64(0), out.Sales[0].Sales)
	assert.Equal(t, int64(3), out.Sales[1].Sales)

	require.Len(t, out.Statuses, 4)
	var total float64
	for _, s := range out.Statuses {
		total += s.Percentage
	}
	assert.InDelta(t, 100, total, 0.001)

	assert.Len(t, out.TopArtworks, 1)
	require.Len(t, out.Traffic, 2)
	assert.InDelta(t, 75, out.Traffic[0].Percentage, 0.001)
}

func TestAnalyticsPartialFailure(t *testing.T) {
	svc := newTestService(&fakeSource{failSales: true}, nil)

	out, err := svc.Analytics(context.Background(), uuid.New(), stats.Window{Start: windowStart, End: windowEnd})
	require.NoError(t, err)

	assert.Zero(t, out.Stats[0].Value)
	assert.Equal(t, domain.TrendFlat, out.Stats[0].Trend)
	require.Len(t, out.Sales, 2)
	assert.Zero(t, out.Sales[1].Revenue)
	assert.InDelta(t, 40, out.Stats[2].Value, 0.001)
}

func TestAnalyticsPreviousWindowFailure(t *testing.T) {
	svc := newTestService(&fakeSource{failPrevious: true}, nil)

	out, err := svc.Analytics(context.Background(), uuid.New(), stats.Window{Start: windowStart, End: windowEnd})
	require.NoError(t, err)

	require.Len(t, out.Stats, 4)
	for _, stat := range out.Stats {
		assert.Zero(t, stat.ChangePercent, stat.Key)
		assert.Equal(t, domain.TrendFlat, stat.Trend, stat.Key)
	}
	assert.InDelta(t, 6_000_000, out.Stats[0].Value, 0.001)
	assert.InDelta(t, 40, out.Stats[2].Value, 0.001)
}

func TestReportsOverviewPreviousMonthFailure(t *testing.T) {
	svc := newTestService(&fakeSource{failPrevious: true}, nil)
	svc.now = func() time.Time { return time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC) }

	out, err := svc.ReportsOverview(context.Background(), uuid.New())
	require.NoError(t, err)

	require.Len(t, out.Metrics, 4)
	for _, m := range out.Metrics[1:] {
		assert.Equal(t, "0,0%", m.Change, m.Label)
	}
}

func TestAnalyticsDefaultsWindow(t *testing.T) {
	svc := newTestService(&fakeSource{}, nil)

	out, err := svc.Analytics(context.Background(), uuid.New(), stats.Window{})
	require.NoError(t, err)
	assert.Len(t, out.Sales, 6)
	assert.Equal(t, time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC), out.Start)
}

func TestReportsOverview(t *testing.T) {
	svc := newTestService(&fakeSource{}, nil)

	out, err := svc.ReportsOverview(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Len(t, out.Recent, 1)
	require.Len(t, out.Metrics, 4)
	assert.Equal(t, "Total Laporan", out.Metrics[0].Label)
	assert.Equal(t, "3", out.Metrics[0].Value)
	assert.Equal(t, "Rp 6.000.000", out.Metrics[1].Value)
}

func TestSnapshotsAreCached(t *testing.T) {
	cache := newMemoryCache()
	source := &fakeSource{}
	svc := newTestService(source, cache)
	artistID := uuid.New()

	first, err := svc.Overview(context.Background(), artistID)
	require.NoError(t, err)

	source.fail = true
	second, err := svc.Overview(context.Background(), artistID)
	require.NoError(t, err)
	assert.Equal(t, first.TotalArtworks, second.TotalArtworks)

	svc.Invalidate(context.Background(), artistID)
	assert.Equal(t, 1, cache.invalidated)

	_, err = svc.Overview(context.Background(), artistID)
	assert.Error(t, err)
}

func TestPartialSnapshotsAreNotCached(t *testing.T) {
	cache := newMemoryCache()
	svc := newTestService(&fakeSource{failSales: true}, cache)

	_, err := svc.Overview(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, cache.entries)
}
