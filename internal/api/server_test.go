package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/VXerys/artconnect-crm-sub001/internal/dashboard"
	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
	"github.com/VXerys/artconnect-crm-sub001/internal/exports"
	"github.com/VXerys/artconnect-crm-sub001/internal/reports"
	apperrors "github.com/VXerys/artconnect-crm-sub001/internal/shared/errors"
	"github.com/VXerys/artconnect-crm-sub001/internal/stats"
	"github.com/VXerys/artconnect-crm-sub001/internal/storage/postgres"
)

var (
	artistID = uuid.MustParse("7d6a0c56-1c0e-4a43-9a55-5c3c2b9f2a01")
	otherID  = uuid.MustParse("0f1e2d3c-4b5a-4978-8695-a4b3c2d1e0f9")
)

type fakeStore struct {
	mu       sync.Mutex
	artworks map[uuid.UUID]domain.Artwork
	contacts map[uuid.UUID]domain.Contact
	pipeline []domain.PipelineItem
	reports  map[uuid.UUID]domain.Report
	lastMove struct {
		stage    domain.ArtworkStatus
		position int
	}
	lastQuery postgres.ArtworkFilter
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		artworks: make(map[uuid.UUID]domain.Artwork),
		contacts: make(map[uuid.UUID]domain.Contact),
		reports:  make(map[uuid.UUID]domain.Report),
	}
}

func (f *fakeStore) ListArtworks(ctx context.Context, artist uuid.UUID, filter postgres.ArtworkFilter) ([]domain.Artwork, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = filter
	var out []domain.Artwork
	for _, a := range f.artworks {
		if a.ArtistID == artist {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) GetArtwork(ctx context.Context, artist, id uuid.UUID) (*domain.Artwork, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.artworks[id]
	if !ok || a.ArtistID != artist {
		return nil, postgres.ErrNotFound
	}
	return &a, nil
}

func (f *fakeStore) CreateArtwork(ctx context.Context, a domain.Artwork) (*domain.Artwork, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	f.artworks[a.ID] = a
	return &a, nil
}

func (f *fakeStore) UpdateArtwork(ctx context.Context, a domain.Artwork) (*domain.Artwork, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.artworks[a.ID]; !ok || existing.ArtistID != a.ArtistID {
		return nil, postgres.ErrNotFound
	}
	f.artworks[a.ID] = a
	return &a, nil
}

func (f *fakeStore) DeleteArtwork(ctx context.Context, artist, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.artworks[id]; !ok || a.ArtistID != artist {
		return postgres.ErrNotFound
	}
	delete(f.artworks, id)
	return nil
}

func (f *fakeStore) ListContacts(ctx context.Context, artist uuid.UUID, filter postgres.ContactFilter) ([]domain.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Contact
	for _, c := range f.contacts {
		if c.ArtistID == artist {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) GetContact(ctx context.Context, artist, id uuid.UUID) (*domain.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok || c.ArtistID != artist {
		return nil, postgres.ErrNotFound
	}
	return &c, nil
}

func (f *fakeStore) CreateContact(ctx context.Context, c domain.Contact) (*domain.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = uuid.New()
	f.contacts[c.ID] = c
	return &c, nil
}

func (f *fakeStore) UpdateContact(ctx context.Context, c domain.Contact) (*domain.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.contacts[c.ID]; !ok {
		return nil, postgres.ErrNotFound
	}
	f.contacts[c.ID] = c
	return &c, nil
}

func (f *fakeStore) DeleteContact(ctx context.Context, artist, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.contacts[id]; !ok {
		return postgres.ErrNotFound
	}
	delete(f.contacts, id)
	return nil
}

func (f *fakeStore) ListPipeline(ctx context.Context, artist uuid.UUID) ([]domain.PipelineItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.PipelineItem(nil), f.pipeline...), nil
}

func (f *fakeStore) MovePipelineItem(ctx context.Context, artist, itemID uuid.UUID, stage domain.ArtworkStatus, position int) (*domain.PipelineItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastMove.stage = stage
	f.lastMove.position = position
	for i := range f.pipeline {
		if f.pipeline[i].ID == itemID {
			f.pipeline[i].Stage = stage
			item := f.pipeline[i]
			return &item, nil
		}
	}
	return nil, postgres.ErrNotFound
}

func (f *fakeStore) ListReports(ctx context.Context, artist uuid.UUID, reportType *domain.ReportType, limit int) ([]domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Report
	for _, r := range f.reports {
		if r.ArtistID == artist && (reportType == nil || r.Type == *reportType) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) GetReport(ctx context.Context, artist, id uuid.UUID) (*domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[id]
	if !ok || r.ArtistID != artist {
		return nil, postgres.ErrNotFound
	}
	return &r, nil
}

func (f *fakeStore) DeleteReport(ctx context.Context, artist, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reports[id]; !ok {
		return postgres.ErrNotFound
	}
	delete(f.reports, id)
	return nil
}

type fakeDashboard struct {
	mu          sync.Mutex
	err         error
	window      stats.Window
	invalidated int
}

func (f *fakeDashboard) Overview(ctx context.Context, artist uuid.UUID) (*dashboard.Overview, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dashboard.Overview{TotalArtworks: 3, RevenueDisplay: "Rp 0"}, nil
}

func (f *fakeDashboard) Analytics(ctx context.Context, artist uuid.UUID, window stats.Window) (*dashboard.Analytics, error) {
	f.mu.Lock()
	f.window = window
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &dashboard.Analytics{Start: window.Start, End: window.End}, nil
}

func (f *fakeDashboard) ReportsOverview(ctx context.Context, artist uuid.UUID) (*dashboard.ReportsOverview, error) {
	return &dashboard.ReportsOverview{}, nil
}

func (f *fakeDashboard) Invalidate(ctx context.Context, artist uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
}

func (f *fakeDashboard) invalidations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invalidated
}

type fakeGenerator struct {
	store *fakeStore
	err   error
	req   reports.Request
}

func (f *fakeGenerator) Generate(ctx context.Context, req reports.Request) (*domain.Report, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	report := sampleReport(req.ArtistID)
	report.Type = req.Type
	f.store.reports[report.ID] = report
	return &report, nil
}

type fakeJobs struct {
	jobs map[uuid.UUID]domain.ExportJob
}

func (f *fakeJobs) Create(ctx context.Context, req exports.CreateJobRequest) (*domain.ExportJob, error) {
	job := domain.ExportJob{
		JobID:       uuid.New(),
		ArtistID:    req.ArtistID,
		ReportID:    req.ReportID,
		Format:      req.Format,
		Status:      domain.JobPending,
		RequestedBy: req.RequestedBy,
	}
	f.jobs[job.JobID] = job
	return &job, nil
}

func (f *fakeJobs) Get(ctx context.Context, artist, jobID uuid.UUID) (*domain.ExportJob, error) {
	job, ok := f.jobs[jobID]
	if !ok || job.ArtistID != artist {
		return nil, exports.ErrJobNotFound
	}
	return &job, nil
}

func (f *fakeJobs) List(ctx context.Context, artist uuid.UUID, statusFilter *string) ([]domain.ExportJob, error) {
	var out []domain.ExportJob
	for _, job := range f.jobs {
		if statusFilter == nil || job.Status == *statusFilter {
			out = append(out, job)
		}
	}
	return out, nil
}

type fakeSigner struct{}

func (fakeSigner) SignedURL(ctx context.Context, key string) (string, error) {
	return "https://storage.example.test/" + key + "?sig=abc", nil
}

func sampleReport(artist uuid.UUID) domain.Report {
	return domain.Report{
		ID:          uuid.New(),
		ArtistID:    artist,
		Type:        domain.ReportSales,
		PeriodStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Content: domain.FormattedReport{
			Title:   "Laporan Penjualan Q1",
			Summary: "Penjualan naik, termasuk \"Senja\".",
			Sections: []domain.ReportSection{
				{Title: "Ringkasan", Content: "=SUM(A1)", Metrics: []domain.ReportMetric{{Label: "Pendapatan", Value: "Rp 1.250.000"}}},
			},
		},
		CreatedAt: time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC),
	}
}

type testEnv struct {
	server    *Server
	store     *fakeStore
	dashboard *fakeDashboard
	generator *fakeGenerator
	jobs      *fakeJobs
}

func newTestEnv(t *testing.T, enableRBAC bool) *testEnv {
	t.Helper()
	store := newFakeStore()
	env := &testEnv{
		store:     store,
		dashboard: &fakeDashboard{},
		generator: &fakeGenerator{store: store},
		jobs:      &fakeJobs{jobs: make(map[uuid.UUID]domain.ExportJob)},
	}
	env.server = NewServer(Config{
		Logger:     zap.NewNop(),
		EnableRBAC: enableRBAC,
		Store:      store,
		Dashboard:  env.dashboard,
		Generator:  env.generator,
		Exports:    env.jobs,
		Signer:     fakeSigner{},
		Checks: map[string]Check{
			"postgres": func(context.Context) error { return nil },
		},
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.Error {
	t.Helper()
	var payload apperrors.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func artistPath(suffix string) string {
	return "/api/v1/artists/" + artistID.String() + suffix
}

func TestHealthAndReadiness(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodGet, "/api/v1/status/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/v1/status/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"postgres":"healthy"`)
}

func TestReadinessDegraded(t *testing.T) {
	server := NewServer(Config{
		Logger: zap.NewNop(),
		Checks: map[string]Check{
			"redis": func(context.Context) error { return errors.New("connection refused") },
		},
	})
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
	assert.Contains(t, rec.Body.String(), `"redis":"unhealthy"`)
}

func TestArtworkLifecycle(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodPost, artistPath("/artworks"), map[string]any{
		"title":  "  Senja di Ubud ",
		"price":  2500000,
		"status": "in-progress",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created domain.Artwork
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Senja di Ubud", created.Title)
	assert.Equal(t, domain.StatusInProgress, created.Status)
	assert.Equal(t, artistID, created.ArtistID)
	assert.Equal(t, 1, env.dashboard.invalidations())

	rec = env.do(t, http.MethodGet, artistPath("/artworks/"+created.ID.String()), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, artistPath("/artworks?status=sold&sort=price&order=asc&limit=10"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, postgres.Asc, env.store.lastQuery.Order)
	assert.Equal(t, 10, env.store.lastQuery.Limit)
	require.NotNil(t, env.store.lastQuery.Status)
	assert.Equal(t, domain.StatusSold, *env.store.lastQuery.Status)

	rec = env.do(t, http.MethodDelete, artistPath("/artworks/"+created.ID.String()), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 2, env.dashboard.invalidations())

	rec = env.do(t, http.MethodGet, artistPath("/artworks/"+created.ID.String()), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperrors.CodeNotFound, decodeError(t, rec).Code)
}

func TestEmptyListsAreArrays(t *testing.T) {
	env := newTestEnv(t, false)
	for _, path := range []string{"/artworks", "/contacts", "/reports"} {
		rec := env.do(t, http.MethodGet, artistPath(path), nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `{"items":[]}`, rec.Body.String(), path)
	}
}

func TestValidationErrors(t *testing.T) {
	env := newTestEnv(t, false)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"bad artist id", http.MethodGet, "/api/v1/artists/not-a-uuid/artworks", nil, http.StatusBadRequest, apperrors.CodeInvalidRequest},
		{"missing title", http.MethodPost, artistPath("/artworks"), map[string]any{"price": 10}, http.StatusBadRequest, apperrors.CodeInvalidRequest},
		{"negative price", http.MethodPost, artistPath("/artworks"), map[string]any{"title": "A", "price": -1}, http.StatusBadRequest, apperrors.CodeInvalidRequest},
		{"unknown field", http.MethodPost, artistPath("/artworks"), `{"title":"A","colour":"red"}`, http.StatusBadRequest, apperrors.CodeInvalidRequest},
		{"bad sort", http.MethodGet, artistPath("/artworks?sort=artist_id"), nil, http.StatusBadRequest, apperrors.CodeInvalidRequest},
		{"bad limit", http.MethodGet, artistPath("/artworks?limit=500"), nil, http.StatusBadRequest, apperrors.CodeInvalidRequest},
		{"bad contact email", http.MethodPost, artistPath("/contacts"), map[string]any{"name": "Rina", "email": "nope"}, http.StatusBadRequest, apperrors.CodeInvalidRequest},
		{"half period", http.MethodGet, artistPath("/analytics?start=2026-01-01"), nil, http.StatusBadRequest, apperrors.CodeInvalidRequest},
		{"reversed period", http.MethodGet, artistPath("/analytics?start=2026-03-01&end=2026-01-01"), nil, http.StatusBadRequest, apperrors.CodeInvalidRequest},
		{"bad report type", http.MethodPost, artistPath("/reports"), map[string]any{"type": "weekly"}, http.StatusBadRequest, apperrors.CodeInvalidRequest},
		{"bad download format", http.MethodGet, artistPath("/reports/" + uuid.NewString() + "/download?format=pdf"), nil, http.StatusBadRequest, apperrors.CodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestErrorMessagesAreLocalized(t *testing.T) {
	env := newTestEnv(t, false)
	path := artistPath("/artworks/" + uuid.NewString())

	rec := env.do(t, http.MethodGet, path, nil)
	assert.Equal(t, "Data tidak ditemukan.", decodeError(t, rec).Message)

	rec = env.do(t, http.MethodGet, path, nil, "Accept-Language", "en-US,en;q=0.9")
	assert.Equal(t, "The requested data was not found.", decodeError(t, rec).Message)
}

func TestInternalErrorsHideDetail(t *testing.T) {
	env := newTestEnv(t, false)
	env.dashboard.err = errors.New("pq: relation \"artworks\" does not exist")

	rec := env.do(t, http.MethodGet, artistPath("/dashboard"), nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, apperrors.CodeInternal, payload.Code)
	assert.Empty(t, payload.Detail)
}

func TestDashboardFetchFailure(t *testing.T) {
	env := newTestEnv(t, false)
	env.dashboard.err = apperrors.Wrap(apperrors.CodeFetchFailed, dashboard.ErrAllSourcesFailed)

	rec := env.do(t, http.MethodGet, artistPath("/dashboard"), nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Gagal memuat data. Silakan coba lagi.", decodeError(t, rec).Message)
}

func TestAnalyticsPeriod(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodGet, artistPath("/analytics?start=2026-01-01&end=2026-03-31"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), env.dashboard.window.Start)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), env.dashboard.window.End)

	rec = env.do(t, http.MethodGet, artistPath("/analytics"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.dashboard.window.Start.IsZero())
}

func TestPipelineBoardAndMove(t *testing.T) {
	env := newTestEnv(t, false)
	item := domain.PipelineItem{ID: uuid.New(), ArtistID: artistID, Stage: domain.StatusConcept, ExpectedValue: 500000}
	env.store.pipeline = []domain.PipelineItem{item}

	rec := env.do(t, http.MethodGet, artistPath("/pipeline"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var board struct {
		Columns []domain.PipelineColumn `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &board))
	require.Len(t, board.Columns, 4)
	assert.Equal(t, domain.StatusConcept, board.Columns[0].Stage)
	assert.Len(t, board.Columns[0].Items, 1)
	assert.Equal(t, 500000.0, board.Columns[0].Total)
	assert.Empty(t, board.Columns[3].Items)

	movePath := artistPath("/pipeline/" + item.ID.String() + "/move")
	rec = env.do(t, http.MethodPost, movePath, map[string]any{"stage": "sold", "position": 0})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.StatusSold, env.store.lastMove.stage)
	assert.Equal(t, 0, env.store.lastMove.position)
	assert.Equal(t, 1, env.dashboard.invalidations())

	rec = env.do(t, http.MethodPost, movePath, map[string]any{"stage": "finished"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Greater(t, env.store.lastMove.position, 1000)

	rec = env.do(t, http.MethodPost, movePath, map[string]any{"stage": "archived"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, apperrors.CodeInvalidPipeline, decodeError(t, rec).Code)

	rec = env.do(t, http.MethodPost, movePath, map[string]any{"stage": "sold", "position": -1})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGenerateReport(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodPost, artistPath("/reports"), map[string]any{
		"type":        "Inventory",
		"periodStart": "2026-01-01",
		"periodEnd":   "2026-03-31",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, domain.ReportInventory, env.generator.req.Type)
	assert.Equal(t, artistID, env.generator.req.ArtistID)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), env.generator.req.PeriodEnd)
	assert.Equal(t, 1, env.dashboard.invalidations())

	rec = env.do(t, http.MethodGet, artistPath("/reports?type=inventory"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Items []domain.Report `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Items, 1)
}

func TestGenerateReportAIFailure(t *testing.T) {
	env := newTestEnv(t, false)
	env.generator.err = apperrors.Wrap(apperrors.CodeAIUnauthorized, errors.New("groq: 401"))

	rec := env.do(t, http.MethodPost, artistPath("/reports"), map[string]any{"type": "sales"}, "Accept-Language", "en")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, apperrors.CodeAIUnauthorized, payload.Code)
	assert.Equal(t, "The AI service API key is invalid.", payload.Message)
	assert.Equal(t, 0, env.dashboard.invalidations())
}

func TestReportDownload(t *testing.T) {
	env := newTestEnv(t, false)
	report := sampleReport(artistID)
	env.store.reports[report.ID] = report
	base := artistPath("/reports/" + report.ID.String() + "/download")

	rec := env.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, `inline; filename="laporan-penjualan-2026-04-02.html"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "Laporan Penjualan Q1")
	assert.Contains(t, rec.Body.String(), "&#34;Senja&#34;")

	rec = env.do(t, http.MethodGet, base+"?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="laporan-penjualan-2026-04-02.csv"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\xEF\xBB\xBF")))

	rec = env.do(t, http.MethodGet, base+"?format=excel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="laporan-penjualan-excel-2026-04-02.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "sep=;\r\n")
	assert.Contains(t, rec.Body.String(), "'=SUM(A1)")

	rec = env.do(t, http.MethodGet, artistPath("/reports/"+uuid.NewString()+"/download"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportJobFlow(t *testing.T) {
	env := newTestEnv(t, false)
	report := sampleReport(artistID)
	env.store.reports[report.ID] = report

	rec := env.do(t, http.MethodPost, artistPath("/reports/"+report.ID.String()+"/exports"),
		map[string]any{"format": "excel"}, "X-Actor-Subject", artistID.String())
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var job domain.ExportJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, domain.JobPending, job.Status)
	assert.Equal(t, domain.FormatExcel, job.Format)
	assert.Equal(t, artistID.String(), job.RequestedBy)

	download := artistPath("/exports/" + job.JobID.String() + "/download")
	rec = env.do(t, http.MethodGet, download, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apperrors.CodeExportNotReady, decodeError(t, rec).Code)

	key := "reports/a/b/c.csv"
	stored := env.jobs.jobs[job.JobID]
	stored.Status = domain.JobSucceeded
	stored.OutputURI = &key
	env.jobs.jobs[job.JobID] = stored

	rec = env.do(t, http.MethodGet, download, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://storage.example.test/reports/a/b/c.csv?sig=abc", rec.Header().Get("Location"))

	rec = env.do(t, http.MethodGet, artistPath("/exports?status=succeeded"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), job.JobID.String())

	rec = env.do(t, http.MethodGet, artistPath("/exports?status=done"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, artistPath("/reports/"+uuid.NewString()+"/exports"), map[string]any{"format": "csv"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportsWithoutStorage(t *testing.T) {
	server := NewServer(Config{Logger: zap.NewNop(), Store: newFakeStore(), Dashboard: &fakeDashboard{}})
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, artistPath("/exports"), nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, apperrors.CodeExportFailed, decodeError(t, rec).Code)
}

func TestRBACEnforced(t *testing.T) {
	env := newTestEnv(t, true)

	tests := []struct {
		name    string
		method  string
		path    string
		body    any
		subject string
		roles   string
		status  int
	}{
		{"owner reads", http.MethodGet, artistPath("/dashboard"), nil, artistID.String(), "artist", http.StatusOK},
		{"owner subject case-insensitive", http.MethodGet, artistPath("/dashboard"), nil, strings.ToUpper(artistID.String()), "artist", http.StatusOK},
		{"viewer reads", http.MethodGet, artistPath("/artworks"), nil, artistID.String(), "viewer", http.StatusOK},
		{"viewer cannot write", http.MethodPost, artistPath("/artworks"), map[string]any{"title": "A"}, artistID.String(), "viewer", http.StatusForbidden},
		{"no roles", http.MethodGet, artistPath("/dashboard"), nil, artistID.String(), "", http.StatusForbidden},
		{"other artist", http.MethodGet, "/api/v1/artists/" + otherID.String() + "/dashboard", nil, artistID.String(), "artist", http.StatusForbidden},
		{"admin any artist", http.MethodGet, "/api/v1/artists/" + otherID.String() + "/dashboard", nil, "ops", "admin", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.body,
				"X-Actor-Subject", tt.subject, "X-Actor-Roles", tt.roles)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status == http.StatusForbidden {
				assert.Equal(t, apperrors.CodeUnauthorized, decodeError(t, rec).Code)
			}
		})
	}
}
