// Package dashboard assembles the dashboard, analytics and reports-overview
// payloads from the store. Independent queries run concurrently; a failing
// query leaves zero values in its part of the payload, and only a payload
// whose every query failed is an error.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
	"github.com/VXerys/artconnect-crm-sub001/internal/reports"
	apperrors "github.com/VXerys/artconnect-crm-sub001/internal/shared/errors"
	"github.com/VXerys/artconnect-crm-sub001/internal/stats"
	"github.com/VXerys/artconnect-crm-sub001/internal/storage/postgres"
)

// Source is the read side of the store the dashboard is built from.
type Source interface {
	reports.DataSource
	ListArtworks(ctx context.Context, artistID uuid.UUID, filter postgres.ArtworkFilter) ([]domain.Artwork, error)
	ListPipeline(ctx context.Context, artistID uuid.UUID) ([]domain.PipelineItem, error)
	ListReports(ctx context.Context, artistID uuid.UUID, reportType *domain.ReportType, limit int) ([]domain.Report, error)
	CountReportsByType(ctx context.Context, artistID uuid.UUID) (map[domain.ReportType]int64, error)
}

// SnapshotCache caches assembled payloads per artist.
type SnapshotCache interface {
	Get(ctx context.Context, artistID uuid.UUID, name string, dest any) (bool, error)
	Set(ctx context.Context, artistID uuid.UUID, name string, value any) error
	Invalidate(ctx context.Context, artistID uuid.UUID) error
}

// ErrAllSourcesFailed is the cause of FETCH_FAILED errors.
var ErrAllSourcesFailed = errors.New("all dashboard sources failed")

// Service builds dashboard payloads.
type Service struct {
	source Source
	cache  SnapshotCache
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a dashboard service. cache may be nil.
func NewService(source Source, cache SnapshotCache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, cache: cache, logger: logger, now: time.Now}
}

// Invalidate drops cached payloads for artistID after a write.
func (s *Service) Invalidate(ctx context.Context, artistID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, artistID); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache",
			zap.String("artist_id", artistID.String()), zap.Error(err))
	}
}

// StageSummary is one pipeline column's size and value.
type StageSummary struct {
	Stage domain.ArtworkStatus `json:"stage"`
	Label string               `json:"label"`
	Count int64                `json:"count"`
	Value float64              `json:"value"`
}

// Overview is the landing dashboard.
type Overview struct {
	TotalArtworks  int64            `json:"totalArtworks"`
	TotalContacts  int64            `json:"totalContacts"`
	ActivePipeline int64            `json:"activePipeline"`
	TotalRevenue   float64          `json:"totalRevenue"`
	RevenueDisplay string           `json:"revenueDisplay"`
	RecentArtworks []domain.Artwork `json:"recentArtworks"`
	Pipeline       []StageSummary   `json:"pipeline"`
}

// Overview returns totals, recent artworks and pipeline stage counts.
func (s *Service) Overview(ctx context.Context, artistID uuid.UUID) (*Overview, error) {
	var cached Overview
	if s.cached(ctx, artistID, "overview", &cached) {
		return &cached, nil
	}

	out := &Overview{RecentArtworks: []domain.Artwork{}}
	var counts map[domain.ArtworkStatus]int64
	var items []domain.PipelineItem

	res := s.settle(ctx, artistID,
		fetch{"artwork_counts", func(ctx context.Context) (err error) {
			counts, err = s.source.CountArtworksByStatus(ctx, artistID)
			return err
		}},
		fetch{"contact_count", func(ctx context.Context) (err error) {
			out.TotalContacts, err = s.source.CountContacts(ctx, artistID)
			return err
		}},
		fetch{"revenue", func(ctx context.Context) error {
			totals, err := s.source.SalesTotals(ctx, artistID, time.Unix(0, 0).UTC(), s.now().Add(time.Minute))
			out.TotalRevenue = totals.Revenue
			return err
		}},
		fetch{"recent_artworks", func(ctx context.Context) error {
			recent, err := s.source.ListArtworks(ctx, artistID, postgres.ArtworkFilter{Sort: "created_at", Order: postgres.Desc, Limit: 5})
			if recent != nil {
				out.RecentArtworks = recent
			}
			return err
		}},
		fetch{"pipeline", func(ctx context.Context) (err error) {
			items, err = s.source.ListPipeline(ctx, artistID)
			return err
		}},
	)
	if res.all() {
		return nil, apperrors.Wrap(apperrors.CodeFetchFailed, ErrAllSourcesFailed)
	}

	for _, c := range counts {
		out.TotalArtworks += c
	}
	out.RevenueDisplay = reports.FormatRupiah(out.TotalRevenue)
	out.Pipeline = stageSummaries(items)
	for _, st := range out.Pipeline {
		if st.Stage.Active() {
			out.ActivePipeline += st.Count
		}
	}

	s.store(ctx, artistID, "overview", out, res)
	return out, nil
}

func stageSummaries(items []domain.PipelineItem) []StageSummary {
	byStage := make(map[domain.ArtworkStatus]*StageSummary, len(domain.Statuses))
	out := make([]StageSummary, len(domain.Statuses))
	for i, st := range domain.Statuses {
		out[i] = StageSummary{Stage: st, Label: st.Label()}
		byStage[st] = &out[i]
	}
	for _, item := range items {
		if sum, ok := byStage[item.Stage]; ok {
			sum.Count++
			sum.Value += item.ExpectedValue
		}
	}
	return out
}

// Analytics is the analytics page payload.
type Analytics struct {
	Start       time.Time                  `json:"start"`
	End         time.Time                  `json:"end"`
	Stats       []domain.AnalyticsStat     `json:"stats"`
	Sales       []domain.SalesDataPoint    `json:"sales"`
	Statuses    []domain.ArtworkStatusData `json:"statuses"`
	TopArtworks []domain.TopArtwork        `json:"topArtworks"`
	Traffic     []domain.TrafficSource     `json:"traffic"`
}

// Analytics returns headline stats compared with the preceding window of the
// same length, the monthly sales series, the status breakdown, the five most
// viewed artworks and the traffic breakdown.
func (s *Service) Analytics(ctx context.Context, artistID uuid.UUID, window stats.Window) (*Analytics, error) {
	if !window.Valid() {
		window = stats.LastMonths(s.now(), 6)
	}
	name := fmt.Sprintf("analytics:%d:%d", window.Start.Unix(), window.End.Unix())

	var cached Analytics
	if s.cached(ctx, artistID, name, &cached) {
		return &cached, nil
	}

	prev := window.Previous()
	var (
		current, previous         postgres.SalesTotals
		monthly                   []postgres.MonthlySales
		counts                    map[domain.ArtworkStatus]int64
		top                       []domain.TopArtwork
		traffic, previousTraffic  []postgres.SourceVisits
		newContacts, prevContacts int64
	)

	res := s.settle(ctx, artistID,
		fetch{"sales", func(ctx context.Context) (err error) {
			current, err = s.source.SalesTotals(ctx, artistID, window.Start, window.End)
			return err
		}},
		fetch{"previous_sales", func(ctx context.Context) (err error) {
			previous, err = s.source.SalesTotals(ctx, artistID, prev.Start, prev.End)
			return err
		}},
		fetch{"monthly_sales", func(ctx context.Context) (err error) {
			monthly, err = s.source.SalesByMonth(ctx, artistID, window.Start, window.End)
			return err
		}},
		fetch{"artwork_counts", func(ctx context.Context) (err error) {
			counts, err = s.source.CountArtworksByStatus(ctx, artistID)
			return err
		}},
		fetch{"top_artworks", func(ctx context.Context) (err error) {
			top, err = s.source.TopArtworks(ctx, artistID, 5)
			return err
		}},
		fetch{"traffic", func(ctx context.Context) (err error) {
			traffic, err = s.source.TrafficBySource(ctx, artistID, window.Start, window.End)
			return err
		}},
		fetch{"previous_traffic", func(ctx context.Context) (err error) {
			previousTraffic, err = s.source.TrafficBySource(ctx, artistID, prev.Start, prev.End)
			return err
		}},
		fetch{"new_contacts", func(ctx context.Context) (err error) {
			newContacts, err = s.source.CountContactsCreated(ctx, artistID, window.Start, window.End)
			return err
		}},
		fetch{"previous_contacts", func(ctx context.Context) (err error) {
			prevContacts, err = s.source.CountContactsCreated(ctx, artistID, prev.Start, prev.End)
			return err
		}},
	)
	if res.all() {
		return nil, apperrors.Wrap(apperrors.CodeFetchFailed, ErrAllSourcesFailed)
	}

	visits, prevVisits := sumVisits(traffic), sumVisits(previousTraffic)
	out := &Analytics{
		Start: window.Start,
		End:   window.End,
		Stats: []domain.AnalyticsStat{
			newStat("revenue", "Total Pendapatan", current.Revenue, previous.Revenue, res.ok("sales", "previous_sales"), reports.FormatRupiah(current.Revenue)),
			newStat("sold", "Karya Terjual", float64(current.Count), float64(previous.Count), res.ok("sales", "previous_sales"), reports.FormatNumber(current.Count)),
			newStat("views", "Total Kunjungan", float64(visits), float64(prevVisits), res.ok("traffic", "previous_traffic"), reports.FormatNumber(visits)),
			newStat("contacts", "Kontak Baru", float64(newContacts), float64(prevContacts), res.ok("new_contacts", "previous_contacts"), reports.FormatNumber(newContacts)),
		},
		Sales:       stats.SalesSeries(window, toMonthTotals(monthly)),
		Statuses:    stats.StatusBreakdown(counts),
		TopArtworks: nonNil(top),
		Traffic:     trafficSources(traffic),
	}

	s.store(ctx, artistID, name, out, res)
	return out, nil
}

// newStat compares current against previous. Without both values the change
// is reported as zero.
func newStat(key, title string, current, previous float64, comparable bool, display string) domain.AnalyticsStat {
	change := changeOf(current, previous, comparable)
	return domain.AnalyticsStat{
		Key:           key,
		Title:         title,
		Value:         current,
		Display:       display,
		ChangePercent: change,
		Trend:         stats.TrendOf(change),
	}
}

func changeOf(current, previous float64, comparable bool) float64 {
	if !comparable {
		return 0
	}
	return stats.ChangePercent(current, previous)
}

func sumVisits(rows []postgres.SourceVisits) int64 {
	var total int64
	for _, r := range rows {
		total += r.Visits
	}
	return total
}

func trafficSources(rows []postgres.SourceVisits) []domain.TrafficSource {
	sources := make([]domain.TrafficSource, len(rows))
	for i, r := range rows {
		sources[i] = domain.TrafficSource{Source: r.Source, Visits: r.Visits}
	}
	return stats.TrafficBreakdown(sources)
}

func toMonthTotals(months []postgres.MonthlySales) []stats.MonthTotal {
	out := make([]stats.MonthTotal, len(months))
	for i, m := range months {
		out[i] = stats.MonthTotal{Month: m.Month, Count: m.Count, Revenue: m.Revenue}
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ReportsOverview is the reports page payload.
type ReportsOverview struct {
	Recent  []domain.Report       `json:"recent"`
	Metrics []domain.ReportMetric `json:"metrics"`
}

// ReportsOverview returns the latest reports and summary metrics for the
// current month against the previous one.
func (s *Service) ReportsOverview(ctx context.Context, artistID uuid.UUID) (*ReportsOverview, error) {
	var cached ReportsOverview
	if s.cached(ctx, artistID, "reports", &cached) {
		return &cached, nil
	}

	month := stats.LastMonths(s.now(), 1)
	prev := stats.Window{Start: month.Start.AddDate(0, -1, 0), End: month.Start}

	var (
		recent                    []domain.Report
		byType                    map[domain.ReportType]int64
		current, previous         postgres.SalesTotals
		newContacts, prevContacts int64
	)

	res := s.settle(ctx, artistID,
		fetch{"recent_reports", func(ctx context.Context) (err error) {
			recent, err = s.source.ListReports(ctx, artistID, nil, 5)
			return err
		}},
		fetch{"report_counts", func(ctx context.Context) (err error) {
			byType, err = s.source.CountReportsByType(ctx, artistID)
			return err
		}},
		fetch{"sales", func(ctx context.Context) (err error) {
			current, err = s.source.SalesTotals(ctx, artistID, month.Start, month.End)
			return err
		}},
		fetch{"previous_sales", func(ctx context.Context) (err error) {
			previous, err = s.source.SalesTotals(ctx, artistID, prev.Start, prev.End)
			return err
		}},
		fetch{"new_contacts", func(ctx context.Context) (err error) {
			newContacts, err = s.source.CountContactsCreated(ctx, artistID, month.Start, month.End)
			return err
		}},
		fetch{"previous_contacts", func(ctx context.Context) (err error) {
			prevContacts, err = s.source.CountContactsCreated(ctx, artistID, prev.Start, prev.End)
			return err
		}},
	)
	if res.all() {
		return nil, apperrors.Wrap(apperrors.CodeFetchFailed, ErrAllSourcesFailed)
	}

	var reportCount int64
	for _, n := range byType {
		reportCount += n
	}

	out := &ReportsOverview{
		Recent: nonNil(recent),
		Metrics: []domain.ReportMetric{
			{Label: "Total Laporan", Value: reports.FormatNumber(reportCount)},
			{
				Label:  "Pendapatan Bulan Ini",
				Value:  reports.FormatRupiah(current.Revenue),
				Change: reports.FormatChange(changeOf(current.Revenue, previous.Revenue, res.ok("sales", "previous_sales"))),
			},
			{
				Label:  "Karya Terjual Bulan Ini",
				Value:  reports.FormatNumber(current.Count),
				Change: reports.FormatChange(changeOf(float64(current.Count), float64(previous.Count), res.ok("sales", "previous_sales"))),
			},
			{
				Label:  "Kontak Baru Bulan Ini",
				Value:  reports.FormatNumber(newContacts),
				Change: reports.FormatChange(changeOf(float64(newContacts), float64(prevContacts), res.ok("new_contacts", "previous_contacts"))),
			},
		},
	}

	s.store(ctx, artistID, "reports", out, res)
	return out, nil
}

type fetch struct {
	name string
	run  func(ctx context.Context) error
}

// settled records which fetches of a settle call failed.
type settled struct {
	failed map[string]bool
	total  int
}

func (r settled) all() bool { return len(r.failed) == r.total }

// ok reports whether every named fetch succeeded.
func (r settled) ok(names ...string) bool {
	for _, name := range names {
		if r.failed[name] {
			return false
		}
	}
	return true
}

// settle runs every fetch concurrently and waits for all of them. A failure
// does not cancel the others.
func (s *Service) settle(ctx context.Context, artistID uuid.UUID, fetches ...fetch) settled {
	errs := make([]error, len(fetches))
	var g errgroup.Group
	for i, f := range fetches {
		g.Go(func() error {
			errs[i] = f.run(ctx)
			return nil
		})
	}
	_ = g.Wait()

	res := settled{failed: map[string]bool{}, total: len(fetches)}
	for i, err := range errs {
		if err != nil {
			res.failed[fetches[i].name] = true
			s.logger.Warn("dashboard source failed",
				zap.String("artist_id", artistID.String()),
				zap.String("source", fetches[i].name),
				zap.Error(err),
			)
		}
	}
	return res
}

func (s *Service) cached(ctx context.Context, artistID uuid.UUID, name string, dest any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, artistID, name, dest)
	if err != nil {
		s.logger.Warn("dashboard cache read failed", zap.String("snapshot", name), zap.Error(err))
		return false
	}
	return hit
}

// store caches complete payloads only; partial ones are rebuilt next time.
func (s *Service) store(ctx context.Context, artistID uuid.UUID, name string, value any, res settled) {
	if s.cache == nil || len(res.failed) > 0 {
		return
	}
	if err := s.cache.Set(ctx, artistID, name, value); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("snapshot", name), zap.Error(err))
	}
}
