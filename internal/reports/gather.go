package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
	"github.com/VXerys/artconnect-crm-sub001/internal/stats"
	"github.com/VXerys/artconnect-crm-sub001/internal/storage/postgres"
)

// DataSource is the read side of the store the report data comes from.
type DataSource interface {
	SalesTotals(ctx context.Context, artistID uuid.UUID, start, end time.Time) (postgres.SalesTotals, error)
	SalesByMonth(ctx context.Context, artistID uuid.UUID, start, end time.Time) ([]postgres.MonthlySales, error)
	CountArtworksByStatus(ctx context.Context, artistID uuid.UUID) (map[domain.ArtworkStatus]int64, error)
	InventoryValue(ctx context.Context, artistID uuid.UUID) (float64, error)
	TopArtworks(ctx context.Context, artistID uuid.UUID, limit int) ([]domain.TopArtwork, error)
	CountContacts(ctx context.Context, artistID uuid.UUID) (int64, error)
	CountContactsCreated(ctx context.Context, artistID uuid.UUID, start, end time.Time) (int64, error)
	CountContactsByCategory(ctx context.Context, artistID uuid.UUID) (map[domain.ContactCategory]int64, error)
	TrafficBySource(ctx context.Context, artistID uuid.UUID, start, end time.Time) ([]postgres.SourceVisits, error)
}

// ErrNoData is returned by Gather when every requested source failed.
var ErrNoData = fmt.Errorf("all report data sources failed")

// Gather loads the summaries req.Type needs. Sources are queried
// concurrently and a failing source leaves its summary nil without affecting
// the others. Gather fails only when every requested source failed.
func Gather(ctx context.Context, source DataSource, logger *zap.Logger, artistID uuid.UUID, reportType domain.ReportType, window stats.Window) (ReportData, error) {
	data := ReportData{Type: reportType, PeriodStart: window.Start, PeriodEnd: window.End}
	wantSales, wantInventory, wantNetwork, wantTraffic := includes(reportType)

	var (
		g                                           errgroup.Group
		salesErr, inventoryErr, networkErr, trafErr error
		requested                                   int
	)

	if wantSales {
		requested++
		g.Go(func() error {
			data.Sales, salesErr = gatherSales(ctx, source, artistID, window)
			return nil
		})
	}
	if wantInventory {
		requested++
		g.Go(func() error {
			data.Inventory, inventoryErr = gatherInventory(ctx, source, artistID)
			return nil
		})
	}
	if wantNetwork {
		requested++
		g.Go(func() error {
			data.Network, networkErr = gatherNetwork(ctx, source, artistID, window)
			return nil
		})
	}
	if wantTraffic {
		requested++
		g.Go(func() error {
			data.Traffic, trafErr = gatherTraffic(ctx, source, artistID, window)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for name, err := range map[string]error{
		"sales":     salesErr,
		"inventory": inventoryErr,
		"network":   networkErr,
		"traffic":   trafErr,
	} {
		if err != nil {
			failed++
			logger.Warn("report data source failed",
				zap.String("artist_id", artistID.String()),
				zap.String("source", name),
				zap.Error(err),
			)
		}
	}

	if requested > 0 && failed == requested {
		return data, ErrNoData
	}
	return data, nil
}

func gatherSales(ctx context.Context, source DataSource, artistID uuid.UUID, window stats.Window) (*SalesSummary, error) {
	totals, err := source.SalesTotals(ctx, artistID, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	monthly, err := source.SalesByMonth(ctx, artistID, window.Start, window.End)
	if err != nil {
		return nil, err
	}

	summary := &SalesSummary{
		TotalSales:   totals.Count,
		TotalRevenue: totals.Revenue,
		AveragePrice: stats.SafeDivide(totals.Revenue, float64(totals.Count)),
		HighestSale:  totals.MaxPrice,
		Monthly:      stats.SalesSeries(window, toMonthTotals(monthly)),
	}

	// The comparison is best effort; a failure only loses the change figure.
	prev := window.Previous()
	if previous, err := source.SalesTotals(ctx, artistID, prev.Start, prev.End); err == nil {
		summary.RevenueChange = stats.ChangePercent(totals.Revenue, previous.Revenue)
	}
	return summary, nil
}

func toMonthTotals(months []postgres.MonthlySales) []stats.MonthTotal {
	out := make([]stats.MonthTotal, len(months))
	for i, m := range months {
		out[i] = stats.MonthTotal{Month: m.Month, Count: m.Count, Revenue: m.Revenue}
	}
	return out
}

func gatherInventory(ctx context.Context, source DataSource, artistID uuid.UUID) (*InventorySummary, error) {
	counts, err := source.CountArtworksByStatus(ctx, artistID)
	if err != nil {
		return nil, err
	}
	value, err := source.InventoryValue(ctx, artistID)
	if err != nil {
		return nil, err
	}
	top, err := source.TopArtworks(ctx, artistID, 5)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &InventorySummary{
		TotalArtworks:  total,
		InventoryValue: value,
		ByStatus:       stats.StatusBreakdown(counts),
		TopArtworks:    top,
	}, nil
}

var categoryOrder = []domain.ContactCategory{
	domain.CategoryCollector,
	domain.CategoryGallery,
	domain.CategoryCurator,
	domain.CategoryPartner,
	domain.CategoryOther,
}

func gatherNetwork(ctx context.Context, source DataSource, artistID uuid.UUID, window stats.Window) (*NetworkSummary, error) {
	total, err := source.CountContacts(ctx, artistID)
	if err != nil {
		return nil, err
	}
	created, err := source.CountContactsCreated(ctx, artistID, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	byCategory, err := source.CountContactsByCategory(ctx, artistID)
	if err != nil {
		return nil, err
	}

	counts := make([]int64, len(categoryOrder))
	for i, c := range categoryOrder {
		counts[i] = byCategory[c]
	}
	pcts := stats.Percentages(counts)

	summary := &NetworkSummary{TotalContacts: total, NewContacts: created}
	for i, c := range categoryOrder {
		summary.ByCategory = append(summary.ByCategory, CategoryCount{
			Category:   c,
			Count:      counts[i],
			Percentage: pcts[i],
		})
	}
	return summary, nil
}

func gatherTraffic(ctx context.Context, source DataSource, artistID uuid.UUID, window stats.Window) (*TrafficSummary, error) {
	rows, err := source.TrafficBySource(ctx, artistID, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	sources := make([]domain.TrafficSource, len(rows))
	var total int64
	for i, r := range rows {
		sources[i] = domain.TrafficSource{Source: r.Source, Visits: r.Visits}
		total += r.Visits
	}
	return &TrafficSummary{TotalVisits: total, Sources: stats.TrafficBreakdown(sources)}, nil
}
