// Package reports turns an artist's sales, inventory and network data into a
// FormattedReport, using an AI completion when available and a deterministic
// summary otherwise, and renders reports to HTML and CSV.
//
// Parse and Fallback never fail: whatever the model returns, callers receive
// a well-formed report.
package reports

import (
	"time"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
)

// ReportData is everything a report is written from. A nil summary means the
// data was not requested or could not be loaded.
type ReportData struct {
	Type        domain.ReportType `json:"reportType"`
	PeriodStart time.Time         `json:"periodStart"`
	PeriodEnd   time.Time         `json:"periodEnd"`
	Sales       *SalesSummary     `json:"sales,omitempty"`
	Inventory   *InventorySummary `json:"inventory,omitempty"`
	Network     *NetworkSummary   `json:"network,omitempty"`
	Traffic     *TrafficSummary   `json:"traffic,omitempty"`
}

// Empty reports whether no summary is present.
func (d ReportData) Empty() bool {
	return d.Sales == nil && d.Inventory == nil && d.Network == nil && d.Traffic == nil
}

// SalesSummary covers artworks sold during the period.
type SalesSummary struct {
	TotalSales    int64                   `json:"totalSales"`
	TotalRevenue  float64                 `json:"totalRevenue"`
	AveragePrice  float64                 `json:"averagePrice"`
	HighestSale   float64                 `json:"highestSale"`
	RevenueChange float64                 `json:"revenueChangePercent"`
	Monthly       []domain.SalesDataPoint `json:"monthly"`
}

// InventorySummary is the current state of the artist's inventory.
type InventorySummary struct {
	TotalArtworks  int64                      `json:"totalArtworks"`
	InventoryValue float64                    `json:"inventoryValue"`
	ByStatus       []domain.ArtworkStatusData `json:"byStatus"`
	TopArtworks    []domain.TopArtwork        `json:"topArtworks"`
}

// CategoryCount is the number of contacts in one category.
type CategoryCount struct {
	Category   domain.ContactCategory `json:"category"`
	Count      int64                  `json:"count"`
	Percentage float64                `json:"percentage"`
}

// NetworkSummary describes the artist's contact network.
type NetworkSummary struct {
	TotalContacts int64           `json:"totalContacts"`
	NewContacts   int64           `json:"newContacts"`
	ByCategory    []CategoryCount `json:"byCategory"`
}

// TrafficSummary is portfolio traffic during the period.
type TrafficSummary struct {
	TotalVisits int64                  `json:"totalVisits"`
	Sources     []domain.TrafficSource `json:"sources"`
}

// includes reports which summaries a report type draws on.
func includes(t domain.ReportType) (sales, inventory, network, traffic bool) {
	switch t {
	case domain.ReportSales:
		return true, false, false, false
	case domain.ReportInventory:
		return false, true, false, false
	case domain.ReportNetwork:
		return false, false, true, true
	default:
		return true, true, true, true
	}
}
