// Package domain holds ArtConnect's persisted records and the view-models the
// dashboard and report pipeline build from them.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Artwork is an item in an artist's inventory.
type Artwork struct {
	ID          uuid.UUID     `json:"id"`
	ArtistID    uuid.UUID     `json:"artistId"`
	Title       string        `json:"title"`
	Medium      string        `json:"medium,omitempty"`
	Dimensions  string        `json:"dimensions,omitempty"`
	Year        int           `json:"year,omitempty"`
	Description string        `json:"description,omitempty"`
	ImageURL    string        `json:"imageUrl,omitempty"`
	Price       float64       `json:"price"`
	Status      ArtworkStatus `json:"status"`
	Views       int64         `json:"views"`
	SoldPrice   *float64      `json:"soldPrice,omitempty"`
	SoldAt      *time.Time    `json:"soldAt,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// ContactCategory classifies a contact in the artist's network.
type ContactCategory string

// Contact categories.
const (
	CategoryCollector ContactCategory = "collector"
	CategoryGallery   ContactCategory = "gallery"
	CategoryCurator   ContactCategory = "curator"
	CategoryPartner   ContactCategory = "partner"
	CategoryOther     ContactCategory = "other"
)

// ValidContactCategory reports whether c is a known category.
func ValidContactCategory(c ContactCategory) bool {
	switch c {
	case CategoryCollector, CategoryGallery, CategoryCurator, CategoryPartner, CategoryOther:
		return true
	}
	return false
}

// Contact is a person or organisation in the artist's network.
type Contact struct {
	ID              uuid.UUID       `json:"id"`
	ArtistID        uuid.UUID       `json:"artistId"`
	Name            string          `json:"name"`
	Email           string          `json:"email,omitempty"`
	Phone           string          `json:"phone,omitempty"`
	Company         string          `json:"company,omitempty"`
	Category        ContactCategory `json:"category"`
	Notes           string          `json:"notes,omitempty"`
	LastContactedAt *time.Time      `json:"lastContactedAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// PipelineItem is a card on the Kanban board. Each card tracks one artwork.
type PipelineItem struct {
	ID            uuid.UUID     `json:"id"`
	ArtistID      uuid.UUID     `json:"artistId"`
	ArtworkID     uuid.UUID     `json:"artworkId"`
	ArtworkTitle  string        `json:"artworkTitle"`
	ContactID     *uuid.UUID    `json:"contactId,omitempty"`
	ContactName   string        `json:"contactName,omitempty"`
	Stage         ArtworkStatus `json:"stage"`
	Position      int           `json:"position"`
	ExpectedValue float64       `json:"expectedValue"`
	Notes         string        `json:"notes,omitempty"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// PipelineColumn is one stage of the board with its ordered cards.
type PipelineColumn struct {
	Stage ArtworkStatus  `json:"stage"`
	Label string         `json:"label"`
	Items []PipelineItem `json:"items"`
	Total float64        `json:"totalValue"`
}

// ReportType selects which data a report focuses on.
type ReportType string

// Report types.
const (
	ReportSales         ReportType = "sales"
	ReportInventory     ReportType = "inventory"
	ReportNetwork       ReportType = "network"
	ReportComprehensive ReportType = "comprehensive"
)

// ValidReportType reports whether t is a known report type.
func ValidReportType(t ReportType) bool {
	switch t {
	case ReportSales, ReportInventory, ReportNetwork, ReportComprehensive:
		return true
	}
	return false
}

// Label returns the Indonesian display name of the report type.
func (t ReportType) Label() string {
	switch t {
	case ReportSales:
		return "Penjualan"
	case ReportInventory:
		return "Inventaris"
	case ReportNetwork:
		return "Jaringan"
	case ReportComprehensive:
		return "Komprehensif"
	}
	return string(t)
}

// Report is a stored, generated report.
type Report struct {
	ID          uuid.UUID       `json:"id"`
	ArtistID    uuid.UUID       `json:"artistId"`
	Type        ReportType      `json:"type"`
	PeriodStart time.Time       `json:"periodStart"`
	PeriodEnd   time.Time       `json:"periodEnd"`
	Content     FormattedReport `json:"content"`
	AIGenerated bool            `json:"aiGenerated"`
	Model       string          `json:"model,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// TrafficEvent is one visit to an artist's public portfolio.
type TrafficEvent struct {
	EventID    uuid.UUID  `json:"eventId"`
	ArtistID   uuid.UUID  `json:"artistId"`
	Source     string     `json:"source"`
	ArtworkID  *uuid.UUID `json:"artworkId,omitempty"`
	OccurredAt time.Time  `json:"occurredAt"`
}

// ExportFormat is an output encoding for a rendered report.
type ExportFormat string

// Export formats.
const (
	FormatHTML  ExportFormat = "html"
	FormatCSV   ExportFormat = "csv"
	FormatExcel ExportFormat = "excel"
)

// ValidExportFormat reports whether f is a known export format.
func ValidExportFormat(f ExportFormat) bool {
	switch f {
	case FormatHTML, FormatCSV, FormatExcel:
		return true
	}
	return false
}

// ExportJob tracks asynchronous delivery of a rendered report.
type ExportJob struct {
	JobID        uuid.UUID    `json:"jobId"`
	ArtistID     uuid.UUID    `json:"artistId"`
	ReportID     uuid.UUID    `json:"reportId"`
	Format       ExportFormat `json:"format"`
	Status       string       `json:"status"`
	OutputURI    *string      `json:"outputUri,omitempty"`
	Checksum     *string      `json:"checksum,omitempty"`
	SizeBytes    *int64       `json:"sizeBytes,omitempty"`
	RequestedBy  string       `json:"requestedBy"`
	CreatedAt    time.Time    `json:"createdAt"`
	CompletedAt  *time.Time   `json:"completedAt,omitempty"`
	ErrorMessage *string      `json:"error,omitempty"`
}

// Export job statuses.
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobSucceeded = "succeeded"
	JobFailed    = "failed"
)
