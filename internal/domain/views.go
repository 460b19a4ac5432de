package domain

import "github.com/google/uuid"

// Trend is the direction of an AnalyticsStat's change.
type Trend string

// Trend values.
const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// AnalyticsStat is a headline number with its change against the previous period.
type AnalyticsStat struct {
	Key           string  `json:"key"`
	Title         string  `json:"title"`
	Value         float64 `json:"value"`
	Display       string  `json:"display"`
	ChangePercent float64 `json:"changePercent"`
	Trend         Trend   `json:"trend"`
}

// SalesDataPoint is one month of sales.
type SalesDataPoint struct {
	Month   string  `json:"month"`
	Year    int     `json:"year"`
	Sales   int64   `json:"sales"`
	Revenue float64 `json:"revenue"`
}

// ArtworkStatusData is one slice of the inventory status chart.
type ArtworkStatusData struct {
	Status     ArtworkStatus `json:"status"`
	Label      string        `json:"label"`
	Count      int64         `json:"count"`
	Percentage float64       `json:"percentage"`
	Color      string        `json:"color"`
}

// TopArtwork is a highly viewed artwork.
type TopArtwork struct {
	ID     uuid.UUID     `json:"id"`
	Title  string        `json:"title"`
	Views  int64         `json:"views"`
	Price  float64       `json:"price"`
	Status ArtworkStatus `json:"status"`
}

// TrafficSource is one slice of the portfolio traffic breakdown.
type TrafficSource struct {
	Source     string  `json:"source"`
	Visits     int64   `json:"visits"`
	Percentage float64 `json:"percentage"`
}

// ReportMetric is a labelled value shown on report cards and inside sections.
type ReportMetric struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Change string `json:"change,omitempty"`
}

// ReportSection is one titled block of a FormattedReport.
type ReportSection struct {
	Title   string         `json:"title"`
	Content string         `json:"content"`
	Metrics []ReportMetric `json:"metrics,omitempty"`
}

// FormattedReport is the structured report rendered to HTML and CSV.
type FormattedReport struct {
	Title           string          `json:"title"`
	Summary         string          `json:"summary"`
	Sections        []ReportSection `json:"sections"`
	Recommendations []string        `json:"recommendations,omitempty"`
}
