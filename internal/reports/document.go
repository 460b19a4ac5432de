package reports

import (
	"fmt"
	"strings"
	"time"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
)

// Document is a report plus the metadata printed around it.
type Document struct {
	Report      domain.FormattedReport
	Type        domain.ReportType
	PeriodStart time.Time
	PeriodEnd   time.Time
	GeneratedAt time.Time
	AIGenerated bool
}

// DocumentFromReport wraps a stored report for rendering.
func DocumentFromReport(r domain.Report) Document {
	return Document{
		Report:      r.Content,
		Type:        r.Type,
		PeriodStart: r.PeriodStart,
		PeriodEnd:   r.PeriodEnd,
		GeneratedAt: r.CreatedAt,
		AIGenerated: r.AIGenerated,
	}
}

// Artifact is a rendered report.
type Artifact struct {
	Body        []byte
	ContentType string
	Extension   string
}

// Render encodes doc in format.
func Render(format domain.ExportFormat, doc Document) (Artifact, error) {
	switch format {
	case domain.FormatHTML:
		body, err := RenderHTML(doc)
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Body: body, ContentType: "text/html; charset=utf-8", Extension: "html"}, nil
	case domain.FormatCSV:
		body, err := RenderCSV(doc)
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Body: body, ContentType: "text/csv; charset=utf-8", Extension: "csv"}, nil
	case domain.FormatExcel:
		body, err := RenderExcelCSV(doc)
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Body: body, ContentType: "text/csv; charset=utf-8", Extension: "csv"}, nil
	default:
		return Artifact{}, fmt.Errorf("unsupported export format %q", format)
	}
}

// Filename is the download name for doc, e.g. "laporan-penjualan-2026-03-14.csv".
// Excel exports get an "-excel" suffix so both CSV flavours can coexist.
func Filename(doc Document, format domain.ExportFormat, ext string) string {
	name := "laporan-" + strings.ToLower(doc.Type.Label())
	if format == domain.FormatExcel {
		name += "-excel"
	}
	date := doc.GeneratedAt
	if date.IsZero() {
		date = time.Now()
	}
	return fmt.Sprintf("%s-%s.%s", name, date.UTC().Format("2006-01-02"), ext)
}
