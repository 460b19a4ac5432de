package reports

import (
	"fmt"
	"strings"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
)

// Fallback builds a report from the numbers in data alone. It is used when
// no AI output is available or the output cannot be parsed, and always
// produces the same report for the same data. Nil summaries add no section.
func Fallback(data ReportData) domain.FormattedReport {
	report := domain.FormattedReport{
		Title:    fmt.Sprintf("Laporan %s", data.Type.Label()),
		Sections: []domain.ReportSection{},
	}
	if !data.PeriodStart.IsZero() && data.PeriodEnd.After(data.PeriodStart) {
		report.Title += " " + FormatPeriod(data.PeriodStart, data.PeriodEnd)
	}

	var highlights []string
	var recommendations []string

	if s := data.Sales; s != nil {
		report.Sections = append(report.Sections, salesSection(s))
		highlights = append(highlights, fmt.Sprintf("%s karya terjual dengan total pendapatan %s",
			FormatNumber(s.TotalSales), FormatRupiah(s.TotalRevenue)))
		if s.TotalSales == 0 {
			recommendations = append(recommendations,
				"Belum ada penjualan pada periode ini. Pertimbangkan pameran atau promosi untuk karya yang sudah selesai.")
		} else if s.RevenueChange < 0 {
			recommendations = append(recommendations,
				"Pendapatan menurun dibanding periode sebelumnya. Tinjau kembali strategi harga dan kanal penjualan.")
		}
	}

	if inv := data.Inventory; inv != nil {
		report.Sections = append(report.Sections, inventorySection(inv))
		highlights = append(highlights, fmt.Sprintf("%s karya dalam inventaris senilai %s",
			FormatNumber(inv.TotalArtworks), FormatRupiah(inv.InventoryValue)))
		for _, st := range inv.ByStatus {
			if st.Status == domain.StatusFinished && st.Count > 0 {
				recommendations = append(recommendations, fmt.Sprintf(
					"Ada %s karya berstatus Selesai yang siap dipasarkan. Tawarkan kepada kolektor dan galeri di jaringan Anda.",
					FormatNumber(st.Count)))
			}
		}
	}

	if n := data.Network; n != nil {
		report.Sections = append(report.Sections, networkSection(n))
		highlights = append(highlights, fmt.Sprintf("%s kontak dalam jaringan, %s di antaranya baru",
			FormatNumber(n.TotalContacts), FormatNumber(n.NewContacts)))
		if n.NewContacts == 0 {
			recommendations = append(recommendations,
				"Tidak ada kontak baru pada periode ini. Hadiri acara seni untuk memperluas jaringan.")
		}
	}

	if tr := data.Traffic; tr != nil {
		report.Sections = append(report.Sections, trafficSection(tr))
		highlights = append(highlights, fmt.Sprintf("%s kunjungan portofolio", FormatNumber(tr.TotalVisits)))
	}

	if len(highlights) == 0 {
		report.Summary = "Data untuk periode ini belum tersedia."
	} else {
		report.Summary = "Ringkasan otomatis: " + strings.Join(highlights, "; ") + "."
	}
	if len(recommendations) > 0 {
		report.Recommendations = recommendations
	}
	return report
}

func salesSection(s *SalesSummary) domain.ReportSection {
	best := ""
	var bestRevenue float64
	for _, m := range s.Monthly {
		if m.Revenue > bestRevenue {
			bestRevenue = m.Revenue
			best = fmt.Sprintf("%s %d", m.Month, m.Year)
		}
	}

	content := fmt.Sprintf("Terjual %s karya dengan total pendapatan %s.",
		FormatNumber(s.TotalSales), FormatRupiah(s.TotalRevenue))
	if best != "" {
		content += fmt.Sprintf(" Bulan terbaik adalah %s dengan pendapatan %s.", best, FormatRupiah(bestRevenue))
	}

	return domain.ReportSection{
		Title:   "Ringkasan Penjualan",
		Content: content,
		Metrics: []domain.ReportMetric{
			{Label: "Total Penjualan", Value: FormatNumber(s.TotalSales)},
			{Label: "Total Pendapatan", Value: FormatRupiah(s.TotalRevenue), Change: FormatChange(s.RevenueChange)},
			{Label: "Rata-rata Harga", Value: FormatRupiah(s.AveragePrice)},
			{Label: "Penjualan Tertinggi", Value: FormatRupiah(s.HighestSale)},
		},
	}
}

func inventorySection(inv *InventorySummary) domain.ReportSection {
	metrics := []domain.ReportMetric{
		{Label: "Total Karya", Value: FormatNumber(inv.TotalArtworks)},
		{Label: "Nilai Inventaris", Value: FormatRupiah(inv.InventoryValue)},
	}
	for _, st := range inv.ByStatus {
		metrics = append(metrics, domain.ReportMetric{
			Label: st.Label,
			Value: fmt.Sprintf("%s (%s)", FormatNumber(st.Count), FormatPercent(st.Percentage)),
		})
	}

	content := fmt.Sprintf("Inventaris berisi %s karya dengan nilai total %s.",
		FormatNumber(inv.TotalArtworks), FormatRupiah(inv.InventoryValue))
	if len(inv.TopArtworks) > 0 {
		top := inv.TopArtworks[0]
		content += fmt.Sprintf(" Karya paling banyak dilihat adalah \"%s\" dengan %s kunjungan.",
			top.Title, FormatNumber(top.Views))
	}

	return domain.ReportSection{Title: "Status Inventaris", Content: content, Metrics: metrics}
}

var categoryLabels = map[domain.ContactCategory]string{
	domain.CategoryCollector: "Kolektor",
	domain.CategoryGallery:   "Galeri",
	domain.CategoryCurator:   "Kurator",
	domain.CategoryPartner:   "Mitra",
	domain.CategoryOther:     "Lainnya",
}

func networkSection(n *NetworkSummary) domain.ReportSection {
	metrics := []domain.ReportMetric{
		{Label: "Total Kontak", Value: FormatNumber(n.TotalContacts)},
		{Label: "Kontak Baru", Value: FormatNumber(n.NewContacts)},
	}
	for _, c := range n.ByCategory {
		label, ok := categoryLabels[c.Category]
		if !ok {
			label = string(c.Category)
		}
		metrics = append(metrics, domain.ReportMetric{
			Label: label,
			Value: fmt.Sprintf("%s (%s)", FormatNumber(c.Count), FormatPercent(c.Percentage)),
		})
	}

	return domain.ReportSection{
		Title: "Jaringan Kontak",
		Content: fmt.Sprintf("Jaringan Anda terdiri dari %s kontak dengan %s kontak baru pada periode ini.",
			FormatNumber(n.TotalContacts), FormatNumber(n.NewContacts)),
		Metrics: metrics,
	}
}

func trafficSection(tr *TrafficSummary) domain.ReportSection {
	metrics := []domain.ReportMetric{{Label: "Total Kunjungan", Value: FormatNumber(tr.TotalVisits)}}
	for _, s := range tr.Sources {
		metrics = append(metrics, domain.ReportMetric{
			Label: s.Source,
			Value: fmt.Sprintf("%s (%s)", FormatNumber(s.Visits), FormatPercent(s.Percentage)),
		})
	}

	content := fmt.Sprintf("Portofolio menerima %s kunjungan.", FormatNumber(tr.TotalVisits))
	if len(tr.Sources) > 0 {
		content += fmt.Sprintf(" Sumber utama adalah %s.", tr.Sources[0].Source)
	}
	return domain.ReportSection{Title: "Sumber Trafik", Content: content, Metrics: metrics}
}
