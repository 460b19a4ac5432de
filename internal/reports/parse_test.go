package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
)

func sampleData() ReportData {
	return ReportData{
		Type:        domain.ReportComprehensive,
		PeriodStart: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),
		Sales: &SalesSummary{
			TotalSales:    3,
			TotalRevenue:  7_500_000,
			AveragePrice:  2_500_000,
			HighestSale:   4_000_000,
			RevenueChange: 25,
			Monthly: []domain.SalesDataPoint{
				{Month: "Jan", Year: 2026},
				{Month: "Feb", Year: 2026, Sales: 2, Revenue: 6_000_000},
				{Month: "Mar", Year: 2026, Sales: 1, Revenue: 1_500_000},
			},
		},
		Inventory: &InventorySummary{
			TotalArtworks:  4,
			InventoryValue: 12_000_000,
			ByStatus: []domain.ArtworkStatusData{
				{Status: domain.StatusConcept, Label: "Konsep", Count: 1, Percentage: 25},
				{Status: domain.StatusFinished, Label: "Selesai", Count: 3, Percentage: 75},
			},
			TopArtworks: []domain.TopArtwork{{Title: "Senja di Ubud", Views: 1200}},
		},
		Network: &NetworkSummary{TotalContacts: 10, NewContacts: 0},
		Traffic: &TrafficSummary{
			TotalVisits: 3000,
			Sources:     []domain.TrafficSource{{Source: "instagram", Visits: 3000, Percentage: 100}},
		},
	}
}

func TestParseValidOutput(t *testing.T) {
	raw := "Tentu! Berikut laporannya:\n```json\n" + `{
  "title": "Laporan Kuartal I",
  "summary": "Penjualan naik\ndengan stabil.",
  "sections": [
    {"title": "Penjualan", "content": "Tiga karya terjual.", "metrics": [
      {"label": "Pendapatan", "value": "Rp 7.500.000", "change": "+25%"},
      {"label": "Jumlah", "value": 3},
      {"label": "Rasio", "value": 0.5, "change": null}
    ]},
    {"title": "", "content": ""}
  ],
  "recommendations": ["Naikkan harga", "  "]
}` + "\n```"

	report, ok := Parse(raw, sampleData())
	require.True(t, ok)
	assert.Equal(t, "Laporan Kuartal I", report.Title)
	assert.Equal(t, "Penjualan naik\ndengan stabil.", report.Summary)
	require.Len(t, report.Sections, 1)
	require.Len(t, report.Sections[0].Metrics, 3)
	assert.Equal(t, domain.ReportMetric{Label: "Pendapatan", Value: "Rp 7.500.000", Change: "+25%"}, report.Sections[0].Metrics[0])
	assert.Equal(t, "3", report.Sections[0].Metrics[1].Value)
	assert.Equal(t, "0.5", report.Sections[0].Metrics[2].Value)
	assert.Empty(t, report.Sections[0].Metrics[2].Change)
	assert.Equal(t, []string{"Naikkan harga"}, report.Recommendations)
}

func TestParseRawNewlinesInsideStrings(t *testing.T) {
	raw := "{\"title\":\"Judul\",\"summary\":\"Baris satu\nBaris dua\",\"sections\":[{\"title\":\"A\",\"content\":\"isi\tbertab\"}]}"
	report, ok := Parse(raw, sampleData())
	require.True(t, ok)
	assert.Equal(t, "Baris satu\nBaris dua", report.Summary)
	assert.Equal(t, "isi\tbertab", report.Sections[0].Content)
}

func TestParseSkipsBracesBeforeReport(t *testing.T) {
	body := `{"title":"Laporan Jaringan","summary":"Kontak bertambah.","sections":[{"title":"Kontak","content":"Lima kontak baru."}]}`
	inputs := map[string]string{
		"unclosed brace": "Oke { ini laporannya:\n" + body,
		"stray object":   "Saya gunakan format {judul}. " + body,
		"invalid object": `Contoh: {"title":"x"}` + "\n" + body,
	}

	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			report, ok := Parse(raw, sampleData())
			require.True(t, ok)
			assert.Equal(t, "Laporan Jaringan", report.Title)
			require.Len(t, report.Sections, 1)
			assert.Equal(t, "Lima kontak baru.", report.Sections[0].Content)
		})
	}
}

func TestParseFallsBackOnMalformedOutput(t *testing.T) {
	data := sampleData()
	want := Fallback(data)

	inputs := map[string]string{
		"empty":            "",
		"prose only":       "Maaf, saya tidak dapat membuat laporan.",
		"truncated":        `{"title":"Laporan","summary":"x","sections":[{"title":"a"`,
		"invalid json":     `{"title": "Laporan", summary: "x"}`,
		"missing sections": `{"title":"Laporan","summary":"x"}`,
		"empty sections":   `{"title":"Laporan","summary":"x","sections":[]}`,
		"blank title":      `{"title":"   ","summary":"x","sections":[{"title":"a","content":"b"}]}`,
		"wrong types":      `{"title":1,"summary":"x","sections":[{"title":"a","content":"b"}]}`,
		"section no text":  `{"title":"T","summary":"x","sections":[{"title":"","content":""}]}`,
		"array top level":  `[{"title":"T"}]`,
		"bad metric value": `{"title":"T","summary":"x","sections":[{"title":"a","content":"b","metrics":[{"label":"l","value":{"n":1}}]}]}`,
		"control garbage":  "\x00\x01\x02{{{{",
	}

	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			var report domain.FormattedReport
			var ok bool
			require.NotPanics(t, func() { report, ok = Parse(raw, data) })
			assert.False(t, ok)
			assert.Equal(t, want, report)
		})
	}
}

func TestFallbackBuildsSectionsFromPresentData(t *testing.T) {
	report := Fallback(sampleData())

	assert.Equal(t, "Laporan Komprehensif 1 Jan 2026 - 31 Mar 2026", report.Title)
	assert.Contains(t, report.Summary, "3 karya terjual dengan total pendapatan Rp 7.500.000")
	require.Len(t, report.Sections, 4)
	assert.Equal(t, "Ringkasan Penjualan", report.Sections[0].Title)
	assert.Contains(t, report.Sections[0].Content, "Bulan terbaik adalah Feb 2026")
	assert.Equal(t, "Status Inventaris", report.Sections[1].Title)
	assert.Contains(t, report.Sections[1].Content, "Senja di Ubud")
	assert.Equal(t, "Jaringan Kontak", report.Sections[2].Title)
	assert.Equal(t, "Sumber Trafik", report.Sections[3].Title)

	require.NotEmpty(t, report.Recommendations)
	assert.Contains(t, report.Recommendations[0], "3 karya berstatus Selesai")
}

func TestFallbackSkipsNilSummaries(t *testing.T) {
	data := ReportData{
		Type:  domain.ReportSales,
		Sales: &SalesSummary{},
	}
	report := Fallback(data)
	require.Len(t, report.Sections, 1)
	assert.Equal(t, "Laporan Penjualan", report.Title)
	assert.Contains(t, report.Recommendations[0], "Belum ada penjualan")
}

func TestFallbackWithNoData(t *testing.T) {
	report := Fallback(ReportData{Type: domain.ReportNetwork})
	assert.Equal(t, "Laporan Jaringan", report.Title)
	assert.Equal(t, "Data untuk periode ini belum tersedia.", report.Summary)
	assert.NotNil(t, report.Sections)
	assert.Empty(t, report.Sections)
	assert.Nil(t, report.Recommendations)
}

func TestFallbackIsDeterministic(t *testing.T) {
	assert.Equal(t, Fallback(sampleData()), Fallback(sampleData()))
}
