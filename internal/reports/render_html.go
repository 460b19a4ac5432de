package reports

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"paragraphs": paragraphs,
}).Parse(`<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Report.Title}}</title>
<style>
  body { font-family: "Inter", "Segoe UI", Arial, sans-serif; color: #1f2937; margin: 2rem auto; max-width: 800px; line-height: 1.6; }
  header { border-bottom: 2px solid #111827; margin-bottom: 1.5rem; padding-bottom: 0.75rem; }
  h1 { font-size: 1.6rem; margin: 0 0 0.25rem; }
  h2 { font-size: 1.15rem; margin: 1.75rem 0 0.5rem; color: #111827; }
  .meta { color: #6b7280; font-size: 0.85rem; }
  .summary { background: #f3f4f6; border-radius: 6px; padding: 1rem; }
  table { border-collapse: collapse; width: 100%; margin: 0.75rem 0; font-size: 0.9rem; }
  th, td { border: 1px solid #d1d5db; padding: 0.4rem 0.6rem; text-align: left; }
  th { background: #f9fafb; }
  .change { white-space: nowrap; }
  .actions { margin: 1rem 0; }
  footer { margin-top: 2rem; color: #9ca3af; font-size: 0.75rem; }
  @media print {
    body { margin: 0; max-width: none; }
    .actions { display: none; }
    section { page-break-inside: avoid; }
    .summary { background: none; border: 1px solid #d1d5db; }
  }
</style>
</head>
<body>
<header>
  <h1>{{.Report.Title}}</h1>
  <div class="meta">Jenis: {{.TypeLabel}}{{if .Period}} &middot; Periode: {{.Period}}{{end}}{{if .Generated}} &middot; Dibuat: {{.Generated}}{{end}}</div>
</header>
<div class="actions"><button type="button" onclick="window.print()">Cetak / Simpan PDF</button></div>
<section class="summary">
  <h2>Ringkasan</h2>
  {{range paragraphs .Report.Summary}}<p>{{.}}</p>{{end}}
</section>
{{range .Report.Sections}}
<section>
  <h2>{{.Title}}</h2>
  {{range paragraphs .Content}}<p>{{.}}</p>{{end}}
  {{if .Metrics}}
  <table>
    <thead><tr><th>Metrik</th><th>Nilai</th><th>Perubahan</th></tr></thead>
    <tbody>
    {{range .Metrics}}<tr><td>{{.Label}}</td><td>{{.Value}}</td><td class="change">{{.Change}}</td></tr>
    {{end}}
    </tbody>
  </table>
  {{end}}
</section>
{{end}}
{{if .Report.Recommendations}}
<section>
  <h2>Rekomendasi</h2>
  <ol>
  {{range .Report.Recommendations}}<li>{{.}}</li>
  {{end}}
  </ol>
</section>
{{end}}
<footer>{{if .AIGenerated}}Laporan ini disusun dengan bantuan AI.{{else}}Laporan ini disusun otomatis dari data ArtConnect.{{end}}</footer>
<script>
  if (window.location.hash === "#print") { window.addEventListener("load", function () { window.print(); }); }
</script>
</body>
</html>
`))

type htmlView struct {
	Document
	TypeLabel string
	Period    string
	Generated string
}

// RenderHTML renders doc as a standalone, printable HTML page. All report
// text is escaped.
func RenderHTML(doc Document) ([]byte, error) {
	view := htmlView{Document: doc, TypeLabel: doc.Type.Label()}
	if !doc.PeriodStart.IsZero() && doc.PeriodEnd.After(doc.PeriodStart) {
		view.Period = FormatPeriod(doc.PeriodStart, doc.PeriodEnd)
	}
	if !doc.GeneratedAt.IsZero() {
		view.Generated = FormatDate(doc.GeneratedAt)
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

// paragraphs splits text on newlines, dropping blank lines.
func paragraphs(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
