package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"regexp"
	"strconv"
)

// utf8BOM lets spreadsheet applications detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RenderCSV renders doc as comma-separated values with a UTF-8 byte-order
// mark and \n line endings. Fields are quoted per RFC 4180.
func RenderCSV(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := writeRows(w, doc, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderExcelCSV renders doc for spreadsheet applications in locales whose
// decimal separator is a comma: a UTF-8 byte-order mark, a "sep=;" hint,
// semicolon delimiters and CRLF line endings. Cells starting with =, +, -, @
// or a tab are prefixed with an apostrophe so they are not evaluated, except
// signed percentages and negative amounts produced by the formatters.
func RenderExcelCSV(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	buf.WriteString("sep=;\r\n")

	w := csv.NewWriter(&buf)
	w.Comma = ';'
	w.UseCRLF = true
	if err := writeRows(w, doc, guardFormula); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// plainValue matches formatter output that may start with a sign:
// "+25,0%", "-3,0%", "-1.500" and "-Rp 1.250.000".
var plainValue = regexp.MustCompile(`^(?:[+-][0-9.,]+%|-[0-9.,]+|-Rp [0-9.]+)$`)

func guardFormula(cell string) string {
	if cell == "" || plainValue.MatchString(cell) {
		return cell
	}
	switch cell[0] {
	case '=', '+', '-', '@', '\t':
		return "'" + cell
	}
	return cell
}

func writeRows(w *csv.Writer, doc Document, cellFn func(string) string) error {
	write := func(cells ...string) error {
		if cellFn != nil {
			for i := range cells {
				cells[i] = cellFn(cells[i])
			}
		}
		return w.Write(cells)
	}

	rows := [][]string{
		{"Laporan", doc.Report.Title},
		{"Jenis", doc.Type.Label()},
	}
	if !doc.PeriodStart.IsZero() && doc.PeriodEnd.After(doc.PeriodStart) {
		rows = append(rows, []string{"Periode", FormatPeriod(doc.PeriodStart, doc.PeriodEnd)})
	}
	if !doc.GeneratedAt.IsZero() {
		rows = append(rows, []string{"Dibuat", FormatDate(doc.GeneratedAt)})
	}
	rows = append(rows, []string{"Ringkasan", doc.Report.Summary})

	for _, row := range rows {
		if err := write(row...); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}

	for _, section := range doc.Report.Sections {
		if err := write(); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		if err := write("Bagian", section.Title); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		if err := write("Isi", section.Content); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		if len(section.Metrics) == 0 {
			continue
		}
		if err := write("Metrik", "Nilai", "Perubahan"); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		for _, m := range section.Metrics {
			if err := write(m.Label, m.Value, m.Change); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		}
	}

	if len(doc.Report.Recommendations) > 0 {
		if err := write(); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		if err := write("Rekomendasi"); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		for i, r := range doc.Report.Recommendations {
			if err := write(strconv.Itoa(i+1), r); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
