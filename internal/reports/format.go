package reports

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/VXerys/artconnect-crm-sub001/internal/stats"
)

var printer = message.NewPrinter(language.Indonesian)

// FormatRupiah formats an amount as whole Indonesian Rupiah, e.g. "Rp 1.250.000".
func FormatRupiah(amount float64) string {
	rounded := int64(math.Round(math.Abs(amount)))
	s := "Rp " + printer.Sprintf("%d", rounded)
	if amount < 0 && rounded != 0 {
		return "-" + s
	}
	return s
}

// FormatNumber formats a count with Indonesian digit grouping.
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatPercent formats a percentage with one decimal, e.g. "12,5%".
func FormatPercent(v float64) string {
	return printer.Sprintf("%.1f", v) + "%"
}

// FormatChange formats a signed change percentage, e.g. "+12,5%".
func FormatChange(v float64) string {
	if v > 0 {
		return "+" + FormatPercent(v)
	}
	return FormatPercent(v)
}

// FormatDate formats a date as "2 Jan 2026" with Indonesian month names.
func FormatDate(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%d %s %d", t.Day(), stats.MonthLabel(t.Month()), t.Year())
}

// FormatPeriod formats the half-open range [start, end) as inclusive dates.
func FormatPeriod(start, end time.Time) string {
	last := end.UTC()
	if last.After(start) && last.Equal(last.Truncate(24*time.Hour)) {
		last = last.Add(-24 * time.Hour)
	}
	return FormatDate(start) + " - " + FormatDate(last)
}
