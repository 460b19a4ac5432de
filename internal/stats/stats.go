// Package stats holds the pure aggregation helpers shared by the dashboard and
// the report pipeline: percentage splits, period-over-period change, month
// labels and zero-filled monthly series. Nothing here touches I/O.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
)

// tenths is 100.0 expressed in tenths of a percent.
const tenths = 1000

// Percentages splits 100% across counts, rounded to one decimal with the
// largest-remainder method so the results sum to exactly 100.0. A zero (or
// negative) total yields all zeros.
func Percentages(counts []int64) []float64 {
	out := make([]float64, len(counts))
	var total int64
	for _, c := range counts {
		if c > 0 {
			total += c
		}
	}
	if total == 0 {
		return out
	}

	type share struct {
		index     int
		floor     int64
		remainder int64
	}
	shares := make([]share, len(counts))
	var assigned int64
	for i, c := range counts {
		if c < 0 {
			c = 0
		}
		scaled := c * tenths
		shares[i] = share{index: i, floor: scaled / total, remainder: scaled % total}
		assigned += shares[i].floor
	}

	byRemainder := make([]share, len(shares))
	copy(byRemainder, shares)
	sort.SliceStable(byRemainder, func(a, b int) bool {
		return byRemainder[a].remainder > byRemainder[b].remainder
	})
	for i := int64(0); i < tenths-assigned; i++ {
		shares[byRemainder[i].index].floor++
	}

	for i, s := range shares {
		out[i] = float64(s.floor) / 10
	}
	return out
}

// ChangePercent is the change from previous to current in percent, rounded to
// one decimal. With no previous value it is 100 when current is positive and
// 0 otherwise.
func ChangePercent(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return Round1((current - previous) / math.Abs(previous) * 100)
}

// TrendOf classifies a change percentage.
func TrendOf(change float64) domain.Trend {
	switch {
	case change > 0:
		return domain.TrendUp
	case change < 0:
		return domain.TrendDown
	default:
		return domain.TrendFlat
	}
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

var monthLabels = [...]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}

// MonthLabel returns the Indonesian short month name.
func MonthLabel(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthLabels[m-1]
}

// Window is the half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Duration is the window's length.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Previous is the window of equal length ending where w starts.
func (w Window) Previous() Window {
	return Window{Start: w.Start.Add(-w.Duration()), End: w.Start}
}

// Valid reports whether the window is non-empty.
func (w Window) Valid() bool {
	return w.End.After(w.Start)
}

// LastMonths is the window covering the current month and the n-1 months
// before it, in UTC.
func LastMonths(now time.Time, n int) Window {
	if n < 1 {
		n = 1
	}
	now = now.UTC()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Window{
		Start: firstOfMonth.AddDate(0, -(n - 1), 0),
		End:   firstOfMonth.AddDate(0, 1, 0),
	}
}

// Months lists the first instant (UTC) of every calendar month overlapping w.
func (w Window) Months() []time.Time {
	if !w.Valid() {
		return nil
	}
	start := w.Start.UTC()
	cursor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	var months []time.Time
	for cursor.Before(w.End) {
		months = append(months, cursor)
		cursor = cursor.AddDate(0, 1, 0)
	}
	return months
}

// MonthTotal is the sales aggregate for one month.
type MonthTotal struct {
	Month   time.Time
	Count   int64
	Revenue float64
}

// SalesSeries returns one point per month of w, in order, with months absent
// from totals filled with zeros.
func SalesSeries(w Window, totals []MonthTotal) []domain.SalesDataPoint {
	byMonth := make(map[time.Time]MonthTotal, len(totals))
	for _, t := range totals {
		m := t.Month.UTC()
		key := time.Date(m.Year(), m.Month(), 1, 0, 0, 0, 0, time.UTC)
		agg := byMonth[key]
		agg.Count += t.Count
		agg.Revenue += t.Revenue
		byMonth[key] = agg
	}

	months := w.Months()
	series := make([]domain.SalesDataPoint, 0, len(months))
	for _, m := range months {
		t := byMonth[m]
		series = append(series, domain.SalesDataPoint{
			Month:   MonthLabel(m.Month()),
			Year:    m.Year(),
			Sales:   t.Count,
			Revenue: t.Revenue,
		})
	}
	return series
}

// StatusBreakdown returns one entry per status in board order. Missing
// statuses count as zero.
func StatusBreakdown(counts map[domain.ArtworkStatus]int64) []domain.ArtworkStatusData {
	values := make([]int64, len(domain.Statuses))
	for i, s := range domain.Statuses {
		values[i] = counts[s]
	}
	pcts := Percentages(values)

	out := make([]domain.ArtworkStatusData, len(domain.Statuses))
	for i, s := range domain.Statuses {
		out[i] = domain.ArtworkStatusData{
			Status:     s,
			Label:      s.Label(),
			Count:      values[i],
			Percentage: pcts[i],
			Color:      s.Color(),
		}
	}
	return out
}

// TrafficBreakdown fills Percentage on each source.
func TrafficBreakdown(sources []domain.TrafficSource) []domain.TrafficSource {
	values := make([]int64, len(sources))
	for i, s := range sources {
		values[i] = s.Visits
	}
	pcts := Percentages(values)

	out := make([]domain.TrafficSource, len(sources))
	for i, s := range sources {
		s.Percentage = pcts[i]
		out[i] = s
	}
	return out
}

// SafeDivide returns a/b, or 0 when b is 0.
func SafeDivide(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
