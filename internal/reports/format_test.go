package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatRupiah(t *testing.T) {
	assert.Equal(t, "Rp 1.250.000", FormatRupiah(1_250_000))
	assert.Equal(t, "Rp 0", FormatRupiah(0))
	assert.Equal(t, "Rp 2.500.000", FormatRupiah(2_499_999.6))
	assert.Equal(t, "-Rp 1.250.000", FormatRupiah(-1_250_000))
	assert.Equal(t, "Rp 0", FormatRupiah(-0.2))
}

func TestFormatNumberAndPercent(t *testing.T) {
	assert.Equal(t, "2.500.000", FormatNumber(2_500_000))
	assert.Equal(t, "12,5%", FormatPercent(12.5))
	assert.Equal(t, "+12,5%", FormatChange(12.5))
	assert.Equal(t, "-3,0%", FormatChange(-3))
	assert.Equal(t, "0,0%", FormatChange(0))
}

func TestFormatDateKeepsYearUngrouped(t *testing.T) {
	assert.Equal(t, "2 Apr 2026", FormatDate(time.Date(2026, time.April, 2, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, "31 Des 1999", FormatDate(time.Date(1999, time.December, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1.999", FormatNumber(1999))
}

func TestFormatPeriod(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "1 Jan 2026 - 31 Mar 2026", FormatPeriod(start, end))

	midday := time.Date(2026, time.May, 20, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "1 Jan 2026 - 20 Mei 2026", FormatPeriod(start, midday))
}
