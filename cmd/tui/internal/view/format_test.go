package view

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "Maersk Li…", Truncate("Maersk Line Chile", 10))
	assert.Equal(t, "Ñuñoa…", Truncate("Ñuñoa Logística", 6))
	assert.Equal(t, "abc", Truncate("abc", 0))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "1250.50 USD", FormatMoney(decimal.RequireFromString("1250.5"), "USD"))
	assert.Equal(t, "0.00", FormatMoney(decimal.Zero, ""))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "-", FormatDate(nil))

	d := time.Date(2025, 3, 9, 14, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-09", FormatDate(&d))
}

func TestPeriod_Bounds(t *testing.T) {
	now := time.Date(2025, 5, 14, 10, 0, 0, 0, time.Local)
	day := func(m time.Month, d int) time.Time { return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		period     Period
		start, end time.Time
	}{
		{PeriodThisMonth, day(time.May, 1), day(time.May, 31)},
		{PeriodLastMonth, day(time.April, 1), day(time.April, 30)},
		{PeriodThisQuarter, day(time.April, 1), day(time.June, 30)},
		{PeriodLastQuarter, day(time.January, 1), day(time.March, 31)},
		{PeriodThisYear, day(time.January, 1), day(time.December, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.period.String(), func(t *testing.T) {
			start, end := tt.period.Bounds(now)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestPeriod_BoundsCrossesYear(t *testing.T) {
	start, end := PeriodLastQuarter.Bounds(time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), end)
}

func TestParseRange(t *testing.T) {
	start, end, err := parseRange("2025-01-05", " 2025-01-07")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC), end)

	_, _, err = parseRange("2025-01-07", "2025-01-05")
	assert.EqualError(t, err, "end date is before start date")

	_, _, err = parseRange("05/01/2025", "2025-01-05")
	assert.Error(t, err)
}
