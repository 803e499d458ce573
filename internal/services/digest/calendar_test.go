package digest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/finapps/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodTarget(t *testing.T) {
	tests := []struct {
		from   time.Time
		period models.Period
		want   time.Time
	}{
		{date(2018, 11, 1), models.Period1D, date(2018, 10, 31)},
		{date(2018, 1, 1), models.Period1D, date(2017, 12, 31)},
		{date(2018, 11, 1), models.Period1M, date(2018, 10, 1)},
		{date(2018, 3, 31), models.Period1M, date(2018, 2, 28)},
		{date(2016, 3, 31), models.Period1M, date(2016, 2, 29)},
		{date(2018, 5, 31), models.Period3M, date(2018, 2, 28)},
		{date(2018, 1, 31), models.Period3M, date(2017, 10, 31)},
		{date(2018, 8, 31), models.Period6M, date(2018, 2, 28)},
		{date(2018, 11, 1), models.Period1Y, date(2017, 11, 1)},
		{date(2020, 2, 29), models.Period1Y, date(2019, 2, 28)},
		{date(2016, 2, 29), models.Period3Y, date(2013, 2, 28)},
		{date(2018, 11, 1), models.Period3Y, date(2015, 11, 1)},
	}
	for _, tt := range tests {
		got := PeriodTarget(tt.from, tt.period)
		assert.True(t, got.Equal(tt.want), "%s - %s = %s, want %s",
			tt.from.Format("2006-01-02"), tt.period.Label, got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
	}
}

func TestPeriodTarget_IgnoresTimeOfDay(t *testing.T) {
	local := time.Date(2018, 11, 1, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))
	assert.True(t, PeriodTarget(local, models.Period1D).Equal(date(2018, 10, 31)))
}
