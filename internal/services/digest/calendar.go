package digest

import (
	"time"

	"github.com/bobmcallan/finapps/internal/common"
	"github.com/bobmcallan/finapps/internal/models"
)

// PeriodTarget returns the nominal calendar date one period before d.
// Month and year offsets clamp to the last valid day of the target month,
// so 2018-03-31 minus 1m is 2018-02-28 rather than time.AddDate's 2018-03-03.
func PeriodTarget(d time.Time, p models.Period) time.Time {
	d = common.NormalizeDate(d)
	if p.Years != 0 || p.Months != 0 {
		// day 1 never overflows, so AddDate lands in the intended month
		first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(-p.Years, -p.Months, 0)
		day := d.Day()
		if last := daysIn(first.Year(), first.Month()); day > last {
			day = last
		}
		d = time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
	}
	if p.Days != 0 {
		d = d.AddDate(0, 0, -p.Days)
	}
	return d
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
