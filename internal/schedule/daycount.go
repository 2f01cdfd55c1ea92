package schedule

import (
	"time"

	"github.com/marekkolman/rates-engine/pkg/utils/errors"
)

// DayCount identifies a day-count convention.
type DayCount string

const (
	Act360  DayCount = "ACT/360"
	Act365F DayCount = "ACT/365F"
	Dc30360 DayCount = "30/360"
	DcE30360 DayCount = "30E/360"
)

// YearFraction computes the accrual fraction between start and end under the
// given convention. 30/360 and 30E/360 both use the Eurobond day capping.
func YearFraction(start, end time.Time, convention DayCount) float64 {
	switch convention {
	case Act360:
		return Days(start, end) / 360.0
	case Dc30360, DcE30360:
		d1 := start.Day()
		if d1 > 30 {
			d1 = 30
		}
		d2 := end.Day()
		if d2 > 30 {
			d2 = 30
		}
		y1, m1 := start.Year(), int(start.Month())
		y2, m2 := end.Year(), int(end.Month())
		return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360.0
	default:
		// ACT/365F, also the curve time axis convention.
		return Days(start, end) / 365.0
	}
}

// Days returns the calendar day count between two dates.
func Days(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24
}

// ParseDayCount validates a day-count string; the empty string means ACT/360.
func ParseDayCount(s string) (DayCount, error) {
	switch DayCount(s) {
	case "":
		return Act360, nil
	case Act360, Act365F, Dc30360, DcE30360:
		return DayCount(s), nil
	}
	return "", errors.InvalidArgumentf("unknown day count convention %q", s)
}
