package schedule

import (
	"time"

	"github.com/marekkolman/rates-engine/pkg/utils/errors"
)

// Calendar identifies a holiday calendar.
type Calendar string

const (
	TARGET Calendar = "TARGET"
	USNY   Calendar = "USNY"
	GBLO   Calendar = "GBLO"
	// NoHolidays treats every weekday as a business day.
	NoHolidays Calendar = "NONE"
)

// Fixed-date holidays only; floating holidays (Easter and friends) are
// outside the scope of the quote sets priced here.
var holidaySets = map[Calendar]map[string]struct{}{
	TARGET: dateSet(
		"01-01", // New Year
		"05-01", // Labour Day
		"12-25", // Christmas
		"12-26", // Goodwill Day
	),
	USNY: dateSet(
		"01-01",
		"07-04",
		"12-25",
	),
	GBLO: dateSet(
		"01-01",
		"12-25",
		"12-26",
	),
}

// ParseCalendar resolves a calendar name; the empty string means TARGET.
func ParseCalendar(s string) (Calendar, error) {
	switch s {
	case "":
		return TARGET, nil
	case string(TARGET), string(USNY), string(GBLO), string(NoHolidays):
		return Calendar(s), nil
	default:
		return "", errors.InvalidArgumentf("unknown calendar %q", s)
	}
}

func dateSet(mmdd ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(mmdd))
	for _, d := range mmdd {
		m[d] = struct{}{}
	}
	return m
}

func isHoliday(cal Calendar, t time.Time) bool {
	set, ok := holidaySets[cal]
	if !ok {
		return false
	}
	_, hol := set[t.Format("01-02")]
	return hol
}

// IsBusinessDay reports whether t is a weekday and not a holiday on cal.
func IsBusinessDay(cal Calendar, t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !isHoliday(cal, t)
}

// Adjust applies Modified Following: roll forward to the next business day,
// unless that crosses a month end, in which case roll backward.
func Adjust(cal Calendar, t time.Time) time.Time {
	origMonth := t.Month()
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	if t.Month() != origMonth {
		t = t.AddDate(0, 0, -1)
		for !IsBusinessDay(cal, t) {
			t = t.AddDate(0, 0, -1)
		}
	}
	return t
}

// AdjustFollowing applies the plain Following convention.
func AdjustFollowing(cal Calendar, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// AddBusinessDays advances n business days; n may be negative.
func AddBusinessDays(cal Calendar, t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(cal, t) {
			n -= step
		}
	}
	return t
}

// AddMonths behaves like Excel's EDATE: adding months to a month-end date
// lands on the target month's end rather than spilling into the next month.
func AddMonths(t time.Time, months int) time.Time {
	d := t.AddDate(0, months, 0)
	wantMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0).Month()
	for d.Month() != wantMonth {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
