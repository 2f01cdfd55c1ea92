package schedule

import (
	"strconv"
	"strings"
	"time"

	"github.com/marekkolman/rates-engine/pkg/utils/errors"
)

// Tenor is a period expressed in whole months plus optional days, parsed
// from market quote labels such as "1W", "3M", "18M" or "10Y".
type Tenor struct {
	Months int
	Days   int
}

// ParseTenor parses a tenor label. Week and day tenors carry no month part.
func ParseTenor(label string) (Tenor, error) {
	s := strings.TrimSpace(strings.ToUpper(label))
	if len(s) < 2 {
		return Tenor{}, errors.InvalidArgumentf("invalid tenor %q", label)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n < 0 {
		return Tenor{}, errors.InvalidArgumentf("invalid tenor %q", label)
	}
	switch s[len(s)-1] {
	case 'D':
		return Tenor{Days: n}, nil
	case 'W':
		return Tenor{Days: 7 * n}, nil
	case 'M':
		return Tenor{Months: n}, nil
	case 'Y':
		return Tenor{Months: 12 * n}, nil
	}
	return Tenor{}, errors.InvalidArgumentf("invalid tenor %q", label)
}

// Years returns the tenor as a year fraction (months exact, days on ACT/365).
func (t Tenor) Years() float64 {
	return float64(t.Months)/12.0 + float64(t.Days)/365.0
}

// AddTo advances a date by the tenor using EDATE month arithmetic for the
// month part and plain day addition for the day part.
func (t Tenor) AddTo(d time.Time) time.Time {
	if t.Months != 0 {
		d = AddMonths(d, t.Months)
	}
	if t.Days != 0 {
		d = d.AddDate(0, 0, t.Days)
	}
	return d
}

func (t Tenor) String() string {
	switch {
	case t.Months == 0 && t.Days%7 == 0 && t.Days > 0:
		return strconv.Itoa(t.Days/7) + "W"
	case t.Months == 0:
		return strconv.Itoa(t.Days) + "D"
	case t.Months%12 == 0:
		return strconv.Itoa(t.Months/12) + "Y"
	default:
		return strconv.Itoa(t.Months) + "M"
	}
}
