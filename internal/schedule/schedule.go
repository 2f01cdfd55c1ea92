package schedule

import (
	"time"

	"github.com/marekkolman/rates-engine/pkg/utils/errors"
)

// Frequency is a coupon frequency in months per period.
type Frequency int

const (
	Annual     Frequency = 12
	SemiAnnual Frequency = 6
	Quarterly  Frequency = 3
	Monthly    Frequency = 1
)

// ParseFrequency resolves a frequency name; the empty string means annual.
func ParseFrequency(s string) (Frequency, error) {
	switch s {
	case "", "A", "ANNUAL":
		return Annual, nil
	case "S", "SEMIANNUAL":
		return SemiAnnual, nil
	case "Q", "QUARTERLY":
		return Quarterly, nil
	case "M", "MONTHLY":
		return Monthly, nil
	default:
		return 0, errors.InvalidArgumentf("unknown frequency %q", s)
	}
}

// LegConvention captures the date-generation settings of a swap leg.
type LegConvention struct {
	Frequency     Frequency
	DayCount      DayCount
	Calendar      Calendar
	PayDelayDays  int
	FixingLagDays int
}

// Period is a single accrual period of a leg schedule.
type Period struct {
	StartDate  time.Time
	EndDate    time.Time
	PayDate    time.Time
	FixingDate time.Time
	Accrual    float64
}

// Generate builds the accrual periods of a leg between effective and
// maturity, rolling backward from maturity so that the final coupon aligns
// with the swap maturity. Unadjusted dates are adjusted with Modified
// Following; pay dates add the leg's pay delay in business days; fixing
// dates subtract the fixing lag from the period start.
func Generate(effective, maturity time.Time, leg LegConvention) ([]Period, error) {
	if !maturity.After(effective) {
		return nil, errors.InvalidArgument("schedule maturity must be after effective date")
	}
	if leg.Frequency <= 0 {
		return nil, errors.InvalidArgumentf("invalid frequency %d", leg.Frequency)
	}

	// Unadjusted dates rolled backward from maturity.
	var unadjusted []time.Time
	for d := maturity; d.After(effective); d = AddMonths(d, -int(leg.Frequency)) {
		unadjusted = append([]time.Time{d}, unadjusted...)
	}
	unadjusted = append([]time.Time{effective}, unadjusted...)

	periods := make([]Period, 0, len(unadjusted)-1)
	for i := 0; i < len(unadjusted)-1; i++ {
		start := Adjust(leg.Calendar, unadjusted[i])
		end := Adjust(leg.Calendar, unadjusted[i+1])
		p := Period{
			StartDate:  start,
			EndDate:    end,
			PayDate:    AddBusinessDays(leg.Calendar, end, leg.PayDelayDays),
			FixingDate: AddBusinessDays(leg.Calendar, start, -leg.FixingLagDays),
			Accrual:    YearFraction(start, end, leg.DayCount),
		}
		periods = append(periods, p)
	}
	return periods, nil
}
