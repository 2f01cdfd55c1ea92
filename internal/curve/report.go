package curve

import (
	"time"

	"github.com/marekkolman/rates-engine/internal/schedule"
	"github.com/marekkolman/rates-engine/pkg/utils/errors"
)

// GridPoint is one row of a forward-curve report.
type GridPoint struct {
	Date     time.Time `json:"date"`
	DF       float64   `json:"df"`
	ZeroRate float64   `json:"zeroRate"`
	// Forward is the simple forward rate from this grid date to the next;
	// zero on the final point.
	Forward float64 `json:"forward"`
}

// ForwardGrid tabulates discount factors, zero rates and period forward
// rates on a regular monthly-stepped grid out to horizon. This is the
// forward-curve view of a bootstrapped curve.
func ForwardGrid(c DiscountCurve, stepMonths int, horizon time.Time, dc schedule.DayCount) ([]GridPoint, error) {
	if stepMonths <= 0 {
		return nil, errors.InvalidArgument("grid step must be positive")
	}
	if !horizon.After(c.Settlement()) {
		return nil, errors.InvalidArgument("grid horizon must be after settlement")
	}

	var dates []time.Time
	for d := c.Settlement(); !d.After(horizon); d = schedule.AddMonths(d, stepMonths) {
		dates = append(dates, d)
	}

	points := make([]GridPoint, len(dates))
	for i, d := range dates {
		points[i] = GridPoint{Date: d, DF: c.DF(d), ZeroRate: c.ZeroRate(d)}
		if i > 0 {
			fwd, err := SimpleForward(c, dates[i-1], d, dc)
			if err != nil {
				return nil, err
			}
			points[i-1].Forward = fwd
		}
	}
	return points, nil
}
