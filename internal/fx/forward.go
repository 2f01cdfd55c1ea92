package fx

import (
	"sort"
	"time"

	"github.com/marekkolman/rates-engine/internal/curve"
	"github.com/marekkolman/rates-engine/internal/schedule"
	"github.com/marekkolman/rates-engine/pkg/utils/errors"
)

// ForwardPoint is one FX forward outright: the covered-interest-parity
// forward for the tenor plus its distance from spot.
type ForwardPoint struct {
	Tenor    string    `json:"tenor"`
	Date     time.Time `json:"date"`
	Outright float64   `json:"outright"`
	Points   float64   `json:"points"`
}

// Forwards computes FX forward outrights F(t) = spot * DFf(t)/DFd(t) for the
// given tenors. Spot is quoted as domestic units per foreign unit; the
// domestic curve discounts the quote currency. Tenor end dates roll Modified
// Following on the calendar.
func Forwards(spot float64, domestic, foreign curve.DiscountCurve, cal schedule.Calendar, tenors []string) ([]ForwardPoint, error) {
	if spot <= 0 {
		return nil, errors.InvalidArgumentf("spot must be positive, got %f", spot)
	}
	if len(tenors) == 0 {
		return nil, errors.InvalidArgument("no forward tenors requested")
	}

	settlement := domestic.Settlement()
	points := make([]ForwardPoint, 0, len(tenors))
	for _, label := range tenors {
		tenor, err := schedule.ParseTenor(label)
		if err != nil {
			return nil, err
		}
		d := schedule.Adjust(cal, tenor.AddTo(settlement))
		outright := spot * foreign.DF(d) / domestic.DF(d)
		points = append(points, ForwardPoint{
			Tenor:    label,
			Date:     d,
			Outright: outright,
			Points:   outright - spot,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}
