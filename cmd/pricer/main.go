package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marekkolman/rates-engine/config"
	"github.com/marekkolman/rates-engine/internal/cms"
	"github.com/marekkolman/rates-engine/internal/curve"
	"github.com/marekkolman/rates-engine/internal/schedule"
	"github.com/marekkolman/rates-engine/internal/swaption"
	"github.com/marekkolman/rates-engine/internal/vol"
	"github.com/marekkolman/rates-engine/pkg/utils/logger"
)

// bookEntry is one trade of the example book priced on startup.
type bookEntry struct {
	name  string
	price func(ctx context.Context) (float64, error)
}

type bookResult struct {
	name  string
	value float64
	err   error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.GetLogger("pricer.main").Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.App.LogLevel, cfg.App.Environment)
	log := logger.GetLogger("pricer.main")
	log.Infof("Starting %s batch pricer", cfg.App.Name)

	settlement := time.Now().UTC().Truncate(24 * time.Hour)

	discount, err := curve.Bootstrap(settlement, map[string]float64{
		"1Y": 0.0215, "2Y": 0.0222, "3Y": 0.0228, "5Y": 0.0241,
		"7Y": 0.0251, "10Y": 0.0263, "15Y": 0.0272, "20Y": 0.0275,
	}, curve.DefaultOISConvention(schedule.TARGET))
	if err != nil {
		log.Fatalf("Failed to bootstrap discount curve: %v", err)
	}

	surface, err := vol.NewSurface(
		[]float64{1, 2, 5, 10},
		[]float64{2, 5, 10, 30},
		[][]float64{
			{0.31, 0.29, 0.27, 0.25},
			{0.30, 0.28, 0.26, 0.24},
			{0.28, 0.26, 0.25, 0.23},
			{0.26, 0.25, 0.23, 0.22},
		},
	)
	if err != nil {
		log.Fatalf("Failed to build vol surface: %v", err)
	}

	book := buildBook(cfg, discount, surface)
	results := priceBook(context.Background(), cfg.Pricing.Workers, book)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TRADE\tVALUE\tSTATUS")
	for _, r := range results {
		if r.err != nil {
			fmt.Fprintf(w, "%s\t-\t%v\n", r.name, r.err)
			continue
		}
		fmt.Fprintf(w, "%s\t%.6f\tok\n", r.name, r.value)
	}
	w.Flush()
}

// buildBook assembles the example trades: swaptions across strikes, a CMS
// coupon and a CMS spread option.
func buildBook(cfg *config.Config, discount curve.DiscountCurve, surface *vol.Surface) []bookEntry {
	var book []bookEntry

	pricer, err := swaption.NewPricer(surface)
	if err != nil {
		logger.GetLogger("pricer.main").Fatalf("Failed to create swaption pricer: %v", err)
	}

	for _, strike := range []float64{0.015, 0.02, 0.025, 0.03, 0.035} {
		strike := strike
		name := fmt.Sprintf("swaption-payer-5y10y-k%.1f%%", strike*100)
		book = append(book, bookEntry{name: name, price: func(ctx context.Context) (float64, error) {
			res, perr := pricer.Price(swaption.Request{
				Model:   swaption.ModelBlack,
				Type:    swaption.Payer,
				Forward: 0.025,
				Strike:  strike,
				Annuity: 8.2,
				Expiry:  5,
				Tenor:   10,
			})
			if perr != nil {
				return 0, perr
			}
			return res.Price, nil
		}})
	}

	book = append(book, bookEntry{name: "cms-coupon-1y-10y", price: func(ctx context.Context) (float64, error) {
		start := schedule.AddMonths(discount.Settlement(), 12)
		periods, perr := schedule.Generate(start, schedule.AddMonths(start, 120), schedule.LegConvention{
			Frequency: schedule.Annual,
			DayCount:  schedule.Act360,
			Calendar:  schedule.TARGET,
		})
		if perr != nil {
			return 0, perr
		}
		res, perr := cms.NewCouponPricer().Price(discount, cms.Coupon{
			Notional:   1e6,
			Accrual:    1,
			PayDate:    periods[0].PayDate,
			FixingDate: periods[0].FixingDate,
			Underlying: periods,
			Sigma:      0.27,
		})
		if perr != nil {
			return 0, perr
		}
		return res.PV, nil
	}})

	book = append(book, bookEntry{name: "cms-spread-10y2y-5y", price: func(ctx context.Context) (float64, error) {
		spread := cms.NewSpreadPricer()
		spread.SetGrid(cfg.Pricing.SpreadGridPoints, cfg.Pricing.SpreadMaxPoints, cfg.Pricing.SpreadRelTol)
		res, perr := spread.Price(cms.SpreadOption{
			Leg1:        cms.SpreadLeg{Forward: 0.0263, AdjustedForward: 0.0271, Sigma: 0.25},
			Leg2:        cms.SpreadLeg{Forward: 0.0222, AdjustedForward: 0.0225, Sigma: 0.29},
			Strike:      0.002,
			Expiry:      5,
			Correlation: 0.85,
		})
		if perr != nil {
			return 0, perr
		}
		return res.Value, nil
	}})

	return book
}

// priceBook prices all entries concurrently, bounded by workers, preserving
// book order in the output.
func priceBook(ctx context.Context, workers int, book []bookEntry) []bookResult {
	if workers < 1 {
		workers = 1
	}

	results := make([]bookResult, len(book))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, entry := range book {
		i, entry := i, entry
		g.Go(func() error {
			value, err := entry.price(gctx)
			mu.Lock()
			results[i] = bookResult{name: entry.name, value: value, err: err}
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	return results
}
