package swaption

import (
	"math"

	"github.com/marekkolman/rates-engine/internal/vol"
	"github.com/marekkolman/rates-engine/pkg/utils/errors"
	"github.com/marekkolman/rates-engine/pkg/utils/logger"
)

// Model selects the pricing engine.
type Model string

const (
	ModelBlack     Model = "BLACK"
	ModelBachelier Model = "BACHELIER"
)

// Request describes a European swaption to price. Forward, Strike and Shift
// are decimal rates; Expiry and Tenor are in years; Annuity is the fixed-leg
// annuity of the underlying swap.
type Request struct {
	Model   Model
	Type    OptionType
	Forward float64
	Strike  float64
	Annuity float64
	Expiry  float64
	Tenor   float64
	Shift   float64
}

// Result carries the price and the vol the engine resolved for the trade.
type Result struct {
	Price float64 `json:"price"`
	Vol   float64 `json:"vol"`
}

// Pricer prices swaptions against a volatility structure (flat quote, surface
// or cube).
type Pricer struct {
	vols vol.Structure
	log  *logger.Logger
}

// NewPricer creates a pricer over the given volatility structure.
func NewPricer(vols vol.Structure) (*Pricer, error) {
	if vols == nil {
		return nil, errors.InvalidArgument("volatility structure is nil")
	}
	return &Pricer{
		vols: vols,
		log:  logger.GetLogger("swaption.pricer"),
	}, nil
}

// Price resolves the vol for the request's (expiry, tenor, strike-ATM offset)
// and prices under the requested model.
func (p *Pricer) Price(req Request) (*Result, error) {
	sigma, err := p.vols.Vol(req.Expiry, req.Tenor, req.Strike-req.Forward)
	if err != nil {
		return nil, errors.Wrap(err, "resolving vol")
	}

	var price float64
	switch req.Model {
	case ModelBlack:
		price, err = BlackPrice(req.Type, req.Forward, req.Strike, req.Annuity, req.Expiry, sigma, req.Shift)
	case ModelBachelier:
		price, err = BachelierPrice(req.Type, req.Forward, req.Strike, req.Annuity, req.Expiry, sigma)
	default:
		err = errors.InvalidArgumentf("unknown pricing model %q", req.Model)
	}
	if err != nil {
		return nil, err
	}

	p.log.Debugf("Priced %s %s swaption: F=%.6f K=%.6f T=%.2f vol=%.4f price=%.8f",
		req.Model, req.Type, req.Forward, req.Strike, req.Expiry, sigma, price)
	return &Result{Price: price, Vol: sigma}, nil
}

// ImpliedVol inverts the model price for the vol via Newton-Raphson with a
// numerical vega, clamping iterates to (0, 5].
func ImpliedVol(req Request, marketPrice float64) (float64, error) {
	if marketPrice <= 0 {
		return 0, errors.InvalidArgumentf("market price must be positive, got %f", marketPrice)
	}

	priceAt := func(sigma float64) (float64, error) {
		switch req.Model {
		case ModelBlack:
			return BlackPrice(req.Type, req.Forward, req.Strike, req.Annuity, req.Expiry, sigma, req.Shift)
		case ModelBachelier:
			return BachelierPrice(req.Type, req.Forward, req.Strike, req.Annuity, req.Expiry, sigma)
		default:
			return 0, errors.InvalidArgumentf("unknown pricing model %q", req.Model)
		}
	}

	sigma := 0.2
	if req.Model == ModelBachelier {
		sigma = 0.01
	}

	const maxIterations = 100
	for i := 0; i < maxIterations; i++ {
		price, err := priceAt(sigma)
		if err != nil {
			return 0, err
		}
		diff := price - marketPrice
		if math.Abs(diff) < 1e-10*math.Max(1, marketPrice) {
			return sigma, nil
		}

		h := 1e-6 * math.Max(sigma, 1e-4)
		up, err := priceAt(sigma + h)
		if err != nil {
			return 0, err
		}
		vega := (up - price) / h
		if vega <= 0 || math.IsNaN(vega) {
			return 0, errors.Domain("vega vanished during implied vol solve")
		}

		sigma -= diff / vega
		if sigma <= 1e-6 {
			sigma = 1e-6
		} else if sigma > 5 {
			sigma = 5
		}
	}
	return 0, errors.NoConvergence("implied vol solve", maxIterations)
}
