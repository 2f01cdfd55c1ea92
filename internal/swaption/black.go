package swaption

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/marekkolman/rates-engine/pkg/utils/errors"
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// OptionType identifies the swaption side.
type OptionType string

const (
	Payer    OptionType = "PAYER"
	Receiver OptionType = "RECEIVER"
)

// tiny σ√T below this prices as discounted intrinsic
const degenerateStdDev = 1e-10

// BlackPrice prices a European swaption under the (optionally shifted)
// lognormal Black model. forward and strike are decimal rates, annuity is the
// fixed-leg annuity of the underlying swap, expiry in years, sigma a lognormal
// vol, shift the displacement applied to both forward and strike.
func BlackPrice(optType OptionType, forward, strike, annuity, expiry, sigma, shift float64) (float64, error) {
	if err := validate(optType, annuity, expiry, sigma); err != nil {
		return 0, err
	}

	f := forward + shift
	k := strike + shift
	if f <= 0 || k <= 0 {
		return 0, errors.Domain("shifted forward and strike must be positive under the Black model")
	}

	stdDev := sigma * math.Sqrt(expiry)
	if stdDev < degenerateStdDev {
		return annuity * intrinsic(optType, forward, strike), nil
	}

	d1 := (math.Log(f/k) + 0.5*stdDev*stdDev) / stdDev
	d2 := d1 - stdDev

	var price float64
	switch optType {
	case Payer:
		price = annuity * (f*stdNormal.CDF(d1) - k*stdNormal.CDF(d2))
	case Receiver:
		price = annuity * (k*stdNormal.CDF(-d2) - f*stdNormal.CDF(-d1))
	}
	if price < 0 {
		price = 0
	}
	return price, nil
}

// BachelierPrice prices a European swaption under the normal (Bachelier)
// model. sigma is an absolute (normal) vol; negative forwards and strikes are
// allowed.
func BachelierPrice(optType OptionType, forward, strike, annuity, expiry, sigma float64) (float64, error) {
	if err := validate(optType, annuity, expiry, sigma); err != nil {
		return 0, err
	}

	stdDev := sigma * math.Sqrt(expiry)
	if stdDev < degenerateStdDev {
		return annuity * intrinsic(optType, forward, strike), nil
	}

	d := (forward - strike) / stdDev
	if optType == Receiver {
		d = -d
	}
	price := annuity * stdDev * (d*stdNormal.CDF(d) + stdNormal.Prob(d))
	if price < 0 {
		price = 0
	}
	return price, nil
}

func validate(optType OptionType, annuity, expiry, sigma float64) error {
	if optType != Payer && optType != Receiver {
		return errors.InvalidArgumentf("unknown option type %q", optType)
	}
	if annuity <= 0 {
		return errors.InvalidArgumentf("annuity must be positive, got %f", annuity)
	}
	if expiry <= 0 {
		return errors.InvalidArgumentf("expiry must be positive, got %f", expiry)
	}
	if sigma <= 0 {
		return errors.InvalidArgumentf("vol must be positive, got %f", sigma)
	}
	return nil
}

func intrinsic(optType OptionType, forward, strike float64) float64 {
	if optType == Payer {
		return math.Max(forward-strike, 0)
	}
	return math.Max(strike-forward, 0)
}
