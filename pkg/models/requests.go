package models

import "time"

// BuildCurveRequest creates a discount curve from par quotes.
type BuildCurveRequest struct {
	ID         string             `json:"id"`
	Currency   string             `json:"currency"`
	Settlement time.Time          `json:"settlement"`
	Quotes     map[string]float64 `json:"quotes"`
	Calendar   string             `json:"calendar,omitempty"`
	Frequency  string             `json:"frequency,omitempty"`
	DayCount   string             `json:"dayCount,omitempty"`
}

// SurfaceSpec is an inline vol surface: expiry x tenor grid of vols.
type SurfaceSpec struct {
	Expiries []float64   `json:"expiries"`
	Tenors   []float64   `json:"tenors"`
	Vols     [][]float64 `json:"vols"`
}

// CubeSpec is an inline vol cube: one surface slice per strike offset.
type CubeSpec struct {
	Offsets []float64     `json:"offsets"`
	Slices  []SurfaceSpec `json:"slices"`
}

// VolSpec selects the volatility input for a pricing request: a flat quote,
// an inline surface or cube, or a reference to a stored structure. Exactly
// one field must be set.
type VolSpec struct {
	Flat    *float64     `json:"flat,omitempty"`
	Surface *SurfaceSpec `json:"surface,omitempty"`
	Cube    *CubeSpec    `json:"cube,omitempty"`
	VolID   string       `json:"volId,omitempty"`
}

// SaveVolRequest stores a volatility structure under an ID.
type SaveVolRequest struct {
	ID  string  `json:"id"`
	Vol VolSpec `json:"vol"`
}

// SwaptionPriceRequest prices a European swaption. Rates are decimals,
// expiry and tenor in years.
type SwaptionPriceRequest struct {
	Model   string  `json:"model"`
	Type    string  `json:"type"`
	Forward float64 `json:"forward"`
	Strike  float64 `json:"strike"`
	Annuity float64 `json:"annuity"`
	Expiry  float64 `json:"expiry"`
	Tenor   float64 `json:"tenor"`
	Shift   float64 `json:"shift,omitempty"`
	Vol     VolSpec `json:"vol"`
}

// CMSPriceRequest values a CMS coupon off a stored curve.
type CMSPriceRequest struct {
	CurveID    string    `json:"curveId"`
	Notional   float64   `json:"notional"`
	Accrual    float64   `json:"accrual"`
	PayDate    time.Time `json:"payDate"`
	FixingDate time.Time `json:"fixingDate"`
	SwapStart  time.Time `json:"swapStart"`
	SwapTenor  string    `json:"swapTenor"`
	Frequency  string    `json:"frequency,omitempty"`
	DayCount   string    `json:"dayCount,omitempty"`
	Calendar   string    `json:"calendar,omitempty"`
	Sigma      float64   `json:"sigma"`
	Shift      float64   `json:"shift,omitempty"`
}

// SpreadLegSpec describes one CMS rate of a spread option.
type SpreadLegSpec struct {
	Forward         float64 `json:"forward"`
	AdjustedForward float64 `json:"adjustedForward"`
	Sigma           float64 `json:"sigma"`
	Shift           float64 `json:"shift,omitempty"`
}

// CMSSpreadRequest prices an option on the spread of two CMS rates.
type CMSSpreadRequest struct {
	Leg1        SpreadLegSpec `json:"leg1"`
	Leg2        SpreadLegSpec `json:"leg2"`
	Strike      float64       `json:"strike"`
	Expiry      float64       `json:"expiry"`
	Correlation float64       `json:"correlation"`
}

// FXForwardsRequest computes CIP forward outrights for a tenor list.
type FXForwardsRequest struct {
	Spot            float64  `json:"spot"`
	DomesticCurveID string   `json:"domesticCurveId"`
	ForeignCurveID  string   `json:"foreignCurveId"`
	Calendar        string   `json:"calendar,omitempty"`
	Tenors          []string `json:"tenors"`
}

// FXBasisRequest runs the cross-currency basis bootstrapper. With
// ForeignDiscountID set it solves fair spreads for Tenors; with Spreads set
// it bootstraps the basis-adjusted foreign discount curve instead.
type FXBasisRequest struct {
	DomesticCurveID     string             `json:"domesticCurveId"`
	ForeignProjectionID string             `json:"foreignProjectionId"`
	ForeignDiscountID   string             `json:"foreignDiscountId,omitempty"`
	Tenors              []string           `json:"tenors,omitempty"`
	Spreads             map[string]float64 `json:"spreads,omitempty"`
	Calendar            string             `json:"calendar,omitempty"`
}

// ZCISRequest values a zero-coupon inflation swap. Index maps reference
// months ("2026-01") to index levels.
type ZCISRequest struct {
	CurveID      string             `json:"curveId"`
	Index        map[string]float64 `json:"index"`
	LagMonths    int                `json:"lagMonths"`
	Interpolated bool               `json:"interpolated"`
	Calendar     string             `json:"calendar,omitempty"`
	Notional     float64            `json:"notional"`
	FixedRate    float64            `json:"fixedRate"`
	Start        time.Time          `json:"start"`
	Tenor        string             `json:"tenor"`
}
