package models

import "time"

// Quote is a single market observation flowing through the feed: a tenor
// label and its rate, spread or vol, in decimals.
type Quote struct {
	Instrument string    `json:"instrument"`
	Tenor      string    `json:"tenor"`
	Value      float64   `json:"value"`
	Source     string    `json:"source,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// QuoteSet groups the quotes a curve is built from, keyed by tenor label.
type QuoteSet struct {
	ID        string             `json:"id"`
	Currency  string             `json:"currency"`
	AsOf      time.Time          `json:"asOf"`
	Quotes    map[string]float64 `json:"quotes"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Clone returns a deep copy so callers can mutate without racing the store.
func (q *QuoteSet) Clone() *QuoteSet {
	cp := *q
	cp.Quotes = make(map[string]float64, len(q.Quotes))
	for k, v := range q.Quotes {
		cp.Quotes[k] = v
	}
	return &cp
}

// CurvePillar is one (date, discount factor) node of a stored curve.
type CurvePillar struct {
	Date time.Time `json:"date"`
	DF   float64   `json:"df"`
}

// CurveInfo describes a stored curve without exposing the curve object.
type CurveInfo struct {
	ID         string        `json:"id"`
	Currency   string        `json:"currency"`
	Settlement time.Time     `json:"settlement"`
	BuiltAt    time.Time     `json:"builtAt"`
	Pillars    []CurvePillar `json:"pillars"`
}
