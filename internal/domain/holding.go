package domain

import "math"

// DefaultCurrency is assigned to holdings whose export carries no currency.
const DefaultCurrency = "EUR"

// Holding is one aggregated, currently open position.
type Holding struct {
	Name     string  `json:"name"`
	Ticker   string  `json:"ticker"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Value    float64 `json:"value"`
	Cost     float64 `json:"cost"`
	GainAbs  float64 `json:"gain_abs"`
	GainPct  float64 `json:"gain_pct"`
	Currency string  `json:"currency"`
}

// Key identifies a holding across refreshes: the ticker, or the name when no ticker is known.
func (h Holding) Key() string {
	if h.Ticker != "" {
		return h.Ticker
	}
	return h.Name
}

// Totals holds the portfolio-level sums over all retained holdings.
type Totals struct {
	Value   float64 `json:"value"`
	Cost    float64 `json:"cost"`
	GainAbs float64 `json:"gain_abs"`
	GainPct float64 `json:"gain_pct"`
}

// Result is the canonical output of one ingestion pass.
type Result struct {
	Holdings []Holding `json:"holdings"`
	Totals   Totals    `json:"totals"`
}

// EmptyResult returns the well-formed shell used when nothing could be parsed.
func EmptyResult() Result {
	return Result{Holdings: []Holding{}}
}

// GainPercent returns gain/cost*100, or 0 when cost is 0.
func GainPercent(gain, cost float64) float64 {
	if cost == 0 {
		return 0
	}
	return gain / cost * 100
}

// Round2 rounds to two decimal places for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
