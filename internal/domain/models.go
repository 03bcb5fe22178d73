// Package domain provides core domain models and types.
//
// All types in this package are immutable value objects: the computation
// engines receive them as snapshots and never mutate them. Mutation of
// holdings happens only through the portfolio module's explicit operations.
package domain

import (
	"fmt"
	"time"
)

// AssetClass represents the broad class of a held instrument
type AssetClass string

const (
	// AssetClassEquity represents individual stocks/shares
	AssetClassEquity AssetClass = "EQUITY"
	// AssetClassETF represents exchange traded funds
	AssetClassETF AssetClass = "ETF"
	// AssetClassREIT represents listed real-estate funds (FIIs)
	AssetClassREIT AssetClass = "REIT"
	// AssetClassUnknown represents unclassified holdings
	AssetClassUnknown AssetClass = "UNKNOWN"
)

// Asset represents a single holding: a ticker with quantity and cost basis,
// tagged with a sector and asset class for allocation grouping.
type Asset struct {
	Ticker      string     `json:"ticker"`
	Name        string     `json:"name,omitempty"`
	Sector      string     `json:"sector,omitempty"`
	AssetClass  AssetClass `json:"asset_class,omitempty"`
	Quantity    float64    `json:"quantity"`
	AverageCost float64    `json:"average_cost"`
}

// Validate checks the Asset invariants: non-empty ticker, non-negative
// quantity and cost basis.
func (a Asset) Validate() error {
	if a.Ticker == "" {
		return &InvalidScenarioError{Field: "ticker", Reason: "is required"}
	}
	if a.Quantity < 0 {
		return &InvalidScenarioError{Field: "quantity", Reason: fmt.Sprintf("must be >= 0, got %v", a.Quantity)}
	}
	if a.AverageCost < 0 {
		return &InvalidScenarioError{Field: "average_cost", Reason: fmt.Sprintf("must be >= 0, got %v", a.AverageCost)}
	}
	return nil
}

// CostBasis returns quantity * average cost.
func (a Asset) CostBasis() float64 {
	return a.Quantity * a.AverageCost
}

// Portfolio is a set of assets, unique by ticker. It is a read-only snapshot:
// engines never mutate it, and the portfolio store hands out fresh copies.
type Portfolio struct {
	Assets []Asset `json:"assets"`
}

// NewPortfolio builds a portfolio from assets, validating each asset and
// rejecting duplicate tickers.
func NewPortfolio(assets []Asset) (Portfolio, error) {
	seen := make(map[string]bool, len(assets))
	for _, a := range assets {
		if err := a.Validate(); err != nil {
			return Portfolio{}, err
		}
		if seen[a.Ticker] {
			return Portfolio{}, &InvalidScenarioError{Field: "ticker", Reason: "duplicate: " + a.Ticker}
		}
		seen[a.Ticker] = true
	}
	out := make([]Asset, len(assets))
	copy(out, assets)
	return Portfolio{Assets: out}, nil
}

// Asset returns the holding for a ticker, if present.
func (p Portfolio) Asset(ticker string) (Asset, bool) {
	for _, a := range p.Assets {
		if a.Ticker == ticker {
			return a, true
		}
	}
	return Asset{}, false
}

// TotalCost returns the summed cost basis of all holdings.
func (p Portfolio) TotalCost() float64 {
	total := 0.0
	for _, a := range p.Assets {
		total += a.CostBasis()
	}
	return total
}

// IsEmpty reports whether the portfolio holds no assets.
func (p Portfolio) IsEmpty() bool {
	return len(p.Assets) == 0
}

// DividendEvent represents a single per-share dividend payment for a ticker.
type DividendEvent struct {
	Ticker         string    `json:"ticker"`
	Date           time.Time `json:"date"`
	AmountPerShare float64   `json:"amount_per_share"`
}

// FixedIncomeInstrument represents a benchmark-indexed fixed income position:
// a principal accruing at a percentage of the benchmark rate between two
// dates (e.g. a CDB paying 102% of CDI).
type FixedIncomeInstrument struct {
	Principal      float64   `json:"principal"`
	IndexedRatePct float64   `json:"indexed_rate_pct"` // fraction of benchmark, 1.0 = 100%
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
}

// Validate checks the instrument preconditions.
func (f FixedIncomeInstrument) Validate() error {
	if f.Principal < 0 {
		return &InvalidScenarioError{Field: "principal", Reason: "must be >= 0"}
	}
	if f.IndexedRatePct < 0 {
		return &InvalidScenarioError{Field: "indexed_rate_pct", Reason: "must be >= 0"}
	}
	if !f.EndDate.After(f.StartDate) {
		return &InvalidScenarioError{Field: "end_date", Reason: "must be after start_date"}
	}
	return nil
}
