// Package dividends aggregates historical dividend cash flows per asset and
// projects forward annual income from the trailing yield.
package dividends

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/domain"
)

// AssetProjection is the projected dividend income for one holding.
type AssetProjection struct {
	Ticker                    string  `json:"ticker"`
	TrailingDividendsPerShare float64 `json:"trailing_dividends_per_share"`
	ProjectedAnnualIncome     float64 `json:"projected_annual_income"`
	TrailingYield             float64 `json:"trailing_yield"`  // vs current price, annualized; 0 when price unknown
	YieldOnCost               float64 `json:"yield_on_cost"`   // projected income / cost basis
	EventsInWindow            int     `json:"events_in_window"`
}

// Projection is the portfolio-level dividend income projection. It is a
// point estimate from trailing payments; no confidence interval is computed.
type Projection struct {
	PerAsset                   []AssetProjection `json:"per_asset"`
	TotalProjectedAnnualIncome float64           `json:"total_projected_annual_income"`
	OverallYieldOnCost         float64           `json:"overall_yield_on_cost"`
	WeightedTrailingYield      float64           `json:"weighted_trailing_yield"` // cost-weighted
	TrailingWindowMonths       int               `json:"trailing_window_months"`
	AsOf                       time.Time         `json:"as_of"`
}

// Projector computes dividend income projections from event history.
type Projector struct {
	log zerolog.Logger
}

// NewProjector creates a new dividend projector.
func NewProjector(log zerolog.Logger) *Projector {
	return &Projector{
		log: log.With().Str("component", "dividends").Logger(),
	}
}

// Project estimates forward annual dividend income per asset from payments in
// the trailing window, annualized by 12/window. Assets with no events in the
// window contribute zero income rather than an error. currentPrices may omit
// tickers; the yield fields are zero for those, income is still projected.
func (p *Projector) Project(
	history []domain.DividendEvent,
	holdings domain.Portfolio,
	currentPrices map[string]float64,
	asOf time.Time,
	trailingWindowMonths int,
) (Projection, error) {
	if trailingWindowMonths <= 0 {
		return Projection{}, &domain.InvalidScenarioError{
			Field:  "trailing_window_months",
			Reason: "must be a positive integer",
		}
	}

	windowStart := asOf.AddDate(0, -trailingWindowMonths, 0)
	annualizer := 12.0 / float64(trailingWindowMonths)

	// Per-share sums inside the window, keyed by ticker.
	perShare := make(map[string]float64)
	eventCount := make(map[string]int)
	for _, ev := range history {
		if ev.Date.After(windowStart) && !ev.Date.After(asOf) {
			perShare[ev.Ticker] += ev.AmountPerShare
			eventCount[ev.Ticker]++
		}
	}

	proj := Projection{
		TrailingWindowMonths: trailingWindowMonths,
		AsOf:                 asOf,
	}

	totalCost := holdings.TotalCost()
	weightedYield := 0.0

	for _, asset := range holdings.Assets {
		trailing := perShare[asset.Ticker]
		annualPerShare := trailing * annualizer
		income := annualPerShare * asset.Quantity

		ap := AssetProjection{
			Ticker:                    asset.Ticker,
			TrailingDividendsPerShare: trailing,
			ProjectedAnnualIncome:     income,
			EventsInWindow:            eventCount[asset.Ticker],
		}
		if price := currentPrices[asset.Ticker]; price > 0 {
			ap.TrailingYield = annualPerShare / price
		}
		if cost := asset.CostBasis(); cost > 0 {
			ap.YieldOnCost = income / cost
			weightedYield += ap.TrailingYield * cost
		}

		proj.PerAsset = append(proj.PerAsset, ap)
		proj.TotalProjectedAnnualIncome += income
	}

	if totalCost > 0 {
		proj.OverallYieldOnCost = proj.TotalProjectedAnnualIncome / totalCost
		proj.WeightedTrailingYield = weightedYield / totalCost
	}

	p.log.Debug().
		Int("assets", len(proj.PerAsset)).
		Float64("total_projected_annual_income", proj.TotalProjectedAnnualIncome).
		Msg("Projected dividend income")

	return proj, nil
}

// Upcoming returns announced events dated after asOf for held tickers,
// ordered by date. Used for the ex-dividend calendar.
func (p *Projector) Upcoming(history []domain.DividendEvent, holdings domain.Portfolio, asOf time.Time) []domain.DividendEvent {
	var out []domain.DividendEvent
	for _, ev := range history {
		if _, held := holdings.Asset(ev.Ticker); held && ev.Date.After(asOf) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
