package portfolio

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/domain"
)

// AssetValuation is the marked-to-market view of one holding.
type AssetValuation struct {
	Ticker       string            `json:"ticker"`
	Name         string            `json:"name"`
	Sector       string            `json:"sector"`
	AssetClass   domain.AssetClass `json:"asset_class"`
	Quantity     float64           `json:"quantity"`
	AverageCost  float64           `json:"average_cost"`
	CurrentPrice float64           `json:"current_price"`
	MarketValue  float64           `json:"market_value"`
	CostBasis    float64           `json:"cost_basis"`
	PnLAbs       float64           `json:"pnl_abs"`
	PnLPct       *float64          `json:"pnl_pct"` // nil when cost basis is zero
}

// Valuation is the marked-to-market view of the whole portfolio.
type Valuation struct {
	Assets     []AssetValuation `json:"assets"`
	TotalValue float64          `json:"total_value"`
	TotalCost  float64          `json:"total_cost"`
	PnLAbs     float64          `json:"pnl_abs"`
	PnLPct     *float64         `json:"pnl_pct"`
	AsOf       time.Time        `json:"as_of"`
}

// AllocationSlice is one bucket of an allocation breakdown. Weights are
// fractions of total market value and sum to 1 across a breakdown.
type AllocationSlice struct {
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
}

// Allocation groups the portfolio's market value by ticker and by sector.
type Allocation struct {
	ByTicker []AllocationSlice `json:"by_ticker"`
	BySector []AllocationSlice `json:"by_sector"`
}

// Service computes portfolio valuations and allocation breakdowns from a
// validated portfolio and a set of current prices.
type Service struct {
	log zerolog.Logger
}

// NewService creates a new portfolio service.
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("component", "portfolio").Logger(),
	}
}

// Valuate marks every holding to market. Every held ticker must have a price;
// a missing price is an InsufficientDataError naming the ticker rather than a
// silently skipped position.
func (s *Service) Valuate(p domain.Portfolio, prices map[string]float64, asOf time.Time) (Valuation, error) {
	valuation := Valuation{
		Assets: make([]AssetValuation, 0, len(p.Assets)),
		AsOf:   asOf,
	}

	for _, asset := range p.Assets {
		price, ok := prices[asset.Ticker]
		if !ok {
			return Valuation{}, &domain.InsufficientDataError{
				Op:   "portfolio.Valuate: no price for " + asset.Ticker,
				Need: 1,
				Got:  0,
			}
		}

		av := AssetValuation{
			Ticker:       asset.Ticker,
			Name:         asset.Name,
			Sector:       asset.Sector,
			AssetClass:   asset.AssetClass,
			Quantity:     asset.Quantity,
			AverageCost:  asset.AverageCost,
			CurrentPrice: price,
			MarketValue:  asset.Quantity * price,
			CostBasis:    asset.CostBasis(),
		}
		av.PnLAbs = av.MarketValue - av.CostBasis
		if av.CostBasis > 0 {
			pct := av.PnLAbs / av.CostBasis
			av.PnLPct = &pct
		}

		valuation.Assets = append(valuation.Assets, av)
		valuation.TotalValue += av.MarketValue
		valuation.TotalCost += av.CostBasis
	}

	valuation.PnLAbs = valuation.TotalValue - valuation.TotalCost
	if valuation.TotalCost > 0 {
		pct := valuation.PnLAbs / valuation.TotalCost
		valuation.PnLPct = &pct
	}

	s.log.Debug().
		Int("assets", len(valuation.Assets)).
		Float64("total_value", valuation.TotalValue).
		Msg("Portfolio valued")

	return valuation, nil
}

// Allocate breaks the valuation's market value down by ticker and by sector.
// Assets with an empty sector fall into the "Unclassified" bucket. Returns a
// DegenerateInputError when the total market value is zero, since weights
// would be undefined.
func (s *Service) Allocate(valuation Valuation) (Allocation, error) {
	if valuation.TotalValue == 0 {
		return Allocation{}, &domain.DegenerateInputError{
			Op:     "portfolio.Allocate",
			Reason: "total market value is zero",
		}
	}

	bySector := make(map[string]float64)
	byTicker := make([]AllocationSlice, 0, len(valuation.Assets))

	for _, av := range valuation.Assets {
		byTicker = append(byTicker, AllocationSlice{
			Label:  av.Ticker,
			Value:  av.MarketValue,
			Weight: av.MarketValue / valuation.TotalValue,
		})

		sector := av.Sector
		if sector == "" {
			sector = "Unclassified"
		}
		bySector[sector] += av.MarketValue
	}

	allocation := Allocation{ByTicker: byTicker}
	for sector, value := range bySector {
		allocation.BySector = append(allocation.BySector, AllocationSlice{
			Label:  sector,
			Value:  value,
			Weight: value / valuation.TotalValue,
		})
	}

	// Largest buckets first, ties broken by label for stable output.
	sortSlices(allocation.ByTicker)
	sortSlices(allocation.BySector)

	return allocation, nil
}

func sortSlices(slices []AllocationSlice) {
	sort.Slice(slices, func(i, j int) bool {
		if slices[i].Value != slices[j].Value {
			return slices[i].Value > slices[j].Value
		}
		return slices[i].Label < slices[j].Label
	})
}
