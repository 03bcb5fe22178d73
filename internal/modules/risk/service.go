package risk

import (
	"sort"
	"time"

	"github.com/aristath/folio/internal/domain"
)

// PortfolioValueSeries builds the daily market value series of the current
// holdings: for every date present in every holding's price history, value is
// the sum of quantity times close. Dates missing from any one holding are
// dropped, so the series covers the common range only.
//
// Quantities are today's quantities applied across the whole range; the
// series answers "how would my current portfolio have moved", not "what was
// my account worth".
func PortfolioValueSeries(p domain.Portfolio, series map[string]domain.PriceSeries) (domain.PriceSeries, error) {
	if p.IsEmpty() {
		return domain.PriceSeries{}, &domain.InsufficientDataError{
			Op:   "risk.PortfolioValueSeries: empty portfolio",
			Need: 1,
			Got:  0,
		}
	}

	// Closes per asset keyed by UTC-midnight Unix date.
	type assetCloses struct {
		quantity float64
		byDate   map[int64]float64
	}

	assets := make([]assetCloses, 0, len(p.Assets))
	var common map[int64]bool

	for _, asset := range p.Assets {
		s, ok := series[asset.Ticker]
		if !ok || s.Len() == 0 {
			return domain.PriceSeries{}, &domain.InsufficientDataError{
				Op:   "risk.PortfolioValueSeries: no history for " + asset.Ticker,
				Need: 2,
				Got:  0,
			}
		}

		byDate := make(map[int64]float64, s.Len())
		for _, pt := range s.Points {
			byDate[pt.Date.Unix()] = pt.Close
		}
		assets = append(assets, assetCloses{quantity: asset.Quantity, byDate: byDate})

		if common == nil {
			common = make(map[int64]bool, len(byDate))
			for d := range byDate {
				common[d] = true
			}
			continue
		}
		for d := range common {
			if _, ok := byDate[d]; !ok {
				delete(common, d)
			}
		}
	}

	if len(common) < 2 {
		return domain.PriceSeries{}, &domain.InsufficientDataError{
			Op:   "risk.PortfolioValueSeries",
			Need: 2,
			Got:  len(common),
		}
	}

	dates := make([]int64, 0, len(common))
	for d := range common {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })

	points := make([]domain.PricePoint, 0, len(dates))
	for _, d := range dates {
		value := 0.0
		for _, a := range assets {
			value += a.quantity * a.byDate[d]
		}
		points = append(points, domain.PricePoint{Date: time.Unix(d, 0).UTC(), Close: value})
	}

	return domain.NewPriceSeries("PORTFOLIO", points)
}
