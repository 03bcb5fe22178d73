package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/folio/internal/domain"
)

func priceSeries(t *testing.T, ticker string, closes map[int]float64) domain.PriceSeries {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	days := make([]int, 0, len(closes))
	for d := range closes {
		days = append(days, d)
	}
	// Map iteration order is random; points must be date-ordered.
	for i := 0; i < len(days); i++ {
		for j := i + 1; j < len(days); j++ {
			if days[j] < days[i] {
				days[i], days[j] = days[j], days[i]
			}
		}
	}

	points := make([]domain.PricePoint, 0, len(days))
	for _, d := range days {
		points = append(points, domain.PricePoint{Date: base.AddDate(0, 0, d), Close: closes[d]})
	}

	s, err := domain.NewPriceSeries(ticker, points)
	require.NoError(t, err)
	return s
}

func TestPortfolioValueSeries(t *testing.T) {
	p, err := domain.NewPortfolio([]domain.Asset{
		{Ticker: "PETR4", Quantity: 10, AverageCost: 25},
		{Ticker: "VALE3", Quantity: 2, AverageCost: 60},
	})
	require.NoError(t, err)

	series := map[string]domain.PriceSeries{
		"PETR4": priceSeries(t, "PETR4", map[int]float64{0: 30, 1: 31, 2: 32}),
		"VALE3": priceSeries(t, "VALE3", map[int]float64{0: 50, 1: 55, 2: 60}),
	}

	values, err := PortfolioValueSeries(p, series)
	require.NoError(t, err)

	require.Equal(t, 3, values.Len())
	assert.Equal(t, []float64{10*30 + 2*50, 10*31 + 2*55, 10*32 + 2*60}, values.Closes())
}

func TestPortfolioValueSeries_InnerJoinOnDates(t *testing.T) {
	p, err := domain.NewPortfolio([]domain.Asset{
		{Ticker: "PETR4", Quantity: 1, AverageCost: 25},
		{Ticker: "VALE3", Quantity: 1, AverageCost: 60},
	})
	require.NoError(t, err)

	// VALE3 is missing day 1; that date must be dropped from the result.
	series := map[string]domain.PriceSeries{
		"PETR4": priceSeries(t, "PETR4", map[int]float64{0: 30, 1: 31, 2: 32}),
		"VALE3": priceSeries(t, "VALE3", map[int]float64{0: 50, 2: 60}),
	}

	values, err := PortfolioValueSeries(p, series)
	require.NoError(t, err)

	assert.Equal(t, []float64{80, 92}, values.Closes())
}

func TestPortfolioValueSeries_MissingTicker(t *testing.T) {
	p, err := domain.NewPortfolio([]domain.Asset{
		{Ticker: "PETR4", Quantity: 1, AverageCost: 25},
	})
	require.NoError(t, err)

	_, err = PortfolioValueSeries(p, map[string]domain.PriceSeries{})
	require.Error(t, err)

	var insufficient *domain.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Contains(t, err.Error(), "PETR4")
}

func TestPortfolioValueSeries_TooFewCommonDates(t *testing.T) {
	p, err := domain.NewPortfolio([]domain.Asset{
		{Ticker: "PETR4", Quantity: 1, AverageCost: 25},
		{Ticker: "VALE3", Quantity: 1, AverageCost: 60},
	})
	require.NoError(t, err)

	series := map[string]domain.PriceSeries{
		"PETR4": priceSeries(t, "PETR4", map[int]float64{0: 30, 1: 31}),
		"VALE3": priceSeries(t, "VALE3", map[int]float64{1: 50, 2: 60}),
	}

	_, err = PortfolioValueSeries(p, series)
	require.Error(t, err)

	var insufficient *domain.InsufficientDataError
	assert.ErrorAs(t, err, &insufficient)
}

func TestPortfolioValueSeries_EmptyPortfolio(t *testing.T) {
	_, err := PortfolioValueSeries(domain.Portfolio{}, nil)
	require.Error(t, err)

	var insufficient *domain.InsufficientDataError
	assert.ErrorAs(t, err, &insufficient)
}
