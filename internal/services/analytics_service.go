// Package services provides shared services that assemble domain inputs from
// the repositories for the computation engines. Handlers depend on these
// instead of re-implementing the load-join-build dance per endpoint.
package services

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/marketdata"
	"github.com/aristath/folio/internal/modules/portfolio"
	"github.com/aristath/folio/internal/modules/returns"
	"github.com/aristath/folio/internal/modules/risk"
)

// AnalyticsService loads holdings and price history and turns them into the
// series the risk and simulation engines consume.
type AnalyticsService struct {
	holdings *portfolio.Repository
	history  *marketdata.HistoryRepository
	builder  *returns.Builder
	log      zerolog.Logger
}

// NewAnalyticsService creates a new analytics assembler.
func NewAnalyticsService(
	holdings *portfolio.Repository,
	history *marketdata.HistoryRepository,
	builder *returns.Builder,
	log zerolog.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		holdings: holdings,
		history:  history,
		builder:  builder,
		log:      log.With().Str("component", "analytics").Logger(),
	}
}

// PortfolioState is the assembled snapshot the engines start from: the
// holdings, their daily value series over the requested window, the periodic
// returns derived from it, and the current (latest-close) total value.
type PortfolioState struct {
	Portfolio   domain.Portfolio
	ValueSeries domain.PriceSeries
	Returns     domain.ReturnSeries
	TotalValue  float64
	TotalCost   float64
}

// PortfolioReturns assembles the portfolio state over the window starting at
// since. A zero since uses the full stored history.
func (s *AnalyticsService) PortfolioReturns(since time.Time) (PortfolioState, error) {
	p, err := s.holdings.Load()
	if err != nil {
		return PortfolioState{}, err
	}
	if p.IsEmpty() {
		return PortfolioState{}, &domain.InsufficientDataError{
			Op:   "analytics.PortfolioReturns: empty portfolio",
			Need: 1,
			Got:  0,
		}
	}

	series := make(map[string]domain.PriceSeries, len(p.Assets))
	for _, asset := range p.Assets {
		ps, err := s.history.GetPriceSeries(asset.Ticker, since)
		if err != nil {
			return PortfolioState{}, err
		}
		series[asset.Ticker] = ps
	}

	valueSeries, err := risk.PortfolioValueSeries(p, series)
	if err != nil {
		return PortfolioState{}, err
	}

	returnSeries, err := s.builder.Build(valueSeries)
	if err != nil {
		return PortfolioState{}, err
	}

	state := PortfolioState{
		Portfolio:   p,
		ValueSeries: valueSeries,
		Returns:     returnSeries,
		TotalValue:  valueSeries.Points[valueSeries.Len()-1].Close,
		TotalCost:   p.TotalCost(),
	}

	s.log.Debug().
		Int("assets", len(p.Assets)).
		Int("observations", returnSeries.Len()).
		Float64("total_value", state.TotalValue).
		Msg("Assembled portfolio state")

	return state, nil
}

// BenchmarkReturns builds the benchmark's return series over the same window.
func (s *AnalyticsService) BenchmarkReturns(ticker string, since time.Time) (domain.ReturnSeries, error) {
	series, err := s.history.GetPriceSeries(ticker, since)
	if err != nil {
		return domain.ReturnSeries{}, err
	}
	return s.builder.Build(series)
}

// LoadPortfolio reads the current holdings as a validated portfolio.
func (s *AnalyticsService) LoadPortfolio() (domain.Portfolio, error) {
	return s.holdings.Load()
}

// LatestPrices returns the most recent close for each held ticker.
func (s *AnalyticsService) LatestPrices(p domain.Portfolio) (map[string]float64, error) {
	tickers := make([]string, 0, len(p.Assets))
	for _, a := range p.Assets {
		tickers = append(tickers, a.Ticker)
	}
	return s.history.GetLatestPrices(tickers)
}

// WindowStart converts a months-back window into the since argument the
// repositories take. Non-positive months means the full history.
func WindowStart(now time.Time, months int) time.Time {
	if months <= 0 {
		return time.Time{}
	}
	return now.AddDate(0, -months, 0)
}
