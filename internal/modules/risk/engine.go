// Package risk computes the historical risk and performance snapshot of a
// portfolio against a benchmark: P/L, Beta, Sharpe ratio, annualized return
// and volatility, and maximum drawdown.
package risk

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/pkg/formulas"
)

// Input carries everything a risk computation needs. The two return series
// must already be aligned (same length, same date sequence); use
// returns.Builder.Align before calling Compute.
type Input struct {
	PortfolioReturns domain.ReturnSeries
	BenchmarkReturns domain.ReturnSeries
	RiskFreeRate     float64 // annual, decimal (e.g. 0.0875)
	TotalValue       float64 // current market value of the holdings
	TotalCost        float64 // total cost basis of the holdings
	PeriodsPerYear   int     // 252 for daily series, 12 for monthly
}

// Report is the computed risk snapshot. It is valid only for the
// (portfolio, benchmark, period) triple it was computed from and is never
// persisted as a source of truth - callers recompute on demand.
//
// Sharpe and Correlation are nil when the portfolio volatility is zero: both
// are mathematically undefined there and no substitute value is reported.
type Report struct {
	TotalValue           float64  `json:"total_value"`
	TotalCost            float64  `json:"total_cost"`
	PnLAbs               float64  `json:"pnl_abs"`
	PnLPct               float64  `json:"pnl_pct"`
	Beta                 float64  `json:"beta"`
	Correlation          *float64 `json:"correlation"`
	Sharpe               *float64 `json:"sharpe"`
	AnnualizedReturn     float64  `json:"annualized_return"`
	AnnualizedVolatility float64  `json:"annualized_volatility"`
	MaxDrawdown          float64  `json:"max_drawdown"`
	PeriodsPerYear       int      `json:"periods_per_year"`
	NumObservations      int      `json:"num_observations"`
}

// PerformancePoint is one observation of the normalized cumulative
// performance of portfolio vs benchmark (both start at 1.0).
type PerformancePoint struct {
	Date      time.Time `json:"date"`
	Portfolio float64   `json:"portfolio"`
	Benchmark float64   `json:"benchmark"`
}

// Engine computes risk reports. It is stateless: every call operates only on
// its inputs.
type Engine struct {
	log zerolog.Logger
}

// NewEngine creates a new risk metrics engine.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		log: log.With().Str("component", "risk").Logger(),
	}
}

// Compute calculates the full risk snapshot from aligned return series.
func (e *Engine) Compute(in Input) (Report, error) {
	if in.PortfolioReturns.Len() < 2 {
		return Report{}, &domain.InsufficientDataError{
			Op:   "risk.Compute",
			Need: 2,
			Got:  in.PortfolioReturns.Len(),
		}
	}
	if err := validateAlignment(in.PortfolioReturns, in.BenchmarkReturns); err != nil {
		return Report{}, err
	}
	if in.PeriodsPerYear <= 0 {
		return Report{}, &domain.InvalidScenarioError{
			Field:  "periods_per_year",
			Reason: "must be positive and explicit, never inferred",
		}
	}
	if in.TotalCost == 0 {
		return Report{}, &domain.DegenerateInputError{
			Op:     "risk.Compute",
			Reason: "total cost basis is zero, P/L percentage undefined",
		}
	}

	port := in.PortfolioReturns.Values()
	bench := in.BenchmarkReturns.Values()

	benchVariance := formulas.Variance(bench)
	if benchVariance == 0 {
		return Report{}, &domain.DegenerateInputError{
			Op:     "risk.Compute",
			Reason: "benchmark returns have zero variance, Beta undefined",
		}
	}
	beta := formulas.Covariance(port, bench) / benchVariance

	mean := formulas.Mean(port)
	stddev := formulas.StdDev(port)

	annualizedVol := formulas.AnnualizedStdDev(stddev, in.PeriodsPerYear)

	// Sharpe and correlation are left undefined (nil) for a zero-volatility
	// series instead of surfacing an infinity or a NaN.
	var sharpe, correlation *float64
	if stddev > 0 {
		excess := formulas.AnnualizedMean(mean, in.PeriodsPerYear) - in.RiskFreeRate
		s := excess / annualizedVol
		sharpe = &s

		c := formulas.Correlation(port, bench)
		correlation = &c
	}

	// Drawdown is measured on the value level implied by compounding the
	// returns onto a base of 1.0.
	values := formulas.CumulativeValues(1.0, port)
	maxDD := formulas.MaxDrawdown(values)

	pnl := in.TotalValue - in.TotalCost

	report := Report{
		TotalValue:           in.TotalValue,
		TotalCost:            in.TotalCost,
		PnLAbs:               pnl,
		PnLPct:               pnl / in.TotalCost,
		Beta:                 beta,
		Correlation:          correlation,
		Sharpe:               sharpe,
		AnnualizedReturn:     formulas.CompoundAnnualReturn(mean, in.PeriodsPerYear),
		AnnualizedVolatility: annualizedVol,
		MaxDrawdown:          maxDD,
		PeriodsPerYear:       in.PeriodsPerYear,
		NumObservations:      len(port),
	}

	e.log.Debug().
		Float64("beta", beta).
		Float64("annualized_volatility", annualizedVol).
		Float64("max_drawdown", maxDD).
		Int("num_observations", len(port)).
		Msg("Computed risk report")

	return report, nil
}

// CumulativePerformance returns the normalized (base 1.0) cumulative value
// paths of portfolio and benchmark over the aligned period, for side-by-side
// performance comparison.
func (e *Engine) CumulativePerformance(portfolio, benchmark domain.ReturnSeries) ([]PerformancePoint, error) {
	if portfolio.Len() < 1 {
		return nil, &domain.InsufficientDataError{Op: "risk.CumulativePerformance", Need: 1, Got: 0}
	}
	if err := validateAlignment(portfolio, benchmark); err != nil {
		return nil, err
	}

	portValues := formulas.CumulativeValues(1.0, portfolio.Values())
	benchValues := formulas.CumulativeValues(1.0, benchmark.Values())

	points := make([]PerformancePoint, len(portValues))
	for i := range portValues {
		points[i] = PerformancePoint{
			Date:      portfolio.Points[i].Date,
			Portfolio: portValues[i],
			Benchmark: benchValues[i],
		}
	}
	return points, nil
}

// validateAlignment enforces the 1:1 date alignment invariant between the
// portfolio and benchmark series.
func validateAlignment(a, b domain.ReturnSeries) error {
	if a.Len() != b.Len() {
		return &domain.MalformedSeriesError{Reason: "portfolio and benchmark series must have equal length"}
	}
	for i := range a.Points {
		if !a.Points[i].Date.Equal(b.Points[i].Date) {
			return &domain.MalformedSeriesError{Reason: "portfolio and benchmark series must share the same dates"}
		}
	}
	return nil
}
