// Package montecarlo produces a probabilistic distribution of terminal
// portfolio values by drawing many random return paths from statistics
// estimated on historical returns.
//
// The path model is deliberately simple and documented as such: periodic
// returns are assumed i.i.d. Gaussian with the sample mean and standard
// deviation of the supplied history. This is a modeling choice, not a claim
// about real market behavior.
package montecarlo

import (
	"math/rand/v2"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/pkg/formulas"
)

// Config is the simulation configuration. All knobs are explicit; nothing is
// inferred from the data except the return statistics themselves.
type Config struct {
	HorizonMonths        int      `json:"horizon_months"`
	NumPaths             int      `json:"num_paths"`
	MonthlyContribution  float64  `json:"monthly_contribution"`
	MonthlyDividendYield float64  `json:"monthly_dividend_yield"`
	ReinvestDividends    bool     `json:"reinvest_dividends"`
	Seed                 *uint64  `json:"seed,omitempty"` // nil draws fresh entropy per invocation
	Workers              int      `json:"-"`              // 0 = GOMAXPROCS
}

// Validate checks the configuration preconditions.
func (c Config) Validate() error {
	if c.HorizonMonths < 1 {
		return &domain.InvalidScenarioError{Field: "horizon_months", Reason: "must be >= 1"}
	}
	if c.NumPaths < 1 {
		return &domain.InvalidScenarioError{Field: "num_paths", Reason: "must be >= 1"}
	}
	if c.MonthlyDividendYield < 0 {
		return &domain.InvalidScenarioError{Field: "monthly_dividend_yield", Reason: "must be >= 0"}
	}
	return nil
}

// Percentiles are the summary order statistics of the terminal-value set,
// computed with linear interpolation.
type Percentiles struct {
	P5  float64 `json:"p5"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P95 float64 `json:"p95"`
}

// Result is the outcome of one simulation run. TerminalValues holds one
// entry per path; the path interiors are ephemeral and not retained.
type Result struct {
	TerminalValues    []float64   `json:"terminal_values"`
	Percentiles       Percentiles `json:"percentiles"`
	MeanTerminalValue float64     `json:"mean_terminal_value"`
	Mu                float64     `json:"mu"`    // estimated periodic mean
	Sigma             float64     `json:"sigma"` // estimated periodic stddev
	AvgTotalDividends float64     `json:"avg_total_dividends"`
	NumPaths          int         `json:"num_paths"`
	HorizonMonths     int         `json:"horizon_months"`
}

// Simulator runs Monte Carlo terminal-wealth simulations.
type Simulator struct {
	log zerolog.Logger
}

// NewSimulator creates a new Monte Carlo simulator.
func NewSimulator(log zerolog.Logger) *Simulator {
	return &Simulator{
		log: log.With().Str("component", "montecarlo").Logger(),
	}
}

// Simulate estimates mu/sigma from the historical returns (sample statistics)
// and compounds NumPaths random paths of HorizonMonths periodic returns onto
// value0, adding the configured contribution before compounding each step.
//
// Paths are generated concurrently by a worker pool. Each path owns an
// independent PCG sub-stream keyed by (seed, path index), so a seeded run is
// reproducible bit-for-bit regardless of worker scheduling. An unseeded run
// draws a fresh base seed per invocation.
func (s *Simulator) Simulate(history domain.ReturnSeries, value0 float64, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if history.Len() < 2 {
		return Result{}, &domain.InsufficientDataError{
			Op:   "montecarlo.Simulate",
			Need: 2,
			Got:  history.Len(),
		}
	}
	if value0 < 0 {
		return Result{}, &domain.InvalidScenarioError{Field: "portfolio_value", Reason: "must be >= 0"}
	}

	values := history.Values()
	mu := formulas.Mean(values)
	sigma := formulas.StdDev(values)

	baseSeed := rand.Uint64()
	if cfg.Seed != nil {
		baseSeed = *cfg.Seed
	}

	terminals := make([]float64, cfg.NumPaths)
	pathDividends := make([]float64, cfg.NumPaths)

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > cfg.NumPaths {
		workers = cfg.NumPaths
	}

	// Independent paths share no mutable state: each worker writes only its
	// own slice indices, so no locking is needed.
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for path := worker; path < cfg.NumPaths; path += workers {
				terminals[path], pathDividends[path] = runPath(value0, mu, sigma, baseSeed, uint64(path), cfg)
			}
		}(w)
	}
	wg.Wait()

	result := Result{
		TerminalValues: terminals,
		Percentiles: Percentiles{
			P5:  formulas.Percentile(terminals, 5),
			P25: formulas.Percentile(terminals, 25),
			P50: formulas.Percentile(terminals, 50),
			P75: formulas.Percentile(terminals, 75),
			P95: formulas.Percentile(terminals, 95),
		},
		MeanTerminalValue: formulas.Mean(terminals),
		Mu:                mu,
		Sigma:             sigma,
		AvgTotalDividends: formulas.Mean(pathDividends),
		NumPaths:          cfg.NumPaths,
		HorizonMonths:     cfg.HorizonMonths,
	}

	s.log.Debug().
		Int("num_paths", cfg.NumPaths).
		Int("horizon_months", cfg.HorizonMonths).
		Float64("mu", mu).
		Float64("sigma", sigma).
		Float64("p50", result.Percentiles.P50).
		Msg("Completed Monte Carlo simulation")

	return result, nil
}

// runPath evolves a single path and returns its terminal value and total
// dividends received along the way.
func runPath(value0, mu, sigma float64, baseSeed, pathIndex uint64, cfg Config) (float64, float64) {
	normal := distuv.Normal{
		Mu:    mu,
		Sigma: sigma,
		Src:   rand.NewPCG(baseSeed, pathIndex),
	}

	value := value0
	dividends := 0.0

	for month := 0; month < cfg.HorizonMonths; month++ {
		r := mu
		if sigma > 0 {
			r = normal.Rand()
		}

		value = (value + cfg.MonthlyContribution) * (1 + r)

		if cfg.MonthlyDividendYield > 0 {
			paid := value * cfg.MonthlyDividendYield
			dividends += paid
			if cfg.ReinvestDividends {
				value += paid
			}
		}
	}

	return value, dividends
}
